package activity

import (
	"context"

	"github.com/pulseboard/pulseboard/internal/model"
	"github.com/pulseboard/pulseboard/internal/store"
)

// storeFetcher adapts one source's activity collection to the Fetcher
// contract.
type storeFetcher struct {
	src  model.Source
	acts store.Activities
}

// NewStoreFetcher returns a Fetcher reading src's collection from the store.
func NewStoreFetcher(src model.Source, acts store.Activities) Fetcher {
	return &storeFetcher{src: src, acts: acts}
}

func (s *storeFetcher) Source() model.Source { return s.src }

func (s *storeFetcher) Fetch(ctx context.Context, f model.ActivityFilter, limit int) ([]*model.RawActivity, error) {
	return s.acts.ListBySource(ctx, s.src, f, limit)
}

// StoreFetchers builds one fetcher per fetchable source.
func StoreFetchers(acts store.Activities) []Fetcher {
	srcs := model.ActivitySources()
	out := make([]Fetcher, 0, len(srcs))
	for _, src := range srcs {
		out = append(out, NewStoreFetcher(src, acts))
	}
	return out
}
