// Package activity fans activity queries out across sources, forward-resolves
// member names, and produces one consistently sorted, paginated result set.
package activity

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pulseboard/pulseboard/internal/identity"
	"github.com/pulseboard/pulseboard/internal/mapping"
	"github.com/pulseboard/pulseboard/internal/model"
)

// Each source is sorted independently, so when a date filter narrows an
// otherwise large source the merge can under-fill a page. Over-fetching by
// this factor before the global sort guarantees the trimmed page is correct.
const overfetchFactor = 10

// Fetcher queries one source's collection with a source-native filter.
type Fetcher interface {
	Source() model.Source
	Fetch(ctx context.Context, f model.ActivityFilter, limit int) ([]*model.RawActivity, error)
}

// SourceStatus is one source's outcome within an aggregation.
type SourceStatus struct {
	Source model.Source
	Count  int
	Err    error
}

// Report collects per-source outcomes so callers can surface which sources
// degraded instead of relying on logs alone.
type Report []SourceStatus

// Degraded lists the sources whose fetch failed.
func (r Report) Degraded() []model.Source {
	var out []model.Source
	for _, s := range r {
		if s.Err != nil {
			out = append(out, s.Source)
		}
	}
	return out
}

// Aggregator merges per-source activity into resolved, globally ordered pages.
type Aggregator struct {
	fetchers map[model.Source]Fetcher
	log      zerolog.Logger
}

func NewAggregator(log zerolog.Logger, fetchers ...Fetcher) *Aggregator {
	m := make(map[model.Source]Fetcher, len(fetchers))
	for _, f := range fetchers {
		m[f.Source()] = f
	}
	return &Aggregator{fetchers: m, log: log}
}

// Aggregate fetches every requested source, forward-resolves member names,
// merges, sorts descending by normalized timestamp, and paginates over the
// merged set. The returned total is the merged length before pagination.
// A failing source contributes zero records and an entry in the report; it
// never aborts the aggregation.
func (a *Aggregator) Aggregate(ctx context.Context, req model.ListActivitiesRequest, ix *mapping.Index) ([]model.ResolvedActivity, int, Report) {
	sources := req.Sources
	if len(sources) == 0 {
		sources = model.ActivitySources()
	}

	fetchLimit := a.fetchLimit(req)

	type result struct {
		src  model.Source
		recs []*model.RawActivity
		err  error
	}
	results := make([]result, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		f, ok := a.fetchers[src]
		if !ok {
			continue
		}
		filter, skip := a.buildFilter(src, req, ix)
		if skip {
			continue
		}
		wg.Add(1)
		go func(i int, src model.Source, f Fetcher) {
			defer wg.Done()
			recs, err := f.Fetch(ctx, filter, fetchLimit)
			results[i] = result{src: src, recs: recs, err: err}
		}(i, src, f)
	}
	wg.Wait()

	type sortable struct {
		at  time.Time
		act model.ResolvedActivity
	}
	var merged []sortable
	var report Report
	for i, src := range sources {
		res := results[i]
		if res.src == "" {
			continue
		}
		if res.err != nil {
			a.log.Error().Stack().Err(res.err).Str("source", string(src)).Msg("source fetch failed; continuing with remaining sources")
			report = append(report, SourceStatus{Source: src, Err: res.err})
			continue
		}
		for _, rec := range res.recs {
			at, ts := normalize(rec)
			merged = append(merged, sortable{at: at, act: model.ResolvedActivity{
				ID:           rec.ID,
				SourceType:   src,
				ActivityType: rec.ActivityType,
				Timestamp:    ts,
				MemberName:   identity.ResolveActor(ix, src, rec.Actor),
				Metadata:     rec.Metadata,
			}})
		}
		report = append(report, SourceStatus{Source: src, Count: len(res.recs)})
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].at.After(merged[j].at)
	})

	total := len(merged)
	merged = page(merged, req.Offset, req.Limit)

	out := make([]model.ResolvedActivity, len(merged))
	for i, s := range merged {
		out[i] = s.act
	}
	return out, total, report
}

// buildFilter reverse-resolves the member filter into source-native terms.
// skip is true when the member filter cannot match anything in this source.
func (a *Aggregator) buildFilter(src model.Source, req model.ListActivitiesRequest, ix *mapping.Index) (model.ActivityFilter, bool) {
	f := model.ActivityFilter{From: req.From, To: req.To}
	if req.MemberName == "" {
		return f, false
	}

	switch src {
	case model.SourceDailyAnalysis:
		// System digests have no member association.
		return f, req.MemberName != model.SystemMember
	case model.SourceRecordings:
		// Recording participants appear under their Drive identifiers.
		f.Identifiers = identity.IdentifiersForMember(ix, model.SourceDrive, req.MemberName)
		f.MemberName = req.MemberName
		return f, false
	default:
		f.Identifiers = identity.IdentifiersForMember(ix, src, req.MemberName)
	}

	// Slack and Notion surface raw display names; match those too so members
	// with no identifier on record yet still show up.
	if src == model.SourceSlack || src == model.SourceNotion {
		f.MemberName = req.MemberName
	} else if len(f.Identifiers) == 0 {
		// Nothing on file and no display-name field to fall back on.
		return f, true
	}
	return f, false
}

// fetchLimit sizes the per-source query: enough for the requested page, and
// overfetchFactor times that when a date filter is in play. Zero means the
// fetcher's own cap applies.
func (a *Aggregator) fetchLimit(req model.ListActivitiesRequest) int {
	if req.Limit <= 0 {
		return 0
	}
	n := req.Limit + req.Offset
	if req.From != nil || req.To != nil {
		n *= overfetchFactor
	}
	return n
}

func page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
