package services

import (
	"context"

	"github.com/pulseboard/pulseboard/internal/activity"
	"github.com/pulseboard/pulseboard/internal/identity"
	"github.com/pulseboard/pulseboard/internal/mapping"
	"github.com/pulseboard/pulseboard/internal/model"
	"github.com/pulseboard/pulseboard/internal/store"
)

// ActivityService exposes cross-source activity aggregation and identity
// lookups over a mapping-cache snapshot.
type ActivityService struct {
	store store.Store
	agg   *activity.Aggregator
	cache *mapping.Cache
}

func NewActivityService(s store.Store, agg *activity.Aggregator, cache *mapping.Cache) *ActivityService {
	return &ActivityService{store: s, agg: agg, cache: cache}
}

// List aggregates activity across the requested sources.
func (s *ActivityService) List(ctx context.Context, req model.ListActivitiesRequest) ([]model.ResolvedActivity, int, activity.Report) {
	ix := s.cache.Snapshot(ctx)
	return s.agg.Aggregate(ctx, req, ix)
}

// ListForMember aggregates only the named member's activity.
func (s *ActivityService) ListForMember(ctx context.Context, memberID string, req model.ListActivitiesRequest) ([]model.ResolvedActivity, int, activity.Report, error) {
	m, err := s.store.Members().Get(ctx, memberID)
	if err != nil {
		return nil, 0, nil, err
	}
	req.MemberName = m.Name
	recs, total, report := s.List(ctx, req)
	return recs, total, report, nil
}

// Resolve is the forward lookup, exposed for debugging via API and CLI.
func (s *ActivityService) Resolve(ctx context.Context, src model.Source, raw string) string {
	return identity.ResolveMemberName(s.cache.Snapshot(ctx), src, raw)
}

// IdentifiersFor is the reverse lookup over the current snapshot.
func (s *ActivityService) IdentifiersFor(ctx context.Context, src model.Source, memberName string) []string {
	return identity.IdentifiersForMember(s.cache.Snapshot(ctx), src, memberName)
}
