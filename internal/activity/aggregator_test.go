package activity

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/pulseboard/pulseboard/internal/mapping"
	"github.com/pulseboard/pulseboard/internal/model"
)

type fakeFetcher struct {
	src      model.Source
	recs     []*model.RawActivity
	err      error
	gotLimit int
	gotFilt  model.ActivityFilter
	calls    int
}

func (f *fakeFetcher) Source() model.Source { return f.src }

func (f *fakeFetcher) Fetch(ctx context.Context, filt model.ActivityFilter, limit int) ([]*model.RawActivity, error) {
	f.calls++
	f.gotLimit = limit
	f.gotFilt = filt
	return f.recs, f.err
}

func rec(src model.Source, id, ts string, actor model.ActorRef) *model.RawActivity {
	return &model.RawActivity{ID: id, Source: src, ActivityType: "event", Actor: actor, Timestamp: ts}
}

func emptyIndex() *mapping.Index { return mapping.NewIndex() }

func TestAggregateMergesAndSortsDescending(t *testing.T) {
	gh := &fakeFetcher{src: model.SourceGitHub, recs: []*model.RawActivity{
		rec(model.SourceGitHub, "g1", "2024-03-01T10:00:00Z", model.ActorRef{ID: "alice"}),
		rec(model.SourceGitHub, "g2", "2024-03-03T10:00:00Z", model.ActorRef{ID: "alice"}),
	}}
	sl := &fakeFetcher{src: model.SourceSlack, recs: []*model.RawActivity{
		rec(model.SourceSlack, "s1", "2024-03-02T10:00:00Z", model.ActorRef{Name: "bob"}),
	}}
	agg := NewAggregator(zerolog.Nop(), gh, sl)

	out, total, report := agg.Aggregate(context.Background(), model.ListActivitiesRequest{
		Sources: []model.Source{model.SourceGitHub, model.SourceSlack},
	}, emptyIndex())

	require.Equal(t, 3, total)
	require.Len(t, out, 3)
	require.Equal(t, []string{"g2", "s1", "g1"}, []string{out[0].ID, out[1].ID, out[2].ID})
	require.Empty(t, report.Degraded())

	// Forward resolution ran on every record.
	require.Equal(t, "Alice", out[0].MemberName)
	require.Equal(t, "Bob", out[1].MemberName)
}

func TestAggregatePagination(t *testing.T) {
	var recs []*model.RawActivity
	for i := 1; i <= 15; i++ {
		recs = append(recs, rec(model.SourceGitHub,
			fmt.Sprintf("g%02d", i),
			fmt.Sprintf("2024-03-%02dT10:00:00Z", i),
			model.ActorRef{ID: "alice"}))
	}
	gh := &fakeFetcher{src: model.SourceGitHub, recs: recs}
	agg := NewAggregator(zerolog.Nop(), gh)

	out, total, _ := agg.Aggregate(context.Background(), model.ListActivitiesRequest{
		Sources: []model.Source{model.SourceGitHub},
		Limit:   10,
		Offset:  5,
	}, emptyIndex())

	// Descending ranks 6 through 15: March 10th down to March 1st.
	require.Equal(t, 15, total)
	require.Len(t, out, 10)
	require.Equal(t, "g10", out[0].ID)
	require.Equal(t, "g01", out[9].ID)

	// Without a date filter the fetch is sized to limit+offset.
	require.Equal(t, 15, gh.gotLimit)
}

func TestAggregateOverfetchWithDateFilter(t *testing.T) {
	gh := &fakeFetcher{src: model.SourceGitHub}
	agg := NewAggregator(zerolog.Nop(), gh)
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	agg.Aggregate(context.Background(), model.ListActivitiesRequest{
		Sources: []model.Source{model.SourceGitHub},
		Limit:   10,
		Offset:  5,
		From:    &from,
	}, emptyIndex())
	require.Equal(t, 150, gh.gotLimit)

	// No limit means the fetcher's own cap.
	agg.Aggregate(context.Background(), model.ListActivitiesRequest{
		Sources: []model.Source{model.SourceGitHub},
		From:    &from,
	}, emptyIndex())
	require.Equal(t, 0, gh.gotLimit)
}

func TestAggregatePartialFailure(t *testing.T) {
	gh := &fakeFetcher{src: model.SourceGitHub, recs: []*model.RawActivity{
		rec(model.SourceGitHub, "g1", "2024-03-01T10:00:00Z", model.ActorRef{ID: "alice"}),
	}}
	sl := &fakeFetcher{src: model.SourceSlack, err: errors.New("slack timeout")}
	agg := NewAggregator(zerolog.Nop(), gh, sl)

	out, total, report := agg.Aggregate(context.Background(), model.ListActivitiesRequest{
		Sources: []model.Source{model.SourceGitHub, model.SourceSlack},
	}, emptyIndex())

	require.Equal(t, 1, total)
	require.Len(t, out, 1)
	require.Equal(t, []model.Source{model.SourceSlack}, report.Degraded())
}

func TestAggregateUnparseableSortsOldest(t *testing.T) {
	gh := &fakeFetcher{src: model.SourceGitHub, recs: []*model.RawActivity{
		rec(model.SourceGitHub, "bad", "not a time", model.ActorRef{ID: "alice"}),
		rec(model.SourceGitHub, "good", "2024-03-01T10:00:00Z", model.ActorRef{ID: "alice"}),
	}}
	agg := NewAggregator(zerolog.Nop(), gh)

	out, _, _ := agg.Aggregate(context.Background(), model.ListActivitiesRequest{
		Sources: []model.Source{model.SourceGitHub},
	}, emptyIndex())

	require.Equal(t, "good", out[0].ID)
	require.Equal(t, "bad", out[1].ID)
	require.Equal(t, "not a time", out[1].Timestamp)
}

func TestAggregateDailyAnalysisSentinel(t *testing.T) {
	da := &fakeFetcher{src: model.SourceDailyAnalysis, recs: []*model.RawActivity{
		{ID: "d1", Source: model.SourceDailyAnalysis, ActivityType: "daily_summary", TargetDate: "2024-03-01"},
	}}
	agg := NewAggregator(zerolog.Nop(), da)

	out, _, _ := agg.Aggregate(context.Background(), model.ListActivitiesRequest{
		Sources: []model.Source{model.SourceDailyAnalysis},
	}, emptyIndex())

	require.Len(t, out, 1)
	require.Equal(t, model.SystemMember, out[0].MemberName)
	require.Equal(t, "2024-03-01T00:00:00Z", out[0].Timestamp)
}

func TestAggregateMemberFilterSkipsUnmatchableSources(t *testing.T) {
	ix := mapping.BuildIndex([]*model.Identifier{
		{Source: model.SourceSlack, Value: "U0ALICE", MemberName: "Alice"},
		{Source: model.SourceDrive, Value: "alice@example.com", MemberName: "Alice"},
	})

	gh := &fakeFetcher{src: model.SourceGitHub}
	sl := &fakeFetcher{src: model.SourceSlack}
	rc := &fakeFetcher{src: model.SourceRecordings}
	da := &fakeFetcher{src: model.SourceDailyAnalysis}
	agg := NewAggregator(zerolog.Nop(), gh, sl, rc, da)

	_, _, report := agg.Aggregate(context.Background(), model.ListActivitiesRequest{
		Sources:    model.ActivitySources(),
		MemberName: "Alice",
	}, ix)

	// GitHub has no identifier for Alice and no display-name fallback, and
	// digests never belong to a member: both are skipped without a fetch.
	require.Zero(t, gh.calls)
	require.Zero(t, da.calls)

	// Slack matches by ID and by display-name catch-all.
	require.Equal(t, 1, sl.calls)
	require.Equal(t, []string{"U0ALICE"}, sl.gotFilt.Identifiers)
	require.Equal(t, "Alice", sl.gotFilt.MemberName)

	// Recordings borrow the Drive identifiers plus the name catch-all, so
	// participants without a Drive email on file still match.
	require.Equal(t, 1, rc.calls)
	require.Equal(t, []string{"alice@example.com"}, rc.gotFilt.Identifiers)
	require.Equal(t, "Alice", rc.gotFilt.MemberName)

	// Skipped sources do not appear in the report at all.
	for _, s := range report {
		require.NotEqual(t, model.SourceGitHub, s.Source)
		require.NotEqual(t, model.SourceDailyAnalysis, s.Source)
	}
}

func TestAggregateSystemMemberSeesDigests(t *testing.T) {
	da := &fakeFetcher{src: model.SourceDailyAnalysis, recs: []*model.RawActivity{
		{ID: "d1", Source: model.SourceDailyAnalysis, ActivityType: "daily_summary", TargetDate: "2024-03-01"},
	}}
	agg := NewAggregator(zerolog.Nop(), da)

	out, _, _ := agg.Aggregate(context.Background(), model.ListActivitiesRequest{
		Sources:    []model.Source{model.SourceDailyAnalysis},
		MemberName: model.SystemMember,
	}, emptyIndex())
	require.Len(t, out, 1)
}

func TestAggregateDefaultsToAllSources(t *testing.T) {
	gh := &fakeFetcher{src: model.SourceGitHub}
	sl := &fakeFetcher{src: model.SourceSlack}
	agg := NewAggregator(zerolog.Nop(), gh, sl)

	_, _, report := agg.Aggregate(context.Background(), model.ListActivitiesRequest{}, emptyIndex())

	// Registered fetchers are all queried; sources with no fetcher are
	// silently absent rather than errors.
	require.Equal(t, 1, gh.calls)
	require.Equal(t, 1, sl.calls)
	require.Len(t, report, 2)
}
