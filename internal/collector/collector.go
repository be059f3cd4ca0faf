// Package collector pulls activity out of the source systems into the store.
// The aggregation core never talks to these; it only reads what they wrote.
package collector

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/pulseboard/pulseboard/internal/model"
	"github.com/pulseboard/pulseboard/internal/store"
)

// Collector pulls one source's recent activity. since bounds the pull window;
// implementations may return records older than since, the store deduplicates
// on document ID.
type Collector interface {
	Source() model.Source
	Collect(ctx context.Context, since time.Time) ([]*model.RawActivity, error)
}

// Runner drives all configured collectors on a fixed interval. A failing
// collector is logged and retried next tick; it never stops the runner.
type Runner struct {
	acts       store.Activities
	collectors []Collector
	interval   time.Duration
	log        zerolog.Logger

	lastPull map[model.Source]time.Time
}

func NewRunner(acts store.Activities, interval time.Duration, log zerolog.Logger, collectors ...Collector) *Runner {
	return &Runner{
		acts:       acts,
		collectors: collectors,
		interval:   interval,
		log:        log,
		lastPull:   make(map[model.Source]time.Time),
	}
}

// Start blocks until ctx is cancelled, pulling once immediately and then on
// every tick.
func (r *Runner) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.pullAll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.pullAll(ctx)
		}
	}
}

func (r *Runner) pullAll(ctx context.Context) {
	for _, c := range r.collectors {
		src := c.Source()
		since, ok := r.lastPull[src]
		if !ok {
			since = time.Now().UTC().Add(-24 * time.Hour)
		}
		recs, err := c.Collect(ctx, since)
		if err != nil {
			r.log.Error().Stack().Err(err).Str("source", string(src)).Msg("collector pull failed")
			continue
		}
		stored := 0
		for _, rec := range recs {
			if err := r.acts.Insert(ctx, rec); err != nil {
				r.log.Warn().Err(err).Str("source", string(src)).Msg("activity insert failed")
				continue
			}
			stored++
		}
		r.lastPull[src] = time.Now().UTC()
		r.log.Info().Str("source", string(src)).Int("fetched", len(recs)).Int("stored", stored).Msg("collector pull complete")
	}
}
