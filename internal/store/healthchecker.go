package store

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/pulseboard/pulseboard/internal/health"
)

// StoreHealthChecker probes the store periodically and caches the result.
type StoreHealthChecker struct {
	store        Store
	healthy      atomic.Int32
	log          zerolog.Logger
	probeTimeout time.Duration
}

func NewStoreHealthChecker(store Store, log zerolog.Logger, probeTimeout time.Duration) *StoreHealthChecker {
	hc := &StoreHealthChecker{store: store, log: log, probeTimeout: probeTimeout}
	hc.healthy.Store(0) // unhealthy until the first successful probe
	return hc
}

func (hc *StoreHealthChecker) Name() string { return "store" }

// IsHealthy returns the cached status without blocking.
func (hc *StoreHealthChecker) IsHealthy() bool { return hc.healthy.Load() == 1 }

// Start runs the probe loop until ctx is cancelled.
func (hc *StoreHealthChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	check := func() {
		to := hc.probeTimeout
		if to <= 0 {
			to = 2 * time.Second
		}
		probeCtx, cancel := context.WithTimeout(ctx, to)
		defer cancel()
		if hc.probe(probeCtx) {
			hc.healthy.Store(1)
		} else {
			hc.healthy.Store(0)
		}
	}

	check()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}

func (hc *StoreHealthChecker) probe(ctx context.Context) bool {
	if p, ok := hc.store.(health.HealthPinger); ok {
		if err := p.HealthPing(ctx); err != nil {
			hc.log.Warn().Err(err).Msg("store health probe failed")
			return false
		}
		return true
	}
	// No specialized ping: a cheap read stands in.
	if _, err := hc.store.Members().List(ctx); err != nil {
		hc.log.Warn().Err(err).Msg("store health probe failed")
		return false
	}
	return true
}
