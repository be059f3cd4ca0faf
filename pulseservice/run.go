// Package pulseservice wires the service together and runs it.
package pulseservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/pulseboard/pulseboard/internal/activity"
	"github.com/pulseboard/pulseboard/internal/api"
	"github.com/pulseboard/pulseboard/internal/api/recovery"
	"github.com/pulseboard/pulseboard/internal/collector"
	"github.com/pulseboard/pulseboard/internal/config"
	"github.com/pulseboard/pulseboard/internal/factory"
	"github.com/pulseboard/pulseboard/internal/health"
	"github.com/pulseboard/pulseboard/internal/logger"
	"github.com/pulseboard/pulseboard/internal/mapping"
	"github.com/pulseboard/pulseboard/internal/services"
	"github.com/pulseboard/pulseboard/internal/store"
)

// Run starts the HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("pulseboard")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("failed to load configuration")
		return err
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Bool("collectors", cfg.CollectorsEnabled).
		Msg("pulseboard starting")

	ctx, stop := newServerContext()
	defer stop()

	st, err := factory.NewStore(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("store unavailable")
		return err
	}

	cache := mapping.NewCache(st.Identifiers(), log)
	router := buildRouter(st, cache, log)

	svcHealth := startHealthCheckers(ctx, cfg, log, st)
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Err(err).Msg("startup aborted")
		return err
	}

	if cfg.CollectorsEnabled {
		startCollectors(ctx, cfg, log, st)
	}

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Stack().Err(err).Msg("server forced to shutdown")
			return err
		}
		log.Info().Msg("server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// buildRouter wires HTTP routes to handlers.
func buildRouter(st store.Store, cache *mapping.Cache, log zerolog.Logger) *mux.Router {
	root := mux.NewRouter()
	root.Use(recovery.Middleware)

	memberSvc := services.NewMemberService(st, cache, log)
	member := api.NewMemberHandler(memberSvc)
	root.HandleFunc("/api/members", member.CreateMember).Methods("POST")
	root.HandleFunc("/api/members", member.ListMembers).Methods("GET")
	root.HandleFunc("/api/members/{memberId}", member.GetMember).Methods("GET")
	root.HandleFunc("/api/members/{memberId}", member.RenameMember).Methods("PATCH")
	root.HandleFunc("/api/members/{memberId}", member.DeleteMember).Methods("DELETE")
	root.HandleFunc("/api/members/{memberId}/identifiers", member.AddIdentifier).Methods("POST")
	root.HandleFunc("/api/members/{memberId}/identifiers", member.ListIdentifiers).Methods("GET")
	root.HandleFunc("/api/members/{memberId}/identifiers", member.UpdateIdentifier).Methods("PUT")
	root.HandleFunc("/api/members/{memberId}/identifiers/{identifierId}", member.DeleteIdentifier).Methods("DELETE")

	agg := activity.NewAggregator(log, activity.StoreFetchers(st.Activities())...)
	activitySvc := services.NewActivityService(st, agg, cache)
	acts := api.NewActivityHandler(activitySvc)
	root.HandleFunc("/api/activities", acts.ListActivities).Methods("GET")
	root.HandleFunc("/api/members/{memberId}/activities", acts.MemberActivities).Methods("GET")
	root.HandleFunc("/api/resolve", acts.Resolve).Methods("GET")

	healthHandler := api.NewHealthHandler()
	root.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	return root
}

func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store) *health.ServiceHealthChecker {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	storeChecker := store.NewStoreHealthChecker(st, log, probeTimeout)
	go storeChecker.Start(ctx, interval)

	svcHealth := health.NewServiceHealthChecker(log, storeChecker)
	go svcHealth.Start(ctx, interval)
	api.BindServiceHealth(svcHealth.IsHealthy)
	return svcHealth
}

// waitUntilHealthy blocks until the first probe cycle reports healthy or the
// startup window expires. Checkers start unhealthy, so at least one full
// interval must be allowed.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	window := 2*time.Duration(cfg.HealthIntervalSeconds)*time.Second + 5*time.Second
	deadline := time.Now().Add(window)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("dependencies not healthy within %s", window)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func startCollectors(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store) {
	timeout := time.Duration(cfg.CollectorTimeoutSeconds) * time.Second
	var collectors []collector.Collector
	if cfg.GitHubOrg != "" {
		collectors = append(collectors, collector.NewGitHub(cfg.GitHubBaseURL, cfg.GitHubOrg, cfg.GitHubToken, timeout))
	}
	if cfg.SlackToken != "" && cfg.SlackChannel != "" {
		collectors = append(collectors, collector.NewSlack(cfg.SlackBaseURL, cfg.SlackToken, cfg.SlackChannel, timeout))
	}
	if len(collectors) == 0 {
		log.Warn().Msg("collectors enabled but none configured")
		return
	}
	runner := collector.NewRunner(st.Activities(), time.Duration(cfg.CollectIntervalSeconds)*time.Second, log, collectors...)
	go runner.Start(ctx)
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// newServerContext returns a cancellable context bound to SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
