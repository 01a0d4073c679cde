package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rahulpdr/membergate/internal/archive"
	"github.com/rahulpdr/membergate/internal/config"
	"github.com/rahulpdr/membergate/internal/content"
	"github.com/rahulpdr/membergate/internal/diag"
	"github.com/rahulpdr/membergate/internal/dialog"
	"github.com/rahulpdr/membergate/internal/engine"
	"github.com/rahulpdr/membergate/internal/httpapi"
	"github.com/rahulpdr/membergate/internal/observability"
	"github.com/rahulpdr/membergate/internal/oracle"
	"github.com/rahulpdr/membergate/internal/session"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config error", "error", err)
		os.Exit(1)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	transcripts, err := archive.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("transcript archive init failed", "error", err)
		os.Exit(1)
	}
	defer transcripts.Close()

	oracleClient, err := oracle.NewClient(oracle.Config{
		Mode:    cfg.OracleMode,
		APIKey:  cfg.GeminiAPIKey,
		APIURL:  cfg.GeminiAPIURL,
		Timeout: cfg.OracleTimeout,
	})
	if err != nil {
		log.Error("oracle client init failed", "error", err)
		os.Exit(1)
	}

	sessions := session.NewStore(cfg.SessionIdleTimeout)
	sessions.SetEvictHook(func(_ *session.Session) {
		metrics.SessionEvents.WithLabelValues("expired").Inc()
		metrics.ActiveSessions.Set(float64(sessions.ActiveCount()))
	})

	hub := diag.NewHub()
	corpus := content.NewLoader(cfg.ContentFile, log)
	if !corpus.Available() {
		log.Warn("content file unavailable at startup; authentication will fail until it exists",
			"path", cfg.ContentFile)
	}

	core := engine.New(engine.Config{
		Store:         sessions,
		Authenticator: dialog.NewAuthenticator(oracleClient, cfg.CommunityName),
		Responder:     dialog.NewResponder(oracleClient, cfg.CommunityName),
		Corpus:        corpus,
		Archive:       transcripts,
		Hub:           hub,
		Metrics:       metrics,
		Logger:        log,
		CommunityName: cfg.CommunityName,
	})

	api := httpapi.New(cfg, core, sessions, hub, metrics, log)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()
	sessions.StartJanitor(runCtx, time.Minute)

	go func() {
		log.Info("server listening",
			"addr", cfg.BindAddr,
			"oracle_mode", cfg.OracleMode,
			"today", dialog.TodayLine(time.Now()),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("listen error", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("shutdown signal received")

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		_ = httpServer.Close()
	}

	log.Info("shutdown complete")
}
