package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/starcheck/quality-panel/internal/config"
	"github.com/starcheck/quality-panel/internal/db"
	httpapi "github.com/starcheck/quality-panel/internal/http"
	"github.com/starcheck/quality-panel/internal/http/handlers"
	"github.com/starcheck/quality-panel/internal/service"
	"github.com/starcheck/quality-panel/internal/sources"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := log.Level(level).With().Str("service", "quality-panel").Logger()

	ctx := context.Background()

	var (
		indexStore handlers.IndexStore
		qIndex     sources.IndexReader
		pIndex     sources.IndexReader
		qSource    sources.RowSource
		pSource    sources.RowSource
	)

	switch cfg.SourceBackend {
	case config.BackendHTTP:
		client := &http.Client{Timeout: cfg.RequestTimeout}
		qIndex = sources.HTTPIndex{BaseURL: cfg.ConnectorURL, Client: client}
		pIndex = qIndex
		qSource = sources.HTTPSource{BaseURL: cfg.ConnectorURL, Sheet: cfg.QualitySheet, Client: client}
		pSource = sources.HTTPSource{BaseURL: cfg.ConnectorURL, Client: client}
	default:
		qIndex = sources.FileIndex{Dir: cfg.SourceDir, Sheet: cfg.IndexSheet}
		pIndex = qIndex
		qSource = sources.FileSource{Dir: cfg.SourceDir, Sheet: cfg.QualitySheet}
		pSource = sources.FileSource{Dir: cfg.SourceDir}
	}

	if cfg.DatabaseURL != "" {
		store, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect db")
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to ensure schema")
		}
		indexStore = store
		qIndex = store
		pIndex = store
		logger.Info().Msg("reading source indexes from postgres")
	}

	loader := &service.Loader{
		Quality:     service.Feed{Index: qIndex, IndexID: cfg.QualityIndex, Source: qSource},
		Production:  service.Feed{Index: pIndex, IndexID: cfg.ProductionIndex, Source: pSource},
		Concurrency: cfg.FetchConcurrency,
		Logger:      logger.With().Str("component", "loader").Logger(),
	}
	holder := &service.DatasetHolder{}
	reloader := &service.Reloader{
		Loader:  loader,
		Holder:  holder,
		Timeout: cfg.RequestTimeout,
		Logger:  logger.With().Str("component", "reloader").Logger(),
	}

	// A failed first load leaves the API up; /api/admin/reload can retry.
	if _, err := reloader.Reload(ctx); err != nil && !errors.Is(err, service.ErrNoQualitySource) {
		logger.Error().Err(err).Msg("initial load failed")
	}
	if err := reloader.Start(cfg.ReloadCron); err != nil {
		logger.Fatal().Err(err).Str("spec", cfg.ReloadCron).Msg("invalid RELOAD_CRON")
	}
	defer reloader.Stop()

	dashboard := &service.DashboardService{
		Holder:  holder,
		Company: cfg.CompanyFilter,
		Logger:  logger.With().Str("component", "dashboard").Logger(),
	}

	router := httpapi.Router(cfg, indexStore, dashboard, reloader, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
