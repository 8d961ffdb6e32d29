package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	api "asset_analyst/pkg/api/analyst"
	"asset_analyst/pkg/core/analyst"
	"asset_analyst/pkg/core/config"
	"asset_analyst/pkg/core/store"
)

func main() {
	configPath := flag.String("config", "config/analyst.yaml", "Path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(cfg.Level())
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Persistence is optional: without it the service only computes.
	var repo api.Repository
	if cfg.Persist {
		if err := store.InitDB(ctx, cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer store.Close()
		r := store.NewAnalysisRepo(store.GetPool())
		if err := r.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to prepare schema")
		}
		repo = r
		log.Info().Msg("persistence enabled")
	}

	engine := analyst.NewEngine(analyst.WithLogger(log.Logger))
	handler := api.NewHandler(engine, repo, log.Logger)

	mux := http.NewServeMux()
	handler.Routes(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", cfg.Addr).Msg("analyst API listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server failed")
	}
}
