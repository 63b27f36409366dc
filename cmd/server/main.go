// Package main runs the HTTP API: ad-hoc backtests, saved portfolios, and
// run history, backed by in-memory or PostgreSQL storage.
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

	"defi-portfolio-lab/internal/backtest"
	"defi-portfolio-lab/internal/config"
	"defi-portfolio-lab/internal/pricesource"
	"defi-portfolio-lab/internal/server"
	"defi-portfolio-lab/internal/storage"
	chstore "defi-portfolio-lab/internal/storage/clickhouse"
	"defi-portfolio-lab/internal/storage/memory"
	pgstore "defi-portfolio-lab/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("load config")
	}

	log := newLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Stores
	var portfolios storage.PortfolioStore = memory.NewPortfolioStore()
	var runs storage.BacktestRunStore = memory.NewBacktestRunStore()

	if cfg.StorageBackend == config.BackendPostgres {
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("connect to postgres")
		}
		defer pool.Close()

		portfolios = pgstore.NewPortfolioStore(pool)
		runs = pgstore.NewBacktestRunStore(pool)
		log.Info().Msg("using postgres storage")
	} else {
		log.Info().Msg("using in-memory storage")
	}

	// Price source for assets without inline prices
	var source pricesource.Source
	if cfg.ClickhouseDSN != "" {
		conn, err := chstore.NewConn(ctx, cfg.ClickhouseDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("connect to clickhouse")
		}
		defer conn.Close()

		source = pricesource.NewStoreSource(chstore.NewPricePointStore(conn))
		log.Info().Msg("using clickhouse price source")
	}

	runner := backtest.NewRunner(backtest.RunnerOptions{PriceSource: source})

	srv := server.New(server.Config{
		Port:           cfg.Port,
		Log:            log,
		Runner:         runner,
		Portfolios:     portfolios,
		Runs:           runs,
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
		DevMode:        cfg.DevMode,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		log.Error().Err(err).Msg("server failed")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var log zerolog.Logger
	if cfg.DevMode {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		log = zerolog.New(os.Stderr)
	}
	return log.Level(level).With().Timestamp().Logger()
}
