// Command fetch downloads IFRC GO field reports created since IFRC_CREATED_SINCE,
// attaches country centroid coordinates, and writes them to REPORTS_FILE.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/ifrc-field-report-etl/internal/adapter/httpadapter"
	"github.com/couchcryptid/ifrc-field-report-etl/internal/adapter/ifrc"
	"github.com/couchcryptid/ifrc-field-report-etl/internal/adapter/jsonfile"
	"github.com/couchcryptid/ifrc-field-report-etl/internal/config"
	"github.com/couchcryptid/ifrc-field-report-etl/internal/observability"
	"github.com/couchcryptid/ifrc-field-report-etl/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus"
)

const jobName = "ifrc_fetch"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateFetch(); err != nil {
		slog.Error("invalid fetch config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, jobName)
	metrics := observability.NewMetrics()

	client := ifrc.NewClient(cfg, metrics, logger)
	store := jsonfile.NewReportStore(cfg.ReportsFile)
	fetcher := pipeline.NewFetcher(client, client, store, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var srv *httpadapter.Server
	if cfg.HTTPAddr != "" {
		srv = httpadapter.NewServer(cfg.HTTPAddr, fetcher, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	logger.Info("fetch started",
		"base_url", cfg.IFRCBaseURL,
		"created_since", cfg.IFRCCreatedSince,
		"page_size", cfg.IFRCPageSize,
		"output", store.Path(),
	)
	result, runErr := fetcher.Run(ctx)
	if runErr != nil {
		logger.Error("fetch failed", "error", runErr)
	} else if !result.Complete() {
		logger.Warn("fetch incomplete, saved partial results", "reports", result.Reports, "output", store.Path())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := observability.PushMetrics(shutdownCtx, cfg.PushgatewayURL, jobName, prometheus.DefaultGatherer, logger); err != nil {
		logger.Error("metrics push error", "error", err)
	}
	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}

	if runErr != nil {
		cancel()
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
