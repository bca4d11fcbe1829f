// Command aggregate reads REPORTS_FILE, groups reports by month and rounded
// location, keeps the busiest MAX_LOCATIONS_PER_MONTH locations per month, and writes
// AGGREGATED_FILE. With KAFKA_ENABLED=true each month is also published to KAFKA_TOPIC.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/ifrc-field-report-etl/internal/adapter/jsonfile"
	kafkaadapter "github.com/couchcryptid/ifrc-field-report-etl/internal/adapter/kafka"
	"github.com/couchcryptid/ifrc-field-report-etl/internal/config"
	"github.com/couchcryptid/ifrc-field-report-etl/internal/observability"
	"github.com/couchcryptid/ifrc-field-report-etl/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus"
)

const jobName = "ifrc_aggregate"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, jobName)
	metrics := observability.NewMetrics()

	var publisher pipeline.MonthPublisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	aggregator := pipeline.NewAggregator(
		jsonfile.NewReportStore(cfg.ReportsFile),
		jsonfile.NewMonthStore(cfg.AggregatedFile),
		publisher,
		cfg.MaxLocationsPerMonth,
		logger,
		metrics,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("aggregation started",
		"input", cfg.ReportsFile,
		"output", cfg.AggregatedFile,
		"max_locations_per_month", cfg.MaxLocationsPerMonth,
	)
	_, runErr := aggregator.Run(ctx)
	if runErr != nil {
		logger.Error("aggregation failed", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := observability.PushMetrics(shutdownCtx, cfg.PushgatewayURL, jobName, prometheus.DefaultGatherer, logger); err != nil {
		logger.Error("metrics push error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	if runErr != nil {
		cancel()
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
