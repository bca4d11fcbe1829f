package observability

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// PushMetrics sends everything in gatherer to a Prometheus Pushgateway under the
// given job name. An empty url disables pushing.
func PushMetrics(ctx context.Context, url, job string, gatherer prometheus.Gatherer, logger *slog.Logger) error {
	if url == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(gatherer).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	logger.Info("metrics pushed", "pushgateway", url)
	return nil
}
