package observability

import (
	"log/slog"

	"github.com/couchcryptid/ifrc-field-report-etl/internal/config"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/google/uuid"
)

// NewLogger builds the process logger for one job run and installs it as the slog
// default. Every record carries the job name and a run id so log lines from the same
// batch run can be correlated.
func NewLogger(cfg *config.Config, job string) *slog.Logger {
	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat).With(
		"job", job,
		"run_id", uuid.NewString(),
	)
	slog.SetDefault(logger)
	return logger
}
