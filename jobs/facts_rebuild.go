package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/solstice-analytics/solstice/internal/facts"
	"github.com/solstice-analytics/solstice/internal/shared"
)

// RebuildService describes the behaviour required to rebuild the fact set.
type RebuildService interface {
	Rebuild(ctx context.Context) (facts.RebuildResult, error)
}

// FactsRebuildJob runs scheduled or manually enqueued rebuilds.
type FactsRebuildJob struct {
	Service RebuildService
	Logger  *slog.Logger
}

// NewFactsRebuildJob constructs the job handler.
func NewFactsRebuildJob(service RebuildService, logger *slog.Logger) *FactsRebuildJob {
	return &FactsRebuildJob{Service: service, Logger: logger}
}

// Handle processes TaskFactsRebuild tasks. A rebuild already in flight is
// not an error worth retrying; the scheduled run covers it.
func (j *FactsRebuildJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload FactsRebuildPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	result, err := j.Service.Rebuild(ctx)
	if errors.Is(err, shared.ErrRebuildInProgress) {
		if j.Logger != nil {
			j.Logger.Info("skipping rebuild, one already running", slog.String("trigger", payload.Trigger))
		}
		return nil
	}
	if err != nil {
		if j.Logger != nil {
			j.Logger.Error("scheduled rebuild failed",
				slog.String("trigger", payload.Trigger),
				slog.Any("error", err))
		}
		return err
	}

	if j.Logger != nil {
		j.Logger.Info("scheduled rebuild complete",
			slog.String("trigger", payload.Trigger),
			slog.String("run_id", result.RunID),
			slog.Int("rows", result.TotalRows),
			slog.Duration("elapsed", result.Duration))
	}
	return nil
}
