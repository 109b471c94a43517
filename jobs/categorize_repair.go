package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/solstice-analytics/solstice/internal/categorize"
)

// RepairService describes the categorization repair behaviour.
type RepairService interface {
	Repair(ctx context.Context) (categorize.Result, error)
}

// CategorizeRepairJob runs the scheduled categorization fallback pass.
type CategorizeRepairJob struct {
	Service RepairService
	Logger  *slog.Logger
}

// NewCategorizeRepairJob constructs the job handler.
func NewCategorizeRepairJob(service RepairService, logger *slog.Logger) *CategorizeRepairJob {
	return &CategorizeRepairJob{Service: service, Logger: logger}
}

// Handle processes TaskCategorizeRepair tasks.
func (j *CategorizeRepairJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload CategorizeRepairPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	result, err := j.Service.Repair(ctx)
	if err != nil {
		if j.Logger != nil {
			j.Logger.Error("categorization repair failed",
				slog.String("trigger", payload.Trigger),
				slog.Any("error", err))
		}
		return err
	}

	if j.Logger != nil {
		j.Logger.Info("categorization repair complete",
			slog.String("trigger", payload.Trigger),
			slog.Int("examined", result.Examined),
			slog.Int("assigned", result.Assigned),
			slog.Int("needs_review", result.NeedsReview))
	}
	return nil
}
