package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskFactsRebuild triggers a full fact set rebuild.
	TaskFactsRebuild = "facts:rebuild"
	// TaskCategorizeRepair runs the categorization fallback pass.
	TaskCategorizeRepair = "categorize:repair"
)

// FactsRebuildPayload configures a rebuild run.
type FactsRebuildPayload struct {
	Trigger string `json:"trigger"`
}

// NewFactsRebuildTask constructs the rebuild task.
func NewFactsRebuildTask(trigger string) (*asynq.Task, error) {
	data, err := json.Marshal(FactsRebuildPayload{Trigger: trigger})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFactsRebuild, data), nil
}

// CategorizeRepairPayload configures a repair run.
type CategorizeRepairPayload struct {
	Trigger string `json:"trigger"`
}

// NewCategorizeRepairTask constructs the repair task.
func NewCategorizeRepairTask(trigger string) (*asynq.Task, error) {
	data, err := json.Marshal(CategorizeRepairPayload{Trigger: trigger})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCategorizeRepair, data), nil
}
