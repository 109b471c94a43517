package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solstice-analytics/solstice/internal/facts"
	"github.com/solstice-analytics/solstice/internal/shared"
)

type stubRebuilder struct {
	result facts.RebuildResult
	err    error
	calls  int
}

func (s *stubRebuilder) Rebuild(ctx context.Context) (facts.RebuildResult, error) {
	s.calls++
	return s.result, s.err
}

func TestFactsRebuildHandleSuccess(t *testing.T) {
	svc := &stubRebuilder{result: facts.RebuildResult{RunID: "run-1", TotalRows: 3}}
	job := NewFactsRebuildJob(svc, nil)

	task, err := NewFactsRebuildTask("cron")
	require.NoError(t, err)

	assert.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, 1, svc.calls)
}

func TestFactsRebuildHandleSkipsWhenInProgress(t *testing.T) {
	svc := &stubRebuilder{err: shared.ErrRebuildInProgress}
	job := NewFactsRebuildJob(svc, nil)

	task, err := NewFactsRebuildTask("manual")
	require.NoError(t, err)

	assert.NoError(t, job.Handle(context.Background(), task), "an in-flight rebuild is not a retryable failure")
}

func TestFactsRebuildHandlePropagatesFailure(t *testing.T) {
	wantErr := errors.New("feed down")
	job := NewFactsRebuildJob(&stubRebuilder{err: wantErr}, nil)

	task, err := NewFactsRebuildTask("cron")
	require.NoError(t, err)

	assert.ErrorIs(t, job.Handle(context.Background(), task), wantErr)
}

func TestFactsRebuildHandleBadPayload(t *testing.T) {
	job := NewFactsRebuildJob(&stubRebuilder{}, nil)
	err := job.Handle(context.Background(), asynq.NewTask(TaskFactsRebuild, []byte("{not json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
