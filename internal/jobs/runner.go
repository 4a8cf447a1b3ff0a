package jobs

import (
	"context"

	"github.com/noah-isme/stagehub-api/internal/service"
)

// BatchRunner runs CV batches in-process under a retry policy.
type BatchRunner struct {
	pipeline service.CVPipeline
	policy   RetryPolicy
}

// NewBatchRunner constructs a runner for synchronous batches.
func NewBatchRunner(pipeline service.CVPipeline, policy RetryPolicy) *BatchRunner {
	return &BatchRunner{pipeline: pipeline, policy: policy}
}

// RunBatch returns the result of the last attempt. Per-student failures are
// part of the result and never trigger a retry.
func (r *BatchRunner) RunBatch(ctx context.Context) (service.BatchResult, error) {
	var result service.BatchResult
	err := r.policy.Run(ctx, func(ctx context.Context) error {
		var runErr error
		result, runErr = r.pipeline.ProcessPending(ctx)
		return runErr
	})
	return result, err
}
