package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/stagehub-api/internal/observability"
	"github.com/noah-isme/stagehub-api/internal/service"
)

// ErrUnknownKind is returned for jobs the worker cannot run.
var ErrUnknownKind = errors.New("unknown job kind")

// Worker consumes CV jobs from the queue.
type Worker struct {
	queue    *Queue
	pipeline service.CVPipeline
	policy   RetryPolicy
	poll     time.Duration
	logger   zerolog.Logger
}

// NewWorker constructs a queue consumer.
func NewWorker(queue *Queue, pipeline service.CVPipeline, policy RetryPolicy, logger zerolog.Logger) *Worker {
	return &Worker{
		queue:    queue,
		pipeline: pipeline,
		policy:   policy,
		poll:     5 * time.Second,
		logger:   logger.With().Str("component", "cv_worker").Logger(),
	}
}

// Run consumes jobs one at a time until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info().Dur("poll", w.poll).Msg("cv worker started")
	for {
		if ctx.Err() != nil {
			w.logger.Info().Msg("cv worker stopped")
			return nil
		}

		job, ok, err := w.queue.Dequeue(ctx, w.poll)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			w.logger.Error().Err(err).Msg("failed to dequeue job")
			sleep(ctx, w.poll)
			continue
		}
		if !ok {
			continue
		}

		if err := w.Handle(ctx, job); err != nil {
			w.logger.Error().Err(err).Str("kind", string(job.Kind)).Uint("student_id", job.StudentID).Msg("job failed")
		}
	}
}

// Handle runs one job under the retry policy and records its outcome.
func (w *Worker) Handle(ctx context.Context, job Job) error {
	logger := w.logger.With().Str("kind", string(job.Kind)).Time("enqueued_at", job.EnqueuedAt).Logger()

	var run func(ctx context.Context) error
	switch job.Kind {
	case KindCVBatch:
		run = func(ctx context.Context) error {
			result, err := w.pipeline.ProcessPending(ctx)
			if err != nil {
				return err
			}
			logger.Info().
				Int("eligible", result.Eligible).
				Int("succeeded", result.Succeeded).
				Int("failed", result.Failed).
				Msg("cv batch job finished")
			return nil
		}
	case KindCVStudent:
		run = func(ctx context.Context) error {
			_, err := w.pipeline.ProcessStudent(ctx, job.StudentID)
			if errors.Is(err, service.ErrStudentNotFound) {
				return Permanent(err)
			}
			return err
		}
	default:
		observability.JobExecutions().WithLabelValues(string(job.Kind), "rejected").Inc()
		return fmt.Errorf("%w: %q", ErrUnknownKind, job.Kind)
	}

	if err := w.policy.Run(ctx, run); err != nil {
		observability.JobExecutions().WithLabelValues(string(job.Kind), "failed").Inc()
		return err
	}
	observability.JobExecutions().WithLabelValues(string(job.Kind), "succeeded").Inc()
	return nil
}

func sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
