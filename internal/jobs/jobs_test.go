package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/stagehub-api/internal/models"
	"github.com/noah-isme/stagehub-api/internal/service"
)

type fakePipeline struct {
	batchErrs  []error
	batches    int
	students   []uint
	studentErr error
	result     service.BatchResult
}

func (f *fakePipeline) ProcessStudent(ctx context.Context, studentID uint) (*models.CVSummary, error) {
	f.students = append(f.students, studentID)
	if f.studentErr != nil {
		return nil, f.studentErr
	}
	return &models.CVSummary{StudentProfileID: studentID, Processed: true}, nil
}

func (f *fakePipeline) ProcessPending(ctx context.Context) (service.BatchResult, error) {
	f.batches++
	if len(f.batchErrs) > 0 {
		err := f.batchErrs[0]
		f.batchErrs = f.batchErrs[1:]
		if err != nil {
			return service.BatchResult{}, err
		}
	}
	return f.result, nil
}

func newTestQueue(t *testing.T) (*Queue, *miniredis.Miniredis) {
	t.Helper()
	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewQueue(client, "test:jobs"), server
}

func TestRetryPolicyStopsOnSuccess(t *testing.T) {
	calls := 0
	err := RetryPolicy{MaxAttempts: 3, Backoff: time.Millisecond}.Run(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestRetryPolicyGivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	boom := errors.New("database down")
	err := RetryPolicy{MaxAttempts: 3, Backoff: time.Millisecond}.Run(context.Background(), func(ctx context.Context) error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 3, calls)
}

func TestRetryPolicyCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := RetryPolicy{MaxAttempts: 3, Backoff: time.Hour}.Run(ctx, func(ctx context.Context) error {
		calls++
		cancel()
		return errors.New("failed")
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}

func TestQueueRoundTripIsFIFO(t *testing.T) {
	queue, server := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, queue.EnqueueStudent(ctx, 7))
	require.NoError(t, queue.EnqueueBatch(ctx))
	require.True(t, server.Exists("test:jobs"))

	length, err := queue.Len(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, length)

	first, ok, err := queue.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, KindCVStudent, first.Kind)
	require.EqualValues(t, 7, first.StudentID)
	require.False(t, first.EnqueuedAt.IsZero())

	second, ok, err := queue.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, KindCVBatch, second.Kind)
}

func TestQueueSatisfiesEnqueuer(t *testing.T) {
	var _ service.CVJobEnqueuer = (*Queue)(nil)
	var _ service.CVBatchRunner = (*BatchRunner)(nil)
}

func TestWorkerHandleDispatchesByKind(t *testing.T) {
	queue, _ := newTestQueue(t)
	pipeline := &fakePipeline{}
	worker := NewWorker(queue, pipeline, RetryPolicy{MaxAttempts: 3, Backoff: time.Millisecond}, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, worker.Handle(ctx, Job{Kind: KindCVStudent, StudentID: 4}))
	require.Equal(t, []uint{4}, pipeline.students)

	pipeline.batchErrs = []error{errors.New("list failed"), nil}
	require.NoError(t, worker.Handle(ctx, Job{Kind: KindCVBatch}))
	require.Equal(t, 2, pipeline.batches)

	err := worker.Handle(ctx, Job{Kind: "mail.send"})
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestWorkerDoesNotRetryMissingStudent(t *testing.T) {
	queue, _ := newTestQueue(t)
	pipeline := &fakePipeline{studentErr: service.ErrStudentNotFound}
	worker := NewWorker(queue, pipeline, RetryPolicy{MaxAttempts: 3, Backoff: time.Hour}, zerolog.Nop())

	err := worker.Handle(context.Background(), Job{Kind: KindCVStudent, StudentID: 9})
	require.ErrorIs(t, err, service.ErrStudentNotFound)
	require.Equal(t, []uint{9}, pipeline.students)

	pipeline.students = nil
	pipeline.studentErr = errors.New("db unavailable")
	worker.policy.Backoff = time.Millisecond
	err = worker.Handle(context.Background(), Job{Kind: KindCVStudent, StudentID: 9})
	require.Error(t, err)
	require.Len(t, pipeline.students, 3)
}

func TestRetryPolicyStopsOnPermanentError(t *testing.T) {
	calls := 0
	cause := errors.New("gone")
	err := RetryPolicy{MaxAttempts: 5, Backoff: time.Hour}.Run(context.Background(), func(ctx context.Context) error {
		calls++
		return Permanent(cause)
	})
	require.Equal(t, cause, err)
	require.Equal(t, 1, calls)
	require.NoError(t, Permanent(nil))
}

func TestWorkerRunConsumesQueue(t *testing.T) {
	queue, _ := newTestQueue(t)
	pipeline := &fakePipeline{}
	worker := NewWorker(queue, pipeline, RetryPolicy{MaxAttempts: 1}, zerolog.Nop())
	worker.poll = 50 * time.Millisecond

	require.NoError(t, queue.EnqueueStudent(context.Background(), 11))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	require.Eventually(t, func() bool {
		length, err := queue.Len(context.Background())
		return err == nil && length == 0
	}, 2*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	require.Equal(t, []uint{11}, pipeline.students)
}

func TestBatchRunnerRetriesWholeJobOnly(t *testing.T) {
	pipeline := &fakePipeline{
		batchErrs: []error{errors.New("list failed")},
		result:    service.BatchResult{Eligible: 2, Processed: 2, Succeeded: 1, Failed: 1},
	}
	runner := NewBatchRunner(pipeline, RetryPolicy{MaxAttempts: 3, Backoff: time.Millisecond})

	result, err := runner.RunBatch(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, pipeline.batches)
	require.Equal(t, 1, result.Failed)
}
