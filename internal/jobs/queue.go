package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Kind identifies the work carried by a job.
type Kind string

const (
	// KindCVBatch processes every pending CV.
	KindCVBatch Kind = "cv.batch"
	// KindCVStudent processes a single student's CV.
	KindCVStudent Kind = "cv.student"
)

// DefaultQueueKey is the Redis list used when configuration is silent.
const DefaultQueueKey = "stagehub:jobs:cv"

// Job is the JSON payload pushed onto the queue.
type Job struct {
	Kind       Kind      `json:"kind"`
	StudentID  uint      `json:"student_id,omitempty"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Queue is a FIFO job list stored in Redis.
type Queue struct {
	client *redis.Client
	key    string
	now    func() time.Time
}

// NewQueue constructs a queue on the given list key.
func NewQueue(client *redis.Client, key string) *Queue {
	if key == "" {
		key = DefaultQueueKey
	}
	return &Queue{client: client, key: key, now: time.Now}
}

// Enqueue pushes a job to the tail of the queue.
func (q *Queue) Enqueue(ctx context.Context, job Job) error {
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = q.now().UTC()
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("enqueue %s: %w", job.Kind, err)
	}
	return nil
}

// EnqueueStudent schedules a single-student CV job.
func (q *Queue) EnqueueStudent(ctx context.Context, studentID uint) error {
	return q.Enqueue(ctx, Job{Kind: KindCVStudent, StudentID: studentID})
}

// EnqueueBatch schedules a CV batch.
func (q *Queue) EnqueueBatch(ctx context.Context) error {
	return q.Enqueue(ctx, Job{Kind: KindCVBatch})
}

// Dequeue blocks up to timeout for the oldest job. ok is false when the wait timed out.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (job Job, ok bool, err error) {
	values, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return Job{}, false, nil
	}
	if err != nil {
		return Job{}, false, err
	}
	if len(values) != 2 {
		return Job{}, false, fmt.Errorf("unexpected BRPOP reply of %d values", len(values))
	}
	if err := json.Unmarshal([]byte(values[1]), &job); err != nil {
		return Job{}, false, fmt.Errorf("decode job: %w", err)
	}
	return job, true, nil
}

// Len reports the number of waiting jobs.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}
