package queue_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shashiranjanraj/tiffin/pkg/queue"
	"github.com/shashiranjanraj/tiffin/pkg/testkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	handled  atomic.Int32
	failures atomic.Int32
)

type countJob struct {
	N int `json:"n"`
}

func (j *countJob) JobName() string { return "count" }

func (j *countJob) Handle(ctx context.Context) error {
	handled.Add(int32(j.N))
	return nil
}

type brokenJob struct {
	Reason string `json:"reason"`
}

func (j *brokenJob) JobName() string { return "broken" }

func (j *brokenJob) Handle(ctx context.Context) error {
	failures.Add(1)
	return errors.New(j.Reason)
}

func newManager(t *testing.T) (*queue.Manager, context.CancelFunc, <-chan error) {
	t.Helper()
	m := queue.NewManager(queue.NewMemoryDriver(16))
	m.SetRetry(2, func(int) time.Duration { return time.Millisecond })
	m.Register("count", func() queue.Job { return &countJob{} })
	m.Register("broken", func() queue.Job { return &brokenJob{} })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Work(ctx, 2) }()
	return m, cancel, done
}

func TestDispatchRunsJob(t *testing.T) {
	handled.Store(0)
	m, cancel, done := newManager(t)

	require.NoError(t, m.Dispatch(context.Background(), &countJob{N: 3}))
	require.NoError(t, m.Dispatch(context.Background(), &countJob{N: 4}))

	assert.Eventually(t, func() bool { return handled.Load() == 7 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}

func TestFailingJobIsRetriedThenRecorded(t *testing.T) {
	failures.Store(0)
	db := testkit.NewDB(t, &queue.FailedJobRecord{})
	m, cancel, done := newManager(t)
	m.UseDB(db)

	require.NoError(t, m.Dispatch(context.Background(), &brokenJob{Reason: "webhook down"}))

	assert.Eventually(t, func() bool { return len(m.FailedJobs()) == 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, int32(2), failures.Load())
	failed := m.FailedJobs()[0]
	assert.Equal(t, "broken", failed.Type)
	assert.Equal(t, 2, failed.Attempts)
	assert.EqualError(t, failed.Err, "webhook down")

	var rows []queue.FailedJobRecord
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "broken", rows[0].JobType)
	assert.JSONEq(t, `{"reason":"webhook down"}`, rows[0].Payload)
	assert.Equal(t, "webhook down", rows[0].Error)
}

type unknownJob struct{}

func (unknownJob) Handle(context.Context) error { return nil }

func TestUnregisteredJobIsSkipped(t *testing.T) {
	handled.Store(0)
	m, cancel, done := newManager(t)

	require.NoError(t, m.Dispatch(context.Background(), unknownJob{}))
	require.NoError(t, m.Dispatch(context.Background(), &countJob{N: 1}))

	assert.Eventually(t, func() bool { return handled.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done
	assert.Empty(t, m.FailedJobs())
}

func TestMemoryDriverPushRespectsContext(t *testing.T) {
	d := queue.NewMemoryDriver(1)
	require.NoError(t, d.Push(context.Background(), []byte("a")))
	assert.Equal(t, 1, d.Len())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Push(ctx, []byte("b")), context.DeadlineExceeded)

	msg, err := d.Pop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", string(msg.Body))
	assert.Nil(t, msg.Ack)
}
