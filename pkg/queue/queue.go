// Package queue runs background jobs behind a pluggable driver (memory,
// Redis or AMQP).
//
//	type NotifyFoodMakerJob struct{ OrderID uint }
//	func (j *NotifyFoodMakerJob) Handle(ctx context.Context) error { ... }
//
//	queue.Register("notify_food_maker", func() queue.Job { return &NotifyFoodMakerJob{} })
//	queue.Dispatch(ctx, &NotifyFoodMakerJob{OrderID: 42})
//	queue.Work(ctx, 4) // blocks until ctx ends
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/tiffin/pkg/logger"
	"github.com/shashiranjanraj/tiffin/pkg/metrics"
	"github.com/shashiranjanraj/tiffin/pkg/workerpool"
	"gorm.io/gorm"
)

type Job interface {
	Handle(ctx context.Context) error
}

// Named lets a job choose its registry name; otherwise its Go type name
// is used.
type Named interface {
	JobName() string
}

// Message is one popped payload. Ack is nil for drivers that remove the
// payload on Pop.
type Message struct {
	Body []byte
	Ack  func() error
}

// Driver is the queue storage backend. Pop returns (nil, nil) when no job
// arrived before its internal timeout.
type Driver interface {
	Push(ctx context.Context, payload []byte) error
	Pop(ctx context.Context) (*Message, error)
	Close() error
}

type FailedJob struct {
	Type     string
	Payload  json.RawMessage
	Err      error
	FailedAt time.Time
	Attempts int
}

type Manager struct {
	mu          sync.RWMutex
	driver      Driver
	registry    map[string]func() Job
	failed      []FailedJob
	failedDB    *gorm.DB
	maxAttempts int
	backoff     func(attempt int) time.Duration
}

func NewManager(d Driver) *Manager {
	return &Manager{
		driver:      d,
		registry:    map[string]func() Job{},
		maxAttempts: 3,
		backoff:     func(attempt int) time.Duration { return time.Duration(attempt) * time.Second },
	}
}

var defaultManager = NewManager(NewMemoryDriver(1000))

// Default returns the process-wide manager.
func Default() *Manager { return defaultManager }

func SetDriver(d Driver) { defaultManager.SetDriver(d) }
func Register(name string, factory func() Job) { defaultManager.Register(name, factory) }
func Dispatch(ctx context.Context, job Job) error { return defaultManager.Dispatch(ctx, job) }
func Work(ctx context.Context, workers int) error { return defaultManager.Work(ctx, workers) }
func FailedJobs() []FailedJob { return defaultManager.FailedJobs() }
func UseDB(db *gorm.DB) { defaultManager.UseDB(db) }
func Close() error { return defaultManager.Close() }
func SetRetry(attempts int, backoff func(int) time.Duration) {
	defaultManager.SetRetry(attempts, backoff)
}

func (m *Manager) SetDriver(d Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.driver = d
}

// SetRetry sets the attempts per job and the delay before retry n.
func (m *Manager) SetRetry(attempts int, backoff func(int) time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if attempts < 1 {
		attempts = 1
	}
	m.maxAttempts = attempts
	if backoff != nil {
		m.backoff = backoff
	}
}

// Register makes a job type decodable by name.
func (m *Manager) Register(name string, factory func() Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registry[name] = factory
}

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func jobName(job Job) string {
	if n, ok := job.(Named); ok {
		return n.JobName()
	}
	return fmt.Sprintf("%T", job)
}

func (m *Manager) Dispatch(ctx context.Context, job Job) error {
	name := jobName(job)

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("queue: marshal job %s: %w", name, err)
	}
	env, err := json.Marshal(envelope{Type: name, Payload: payload})
	if err != nil {
		return fmt.Errorf("queue: marshal envelope: %w", err)
	}

	if err := m.currentDriver().Push(ctx, env); err != nil {
		return fmt.Errorf("queue: push %s: %w", name, err)
	}
	return nil
}

func (m *Manager) currentDriver() Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.driver
}

// Work pops jobs and runs them on a pool of workers until ctx ends. Jobs
// already handed to the pool finish before Work returns.
func (m *Manager) Work(ctx context.Context, workers int) error {
	pool := workerpool.New(workers)
	defer pool.Shutdown()

	logger.Info("queue: workers started", "count", workers)
	jobCtx := context.WithoutCancel(ctx)
	for {
		msg, err := m.currentDriver().Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Warn("queue: pop failed", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(500 * time.Millisecond):
			}
			continue
		}
		if msg == nil {
			continue
		}

		if err := pool.SubmitWait(func() { m.process(jobCtx, msg) }); err != nil {
			return err
		}
	}
}

func (m *Manager) process(ctx context.Context, msg *Message) {
	defer func() {
		if msg.Ack == nil {
			return
		}
		if err := msg.Ack(); err != nil {
			logger.Warn("queue: ack failed", "error", err)
		}
	}()

	var env envelope
	if err := json.Unmarshal(msg.Body, &env); err != nil {
		logger.Error("queue: bad envelope", "error", err)
		return
	}

	m.mu.RLock()
	factory, ok := m.registry[env.Type]
	m.mu.RUnlock()
	if !ok {
		logger.Warn("queue: unregistered job type", "type", env.Type)
		return
	}

	job := factory()
	if err := json.Unmarshal(env.Payload, job); err != nil {
		logger.Error("queue: unmarshal payload", "type", env.Type, "error", err)
		return
	}

	m.runWithRetry(ctx, job, env)
}

func (m *Manager) runWithRetry(ctx context.Context, job Job, env envelope) {
	m.mu.RLock()
	attempts, backoff := m.maxAttempts, m.backoff
	m.mu.RUnlock()

	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = job.Handle(ctx)
		if lastErr == nil {
			metrics.RecordQueueJob(env.Type, "success", start)
			logger.Debug("queue: job processed", "type", env.Type)
			return
		}
		if attempt < attempts {
			logger.Warn("queue: job failed, retrying", "type", env.Type, "attempt", attempt, "error", lastErr)
			time.Sleep(backoff(attempt))
		}
	}

	metrics.RecordQueueJob(env.Type, "failed", start)
	logger.Error("queue: job exhausted retries", "type", env.Type, "error", lastErr)
	m.persistFailed(ctx, env, lastErr, attempts)
}

func (m *Manager) FailedJobs() []FailedJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]FailedJob(nil), m.failed...)
}

func (m *Manager) Close() error {
	return m.currentDriver().Close()
}
