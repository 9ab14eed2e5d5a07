// Package schedule runs recurring maintenance tasks such as purging expired
// idempotency keys.
//
//	schedule.Every(time.Hour).Name("idempotency:purge").WithoutOverlapping().Run(purge)
//	schedule.Cron("0 3 * * *").Name("report").Run(report)
//	schedule.Start(ctx)
package schedule

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/tiffin/pkg/logger"
)

// Task receives a context that is cancelled when the scheduler stops.
type Task func(ctx context.Context) error

type entry struct {
	name      string
	interval  time.Duration
	cron      []string
	task      Task
	noOverlap bool

	mu      sync.Mutex
	lastRun time.Time
	running bool
}

type Scheduler struct {
	mu      sync.Mutex
	entries []*entry
	wg      sync.WaitGroup
}

func New() *Scheduler { return &Scheduler{} }

var defaultScheduler = New()

func Default() *Scheduler { return defaultScheduler }

type Builder struct {
	s *Scheduler
	e *entry
}

func Every(d time.Duration) *Builder { return defaultScheduler.Every(d) }
func Hourly() *Builder               { return defaultScheduler.Every(time.Hour) }
func Cron(expr string) *Builder      { return defaultScheduler.Cron(expr) }
func Start(ctx context.Context)      { defaultScheduler.Start(ctx) }
func List() []string                 { return defaultScheduler.List() }

func (s *Scheduler) Every(d time.Duration) *Builder {
	return &Builder{s: s, e: &entry{interval: d}}
}

// Cron takes a five-field expression (minute hour day month weekday). Each
// field is *, */n, a-b, n or a comma list of those.
func (s *Scheduler) Cron(expr string) *Builder {
	return &Builder{s: s, e: &entry{cron: strings.Fields(expr)}}
}

func (b *Builder) Name(name string) *Builder {
	b.e.name = name
	return b
}

// WithoutOverlapping skips a run while the previous one is still going.
func (b *Builder) WithoutOverlapping() *Builder {
	b.e.noOverlap = true
	return b
}

func (b *Builder) Run(task Task) error {
	if b.e.cron != nil && len(b.e.cron) != 5 {
		return fmt.Errorf("schedule: cron expression needs 5 fields, got %d", len(b.e.cron))
	}
	if b.e.cron == nil && b.e.interval <= 0 {
		return fmt.Errorf("schedule: interval must be positive")
	}
	b.e.task = task

	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if b.e.name == "" {
		b.e.name = fmt.Sprintf("task-%d", len(b.s.entries)+1)
	}
	b.s.entries = append(b.s.entries, b.e)
	return nil
}

// Start ticks every second in the background until ctx ends.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		logger.Info("schedule: started", "tasks", len(s.List()))
		for {
			select {
			case <-ctx.Done():
				logger.Info("schedule: stopped")
				return
			case now := <-ticker.C:
				s.RunDue(ctx, now)
			}
		}
	}()
}

// RunDue launches every task due at now. Interval tasks are due on their
// first check; cron tasks fire at most once per matching minute.
func (s *Scheduler) RunDue(ctx context.Context, now time.Time) {
	s.mu.Lock()
	current := append([]*entry(nil), s.entries...)
	s.mu.Unlock()

	for _, e := range current {
		if e.due(now) {
			s.dispatch(ctx, e, now)
		}
	}
}

// RunAll runs every task once and waits for them.
func (s *Scheduler) RunAll(ctx context.Context) {
	s.mu.Lock()
	current := append([]*entry(nil), s.entries...)
	s.mu.Unlock()

	now := time.Now()
	for _, e := range current {
		s.dispatch(ctx, e, now)
	}
	s.Wait()
}

// Wait blocks until running tasks finish.
func (s *Scheduler) Wait() { s.wg.Wait() }

func (e *entry) due(now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cron != nil {
		if !e.lastRun.IsZero() && e.lastRun.Truncate(time.Minute).Equal(now.Truncate(time.Minute)) {
			return false
		}
		return matchCron(e.cron, now)
	}
	return e.lastRun.IsZero() || now.Sub(e.lastRun) >= e.interval
}

func (s *Scheduler) dispatch(ctx context.Context, e *entry, now time.Time) {
	e.mu.Lock()
	if e.noOverlap && e.running {
		e.mu.Unlock()
		logger.Warn("schedule: previous run still active, skipping", "task", e.name)
		return
	}
	e.running = true
	e.lastRun = now
	e.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			e.mu.Lock()
			e.running = false
			e.mu.Unlock()
			if r := recover(); r != nil {
				logger.Error("schedule: task panicked", "task", e.name, "panic", fmt.Sprintf("%v", r))
			}
		}()

		start := time.Now()
		if err := e.task(ctx); err != nil {
			logger.Error("schedule: task failed", "task", e.name, "error", err)
			return
		}
		logger.Debug("schedule: task done", "task", e.name, "took", time.Since(start))
	}()
}

// List describes the registered tasks, one per line.
func (s *Scheduler) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		freq := strings.Join(e.cron, " ")
		if e.cron == nil {
			freq = "every " + e.interval.String()
		}
		out = append(out, fmt.Sprintf("%-24s %s", e.name, freq))
	}
	return out
}

func matchCron(fields []string, t time.Time) bool {
	values := [5]int{t.Minute(), t.Hour(), t.Day(), int(t.Month()), int(t.Weekday())}
	for i, f := range fields {
		if !matchField(f, values[i]) {
			return false
		}
	}
	return true
}

func matchField(field string, val int) bool {
	for _, part := range strings.Split(field, ",") {
		if matchPart(part, val) {
			return true
		}
	}
	return false
}

func matchPart(part string, val int) bool {
	switch {
	case part == "*":
		return true
	case strings.HasPrefix(part, "*/"):
		step, err := strconv.Atoi(part[2:])
		return err == nil && step > 0 && val%step == 0
	case strings.Contains(part, "-"):
		lo, hi, _ := strings.Cut(part, "-")
		a, err1 := strconv.Atoi(lo)
		b, err2 := strconv.Atoi(hi)
		return err1 == nil && err2 == nil && val >= a && val <= b
	default:
		n, err := strconv.Atoi(part)
		return err == nil && n == val
	}
}
