// Package event is an in-process publish/subscribe bus. Listeners run
// synchronously with Fire or on their own goroutine with FireAsync; Wait
// blocks until async listeners are done (used on shutdown and in tests).
package event

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/shashiranjanraj/tiffin/pkg/logger"
)

type Listener func(ctx context.Context, payload any)

type Bus struct {
	mu        sync.RWMutex
	listeners map[string][]Listener
	inflight  sync.WaitGroup
}

func NewBus() *Bus {
	return &Bus{listeners: map[string][]Listener{}}
}

var defaultBus = NewBus()

// Default returns the process-wide bus used by the package-level helpers.
func Default() *Bus { return defaultBus }

func Listen(name string, l Listener)                     { defaultBus.Listen(name, l) }
func Fire(ctx context.Context, name string, payload any) { defaultBus.Fire(ctx, name, payload) }
func FireAsync(ctx context.Context, name string, payload any) {
	defaultBus.FireAsync(ctx, name, payload)
}
func Wait()  { defaultBus.Wait() }
func Flush() { defaultBus.Flush() }

func (b *Bus) Listen(name string, l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[name] = append(b.listeners[name], l)
}

func (b *Bus) snapshot(name string) []Listener {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Listener(nil), b.listeners[name]...)
}

// Fire calls every listener for name in registration order. A panicking
// listener is logged and does not stop the others.
func (b *Bus) Fire(ctx context.Context, name string, payload any) {
	for _, l := range b.snapshot(name) {
		call(ctx, name, l, payload)
	}
}

// FireAsync detaches from ctx cancellation so listeners outlive the
// request that fired them.
func (b *Bus) FireAsync(ctx context.Context, name string, payload any) {
	ctx = context.WithoutCancel(ctx)
	for _, l := range b.snapshot(name) {
		b.inflight.Add(1)
		go func(l Listener) {
			defer b.inflight.Done()
			call(ctx, name, l, payload)
		}(l)
	}
}

func (b *Bus) Wait() { b.inflight.Wait() }

// Flush drops every listener.
func (b *Bus) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = map[string][]Listener{}
}

func call(ctx context.Context, name string, l Listener, payload any) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithCtx(ctx).Error("event: listener panicked",
				"event", name, "panic", fmt.Sprintf("%v", r), "stack", string(debug.Stack()))
		}
	}()
	l(ctx, payload)
}
