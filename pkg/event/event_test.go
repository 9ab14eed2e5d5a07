package event_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/shashiranjanraj/tiffin/pkg/event"
	"github.com/stretchr/testify/assert"
)

func TestFireCallsListenersInOrder(t *testing.T) {
	b := event.NewBus()
	var got []string
	b.Listen("order.placed", func(_ context.Context, p any) { got = append(got, "a:"+p.(string)) })
	b.Listen("order.placed", func(_ context.Context, p any) { got = append(got, "b:"+p.(string)) })
	b.Listen("other", func(context.Context, any) { got = append(got, "other") })

	b.Fire(context.Background(), "order.placed", "42")

	assert.Equal(t, []string{"a:42", "b:42"}, got)
}

func TestPanickingListenerDoesNotStopOthers(t *testing.T) {
	b := event.NewBus()
	var calls atomic.Int32
	b.Listen("x", func(context.Context, any) { panic("boom") })
	b.Listen("x", func(context.Context, any) { calls.Add(1) })

	assert.NotPanics(t, func() { b.Fire(context.Background(), "x", nil) })
	assert.Equal(t, int32(1), calls.Load())
}

func TestFireAsyncSurvivesCancelledContext(t *testing.T) {
	b := event.NewBus()
	var seen atomic.Bool
	b.Listen("x", func(ctx context.Context, _ any) { seen.Store(ctx.Err() == nil) })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b.FireAsync(ctx, "x", nil)
	b.Wait()

	assert.True(t, seen.Load())
}

func TestFlush(t *testing.T) {
	b := event.NewBus()
	var calls atomic.Int32
	b.Listen("x", func(context.Context, any) { calls.Add(1) })
	b.Flush()
	b.Fire(context.Background(), "x", nil)
	assert.Zero(t, calls.Load())
}
