package queue

import "context"

// MemoryDriver is a channel-backed, non-durable queue for development and
// tests.
type MemoryDriver struct {
	ch chan []byte
}

func NewMemoryDriver(buffer int) *MemoryDriver {
	return &MemoryDriver{ch: make(chan []byte, buffer)}
}

// Push blocks while the buffer is full.
func (d *MemoryDriver) Push(ctx context.Context, payload []byte) error {
	select {
	case d.ch <- payload:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *MemoryDriver) Pop(ctx context.Context) (*Message, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case payload := <-d.ch:
		return &Message{Body: payload}, nil
	}
}

// Len reports jobs waiting in the buffer.
func (d *MemoryDriver) Len() int { return len(d.ch) }

func (d *MemoryDriver) Close() error { return nil }
