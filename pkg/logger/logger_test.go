package logger

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	mu   sync.Mutex
	docs []LogDocument
}

func (c *captured) write(_ context.Context, docs []any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range docs {
		c.docs = append(c.docs, d.(LogDocument))
	}
	return nil
}

func TestMongoHandlerPromotesOrderFields(t *testing.T) {
	sink := &captured{}
	h := newMongoHandler(sink.write)

	log := slog.New(h).With("request_id", "req-1")
	log.Info("order placed", "order_id", 42, "customer_id", "cust-9", "total", "302")
	h.Close()

	require.Len(t, sink.docs, 1)
	doc := sink.docs[0]
	assert.Equal(t, "order placed", doc.Msg)
	assert.Equal(t, "INFO", doc.Level)
	assert.Equal(t, "req-1", doc.RequestID)
	assert.Equal(t, "42", doc.OrderID)
	assert.Equal(t, "cust-9", doc.CustomerID)
	assert.Equal(t, "302", doc.Attrs["total"])
}

func TestMongoHandlerGroupsPrefixKeys(t *testing.T) {
	sink := &captured{}
	h := newMongoHandler(sink.write)

	slog.New(h).WithGroup("pricing").Info("quote", "fee", 50)
	h.Close()
	h.Close()

	require.Len(t, sink.docs, 1)
	assert.Contains(t, sink.docs[0].Attrs, "pricing.fee")
}

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	m := NewMultiHandler(
		slog.NewTextHandler(&a, nil),
		slog.NewJSONHandler(&b, nil),
	)

	slog.New(m).With("request_id", "r").Info("hello")

	assert.Contains(t, a.String(), "request_id=r")
	assert.Contains(t, b.String(), `"request_id":"r"`)
}

func TestWithCtxFallsBackToBase(t *testing.T) {
	assert.Same(t, L, WithCtx(context.Background()))

	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := InjectLogger(context.Background(), custom)
	assert.Same(t, custom, WithCtx(ctx))
}
