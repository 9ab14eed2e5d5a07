package logger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mongoQueueSize = 4096
	mongoBatchSize = 50
	mongoFlushTick = 2 * time.Second
)

// promoted attributes are stored as top-level fields so operators can index
// and filter on them directly.
var promoted = map[string]bool{
	"request_id":  true,
	"order_id":    true,
	"customer_id": true,
}

// LogDocument is the shape written to the logs collection.
type LogDocument struct {
	Time       time.Time `bson:"time"`
	Level      string    `bson:"level"`
	Msg        string    `bson:"msg"`
	RequestID  string    `bson:"request_id,omitempty"`
	OrderID    string    `bson:"order_id,omitempty"`
	CustomerID string    `bson:"customer_id,omitempty"`
	Attrs      bson.M    `bson:"attrs,omitempty"`
}

func (d *LogDocument) set(key string, v slog.Value) {
	switch key {
	case "request_id":
		d.RequestID = v.String()
	case "order_id":
		d.OrderID = v.String()
	case "customer_id":
		d.CustomerID = v.String()
	default:
		if d.Attrs == nil {
			d.Attrs = bson.M{}
		}
		d.Attrs[key] = v.Resolve().Any()
	}
}

// batchWriter persists one batch of documents.
type batchWriter func(ctx context.Context, docs []any) error

// MongoHandler is an slog.Handler that ships records to MongoDB in batches
// from a background goroutine. Records are dropped when the buffer is full.
type MongoHandler struct {
	shared *mongoShared
	attrs  []slog.Attr
	group  string
}

type mongoShared struct {
	write  batchWriter
	queue  chan LogDocument
	done   chan struct{}
	closed sync.Once
	wg     sync.WaitGroup
	client *mongo.Client
}

// NewMongoHandler connects to uri and writes into db.collection.
func NewMongoHandler(uri, db, collection string) (*MongoHandler, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).
		SetConnectTimeout(5*time.Second).
		SetServerSelectionTimeout(5*time.Second).
		SetMaxPoolSize(10))
	if err != nil {
		return nil, fmt.Errorf("logger: mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("logger: mongo ping: %w", err)
	}

	col := client.Database(db).Collection(collection)
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "time", Value: -1}}},
		{Keys: bson.D{{Key: "order_id", Value: 1}}},
	})

	h := newMongoHandler(func(ctx context.Context, docs []any) error {
		_, err := col.InsertMany(ctx, docs)
		return err
	})
	h.shared.client = client
	return h, nil
}

func newMongoHandler(w batchWriter) *MongoHandler {
	s := &mongoShared{
		write: w,
		queue: make(chan LogDocument, mongoQueueSize),
		done:  make(chan struct{}),
	}
	s.wg.Add(1)
	go s.drain()
	return &MongoHandler{shared: s}
}

func (h *MongoHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *MongoHandler) Handle(_ context.Context, r slog.Record) error {
	doc := LogDocument{Time: r.Time, Level: r.Level.String(), Msg: r.Message}
	for _, a := range h.attrs {
		doc.set(h.key(a.Key), a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		doc.set(h.key(a.Key), a.Value)
		return true
	})

	select {
	case h.shared.queue <- doc:
	default:
	}
	return nil
}

func (h *MongoHandler) key(k string) string {
	if h.group == "" || promoted[k] {
		return k
	}
	return h.group + "." + k
}

func (h *MongoHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &MongoHandler{shared: h.shared, group: h.group}
	next.attrs = append(append(next.attrs, h.attrs...), attrs...)
	return next
}

func (h *MongoHandler) WithGroup(name string) slog.Handler {
	g := name
	if h.group != "" {
		g = h.group + "." + name
	}
	return &MongoHandler{shared: h.shared, attrs: h.attrs, group: g}
}

// Close flushes buffered records and disconnects. Safe to call twice.
func (h *MongoHandler) Close() {
	s := h.shared
	s.closed.Do(func() {
		close(s.done)
		s.wg.Wait()
		if s.client != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.client.Disconnect(ctx)
		}
	})
}

func (s *mongoShared) drain() {
	defer s.wg.Done()

	ticker := time.NewTicker(mongoFlushTick)
	defer ticker.Stop()

	batch := make([]any, 0, mongoBatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = s.write(ctx, batch)
		cancel()
		batch = make([]any, 0, mongoBatchSize)
	}

	for {
		select {
		case doc := <-s.queue:
			batch = append(batch, doc)
			if len(batch) >= mongoBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.done:
			for {
				select {
				case doc := <-s.queue:
					batch = append(batch, doc)
				default:
					flush()
					return
				}
			}
		}
	}
}
