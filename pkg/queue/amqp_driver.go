package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const amqpQueueName = "tiffin.jobs"

// AMQPDriver publishes jobs to a durable RabbitMQ queue and consumes them
// with manual acks, so a job lost mid-run is redelivered.
type AMQPDriver struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string

	pubMu sync.Mutex

	consumeOnce sync.Once
	consumeErr  error
	deliveries  <-chan amqp.Delivery
}

// NewAMQPDriver dials url and declares the jobs queue.
func NewAMQPDriver(url string, prefetch int) (*AMQPDriver, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("queue/amqp: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("queue/amqp: open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(amqpQueueName, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("queue/amqp: declare %s: %w", amqpQueueName, err)
	}
	if prefetch > 0 {
		if err := ch.Qos(prefetch, 0, false); err != nil {
			conn.Close()
			return nil, fmt.Errorf("queue/amqp: qos: %w", err)
		}
	}
	return &AMQPDriver{conn: conn, ch: ch, queue: amqpQueueName}, nil
}

func (d *AMQPDriver) Push(ctx context.Context, payload []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	d.pubMu.Lock()
	defer d.pubMu.Unlock()
	err := d.ch.PublishWithContext(pubCtx, "", d.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         payload,
	})
	if err != nil {
		return fmt.Errorf("queue/amqp: publish: %w", err)
	}
	return nil
}

// Pop waits for the next delivery. The consumer is started on first use.
func (d *AMQPDriver) Pop(ctx context.Context) (*Message, error) {
	d.consumeOnce.Do(func() {
		d.deliveries, d.consumeErr = d.ch.Consume(d.queue, "tiffin-worker", false, false, false, false, nil)
	})
	if d.consumeErr != nil {
		return nil, fmt.Errorf("queue/amqp: consume: %w", d.consumeErr)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case msg, ok := <-d.deliveries:
		if !ok {
			return nil, fmt.Errorf("queue/amqp: delivery channel closed")
		}
		return &Message{
			Body: msg.Body,
			Ack:  func() error { return msg.Ack(false) },
		}, nil
	}
}

func (d *AMQPDriver) Close() error {
	if d.ch != nil {
		d.ch.Close()
	}
	if d.conn != nil {
		return d.conn.Close()
	}
	return nil
}
