package queue

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

// RabbitQueue implements Queue on top of durable RabbitMQ queues, one per topic.
// Subscribers receive the raw message body ([]byte).
type RabbitQueue struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	mu   sync.Mutex
}

func DialRabbitQueue(url string) (*RabbitQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	return &RabbitQueue{conn: conn, ch: ch}, nil
}

func (q *RabbitQueue) declare(topic string) (amqp.Queue, error) {
	return q.ch.QueueDeclare(
		topic, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
}

// Publish JSON-encodes payload and publishes it as a persistent message.
func (q *RabbitQueue) Publish(topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	dq, err := q.declare(topic)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	return q.ch.Publish(
		"",
		dq.Name,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Body:         body,
		},
	)
}

// Subscribe consumes the topic one message at a time. A handler error is
// logged and the message is dropped; sends are never retried automatically.
func (q *RabbitQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	dq, err := q.declare(topic)
	if err == nil {
		err = q.ch.Qos(1, 0, false)
	}
	var msgs <-chan amqp.Delivery
	if err == nil {
		msgs, err = q.ch.Consume(
			dq.Name,
			"",
			false, // autoAck = false for reliability
			false,
			false,
			false,
			nil,
		)
	}
	q.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	go func() {
		for d := range msgs {
			if err := handler(d.Body); err != nil {
				log.Printf("⚠️ %s message %s failed: %v", topic, d.MessageId, err)
				d.Nack(false, false)
				continue
			}
			d.Ack(false)
		}
		log.Printf("%s consumer stopped", topic)
	}()
	return nil
}

// DecodeSendJob turns a delivery body back into a SendJob.
func DecodeSendJob(payload any) (SendJob, error) {
	var job SendJob
	body, ok := payload.([]byte)
	if !ok {
		return job, fmt.Errorf("unexpected payload type %T", payload)
	}
	if err := json.Unmarshal(body, &job); err != nil {
		return job, fmt.Errorf("invalid job: %w", err)
	}
	if job.PostID <= 0 {
		return job, fmt.Errorf("invalid job: missing post_id")
	}
	return job, nil
}

func (q *RabbitQueue) Close() error {
	q.ch.Close()
	return q.conn.Close()
}

var (
	_ Queue = (*RabbitQueue)(nil)
	_ Queue = (*InMemoryQueue)(nil)
)
