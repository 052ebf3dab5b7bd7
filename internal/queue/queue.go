package queue

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/unclebandit/postcampaign-backend/internal/model"
)

// TopicPostsChanged carries a campaign ID whenever one of its posts changes.
const TopicPostsChanged = "posts_changed"

// SendJob asks the worker to send one post. RequireStatus is checked again
// under the send lock, so a job for a post that failed or was pulled back to
// DRAFT after dispatch does nothing.
type SendJob struct {
	PostID              int              `json:"post_id"`
	AcknowledgeWarnings bool             `json:"acknowledge_warnings"`
	RequireStatus       model.PostStatus `json:"require_status,omitempty"`
}

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// InMemoryQueue is the in-process event bus. Each subscriber gets its own
// goroutine per message and is retried with a linear backoff.
type InMemoryQueue struct {
	mu          sync.Mutex
	handlers    map[string][]func(payload any) error
	backoff     time.Duration
	maxAttempts int
}

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		handlers:    make(map[string][]func(payload any) error),
		backoff:     500 * time.Millisecond,
		maxAttempts: 4,
	}
}

// Publish hands payload to every subscriber of topic. It fails only when
// nobody is listening.
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	for _, handler := range handlers {
		go q.deliver(topic, handler, payload)
	}
	return nil
}

func (q *InMemoryQueue) deliver(topic string, handler func(payload any) error, payload any) {
	for attempt := 1; ; attempt++ {
		err := handler(payload)
		if err == nil {
			return
		}
		if attempt >= q.maxAttempts {
			log.Printf("⚠️ %s: giving up on %v after %d attempts: %v", topic, payload, attempt, err)
			return
		}
		log.Printf("%s: attempt %d/%d for %v failed: %v", topic, attempt, q.maxAttempts, payload, err)
		time.Sleep(time.Duration(attempt) * q.backoff)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// StatsInvalidator is the slice of the stats cache the subscriber needs.
type StatsInvalidator interface {
	Invalidate(ctx context.Context, campaignID int)
}

// StartStatsInvalidationSubscriber drops cached campaign stats whenever a
// post in that campaign changes.
func StartStatsInvalidationSubscriber(q Queue, cache StatsInvalidator) error {
	return q.Subscribe(TopicPostsChanged, func(payload any) error {
		campaignID, ok := payload.(int)
		if !ok {
			log.Println("⚠️ Invalid payload type, expected int")
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		cache.Invalidate(ctx, campaignID)
		return nil
	})
}

// NotifyPostsChanged is the OnChanged callback the post service is wired with.
func NotifyPostsChanged(q Queue) func(campaignID int) {
	return func(campaignID int) {
		if err := q.Publish(TopicPostsChanged, campaignID); err != nil {
			log.Println("⚠️ failed to publish posts_changed:", err)
		}
	}
}
