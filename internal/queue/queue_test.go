package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/postcampaign-backend/internal/model"
)

type fakeInvalidator struct {
	mu  sync.Mutex
	ids []int
	hit chan struct{}
}

func (f *fakeInvalidator) Invalidate(_ context.Context, campaignID int) {
	f.mu.Lock()
	f.ids = append(f.ids, campaignID)
	f.mu.Unlock()
	f.hit <- struct{}{}
}

func TestInMemoryQueue_NoSubscribers(t *testing.T) {
	q := NewInMemoryQueue()
	assert.Error(t, q.Publish("nobody", 1))
}

func TestInMemoryQueue_RetriesFailedHandler(t *testing.T) {
	q := NewInMemoryQueue()
	q.backoff = time.Millisecond

	var mu sync.Mutex
	calls := 0
	done := make(chan struct{})
	require.NoError(t, q.Subscribe("t", func(payload any) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls < 3 {
			return errors.New("boom")
		}
		close(done)
		return nil
	}))

	require.NoError(t, q.Publish("t", "x"))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not retried")
	}
	mu.Lock()
	assert.Equal(t, 3, calls)
	mu.Unlock()
}

func TestInMemoryQueue_GivesUpAfterMaxAttempts(t *testing.T) {
	q := NewInMemoryQueue()
	q.backoff = time.Millisecond
	q.maxAttempts = 2

	attempts := make(chan struct{}, 10)
	require.NoError(t, q.Subscribe("t", func(payload any) error {
		attempts <- struct{}{}
		return errors.New("boom")
	}))
	require.NoError(t, q.Publish("t", 1))

	for i := 0; i < 2; i++ {
		select {
		case <-attempts:
		case <-time.After(2 * time.Second):
			t.Fatalf("attempt %d not made", i+1)
		}
	}
	select {
	case <-attempts:
		t.Fatal("handler called after the last attempt")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNotifyPostsChanged_InvalidatesStats(t *testing.T) {
	q := NewInMemoryQueue()
	inv := &fakeInvalidator{hit: make(chan struct{}, 1)}
	require.NoError(t, StartStatsInvalidationSubscriber(q, inv))

	NotifyPostsChanged(q)(9)

	select {
	case <-inv.hit:
	case <-time.After(2 * time.Second):
		t.Fatal("invalidation not delivered")
	}
	inv.mu.Lock()
	assert.Equal(t, []int{9}, inv.ids)
	inv.mu.Unlock()
}

func TestDecodeSendJob(t *testing.T) {
	sent := SendJob{PostID: 5, AcknowledgeWarnings: true, RequireStatus: model.PostApproved}
	body, _ := json.Marshal(sent)
	job, err := DecodeSendJob(body)
	require.NoError(t, err)
	assert.Equal(t, sent, job)

	_, err = DecodeSendJob([]byte(`{"post_id":0}`))
	assert.Error(t, err)

	_, err = DecodeSendJob("not bytes")
	assert.Error(t, err)
}
