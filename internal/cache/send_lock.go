package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only if we still own it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisSendLock keeps two operators (or an operator and the worker) from
// sending the same post at once.
type RedisSendLock struct {
	Client *redis.Client
	TTL    time.Duration
}

func sendLockKey(postID int) string {
	return fmt.Sprintf("post_send_lock:%d", postID)
}

// Acquire returns ok=false when another send holds the lock.
func (l *RedisSendLock) Acquire(ctx context.Context, postID int) (func(), bool, error) {
	token := uuid.NewString()
	key := sendLockKey(postID)

	timeoutCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	set, err := l.Client.SetNX(timeoutCtx, key, token, l.TTL).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis SetNX failed: %w", err)
	}
	if !set {
		return nil, false, nil
	}

	release := func() {
		relCtx, relCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer relCancel()
		releaseScript.Run(relCtx, l.Client, []string{key}, token)
	}
	return release, true, nil
}

// LocalSendLock is the single-process fallback used when Redis is not configured.
type LocalSendLock struct {
	mu     sync.Mutex
	active map[int]bool
}

func NewLocalSendLock() *LocalSendLock {
	return &LocalSendLock{active: make(map[int]bool)}
}

func (l *LocalSendLock) Acquire(_ context.Context, postID int) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.active[postID] {
		return nil, false, nil
	}
	l.active[postID] = true

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.active, postID)
			l.mu.Unlock()
		})
	}, true, nil
}
