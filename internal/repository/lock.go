package repository

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker serializes mutations of a named collection.
type Locker interface {
	Lock(ctx context.Context, name string) (unlock func(), err error)
}

// KeyedMutex is an in-process lock per collection name.
type KeyedMutex struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{slots: make(map[string]chan struct{})}
}

func (k *KeyedMutex) slot(name string) chan struct{} {
	k.mu.Lock()
	defer k.mu.Unlock()
	ch, ok := k.slots[name]
	if !ok {
		ch = make(chan struct{}, 1)
		k.slots[name] = ch
	}
	return ch
}

func (k *KeyedMutex) Lock(ctx context.Context, name string) (func(), error) {
	ch := k.slot(name)
	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-ch }) }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Only deletes the key if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker extends KeyedMutex across processes sharing one data
// directory. The Redis key expires after TTL so a crashed holder cannot
// wedge a collection forever.
type RedisLocker struct {
	client *redis.Client
	local  *KeyedMutex
	TTL    time.Duration
	Retry  time.Duration
	Prefix string
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{
		client: client,
		local:  NewKeyedMutex(),
		TTL:    10 * time.Second,
		Retry:  25 * time.Millisecond,
		Prefix: "collection_lock:",
	}
}

func (l *RedisLocker) Lock(ctx context.Context, name string) (func(), error) {
	unlockLocal, err := l.local.Lock(ctx, name)
	if err != nil {
		return nil, err
	}

	key := l.Prefix + name
	token := uuid.NewString()
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.TTL).Result()
		if err != nil {
			unlockLocal()
			return nil, fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			unlockLocal()
			return nil, ctx.Err()
		case <-time.After(l.Retry):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
				log.Printf("WARNING: failed to release %s: %v", key, err)
			}
			unlockLocal()
		})
	}, nil
}
