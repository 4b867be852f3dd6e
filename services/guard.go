package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Guard admits at most one in-flight request per key. Acquire returns ErrInFlight
// while another holder has not released the key; slots left behind by a crashed
// holder lapse after the TTL.
type Guard interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

type MemoryGuard struct {
	mu    sync.Mutex
	slots map[string]memorySlot
	ttl   time.Duration
	now   func() time.Time
}

type memorySlot struct {
	token   string
	expires time.Time
}

func NewMemoryGuard(ttl time.Duration) *MemoryGuard {
	return &MemoryGuard{slots: map[string]memorySlot{}, ttl: ttl, now: time.Now}
}

func (g *MemoryGuard) Acquire(ctx context.Context, key string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if slot, held := g.slots[key]; held && now.Before(slot.expires) {
		return nil, ErrInFlight
	}
	token := uuid.New().String()
	g.slots[key] = memorySlot{token: token, expires: now.Add(g.ttl)}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			if g.slots[key].token == token {
				delete(g.slots, key)
			}
			g.mu.Unlock()
		})
	}, nil
}

// releaseScript deletes the key only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

type RedisGuard struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisGuard(client redis.UniversalClient, ttl time.Duration) *RedisGuard {
	return &RedisGuard{client: client, prefix: "storefront:inflight:", ttl: ttl}
}

func (g *RedisGuard) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.New().String()
	ok, err := g.client.SetNX(ctx, g.prefix+key, token, g.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire in-flight slot: %w", err)
	}
	if !ok {
		return nil, ErrInFlight
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// the request context may already be cancelled
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = releaseScript.Run(ctx, g.client, []string{g.prefix + key}, token).Err()
		})
	}, nil
}
