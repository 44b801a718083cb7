package matchmaking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/redis/go-redis/v9"
)

// Directory remembers which room each seated user belongs to, so a socket
// opened after a drop can find its way back.
type Directory interface {
	Bind(ctx context.Context, roomID string, userIDs []int64) error
	// Lookup returns "" when the user is not seated anywhere. A hit pushes
	// the binding's expiry out again, so only idle users are forgotten.
	Lookup(ctx context.Context, userID int64) (string, error)
	Release(ctx context.Context, roomID string, userIDs []int64) error
}

type RedisDirectory struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisDirectory(rdb *redis.Client, ttl time.Duration) *RedisDirectory {
	return &RedisDirectory{rdb: rdb, ttl: ttl}
}

func userKey(userID int64) string {
	return fmt.Sprintf("bigtwo:user:%d:room", userID)
}

func (d *RedisDirectory) Bind(ctx context.Context, roomID string, userIDs []int64) error {
	pipe := d.rdb.TxPipeline()
	for _, id := range userIDs {
		pipe.Set(ctx, userKey(id), roomID, d.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("bind room %s: %w", roomID, err)
	}
	return nil
}

func (d *RedisDirectory) Lookup(ctx context.Context, userID int64) (string, error) {
	roomID, err := d.rdb.GetEx(ctx, userKey(userID), d.ttl).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("lookup user %d: %w", userID, err)
	}
	return roomID, nil
}

// releaseScript deletes the binding only if it still points at the room
// being released.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (d *RedisDirectory) Release(ctx context.Context, roomID string, userIDs []int64) error {
	for _, id := range userIDs {
		if err := releaseScript.Run(ctx, d.rdb, []string{userKey(id)}, roomID).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("release user %d: %w", id, err)
		}
	}
	return nil
}

// MemoryDirectory keeps bindings in process, for single-node runs and tests.
// A zero ttl never expires.
type MemoryDirectory struct {
	clock quartz.Clock
	ttl   time.Duration

	mu    sync.Mutex
	rooms map[int64]binding
}

type binding struct {
	roomID  string
	expires time.Time
}

func NewMemoryDirectory(clock quartz.Clock, ttl time.Duration) *MemoryDirectory {
	return &MemoryDirectory{clock: clock, ttl: ttl, rooms: make(map[int64]binding)}
}

func (d *MemoryDirectory) expiry() time.Time {
	if d.ttl <= 0 {
		return time.Time{}
	}
	return d.clock.Now().Add(d.ttl)
}

func (d *MemoryDirectory) Bind(_ context.Context, roomID string, userIDs []int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range userIDs {
		d.rooms[id] = binding{roomID: roomID, expires: d.expiry()}
	}
	return nil
}

func (d *MemoryDirectory) Lookup(_ context.Context, userID int64) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.rooms[userID]
	if !ok {
		return "", nil
	}
	if !b.expires.IsZero() && !d.clock.Now().Before(b.expires) {
		delete(d.rooms, userID)
		return "", nil
	}
	b.expires = d.expiry()
	d.rooms[userID] = b
	return b.roomID, nil
}

func (d *MemoryDirectory) Release(_ context.Context, roomID string, userIDs []int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range userIDs {
		if d.rooms[id].roomID == roomID {
			delete(d.rooms, id)
		}
	}
	return nil
}
