package alert

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/wonny/breakwatch/pkg/redis"
)

// Ledger remembers which symbols were already notified
type Ledger interface {
	Seen(ctx context.Context, symbol string) (bool, error)
	Mark(ctx context.Context, symbol string) error
	Reset(ctx context.Context) error
}

// MemoryLedger is a process-scoped ledger; it is cleared on restart
type MemoryLedger struct {
	mu      sync.Mutex
	symbols map[string]time.Time
}

// NewMemoryLedger creates an empty in-memory ledger
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{symbols: make(map[string]time.Time)}
}

func (l *MemoryLedger) Seen(_ context.Context, symbol string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.symbols[symbol]
	return ok, nil
}

func (l *MemoryLedger) Mark(_ context.Context, symbol string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.symbols[symbol] = time.Now()
	return nil
}

func (l *MemoryLedger) Reset(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.symbols = make(map[string]time.Time)
	return nil
}

// Len returns the number of remembered symbols
func (l *MemoryLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.symbols)
}

// RedisLedger persists marks as "<prefix>:alerted:<symbol>" keys with a TTL
type RedisLedger struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisLedger creates a persistent ledger. ttl <= 0 keeps marks forever.
func NewRedisLedger(client *redis.Client, prefix string, ttl time.Duration) (*RedisLedger, error) {
	if client == nil || !client.Enabled() {
		return nil, errors.New("redis ledger requires an enabled redis client")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &RedisLedger{client: client, prefix: prefix, ttl: ttl}, nil
}

func (l *RedisLedger) key(symbol string) string {
	return fmt.Sprintf("%s:alerted:%s", l.prefix, strings.ToUpper(symbol))
}

func (l *RedisLedger) Seen(ctx context.Context, symbol string) (bool, error) {
	n, err := l.client.Redis().Exists(ctx, l.key(symbol)).Result()
	if err != nil {
		return false, fmt.Errorf("ledger lookup %s: %w", symbol, err)
	}
	return n > 0, nil
}

func (l *RedisLedger) Mark(ctx context.Context, symbol string) error {
	if err := l.client.Redis().Set(ctx, l.key(symbol), 1, l.ttl).Err(); err != nil {
		return fmt.Errorf("ledger mark %s: %w", symbol, err)
	}
	return nil
}

// Reset deletes every mark under the prefix
func (l *RedisLedger) Reset(ctx context.Context) error {
	rdb := l.client.Redis()
	var cursor uint64
	for {
		keys, next, err := rdb.Scan(ctx, cursor, l.prefix+":alerted:*", 100).Result()
		if err != nil && !errors.Is(err, goredis.Nil) {
			return fmt.Errorf("ledger scan: %w", err)
		}
		if len(keys) > 0 {
			if err := rdb.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("ledger reset: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
