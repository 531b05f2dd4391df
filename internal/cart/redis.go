package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"luxe-storefront/internal/domain"
)

// keyCart: cart:{session_id} -> JSON array of lines
const keyCart = "cart:%s"

// RedisPersister stores each session cart as one JSON value with a TTL that
// is refreshed on every save.
type RedisPersister struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisPersister(rdb *redis.Client, ttl time.Duration) *RedisPersister {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisPersister{rdb: rdb, ttl: ttl}
}

func (p *RedisPersister) Load(ctx context.Context, sessionID string) ([]domain.CartLine, error) {
	raw, err := p.rdb.Get(ctx, fmt.Sprintf(keyCart, sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("load cart %s: %w", sessionID, err)
	}
	var lines []domain.CartLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", sessionID, err)
	}
	return lines, nil
}

func (p *RedisPersister) Save(ctx context.Context, sessionID string, lines []domain.CartLine) error {
	key := fmt.Sprintf(keyCart, sessionID)
	if len(lines) == 0 {
		return p.rdb.Del(ctx, key).Err()
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encode cart %s: %w", sessionID, err)
	}
	return p.rdb.Set(ctx, key, raw, p.ttl).Err()
}

func (p *RedisPersister) Delete(ctx context.Context, sessionID string) error {
	return p.rdb.Del(ctx, fmt.Sprintf(keyCart, sessionID)).Err()
}
