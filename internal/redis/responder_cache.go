package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/divyanshu-1/RoadX/internal/domain"

	goredis "github.com/redis/go-redis/v9"
)

// ResponderCache is a read-through cache of responder range scans, keyed by
// (kind, outer geohash prefix). A miss returns (nil, false, nil).
type ResponderCache struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewResponderCache(r *Redis, ttl time.Duration) *ResponderCache {
	return &ResponderCache{
		client: r.Client,
		ttl:    ttl,
	}
}

func cacheKey(kind domain.ResponderKind, prefix string) string {
	return fmt.Sprintf("responders:%s:%s", kind, prefix)
}

func (c *ResponderCache) Get(ctx context.Context, kind domain.ResponderKind, prefix string) ([]domain.Responder, bool, error) {
	data, err := c.client.Get(ctx, cacheKey(kind, prefix)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var responders []domain.Responder
	if err := json.Unmarshal(data, &responders); err != nil {
		return nil, false, err
	}

	return responders, true, nil
}

func (c *ResponderCache) Set(ctx context.Context, kind domain.ResponderKind, prefix string, responders []domain.Responder) error {
	b, err := json.Marshal(responders)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(kind, prefix), b, c.ttl).Err()
}
