package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/atjeh-times/news-api/internal/core/ports"
)

const verdictTTL = 24 * time.Hour

// VerdictCache stores email deliverability verdicts so repeat registrations
// do not hit the verification providers again.
// Key format: emailverdict:<lowercased email>
type VerdictCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewVerdictCache creates a VerdictCache wrapping the given Redis client.
func NewVerdictCache(client *redis.Client) *VerdictCache {
	return &VerdictCache{client: client, ttl: verdictTTL}
}

// Get returns the cached verdict for email, if any.
func (c *VerdictCache) Get(ctx context.Context, email string) (ports.EmailVerdict, bool, error) {
	raw, err := c.client.Get(ctx, verdictKey(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ports.EmailVerdict{}, false, nil
	}
	if err != nil {
		return ports.EmailVerdict{}, false, fmt.Errorf("verdict cache get: %w", err)
	}

	var v ports.EmailVerdict
	if err := json.Unmarshal(raw, &v); err != nil {
		return ports.EmailVerdict{}, false, fmt.Errorf("verdict cache decode: %w", err)
	}
	return v, true, nil
}

// Set records a verdict (expires after verdictTTL).
func (c *VerdictCache) Set(ctx context.Context, email string, v ports.EmailVerdict) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, verdictKey(email), raw, c.ttl).Err()
}

func verdictKey(email string) string {
	return "emailverdict:" + strings.ToLower(strings.TrimSpace(email))
}
