package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fleetops/auth-service/internal/core/domain"
	"github.com/fleetops/auth-service/internal/core/ports"
)

const defaultProfileTTL = 5 * time.Minute

var _ ports.ProfileCache = (*ProfileCache)(nil)

// ProfileCache stores public user profiles keyed by email.
// Key format: profile:<email>. Password hashes are never cached.
type ProfileCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProfileCache creates a ProfileCache; ttl <= 0 selects defaultProfileTTL.
func NewProfileCache(client *redis.Client, ttl time.Duration) *ProfileCache {
	if ttl <= 0 {
		ttl = defaultProfileTTL
	}
	return &ProfileCache{client: client, ttl: ttl}
}

// Get returns (nil, nil) on a cache miss.
func (c *ProfileCache) Get(ctx context.Context, email string) (*domain.UserProfile, error) {
	raw, err := c.client.Get(ctx, key(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("profile cache get: %w", err)
	}

	var p domain.UserProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("profile cache decode: %w", err)
	}
	p.Role = domain.NormalizeRole(p.Role.String())
	return &p, nil
}

func (c *ProfileCache) Set(ctx context.Context, profile domain.UserProfile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("profile cache encode: %w", err)
	}
	return c.client.Set(ctx, key(profile.Email), raw, c.ttl).Err()
}

func key(email string) string {
	return "profile:" + email
}
