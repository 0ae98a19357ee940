package ports

import (
	"context"

	"github.com/fleetops/auth-service/internal/core/domain"
)

// ProfileCache is a best-effort read-through cache of public profiles.
// Get returns (nil, nil) on a miss.
type ProfileCache interface {
	Get(ctx context.Context, email string) (*domain.UserProfile, error)
	Set(ctx context.Context, profile domain.UserProfile) error
}

type UserService interface {
	Profile(ctx context.Context, email string) (*domain.UserProfile, error)
}
