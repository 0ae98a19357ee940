package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/fleetops/auth-service/internal/core/domain"
	"github.com/fleetops/auth-service/internal/core/ports"
)

var _ ports.UserService = (*UserService)(nil)

// UserService serves public profiles, reading through an optional cache.
type UserService struct {
	users  ports.UserRepository
	cache  ports.ProfileCache
	logger zerolog.Logger
}

// NewUserService builds a UserService. cache may be nil.
func NewUserService(users ports.UserRepository, cache ports.ProfileCache, logger zerolog.Logger) *UserService {
	return &UserService{users: users, cache: cache, logger: logger}
}

// Profile returns the profile stored for email. Cache faults are logged and
// fall through to the store.
func (s *UserService) Profile(ctx context.Context, email string) (*domain.UserProfile, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, email)
		if err != nil {
			s.logger.Warn().Err(err).Str("email", email).Msg("profile cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	profile := user.Profile()
	if s.cache != nil {
		if err := s.cache.Set(ctx, profile); err != nil {
			s.logger.Warn().Err(err).Str("email", email).Msg("profile cache write failed")
		}
	}
	return &profile, nil
}
