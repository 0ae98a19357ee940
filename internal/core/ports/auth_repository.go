package ports

import (
	"context"

	"github.com/fleetops/auth-service/internal/core/domain"
)

// UserRepository is the credential store. Implementations must enforce email
// uniqueness in storage: Save fails with domain.ErrDuplicateEmail for a
// second record with the same email, including under concurrent writers.
type UserRepository interface {
	// FindByEmail returns domain.ErrUserNotFound when no record matches.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Save(ctx context.Context, user *domain.User) (*domain.User, error)
}
