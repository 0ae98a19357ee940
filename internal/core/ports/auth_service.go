package ports

import (
	"context"
	"time"

	"github.com/fleetops/auth-service/internal/core/domain"
)

// RegisterInput carries a registration request. Role is untrusted text.
type RegisterInput struct {
	FullName string
	Email    string
	Password string
	Role     string
	Location string
	Plant    string
}

// AuthResult is returned by every successful authentication operation.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
	// Provisioned is true when a federated login created the account.
	Provisioned bool
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	AuthenticatePassword(ctx context.Context, email, password string) (*AuthResult, error)
	AuthenticateFederated(ctx context.Context, idToken string) (*AuthResult, error)
}
