package ports

import (
	"time"

	"github.com/fleetops/auth-service/internal/core/domain"
)

// IssuedToken is an opaque signed bearer token.
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// TokenClaims are the assertions recovered from a validated token.
type TokenClaims struct {
	Subject   string
	Role      domain.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type TokenIssuer interface {
	Issue(user *domain.User) (*IssuedToken, error)
	TokenValidator
}

// TokenValidator fails with domain.ErrInvalidToken for any token it does not
// fully trust.
type TokenValidator interface {
	Validate(token string) (*TokenClaims, error)
}
