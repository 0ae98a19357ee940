// Package token issues and validates the service's signed bearer tokens.
//
// Tokens are stateless HS256 JWTs. The subject is the user's email, which
// downstream handlers use as the lookup key; expiry is the only
// invalidation mechanism.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fleetops/auth-service/internal/core/domain"
	"github.com/fleetops/auth-service/internal/core/ports"
	"github.com/fleetops/auth-service/pkg/idgen"
)

const (
	// MinSecretLength is the shortest HS256 key accepted at startup.
	MinSecretLength = 32
	DefaultTTL      = 24 * time.Hour
	DefaultIssuer   = "fleet-auth"
)

var ErrWeakSecret = errors.New("token: signing secret missing or shorter than 32 bytes")

var _ ports.TokenIssuer = (*JWTIssuer)(nil)

// Config holds the issuer settings.
type Config struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// Claims is the JWT payload.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewJWTIssuer fails when no usable signing key is configured; callers treat
// that as a fatal startup error.
func NewJWTIssuer(cfg Config) (*JWTIssuer, error) {
	if len(cfg.Secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = DefaultIssuer
	}
	return &JWTIssuer{
		secret: []byte(cfg.Secret),
		ttl:    ttl,
		issuer: issuer,
		now:    time.Now,
	}, nil
}

// Issue signs a token for user with subject = email.
func (i *JWTIssuer) Issue(user *domain.User) (*ports.IssuedToken, error) {
	now := i.now().UTC().Truncate(time.Second)
	exp := now.Add(i.ttl)

	claims := Claims{
		Role: user.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        idgen.NewAt(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &ports.IssuedToken{Value: signed, ExpiresAt: exp}, nil
}

// Validate checks algorithm, signature, issuer and expiry, and that the
// embedded role is a canonical member of the role set. Every failure maps to
// domain.ErrInvalidToken.
func (i *JWTIssuer) Validate(raw string) (*ports.TokenClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(i.issuer),
		jwt.WithTimeFunc(i.now),
	)

	var claims Claims
	if _, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	role, ok := domain.ParseRole(claims.Role)
	if !ok {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidToken, claims.Role)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", domain.ErrInvalidToken)
	}

	out := &ports.TokenClaims{
		Subject:   claims.Subject,
		Role:      role,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}
