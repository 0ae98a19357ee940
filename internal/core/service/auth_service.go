package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/fleetops/auth-service/internal/core/domain"
	"github.com/fleetops/auth-service/internal/core/ports"
	"github.com/fleetops/auth-service/pkg/idgen"
)

// dummyPassword is hashed once at construction. Password logins for unknown
// emails verify against its digest so that they cost as much as a real
// mismatch.
const dummyPassword = "fleet-auth-timing-equaliser"

// AuthDeps groups the collaborators of AuthService.
type AuthDeps struct {
	Users      ports.UserRepository
	Hasher     ports.PasswordHasher
	Tokens     ports.TokenIssuer
	Identities ports.IdentityVerifier
	// Placeholder returns the random secret hashed into federated accounts.
	Placeholder func() (string, error)
}

var _ ports.AuthService = (*AuthService)(nil)

// AuthService orchestrates registration, password login and federated login.
// It holds no per-user state; uniqueness is left to the UserRepository.
type AuthService struct {
	users       ports.UserRepository
	hasher      ports.PasswordHasher
	tokens      ports.TokenIssuer
	identities  ports.IdentityVerifier
	placeholder func() (string, error)
	dummyDigest string
	now         func() time.Time
	logger      zerolog.Logger
}

func NewAuthService(ctx context.Context, deps AuthDeps, logger zerolog.Logger) (*AuthService, error) {
	if deps.Users == nil || deps.Hasher == nil || deps.Tokens == nil || deps.Identities == nil || deps.Placeholder == nil {
		return nil, errors.New("auth service: missing dependency")
	}

	dummy, err := deps.Hasher.Hash(ctx, dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("auth service: hash dummy password: %w", err)
	}

	return &AuthService{
		users:       deps.Users,
		hasher:      deps.Hasher,
		tokens:      deps.Tokens,
		identities:  deps.Identities,
		placeholder: deps.Placeholder,
		dummyDigest: dummy,
		now:         func() time.Time { return time.Now().UTC() },
		logger:      logger,
	}, nil
}

// Register creates a local account and signs the caller in. The requested
// role is normalised; unknown values become USER.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}

	digest, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &domain.User{
		ID:           idgen.NewAt(now),
		FullName:     strings.TrimSpace(in.FullName),
		Email:        email,
		PasswordHash: digest,
		Role:         domain.NormalizeRole(in.Role),
		Location:     in.Location,
		Plant:        in.Plant,
		Provider:     domain.ProviderLocal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	saved, err := s.users.Save(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("save user: %w", err)
	}

	s.logger.Info().Str("email", saved.Email).Str("role", saved.Role.String()).Msg("user registered")
	return s.result(saved, false)
}

// AuthenticatePassword signs in a local account. An unknown email and a
// wrong password both yield domain.ErrInvalidCredentials after one hash
// comparison.
func (s *AuthService) AuthenticatePassword(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = strings.TrimSpace(email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("find user: %w", err)
		}
		if _, verr := s.hasher.Verify(ctx, password, s.dummyDigest); verr != nil {
			return nil, fmt.Errorf("verify password: %w", verr)
		}
		s.logger.Debug().Msg("password login for unknown email")
		return nil, domain.ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.logger.Debug().Str("email", user.Email).Msg("password mismatch")
		return nil, domain.ErrInvalidCredentials
	}

	return s.result(user, false)
}

// AuthenticateFederated signs in the holder of a provider ID token,
// provisioning an account on first use.
func (s *AuthService) AuthenticateFederated(ctx context.Context, idToken string) (*ports.AuthResult, error) {
	identity, err := s.identities.Verify(ctx, idToken)
	if err != nil {
		if !errors.Is(err, domain.ErrFederatedVerificationFailed) {
			err = fmt.Errorf("%w: %v", domain.ErrFederatedVerificationFailed, err)
		}
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, identity.Email)
	switch {
	case err == nil:
		return s.result(user, false)
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("find user: %w", err)
	}

	user, created, err := s.provision(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.result(user, created)
}

// provision saves a new federated account. When a concurrent login for the
// same email wins the insert, the stored record is returned instead.
func (s *AuthService) provision(ctx context.Context, identity *ports.VerifiedIdentity) (*domain.User, bool, error) {
	secret, err := s.placeholder()
	if err != nil {
		return nil, false, fmt.Errorf("placeholder credential: %w", err)
	}
	digest, err := s.hasher.Hash(ctx, secret)
	if err != nil {
		return nil, false, fmt.Errorf("hash placeholder credential: %w", err)
	}

	name := strings.TrimSpace(identity.Name)
	if name == "" {
		name = identity.Email
	}

	now := s.now()
	user := &domain.User{
		ID:           idgen.NewAt(now),
		FullName:     name,
		Email:        identity.Email,
		PasswordHash: digest,
		Role:         domain.RoleUser,
		Location:     domain.DefaultFederatedLocation,
		Plant:        domain.DefaultFederatedPlant,
		Provider:     domain.ProviderGoogle,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	saved, err := s.users.Save(ctx, user)
	if err == nil {
		s.logger.Info().Str("email", saved.Email).Str("provider", string(saved.Provider)).Msg("federated user provisioned")
		return saved, true, nil
	}
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		return nil, false, fmt.Errorf("save user: %w", err)
	}

	existing, err := s.users.FindByEmail(ctx, identity.Email)
	if err != nil {
		return nil, false, fmt.Errorf("re-read provisioned user: %w", err)
	}
	s.logger.Debug().Str("email", existing.Email).Msg("concurrent provisioning resolved to existing user")
	return existing, false, nil
}

func (s *AuthService) result(user *domain.User, provisioned bool) (*ports.AuthResult, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &ports.AuthResult{
		Token:       token.Value,
		ExpiresAt:   token.ExpiresAt,
		User:        user,
		Provisioned: provisioned,
	}, nil
}
