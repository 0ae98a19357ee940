package federated

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog"

	"github.com/fleetops/auth-service/internal/core/domain"
	"github.com/fleetops/auth-service/internal/core/ports"
)

const (
	GoogleIssuer   = "https://accounts.google.com"
	GoogleJWKSURL  = "https://www.googleapis.com/oauth2/v3/certs"
	defaultTimeout = 5 * time.Second
)

// Google signs ID tokens with either spelling of its issuer.
var googleIssuers = []string{GoogleIssuer, "accounts.google.com"}

var ErrMissingClientID = errors.New("oidc: expected audience (client id) not configured")

var _ ports.IdentityVerifier = (*GoogleVerifier)(nil)

// Config holds the verifier settings. ClientID is the expected audience and
// is mandatory.
type Config struct {
	ClientID string
	JWKSURL  string
	// Timeout bounds a single verification, key fetching included.
	Timeout time.Duration
	// Issuers overrides the accepted iss values. Defaults to Google's.
	Issuers []string
	// Now overrides the clock used for expiry checks.
	Now func() time.Time
}

// GoogleVerifier validates Google-issued ID tokens.
type GoogleVerifier struct {
	verifier *oidc.IDTokenVerifier
	issuers  map[string]struct{}
	timeout  time.Duration
	log      zerolog.Logger
}

type idTokenClaims struct {
	Email         string `json:"email"`
	EmailVerified any    `json:"email_verified"`
	Name          string `json:"name"`
}

// NewGoogleVerifier builds a verifier that fetches signing keys from the
// provider's JWKS endpoint. Key fetches share cfg.Timeout as an HTTP client
// timeout so an unreachable provider fails verification instead of hanging.
func NewGoogleVerifier(cfg Config, log zerolog.Logger) (*GoogleVerifier, error) {
	if cfg.ClientID == "" {
		return nil, ErrMissingClientID
	}
	jwksURL := cfg.JWKSURL
	if jwksURL == "" {
		jwksURL = GoogleJWKSURL
	}
	client := &http.Client{Timeout: timeoutOrDefault(cfg.Timeout)}
	keys := oidc.NewRemoteKeySet(oidc.ClientContext(context.Background(), client), jwksURL)
	return NewVerifier(cfg, keys, log)
}

// NewVerifier builds a verifier over an arbitrary key set.
func NewVerifier(cfg Config, keys oidc.KeySet, log zerolog.Logger) (*GoogleVerifier, error) {
	if cfg.ClientID == "" {
		return nil, ErrMissingClientID
	}
	issuers := cfg.Issuers
	if len(issuers) == 0 {
		issuers = googleIssuers
	}
	allowed := make(map[string]struct{}, len(issuers))
	for _, iss := range issuers {
		allowed[iss] = struct{}{}
	}

	verifier := oidc.NewVerifier(issuers[0], keys, &oidc.Config{
		ClientID:        cfg.ClientID,
		SkipIssuerCheck: true, // checked against the allow list below
		Now:             cfg.Now,
	})

	return &GoogleVerifier{
		verifier: verifier,
		issuers:  allowed,
		timeout:  timeoutOrDefault(cfg.Timeout),
		log:      log,
	}, nil
}

// Verify checks signature, audience, issuer and expiry, then requires a
// provider-verified email.
func (v *GoogleVerifier) Verify(ctx context.Context, rawToken string) (*ports.VerifiedIdentity, error) {
	if rawToken == "" {
		return nil, fmt.Errorf("%w: empty token", domain.ErrFederatedVerificationFailed)
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	idToken, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		v.log.Debug().Err(err).Msg("id token rejected")
		return nil, fmt.Errorf("%w: %v", domain.ErrFederatedVerificationFailed, err)
	}
	if _, ok := v.issuers[idToken.Issuer]; !ok {
		return nil, fmt.Errorf("%w: unexpected issuer %q", domain.ErrFederatedVerificationFailed, idToken.Issuer)
	}

	var claims idTokenClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: decode claims: %v", domain.ErrFederatedVerificationFailed, err)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("%w: token carries no email", domain.ErrFederatedVerificationFailed)
	}
	if !isTrue(claims.EmailVerified) {
		return nil, fmt.Errorf("%w: email not verified by provider", domain.ErrFederatedVerificationFailed)
	}

	return &ports.VerifiedIdentity{
		Issuer:  idToken.Issuer,
		Subject: idToken.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
	}, nil
}

// isTrue accepts both the boolean and the legacy string encoding.
func isTrue(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		ok, _ := strconv.ParseBool(b)
		return ok
	default:
		return false
	}
}

func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultTimeout
	}
	return d
}
