package ports

import "context"

// VerifiedIdentity holds attributes asserted by the identity provider after
// signature, audience, issuer and expiry checks have passed.
type VerifiedIdentity struct {
	Issuer  string
	Subject string
	Email   string
	Name    string
}

// IdentityVerifier validates third-party ID tokens. Every failure, including
// an unreachable provider, is reported as domain.ErrFederatedVerificationFailed.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (*VerifiedIdentity, error)
}
