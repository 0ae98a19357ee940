package ports

import "context"

// PasswordHasher hashes and checks credentials. Verify reports false for both
// a wrong password and a malformed digest; its error is reserved for
// infrastructure faults such as a cancelled context.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, digest string) (bool, error)
}
