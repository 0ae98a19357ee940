package domain

import "errors"

// Security-relevant outcomes. Each is terminal and user visible; anything
// else returned by the core is an internal failure.
var (
	ErrDuplicateEmail              = errors.New("email already registered")
	ErrInvalidCredentials          = errors.New("invalid credentials")
	ErrFederatedVerificationFailed = errors.New("federated identity verification failed")
	ErrInvalidToken                = errors.New("invalid token")
)

var (
	// ErrUserNotFound is returned by the credential store. The password flow
	// never surfaces it.
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidInput = errors.New("invalid input")
)
