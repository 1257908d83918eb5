package auth

import "errors"

var (
	// ErrNoPublicKeys is returned when no token verification key is configured.
	ErrNoPublicKeys = errors.New("at least one of auth.public_keys.rsa or auth.public_keys.ecdsa must be configured")

	// ErrInvalidPublicKey is returned when a configured key is not a PEM
	// encoded public key.
	ErrInvalidPublicKey = errors.New("invalid public key")
)

var (
	_ Verifier          = (*TokenValidator)(nil)
	_ PermissionChecker = (*Auth)(nil)
)
