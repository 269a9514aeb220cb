package auth

import "errors"

// Separate failure modes keep the response taxonomy honest:
// 401 for missing/invalid keys (does not confirm a key exists),
// 403 for revoked (confirms the key exists but is blocked).
var (
	ErrMissingKey       = errors.New("API key required in X-Api-Key header")
	ErrInvalidKeyFormat = errors.New("invalid API key format")
	ErrUnknownKey       = errors.New("unknown secret ID")
	ErrInvalidKey       = errors.New("invalid API key")
	ErrKeyRevoked       = errors.New("API key has been revoked")
)
