package service

import "errors"

var (
	ErrContentNotFound    = errors.New("content not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotInWatchlist     = errors.New("content not in watchlist")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrFederationDisabled = errors.New("federated sign-in not configured")
	ErrInvalidRole        = errors.New("invalid role (must be user|admin)")
	ErrInvalidInput       = errors.New("invalid input")
)
