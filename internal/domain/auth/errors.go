package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidTokenType   = errors.New("invalid token type")
	ErrAdminNotFound      = errors.New("admin not found")
	ErrForbidden          = errors.New("insufficient permissions")
)
