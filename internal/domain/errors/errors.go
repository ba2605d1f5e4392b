package errors

import "errors"

// Sentinel errors for handlers to map to HTTP status.
var (
	ErrUserExists         = errors.New("user with this email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
	ErrTokenNotFound      = errors.New("refresh token not found")
	ErrSelfDelete         = errors.New("admin cannot delete himself")
	ErrLastAdmin          = errors.New("cannot delete the last admin")
)
