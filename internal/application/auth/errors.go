package auth

import "errors"

var (
	ErrCredentialsRequired = errors.New("Username and password are required")
	// ErrInvalidCredentials covers both unknown username and wrong password
	// so login failures never reveal which field was wrong.
	ErrInvalidCredentials = errors.New("Invalid username or password")
	ErrNotAuthenticated   = errors.New("Not authenticated")
)
