package errors

import (
	"errors"
	"fmt"
)

// Common error types shared by the session store, the API client and the CLI
var (
	// Session errors
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionExpired   = errors.New("session expired")
	ErrInvalidSession   = errors.New("invalid session")

	// Backend errors
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrBadRequest         = errors.New("bad request")
	ErrBackend            = errors.New("backend error")

	// General errors
	ErrInvalidArgument = errors.New("invalid argument")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
