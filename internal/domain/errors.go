package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrConflict           = errors.New("conflict")
	ErrIllegalTransition  = errors.New("illegal status transition")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrCorruptRecord      = errors.New("corrupt record")
)

// ErrEmailTaken is returned when registering an email that already has credentials.
var ErrEmailTaken = fmt.Errorf("%w: email already registered", ErrConflict)
