package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmptyPatch         = errors.New("nothing to update")

	// ErrRegistration matches every *RegistrationError via errors.Is.
	ErrRegistration = errors.New("register user")
)

// ErrorKind classifies why a registration failed.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindConflict   ErrorKind = "conflict"
	KindCrypto     ErrorKind = "crypto"
	KindStore      ErrorKind = "store"
)

// RegistrationError wraps any failure of the registration pipeline. The cause
// stays reachable through errors.Is / errors.As.
type RegistrationError struct {
	Kind ErrorKind
	Err  error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrRegistration.Error(), e.Kind, e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }

func (e *RegistrationError) Is(target error) bool { return target == ErrRegistration }

// KindOf returns the kind of a registration failure anywhere in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var re *RegistrationError
	if errors.As(err, &re) {
		return re.Kind, true
	}
	return "", false
}
