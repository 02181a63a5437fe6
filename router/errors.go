package router

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyName             = errors.New("stage name is empty")
	ErrAlreadyExists         = errors.New("stage already registered")
	ErrNotFound              = errors.New("stage not found")
	ErrWrongKind             = errors.New("stage registered with a different kind")
	ErrMissingImplementation = errors.New("missing stage implementation")
)

// MissingImplementationError names a required stage that has no registered
// implementation.
type MissingImplementationError struct {
	Stage string
}

func (e *MissingImplementationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingImplementation, e.Stage)
}

func (e *MissingImplementationError) Unwrap() error {
	return ErrMissingImplementation
}
