package commands

import (
	"errors"
	"fmt"
)

var (
	// ErrArity is wrapped by ArityError.
	ErrArity = errors.New("too few arguments")

	// ErrUnknownCommand is returned when no command is registered under a name.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrInvalidCommand is returned when a command definition is rejected by
	// NewRegistry.
	ErrInvalidCommand = errors.New("invalid command")
)

// ArityError reports a command invoked with fewer arguments than it needs.
type ArityError struct {
	Want int
	Got  int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s: want %d, got %d", ErrArity, e.Want, e.Got)
}

func (e *ArityError) Unwrap() error { return ErrArity }
