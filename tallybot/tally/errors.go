package tally

import (
	"fmt"
	"strings"
)

// NotFoundError is returned when a tally lookup misses. Suggestions
// holds near-miss names from the same scope, when any exist.
type NotFoundError struct {
	Name        string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("could not find tally named %s", e.Name)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

// ConflictError is returned when a create or rescope collides with an
// existing tally of the same name in the target scope.
type ConflictError struct {
	Name string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("a tally named %s already exists in that scope", e.Name)
}

// InvalidArgumentError carries a short human reason.
type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return e.Reason
}

func invalidArg(format string, args ...any) error {
	return &InvalidArgumentError{Reason: fmt.Sprintf(format, args...)}
}
