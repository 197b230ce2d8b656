package custom_error

import (
	"errors"
	"fmt"
)

// ErrConcurrentModification is returned by a conditional commit when any
// touched record's version no longer matches the snapshot it was planned
// against. Nothing has been applied; the caller must re-plan.
var ErrConcurrentModification = errors.New("inventory modified concurrently, plan is stale")

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}
