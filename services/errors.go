package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors reported by the workflow and application services.
var (
	ErrNotFound          = errors.New("record not found")
	ErrForbidden         = errors.New("actor lacks role or ownership")
	ErrConflictingUpdate = errors.New("application was modified concurrently, please retry")
)

// InvalidTransitionError is returned when an action is not defined for the
// application's current status.
type InvalidTransitionError struct {
	From   Status
	Action Action
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("action '%s' is not valid from status '%s'", e.Action, e.From)
}

// GuardFailedError is returned when a transition's precondition is unmet. The
// message always enumerates the condition so the caller can display it.
type GuardFailedError struct {
	Reason           string
	MissingDocuments []string
}

func (e *GuardFailedError) Error() string {
	if len(e.MissingDocuments) > 0 {
		return fmt.Sprintf("%s: %s", e.Reason, strings.Join(e.MissingDocuments, ", "))
	}
	return e.Reason
}

func guardFailed(reason string) error {
	return &GuardFailedError{Reason: reason}
}

func missingDocuments(docs []string) error {
	return &GuardFailedError{
		Reason:           "missing required documents",
		MissingDocuments: docs,
	}
}
