package domain

import "errors"

// Sentinel errors returned by the ranking pipeline.
// These allow callers to distinguish input and usage conditions from
// oracle failures with errors.Is.
var (
	// ErrNoDocuments is returned when a run is started with an empty
	// document list. Callers treat this as report-and-succeed, not a crash.
	ErrNoDocuments = errors.New("no documents to rank")

	// ErrUnknownMethod is returned for an unrecognized ranking method.
	// The run aborts before any oracle call is made.
	ErrUnknownMethod = errors.New("unknown ranking method")

	// ErrBudgetExceeded is returned when a comparator call would exceed
	// the configured oracle call budget.
	ErrBudgetExceeded = errors.New("oracle call budget exceeded")
)
