/*
errors.go - Centralized error types for the schedule engine

PURPOSE:
  All engine error types in one place. The taxonomy mirrors how callers
  must react, not where the failure happened:

  1. Validation  - unknown frequency code, missing required field
  2. Duplicate   - creating a second active schedule for a pair
  3. Not found   - unknown schedule/record id
  4. Completion  - double completion attempt (explicit, never silent)

PROPAGATION POLICY:
  Single-item mutations (create, update, complete) fail fast with the
  specific error. Batch/maintenance passes (generate, sweep, bulk update)
  never abort on one item: they isolate, record, and keep going, because
  they are periodic jobs expected to self-heal on the next run.

USAGE:
  if errors.Is(err, schedule.ErrAlreadyCompleted) { ... }

  var dup *schedule.DuplicateScheduleError
  if errors.As(err, &dup) { log.Printf("pair %s/%s", dup.FacilityID, dup.FunctionID) }
*/
package schedule

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnknownFrequency is returned for a frequency code outside the
	// closed W/M/Q/SA/A/2y/3y/5y set.
	ErrUnknownFrequency = errors.New("unknown frequency code")

	// ErrMissingField is returned when a required field is absent,
	// most importantly a zero anchor date.
	ErrMissingField = errors.New("missing required field")

	// ErrDuplicateSchedule is returned when an active schedule already
	// exists for the (facility, function) pair.
	ErrDuplicateSchedule = errors.New("active schedule already exists for pair")

	// ErrDuplicateRecord is returned when a record for (schedule, due date)
	// already exists. Expected under overlapping generation runs.
	ErrDuplicateRecord = errors.New("record already exists for due date")

	// ErrScheduleNotFound is returned for an unknown schedule id.
	ErrScheduleNotFound = errors.New("schedule not found")

	// ErrRecordNotFound is returned for an unknown record id.
	ErrRecordNotFound = errors.New("record not found")

	// ErrFunctionNotFound is returned when a referenced compliance
	// function does not exist in the reference-data collaborator.
	ErrFunctionNotFound = errors.New("compliance function not found")

	// ErrAlreadyCompleted is returned on a second completion attempt.
	// Completed is terminal; the loser of a completion race sees this.
	ErrAlreadyCompleted = errors.New("record already completed")

	// ErrInvalidTransition is returned when a status change falls outside
	// the transition table.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// UnknownFrequencyError reports the offending code.
type UnknownFrequencyError struct {
	Code string
}

func (e *UnknownFrequencyError) Error() string {
	return fmt.Sprintf("unknown frequency code %q (want W, M, Q, SA, A, 2y, 3y or 5y)", e.Code)
}

func (e *UnknownFrequencyError) Unwrap() error { return ErrUnknownFrequency }

// MissingFieldError names the absent field.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingField }

// DuplicateScheduleError identifies the already-scheduled pair.
type DuplicateScheduleError struct {
	FacilityID FacilityID
	FunctionID FunctionID
	ExistingID ScheduleID
}

func (e *DuplicateScheduleError) Error() string {
	return fmt.Sprintf("active schedule %s already exists for facility %s / function %s",
		e.ExistingID, e.FacilityID, e.FunctionID)
}

func (e *DuplicateScheduleError) Unwrap() error { return ErrDuplicateSchedule }

// AlreadyCompletedError reports who completed the record first.
type AlreadyCompletedError struct {
	RecordID      RecordID
	CompletedBy   string
	CompletedDate Date
}

func (e *AlreadyCompletedError) Error() string {
	return fmt.Sprintf("record %s already completed by %s on %s",
		e.RecordID, e.CompletedBy, e.CompletedDate)
}

func (e *AlreadyCompletedError) Unwrap() error { return ErrAlreadyCompleted }

// InvalidTransitionError reports a status change outside the table.
type InvalidTransitionError struct {
	RecordID RecordID
	From     Status
	To       Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("record %s: cannot transition %s -> %s", e.RecordID, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound reports whether the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrScheduleNotFound) ||
		errors.Is(err, ErrRecordNotFound) ||
		errors.Is(err, ErrFunctionNotFound)
}

// IsConflict reports whether the error is a state conflict (409 territory).
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateSchedule) ||
		errors.Is(err, ErrDuplicateRecord) ||
		errors.Is(err, ErrAlreadyCompleted) ||
		errors.Is(err, ErrInvalidTransition)
}

// IsClientError reports whether the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrUnknownFrequency) ||
		errors.Is(err, ErrMissingField) ||
		IsConflict(err)
}
