/*
Package schedule implements the recurring compliance schedule engine.

PURPOSE:
  Converts (facility, function, frequency) pairings into concrete due-date
  occurrences: generates trackable records ahead of time without
  duplication, detects lapses, advances cadence on completion, and applies
  bulk reschedules with per-item failure isolation.

KEY CONCEPTS IN THIS FILE (types.go):
  - Schedule: the recurring obligation for one facility/function pair
  - Record: one concrete due occurrence of a schedule
  - Status: closed record state set with an explicit transition table
  - Typed IDs: prevent mixing schedule/record/facility identifiers

DESIGN PRINCIPLES:
  1. The cached NextDueDate on a Schedule is derivable state, never truth:
     it always equals {anchor or last completed due date} advanced by the
     frequency. It exists so generation and analytics avoid rescanning
     records.
  2. Status transitions are monotonic and completed is terminal. The
     transition table below is the single authority; stores reject
     anything outside it.
  3. Identity strings (AssignedTo, CompletedBy) are opaque free text.
     Binding them to a directory is an open question inherited from the
     source system and deliberately not resolved here.

SEE ALSO:
  - frequency.go: Due-date arithmetic
  - registry.go: Schedule lifecycle
  - generator.go: Record materialization
*/
package schedule

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ScheduleID string
type RecordID string
type FacilityID string
type FunctionID string

// =============================================================================
// RECORD STATUS - Closed set with explicit transition table
// =============================================================================

type Status string

const (
	StatusPending   Status = "pending"
	StatusUpcoming  Status = "upcoming"
	StatusOverdue   Status = "overdue"
	StatusCompleted Status = "completed"
)

// statusTransitions is the authoritative transition table:
//
//	{pending, upcoming} -> overdue -> completed
//	{pending, upcoming} -> completed
//
// completed is terminal. Anything else is rejected.
var statusTransitions = map[Status]map[Status]bool{
	StatusPending:   {StatusUpcoming: true, StatusOverdue: true, StatusCompleted: true},
	StatusUpcoming:  {StatusOverdue: true, StatusCompleted: true},
	StatusOverdue:   {StatusCompleted: true},
	StatusCompleted: {},
}

func (s Status) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransitionTo reports whether the move s -> to is in the table.
func (s Status) CanTransitionTo(to Status) bool {
	return statusTransitions[s][to]
}

// IsOpen reports whether a record in this status still awaits completion.
func (s Status) IsOpen() bool { return s != StatusCompleted }

// ClassifyDueDate returns the status a freshly generated record should
// carry: past due dates come into the world overdue (backfill), near-term
// ones upcoming, the rest pending.
func ClassifyDueDate(due, today Date, upcomingWindowDays int) Status {
	switch {
	case due.Before(today):
		return StatusOverdue
	case due.BeforeOrEqual(today.AddDays(upcomingWindowDays)):
		return StatusUpcoming
	default:
		return StatusPending
	}
}

// =============================================================================
// SCHEDULE - Recurring obligation for one facility/function pair
// =============================================================================

type Schedule struct {
	ID         ScheduleID
	FacilityID FacilityID
	FunctionID FunctionID
	Frequency  Frequency

	// StartDate anchors the cadence. Required and validated at creation;
	// the engine never substitutes today for a missing anchor (the bulk
	// updater's explicit today-fallback is the sole, documented exception).
	StartDate Date

	// NextDueDate caches the first occurrence not yet covered by generated
	// records. Always derivable via the frequency calculator.
	NextDueDate Date

	AssignedTo string
	IsActive   bool

	CreatedAt Date
	UpdatedAt Date
}

// =============================================================================
// RECORD - One concrete due occurrence
// =============================================================================

type Record struct {
	ID         RecordID
	ScheduleID ScheduleID
	DueDate    Date
	Status     Status

	CompletedDate Date
	CompletedBy   string
	Notes         string

	// HasDocuments is a read-side projection maintained by the document
	// collaborator; the engine only reports it.
	HasDocuments bool

	CreatedAt Date
	UpdatedAt Date
}
