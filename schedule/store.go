/*
store.go - Persistence interfaces for schedules and records

PURPOSE:
  Defines the boundary between the engine and the database. The engine's
  correctness-critical invariants live HERE, as store contracts, so no
  amount of service-layer racing can violate them:

  - InsertSchedule rejects a second active schedule for the same
    (facility, function) pair with ErrDuplicateSchedule.
  - InsertRecord rejects a second record for the same
    (schedule, due date) with ErrDuplicateRecord. This is what makes
    generation idempotent and safe under overlapping runs: uniqueness is
    a store constraint, never external locking.
  - CompleteRecord is a compare-and-set on status: under two simultaneous
    completions exactly one wins, the other gets ErrAlreadyCompleted.
  - Records are never deleted. Schedules are deactivated, never removed.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: production SQLite (unique indexes + CAS UPDATE)
  - schedule/store/memory.go: in-memory for tests

SEE ALSO:
  - generator.go, sweeper.go, completion.go: consumers of RecordStore
  - registry.go, bulk.go: consumers of ScheduleStore
*/
package schedule

import "context"

// =============================================================================
// SCHEDULE STORE
// =============================================================================

type ScheduleStore interface {
	// InsertSchedule persists a new schedule. Returns ErrDuplicateSchedule
	// (wrapped in DuplicateScheduleError) if an active schedule for the
	// (facility, function) pair already exists.
	InsertSchedule(ctx context.Context, s Schedule) error

	// GetSchedule returns a schedule by id. ErrScheduleNotFound if missing.
	GetSchedule(ctx context.Context, id ScheduleID) (Schedule, error)

	// SchedulesByFacility returns all schedules for a facility, active and
	// inactive, newest first.
	SchedulesByFacility(ctx context.Context, facilityID FacilityID) ([]Schedule, error)

	// ActiveSchedules returns every active schedule.
	ActiveSchedules(ctx context.Context) ([]Schedule, error)

	// FindActiveSchedule looks up the active schedule for a pair.
	FindActiveSchedule(ctx context.Context, facilityID FacilityID, functionID FunctionID) (Schedule, bool, error)

	// UpdateSchedule overwrites mutable fields (frequency, start date,
	// assignee, active flag, cached next due date, updated-at).
	// ErrScheduleNotFound if missing.
	UpdateSchedule(ctx context.Context, s Schedule) error

	// SetNextDue advances only the cached next due date.
	SetNextDue(ctx context.Context, id ScheduleID, next Date, updatedAt Date) error
}

// =============================================================================
// RECORD STORE
// =============================================================================

type RecordStore interface {
	// InsertRecord persists a new record. Returns ErrDuplicateRecord if a
	// record for (schedule_id, due_date) already exists. Enforced by a
	// uniqueness constraint, so concurrent generation runs never
	// double-insert.
	InsertRecord(ctx context.Context, r Record) error

	// GetRecord returns a record by id. ErrRecordNotFound if missing.
	GetRecord(ctx context.Context, id RecordID) (Record, error)

	// RecordsBySchedule returns all records for a schedule ordered by due date.
	RecordsBySchedule(ctx context.Context, scheduleID ScheduleID) ([]Record, error)

	// RecordsByScheduleYear returns a schedule's records due in the year.
	RecordsByScheduleYear(ctx context.Context, scheduleID ScheduleID, year int) ([]Record, error)

	// MarkOverdue flips every pending/upcoming record of an ACTIVE schedule
	// with due date before today to overdue. Never touches completed
	// records. Returns the number flipped; idempotent.
	MarkOverdue(ctx context.Context, today Date) (int, error)

	// CompleteRecord atomically completes a record: compare-and-set on
	// status, with completed as the terminal state. Returns the updated
	// record. ErrRecordNotFound if absent; AlreadyCompletedError if the
	// record is already completed.
	CompleteRecord(ctx context.Context, id RecordID, completedDate Date, completedBy, notes string) (Record, error)

	// LastCompletedDueDate returns the due date of the schedule's most
	// recently completed record, if any.
	LastCompletedDueDate(ctx context.Context, scheduleID ScheduleID) (Date, bool, error)

	// OverdueRecords returns open records whose due date is before asOf,
	// optionally scoped to one facility.
	OverdueRecords(ctx context.Context, asOf Date, facilityID *FacilityID) ([]Record, error)

	// RecordsDueWithin returns open records with from <= due date <= to,
	// optionally scoped to one facility.
	RecordsDueWithin(ctx context.Context, from, to Date, facilityID *FacilityID) ([]Record, error)

	// CountRecordsByStatus returns record counts per status, optionally
	// scoped to one facility.
	CountRecordsByStatus(ctx context.Context, facilityID *FacilityID) (map[Status]int, error)
}

// Store combines both sides; the SQLite and memory stores implement it.
type Store interface {
	ScheduleStore
	RecordStore
}

// =============================================================================
// FUNCTION DEFAULTS - Read-only view of the reference-data collaborator
// =============================================================================

// FunctionDefaults is the narrow slice of the reference-data collaborator
// the registry needs: the default frequency a compliance function carries.
type FunctionDefaults interface {
	// DefaultFrequency returns the function's default frequency code.
	// ErrFunctionNotFound if the function does not exist.
	DefaultFrequency(ctx context.Context, id FunctionID) (Frequency, error)
}
