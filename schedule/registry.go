/*
registry.go - Schedule lifecycle: create, read, update, deactivate

PURPOSE:
  Owns the durable state of each (facility, function) recurrence. All
  cadence-changing mutations flow through here so the cached next due
  date stays consistent with {anchor or last completed due date} plus
  frequency.

LIFECYCLE:
  Created when a pair is first registered -> mutated by reassignment or
  frequency change (directly or via the bulk updater) -> deactivated to
  stop future generation. Never hard-deleted.

NEXT DUE DATE CONVENTION:
  The first occurrence of a schedule falls ON its start date (an annual
  inspection starting 2024-03-10 is due 2024-03-10, then 2025-03-10).
  Create therefore seeds the cache with the start date itself; the
  frequency calculator takes over from there.

SEE ALSO:
  - bulk.go: Batch wrapper around Update with per-item error isolation
  - completion.go: Advances the cache when a record completes
*/
package schedule

import (
	"context"

	"github.com/google/uuid"
)

// Registry manages schedule state.
type Registry struct {
	store     Store
	functions FunctionDefaults
	clock     Clock
}

func NewRegistry(store Store, functions FunctionDefaults, clock Clock) *Registry {
	return &Registry{store: store, functions: functions, clock: clock}
}

// =============================================================================
// CREATE
// =============================================================================

// CreateScheduleInput carries the fields for registering a pair.
// Frequency and StartDate are optional: frequency falls back to the
// function's default, start date to today.
type CreateScheduleInput struct {
	FacilityID FacilityID
	FunctionID FunctionID
	Frequency  Frequency
	StartDate  Date
	AssignedTo string
}

// Create registers a new active schedule for a facility/function pair.
// Fails with DuplicateScheduleError if an active schedule for the pair
// already exists.
func (r *Registry) Create(ctx context.Context, in CreateScheduleInput) (Schedule, error) {
	if in.FacilityID == "" {
		return Schedule{}, &MissingFieldError{Field: "facility_id"}
	}
	if in.FunctionID == "" {
		return Schedule{}, &MissingFieldError{Field: "function_id"}
	}

	freq := in.Frequency
	if freq == "" {
		def, err := r.functions.DefaultFrequency(ctx, in.FunctionID)
		if err != nil {
			return Schedule{}, err
		}
		freq = def
	}
	if !freq.Valid() {
		return Schedule{}, &UnknownFrequencyError{Code: string(freq)}
	}

	if existing, ok, err := r.store.FindActiveSchedule(ctx, in.FacilityID, in.FunctionID); err != nil {
		return Schedule{}, err
	} else if ok {
		return Schedule{}, &DuplicateScheduleError{
			FacilityID: in.FacilityID,
			FunctionID: in.FunctionID,
			ExistingID: existing.ID,
		}
	}

	today := r.clock.Today()
	start := in.StartDate
	if start.IsZero() {
		start = today
	}

	s := Schedule{
		ID:          ScheduleID(uuid.NewString()),
		FacilityID:  in.FacilityID,
		FunctionID:  in.FunctionID,
		Frequency:   freq,
		StartDate:   start,
		NextDueDate: start, // first occurrence is the anchor itself
		AssignedTo:  in.AssignedTo,
		IsActive:    true,
		CreatedAt:   today,
		UpdatedAt:   today,
	}

	if err := r.store.InsertSchedule(ctx, s); err != nil {
		return Schedule{}, err
	}
	return s, nil
}

// =============================================================================
// READ
// =============================================================================

// Get returns a schedule by id. ErrScheduleNotFound if missing.
func (r *Registry) Get(ctx context.Context, id ScheduleID) (Schedule, error) {
	return r.store.GetSchedule(ctx, id)
}

// GetByFacility returns all schedules for a facility.
func (r *Registry) GetByFacility(ctx context.Context, facilityID FacilityID) ([]Schedule, error) {
	return r.store.SchedulesByFacility(ctx, facilityID)
}

// =============================================================================
// UPDATE
// =============================================================================

// UpdateScheduleInput carries the optional fields of an update; nil means
// "leave unchanged".
type UpdateScheduleInput struct {
	Frequency  *Frequency
	AssignedTo *string
	StartDate  *Date
}

// Update applies a frequency/assignee/start-date change and recomputes the
// cached next due date from the schedule's last completed due date (or its
// anchor if nothing has completed) under the new frequency. Records already
// generated are never retroactively altered.
func (r *Registry) Update(ctx context.Context, id ScheduleID, in UpdateScheduleInput) (Schedule, error) {
	s, err := r.store.GetSchedule(ctx, id)
	if err != nil {
		return Schedule{}, err
	}

	if in.Frequency != nil {
		if !in.Frequency.Valid() {
			return Schedule{}, &UnknownFrequencyError{Code: string(*in.Frequency)}
		}
		s.Frequency = *in.Frequency
	}
	if in.AssignedTo != nil {
		s.AssignedTo = *in.AssignedTo
	}
	if in.StartDate != nil && !in.StartDate.IsZero() {
		s.StartDate = *in.StartDate
	}

	if s.StartDate.IsZero() {
		return Schedule{}, &MissingFieldError{Field: "start_date"}
	}

	next, err := r.recomputeNextDue(ctx, s)
	if err != nil {
		return Schedule{}, err
	}
	s.NextDueDate = next
	s.UpdatedAt = r.clock.Today()

	if err := r.store.UpdateSchedule(ctx, s); err != nil {
		return Schedule{}, err
	}
	return s, nil
}

// recomputeNextDue derives the cache from durable state: one period past
// the last completed due date, or the anchor itself when nothing has
// completed yet.
func (r *Registry) recomputeNextDue(ctx context.Context, s Schedule) (Date, error) {
	lastDue, ok, err := r.store.LastCompletedDueDate(ctx, s.ID)
	if err != nil {
		return Date{}, err
	}
	if !ok {
		return s.StartDate, nil
	}
	return NextDue(lastDue, s.Frequency)
}

// =============================================================================
// DEACTIVATE
// =============================================================================

/// Deactivate soft-disables a schedule: the generator and sweeper skip it
// from now on, existing records are untouched.
func (r *Registry) Deactivate(ctx context.Context, id ScheduleID) (Schedule, error) {
	s, err := r.store.GetSchedule(ctx, id)
	if err != nil {
		return Schedule{}, err
	}
	s.IsActive = false
	s.UpdatedAt = r.clock.Today()
	if err := r.store.UpdateSchedule(ctx, s); err != nil {
		return Schedule{}, err
	}
	return s, nil
}
