/*
completion.go - Terminal completion of a record and cadence advance

PURPOSE:
  Finalizes exactly one record and moves its schedule's cadence forward.

CONCURRENCY:
  Completion is a compare-and-set on the record's status, delegated to the
  store (single UPDATE guarded on status in SQLite, mutex-held check in
  the memory store). Under two simultaneous completions of the same
  record, exactly one succeeds; the other observes AlreadyCompletedError.
  This is a required, testable guarantee.

CADENCE PRESERVATION:
  The schedule's next due date is recomputed anchored at the COMPLETED
  RECORD'S DUE DATE, not at the completion timestamp. Completing an annual
  inspection due March 10 three weeks late still makes the next one due
  next March 10 - lateness never drifts the cadence.
*/
package schedule

import "context"

// Completer finalizes records.
type Completer struct {
	store Store
	clock Clock
}

func NewCompleter(store Store, clock Clock) *Completer {
	return &Completer{store: store, clock: clock}
}

// Complete marks the record completed by completedBy today, then advances
// the owning schedule's cached next due date one period past the record's
// due date. Fails with ErrRecordNotFound for unknown ids and
// AlreadyCompletedError on a double completion (explicit rejection, not a
// silent no-op).
func (c *Completer) Complete(ctx context.Context, id RecordID, completedBy, notes string) (Record, error) {
	if completedBy == "" {
		return Record{}, &MissingFieldError{Field: "completed_by"}
	}

	today := c.clock.Today()
	record, err := c.store.CompleteRecord(ctx, id, today, completedBy, notes)
	if err != nil {
		return Record{}, err
	}

	// Advance cadence from the record's due date. A failure here leaves a
	// stale cache, not a wrong one: the registry re-derives it on the next
	// cadence-changing mutation and the generator duplicate-skips.
	s, err := c.store.GetSchedule(ctx, record.ScheduleID)
	if err != nil {
		return record, err
	}
	next, err := NextDue(record.DueDate, s.Frequency)
	if err != nil {
		return record, err
	}
	if err := c.store.SetNextDue(ctx, s.ID, next, today); err != nil {
		return record, err
	}

	return record, nil
}
