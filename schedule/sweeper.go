/*
sweeper.go - Reclassification of lapsed records

PURPOSE:
  Flips pending/upcoming records whose due date has passed to overdue.
  Runs independently of generation so records generated months in advance
  age correctly without regenerating anything.

GUARANTEES:
  - Idempotent: re-running changes nothing already overdue.
  - Completed records are never touched (enforced in the store query).
  - Inactive schedules are skipped.
*/
package schedule

import "context"

// Sweeper ages lapsed records.
type Sweeper struct {
	store RecordStore
	clock Clock
}

func NewSweeper(store RecordStore, clock Clock) *Sweeper {
	return &Sweeper{store: store, clock: clock}
}

// SweepResult reports one sweep pass.
type SweepResult struct {
	RecordsUpdated int `json:"records_updated"`
}

// Sweep marks every open record with a past due date as overdue and
// returns how many were flipped.
func (s *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	updated, err := s.store.MarkOverdue(ctx, s.clock.Today())
	if err != nil {
		return SweepResult{}, err
	}
	return SweepResult{RecordsUpdated: updated}, nil
}
