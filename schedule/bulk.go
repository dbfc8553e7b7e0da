/*
bulk.go - Bulk schedule updates with per-item error isolation

PURPOSE:
  Applies frequency/assignee/start-date changes across many schedules in
  one call. Every item goes through the registry's normal update path
  independently; one item failing (unknown id, bad frequency code) is
  caught and reported per-item, never propagated - the batch always
  completes. Partial-failure reporting is a first-class contract here,
  not an afterthought.

NULL-ANCHOR GUARD:
  A schedule whose anchor date is unexpectedly absent is treated as
  anchored today rather than failing date arithmetic. This fallback is
  deliberate and lives ONLY here; everywhere else a missing anchor is an
  error.
*/
package schedule

import "context"

// BulkUpdater applies batched schedule updates.
type BulkUpdater struct {
	registry *Registry
	store    ScheduleStore
	clock    Clock
}

func NewBulkUpdater(registry *Registry, store ScheduleStore, clock Clock) *BulkUpdater {
	return &BulkUpdater{registry: registry, store: store, clock: clock}
}

// BulkUpdateItem is one update spec: the target schedule plus the fields
// to change (nil = unchanged).
type BulkUpdateItem struct {
	ScheduleID ScheduleID
	Frequency  *Frequency
	AssignedTo *string
	StartDate  *Date
}

// BulkUpdateError reports one failed item.
type BulkUpdateError struct {
	ScheduleID ScheduleID `json:"schedule_id"`
	Message    string     `json:"message"`
}

// BulkUpdateResult summarizes a batch.
type BulkUpdateResult struct {
	UpdatedCount int               `json:"updated_count"`
	ErrorCount   int               `json:"error_count"`
	Errors       []BulkUpdateError `json:"errors"`
}

// BulkUpdate applies each item independently and reports per-item
// failures. It never returns a non-nil error for item-level problems;
// the error return covers nothing today and exists for future
// batch-level failures.
func (b *BulkUpdater) BulkUpdate(ctx context.Context, items []BulkUpdateItem) (BulkUpdateResult, error) {
	result := BulkUpdateResult{Errors: []BulkUpdateError{}}

	for _, item := range items {
		if err := b.applyItem(ctx, item); err != nil {
			result.ErrorCount++
			result.Errors = append(result.Errors, BulkUpdateError{
				ScheduleID: item.ScheduleID,
				Message:    err.Error(),
			})
			continue
		}
		result.UpdatedCount++
	}

	return result, nil
}

func (b *BulkUpdater) applyItem(ctx context.Context, item BulkUpdateItem) error {
	in := UpdateScheduleInput{
		Frequency:  item.Frequency,
		AssignedTo: item.AssignedTo,
		StartDate:  item.StartDate,
	}

	// Null-anchor guard: substitute today before the update path would
	// otherwise trip on zero-date arithmetic.
	if in.StartDate == nil {
		s, err := b.store.GetSchedule(ctx, item.ScheduleID)
		if err != nil {
			return err
		}
		if s.StartDate.IsZero() {
			today := b.clock.Today()
			in.StartDate = &today
		}
	}

	_, err := b.registry.Update(ctx, item.ScheduleID, in)
	return err
}
