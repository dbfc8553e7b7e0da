/*
generator.go - Idempotent materialization of due-date records

PURPOSE:
  Walks every active schedule and turns its cadence into concrete records
  up to a horizon, without ever duplicating an occurrence. Designed to be
  invoked repeatedly (periodic trigger, manual trigger, overlapping runs)
  with identical results.

IDEMPOTENCE:
  Duplicate prevention is the store's (schedule_id, due_date) uniqueness
  constraint, not locking. A record that already exists is skipped and the
  pass moves on, so two concurrent Generate calls never double-insert and
  a partial run followed by a retry is safe.

CLASSIFICATION:
  Newly created records are born in the right state:
    due date in the past            -> overdue  (backfill)
    due date within UpcomingWindow  -> upcoming (default 7 days)
    otherwise                       -> pending
  The pass also flips already-existing pending/upcoming records whose due
  date has lapsed, counted in RecordsUpdated, so generation keeps aging
  correct even when the sweeper has not run.

CACHE ADVANCE:
  After covering a schedule, its cached next due date moves to the first
  occurrence beyond the horizon, so re-running with the same horizon finds
  nothing left to do.

FAILURE ISOLATION:
  One schedule failing (bad frequency, storage error) never aborts the
  pass; the error is logged and the remaining schedules proceed. This is a
  maintenance job expected to self-heal on the next run.

SEE ALSO:
  - frequency.go: Occurrence arithmetic
  - sweeper.go: Standalone overdue pass
*/
package schedule

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
)

// DefaultUpcomingWindowDays is the near-term window that classifies a new
// record as upcoming rather than pending.
const DefaultUpcomingWindowDays = 7

// maxOccurrencesPerRun caps per-schedule expansion as a runaway guard
// (a weekly schedule with a decade-old anchor would otherwise backfill
// hundreds of records in one pass).
const maxOccurrencesPerRun = 100

// Generator materializes records from schedules.
type Generator struct {
	store Store
	clock Clock

	// UpcomingWindowDays classifies near-term due dates; zero means
	// DefaultUpcomingWindowDays.
	UpcomingWindowDays int
}

func NewGenerator(store Store, clock Clock) *Generator {
	return &Generator{store: store, clock: clock}
}

// GenerationResult summarizes one Generate pass.
type GenerationResult struct {
	RecordsGenerated   int `json:"records_generated"`
	RecordsUpdated     int `json:"records_updated"`
	SchedulesProcessed int `json:"schedules_processed"`
}

// Generate creates records for every active schedule's due dates through
// today + horizonDays. Never completes or deletes records.
func (g *Generator) Generate(ctx context.Context, horizonDays int) (GenerationResult, error) {
	today := g.clock.Today()
	horizonEnd := today.AddDays(horizonDays)

	schedules, err := g.store.ActiveSchedules(ctx)
	if err != nil {
		return GenerationResult{}, err
	}

	var result GenerationResult
	for _, s := range schedules {
		created, err := g.generateForSchedule(ctx, s, today, horizonEnd)
		if err != nil {
			// Isolate: one bad schedule must not stop the pass.
			log.Printf("[Generator] schedule %s: %v", s.ID, err)
			continue
		}
		result.RecordsGenerated += created
		result.SchedulesProcessed++
	}

	// Age records that already existed before this pass.
	updated, err := g.store.MarkOverdue(ctx, today)
	if err != nil {
		return result, err
	}
	result.RecordsUpdated = updated

	return result, nil
}

func (g *Generator) generateForSchedule(ctx context.Context, s Schedule, today, horizonEnd Date) (int, error) {
	anchor := s.NextDueDate
	if anchor.IsZero() {
		anchor = s.StartDate
	}
	if anchor.IsZero() {
		return 0, &MissingFieldError{Field: "start_date"}
	}

	window := g.UpcomingWindowDays
	if window <= 0 {
		window = DefaultUpcomingWindowDays
	}

	created := 0
	var next Date
	for n := 0; n < maxOccurrencesPerRun; n++ {
		due, err := Advance(anchor, s.Frequency, n)
		if err != nil {
			return created, err
		}
		if due.After(horizonEnd) {
			next = due
			break
		}

		r := Record{
			ID:         RecordID(uuid.NewString()),
			ScheduleID: s.ID,
			DueDate:    due,
			Status:     ClassifyDueDate(due, today, window),
			CreatedAt:  today,
			UpdatedAt:  today,
		}
		err = g.store.InsertRecord(ctx, r)
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrDuplicateRecord):
			// Already covered by an earlier or concurrent run.
		default:
			return created, err
		}
	}

	if next.IsZero() {
		// Occurrence cap hit; resume from the first uncovered date next run.
		var err error
		next, err = Advance(anchor, s.Frequency, maxOccurrencesPerRun)
		if err != nil {
			return created, err
		}
		log.Printf("[Generator] schedule %s hit the %d-occurrence cap, resuming at %s next run",
			s.ID, maxOccurrencesPerRun, next)
	}

	if !next.Equal(s.NextDueDate) {
		if err := g.store.SetNextDue(ctx, s.ID, next, today); err != nil {
			return created, err
		}
	}
	return created, nil
}
