package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/compliance-engine/schedule"
	"github.com/warp/compliance-engine/schedule/store"
)

// =============================================================================
// GENERATION
// =============================================================================

func TestGenerate_AnnualScheduleStartingInsideHorizon(t *testing.T) {
	// GIVEN: An annual schedule starting 2024-03-10, today 2024-03-01,
	//        horizon 45 days
	// WHEN: Running generation
	// THEN: Exactly one record exists, due 2024-03-10 (9 days out, past
	//       the 7-day upcoming window, so pending); the cached next due
	//       date advances to 2025-03-10

	ctx := context.Background()
	clock := fixedClock(2024, time.March, 1)
	reg, mem := newTestRegistry(clock)
	gen := schedule.NewGenerator(mem, clock)

	s, err := reg.Create(ctx, schedule.CreateScheduleInput{
		FacilityID: "fac-1", FunctionID: "fn-gas",
		Frequency: schedule.FreqAnnual, StartDate: day(2024, time.March, 10),
	})
	require.NoError(t, err)

	result, err := gen.Generate(ctx, 45)
	require.NoError(t, err)
	assert.Equal(t, 1, result.RecordsGenerated)
	assert.Equal(t, 1, result.SchedulesProcessed)

	records, err := mem.RecordsBySchedule(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, day(2024, time.March, 10), records[0].DueDate)
	assert.Equal(t, schedule.StatusPending, records[0].Status)

	after, err := mem.GetSchedule(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, day(2025, time.March, 10), after.NextDueDate)
}

func TestGenerate_MonthlyScheduleRespectsHorizon(t *testing.T) {
	// GIVEN: A monthly schedule anchored 2024-01-15, today 2024-02-01,
	//        horizon 40 days (ends 2024-03-12)
	// WHEN: Running generation
	// THEN: Jan 15 (overdue backfill) and Feb 15 are created; Mar 15 is
	//       past the horizon and becomes the cached next due date

	ctx := context.Background()
	clock := fixedClock(2024, time.February, 1)
	reg, mem := newTestRegistry(clock)
	gen := schedule.NewGenerator(mem, clock)

	s, err := reg.Create(ctx, schedule.CreateScheduleInput{
		FacilityID: "fac-1", FunctionID: "fn-gas",
		Frequency: schedule.FreqMonthly, StartDate: day(2024, time.January, 15),
	})
	require.NoError(t, err)

	result, err := gen.Generate(ctx, 40)
	require.NoError(t, err)
	assert.Equal(t, 2, result.RecordsGenerated)

	records, err := mem.RecordsBySchedule(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, day(2024, time.January, 15), records[0].DueDate)
	assert.Equal(t, schedule.StatusOverdue, records[0].Status, "past due date is born overdue")
	assert.Equal(t, day(2024, time.February, 15), records[1].DueDate)
	assert.Equal(t, schedule.StatusPending, records[1].Status)

	after, err := mem.GetSchedule(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, day(2024, time.March, 15), after.NextDueDate)
}

func TestGenerate_NearTermDueDateBornUpcoming(t *testing.T) {
	// GIVEN: A weekly schedule due 3 days from today
	// WHEN: Running generation
	// THEN: The record inside the 7-day window is created as upcoming

	ctx := context.Background()
	clock := fixedClock(2024, time.June, 10)
	reg, mem := newTestRegistry(clock)
	gen := schedule.NewGenerator(mem, clock)

	s, err := reg.Create(ctx, schedule.CreateScheduleInput{
		FacilityID: "fac-1", FunctionID: "fn-gas",
		Frequency: schedule.FreqWeekly, StartDate: day(2024, time.June, 13),
	})
	require.NoError(t, err)

	_, err = gen.Generate(ctx, 3)
	require.NoError(t, err)

	records, err := mem.RecordsBySchedule(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, schedule.StatusUpcoming, records[0].Status)
}

func TestGenerate_SecondRunCreatesNothing(t *testing.T) {
	// GIVEN: A completed generation pass
	// WHEN: Running the identical pass again
	// THEN: Zero new records; duplicates are skipped via the
	//       (schedule_id, due_date) constraint

	ctx := context.Background()
	clock := fixedClock(2024, time.February, 1)
	reg, mem := newTestRegistry(clock)
	gen := schedule.NewGenerator(mem, clock)

	_, err := reg.Create(ctx, schedule.CreateScheduleInput{
		FacilityID: "fac-1", FunctionID: "fn-gas",
		Frequency: schedule.FreqMonthly, StartDate: day(2024, time.January, 15),
	})
	require.NoError(t, err)

	first, err := gen.Generate(ctx, 40)
	require.NoError(t, err)
	require.Equal(t, 2, first.RecordsGenerated)

	second, err := gen.Generate(ctx, 40)
	require.NoError(t, err)
	assert.Equal(t, 0, second.RecordsGenerated)
}

func TestGenerate_SkipsInactiveSchedules(t *testing.T) {
	ctx := context.Background()
	clock := fixedClock(2024, time.June, 1)
	reg, mem := newTestRegistry(clock)
	gen := schedule.NewGenerator(mem, clock)

	s, err := reg.Create(ctx, schedule.CreateScheduleInput{
		FacilityID: "fac-1", FunctionID: "fn-gas",
		Frequency: schedule.FreqMonthly, StartDate: day(2024, time.June, 1),
	})
	require.NoError(t, err)
	_, err = reg.Deactivate(ctx, s.ID)
	require.NoError(t, err)

	result, err := gen.Generate(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, 0, result.RecordsGenerated)
	assert.Equal(t, 0, result.SchedulesProcessed)
}

func TestGenerate_BadScheduleDoesNotAbortPass(t *testing.T) {
	// GIVEN: One schedule with no usable anchor and one healthy schedule
	// WHEN: Running generation
	// THEN: The healthy schedule still gets its records

	ctx := context.Background()
	clock := fixedClock(2024, time.June, 1)
	mem := store.NewMemory()
	gen := schedule.NewGenerator(mem, clock)

	require.NoError(t, mem.InsertSchedule(ctx, schedule.Schedule{
		ID: "sch-broken", FacilityID: "fac-1", FunctionID: "fn-a",
		Frequency: schedule.FreqMonthly, IsActive: true,
	}))
	require.NoError(t, mem.InsertSchedule(ctx, schedule.Schedule{
		ID: "sch-ok", FacilityID: "fac-1", FunctionID: "fn-b",
		Frequency:   schedule.FreqMonthly,
		StartDate:   day(2024, time.June, 1),
		NextDueDate: day(2024, time.June, 1),
		IsActive:    true,
	}))

	result, err := gen.Generate(ctx, 14)
	require.NoError(t, err)
	assert.Equal(t, 1, result.SchedulesProcessed)

	records, err := mem.RecordsBySchedule(ctx, "sch-ok")
	require.NoError(t, err)
	assert.NotEmpty(t, records)
}

func TestGenerate_AgesExistingOpenRecords(t *testing.T) {
	// GIVEN: A pre-existing upcoming record whose due date has lapsed
	// WHEN: Running generation
	// THEN: It is flipped to overdue and counted in RecordsUpdated

	ctx := context.Background()
	clock := fixedClock(2024, time.June, 10)
	mem := store.NewMemory()
	gen := schedule.NewGenerator(mem, clock)

	require.NoError(t, mem.InsertSchedule(ctx, schedule.Schedule{
		ID: "sch-1", FacilityID: "fac-1", FunctionID: "fn-a",
		Frequency:   schedule.FreqMonthly,
		StartDate:   day(2024, time.June, 20),
		NextDueDate: day(2024, time.June, 20),
		IsActive:    true,
	}))
	require.NoError(t, mem.InsertRecord(ctx, schedule.Record{
		ID: "rec-stale", ScheduleID: "sch-1",
		DueDate: day(2024, time.June, 5), Status: schedule.StatusUpcoming,
	}))

	result, err := gen.Generate(ctx, 14)
	require.NoError(t, err)
	assert.Equal(t, 1, result.RecordsUpdated)

	rec, err := mem.GetRecord(ctx, "rec-stale")
	require.NoError(t, err)
	assert.Equal(t, schedule.StatusOverdue, rec.Status)
}

// =============================================================================
// SWEEPER
// =============================================================================

func TestSweep_FlipsOnlyLapsedOpenRecords(t *testing.T) {
	// GIVEN: Records in every state around today
	// WHEN: Sweeping
	// THEN: Only past-due open records flip; completed records and
	//       future records are untouched; a second sweep is a no-op

	ctx := context.Background()
	clock := fixedClock(2024, time.June, 10)
	mem := store.NewMemory()
	sweeper := schedule.NewSweeper(mem, clock)

	require.NoError(t, mem.InsertSchedule(ctx, schedule.Schedule{
		ID: "sch-1", FacilityID: "fac-1", FunctionID: "fn-a",
		Frequency: schedule.FreqMonthly, StartDate: day(2024, time.January, 1),
		NextDueDate: day(2024, time.July, 1), IsActive: true,
	}))

	completed := day(2024, time.June, 6)
	seed := []schedule.Record{
		{ID: "rec-past-open", ScheduleID: "sch-1", DueDate: day(2024, time.June, 5), Status: schedule.StatusUpcoming},
		{ID: "rec-past-done", ScheduleID: "sch-1", DueDate: day(2024, time.June, 4), Status: schedule.StatusCompleted, CompletedDate: completed, CompletedBy: "inspector"},
		{ID: "rec-today", ScheduleID: "sch-1", DueDate: day(2024, time.June, 10), Status: schedule.StatusUpcoming},
		{ID: "rec-future", ScheduleID: "sch-1", DueDate: day(2024, time.July, 5), Status: schedule.StatusPending},
	}
	for _, r := range seed {
		require.NoError(t, mem.InsertRecord(ctx, r))
	}

	result, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.RecordsUpdated)

	expect := map[schedule.RecordID]schedule.Status{
		"rec-past-open": schedule.StatusOverdue,
		"rec-past-done": schedule.StatusCompleted,
		"rec-today":     schedule.StatusUpcoming, // due today is not yet overdue
		"rec-future":    schedule.StatusPending,
	}
	for id, want := range expect {
		rec, err := mem.GetRecord(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, rec.Status, "record %s", id)
	}

	again, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again.RecordsUpdated, "sweep is idempotent")
}

func TestSweep_SkipsRecordsOfInactiveSchedules(t *testing.T) {
	ctx := context.Background()
	clock := fixedClock(2024, time.June, 10)
	mem := store.NewMemory()
	sweeper := schedule.NewSweeper(mem, clock)

	require.NoError(t, mem.InsertSchedule(ctx, schedule.Schedule{
		ID: "sch-off", FacilityID: "fac-1", FunctionID: "fn-a",
		Frequency: schedule.FreqMonthly, StartDate: day(2024, time.January, 1),
		IsActive: false,
	}))
	require.NoError(t, mem.InsertRecord(ctx, schedule.Record{
		ID: "rec-1", ScheduleID: "sch-off",
		DueDate: day(2024, time.June, 1), Status: schedule.StatusUpcoming,
	}))

	result, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.RecordsUpdated)
}
