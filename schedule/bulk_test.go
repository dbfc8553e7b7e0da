package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/compliance-engine/schedule"
)

// =============================================================================
// BULK UPDATE
// =============================================================================

func TestBulkUpdate_PartialFailureIsReportedPerItem(t *testing.T) {
	// GIVEN: A batch with one good item, one unknown schedule, and one
	//        invalid frequency code
	// WHEN: Applying the batch
	// THEN: The good item lands; the two failures are reported per item
	//       and the batch call itself succeeds

	ctx := context.Background()
	clock := fixedClock(2024, time.June, 1)
	reg, mem := newTestRegistry(clock)
	bulk := schedule.NewBulkUpdater(reg, mem, clock)

	s, err := reg.Create(ctx, schedule.CreateScheduleInput{
		FacilityID: "fac-1", FunctionID: "fn-gas",
		Frequency: schedule.FreqAnnual, StartDate: day(2024, time.March, 10),
	})
	require.NoError(t, err)

	quarterly := schedule.FreqQuarterly
	bogus := schedule.Frequency("fortnightly")
	assignee := "new.owner"

	result, err := bulk.BulkUpdate(ctx, []schedule.BulkUpdateItem{
		{ScheduleID: s.ID, Frequency: &quarterly, AssignedTo: &assignee},
		{ScheduleID: "missing", AssignedTo: &assignee},
		{ScheduleID: s.ID, Frequency: &bogus},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.UpdatedCount)
	assert.Equal(t, 2, result.ErrorCount)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, schedule.ScheduleID("missing"), result.Errors[0].ScheduleID)

	got, err := reg.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, schedule.FreqQuarterly, got.Frequency)
	assert.Equal(t, "new.owner", got.AssignedTo)
}

func TestBulkUpdate_MissingAnchorFallsBackToToday(t *testing.T) {
	// GIVEN: A schedule whose anchor date is absent in the store
	// WHEN: Bulk-updating its frequency without supplying a start date
	// THEN: The update succeeds with today substituted as the anchor,
	//       instead of failing date arithmetic

	ctx := context.Background()
	clock := fixedClock(2024, time.June, 1)
	reg, mem := newTestRegistry(clock)
	bulk := schedule.NewBulkUpdater(reg, mem, clock)

	require.NoError(t, mem.InsertSchedule(ctx, schedule.Schedule{
		ID: "sch-null", FacilityID: "fac-1", FunctionID: "fn-x",
		Frequency: schedule.FreqAnnual, IsActive: true,
	}))

	monthly := schedule.FreqMonthly
	result, err := bulk.BulkUpdate(ctx, []schedule.BulkUpdateItem{
		{ScheduleID: "sch-null", Frequency: &monthly},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.UpdatedCount)
	assert.Equal(t, 0, result.ErrorCount)

	got, err := reg.Get(ctx, "sch-null")
	require.NoError(t, err)
	assert.Equal(t, day(2024, time.June, 1), got.StartDate)
	assert.Equal(t, day(2024, time.June, 1), got.NextDueDate)
	assert.Equal(t, schedule.FreqMonthly, got.Frequency)
}

func TestBulkUpdate_EmptyBatchIsANoOp(t *testing.T) {
	clock := fixedClock(2024, time.June, 1)
	reg, mem := newTestRegistry(clock)
	bulk := schedule.NewBulkUpdater(reg, mem, clock)

	result, err := bulk.BulkUpdate(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.UpdatedCount)
	assert.Equal(t, 0, result.ErrorCount)
	assert.Empty(t, result.Errors)
}

func TestBulkUpdate_ExplicitStartDateRebasesAnchor(t *testing.T) {
	// GIVEN: A schedule anchored 2024-03-10 with nothing completed
	// WHEN: Bulk-updating its start date to 2024-07-01
	// THEN: The next due date re-derives from the new anchor

	ctx := context.Background()
	clock := fixedClock(2024, time.June, 1)
	reg, mem := newTestRegistry(clock)
	bulk := schedule.NewBulkUpdater(reg, mem, clock)

	s, err := reg.Create(ctx, schedule.CreateScheduleInput{
		FacilityID: "fac-1", FunctionID: "fn-gas",
		Frequency: schedule.FreqAnnual, StartDate: day(2024, time.March, 10),
	})
	require.NoError(t, err)

	newStart := day(2024, time.July, 1)
	result, err := bulk.BulkUpdate(ctx, []schedule.BulkUpdateItem{
		{ScheduleID: s.ID, StartDate: &newStart},
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.UpdatedCount)

	got, err := reg.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, newStart, got.StartDate)
	assert.Equal(t, newStart, got.NextDueDate)
}
