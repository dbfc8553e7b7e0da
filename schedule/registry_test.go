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
// TEST SETUP
// =============================================================================
// Note: day() is defined in frequency_test.go

func fixedClock(year int, month time.Month, d int) schedule.FixedClock {
	return schedule.FixedClock{Day: day(year, month, d)}
}

// newTestRegistry returns a registry over a fresh memory store with one
// registered function default (fn-gas: annual).
func newTestRegistry(clock schedule.Clock) (*schedule.Registry, *store.Memory) {
	mem := store.NewMemory()
	mem.RegisterFunctionDefault("fn-gas", schedule.FreqAnnual)
	return schedule.NewRegistry(mem, mem, clock), mem
}

// =============================================================================
// CREATE
// =============================================================================

func TestCreate_FirstOccurrenceFallsOnStartDate(t *testing.T) {
	// GIVEN: An annual schedule starting 2024-03-10
	// WHEN: Creating it
	// THEN: The cached next due date is the start date itself, not one
	//       period later

	reg, _ := newTestRegistry(fixedClock(2024, time.January, 2))

	s, err := reg.Create(context.Background(), schedule.CreateScheduleInput{
		FacilityID: "fac-1",
		FunctionID: "fn-gas",
		Frequency:  schedule.FreqAnnual,
		StartDate:  day(2024, time.March, 10),
	})
	require.NoError(t, err)

	assert.True(t, s.IsActive)
	assert.Equal(t, day(2024, time.March, 10), s.StartDate)
	assert.Equal(t, day(2024, time.March, 10), s.NextDueDate)
}

func TestCreate_DefaultsStartDateToToday(t *testing.T) {
	reg, _ := newTestRegistry(fixedClock(2024, time.June, 1))

	s, err := reg.Create(context.Background(), schedule.CreateScheduleInput{
		FacilityID: "fac-1",
		FunctionID: "fn-gas",
		Frequency:  schedule.FreqMonthly,
	})
	require.NoError(t, err)

	assert.Equal(t, day(2024, time.June, 1), s.StartDate)
	assert.Equal(t, day(2024, time.June, 1), s.NextDueDate)
}

func TestCreate_FrequencyFallsBackToFunctionDefault(t *testing.T) {
	// GIVEN: No frequency in the input
	// WHEN: Creating a schedule for a function with a registered default
	// THEN: The function's default frequency is used

	reg, _ := newTestRegistry(fixedClock(2024, time.June, 1))

	s, err := reg.Create(context.Background(), schedule.CreateScheduleInput{
		FacilityID: "fac-1",
		FunctionID: "fn-gas",
	})
	require.NoError(t, err)
	assert.Equal(t, schedule.FreqAnnual, s.Frequency)
}

func TestCreate_DuplicateActivePairRejected(t *testing.T) {
	// GIVEN: An active schedule for (fac-1, fn-gas)
	// WHEN: Creating another schedule for the same pair
	// THEN: DuplicateScheduleError naming the existing schedule

	ctx := context.Background()
	reg, _ := newTestRegistry(fixedClock(2024, time.June, 1))

	first, err := reg.Create(ctx, schedule.CreateScheduleInput{
		FacilityID: "fac-1", FunctionID: "fn-gas", Frequency: schedule.FreqAnnual,
	})
	require.NoError(t, err)

	_, err = reg.Create(ctx, schedule.CreateScheduleInput{
		FacilityID: "fac-1", FunctionID: "fn-gas", Frequency: schedule.FreqMonthly,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, schedule.ErrDuplicateSchedule)

	var dup *schedule.DuplicateScheduleError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, first.ID, dup.ExistingID)
}

func TestCreate_DeactivatedPairCanBeRecreated(t *testing.T) {
	// GIVEN: A deactivated schedule for a pair
	// WHEN: Creating a new schedule for the same pair
	// THEN: Creation succeeds; only ACTIVE pairs are unique

	ctx := context.Background()
	reg, _ := newTestRegistry(fixedClock(2024, time.June, 1))

	first, err := reg.Create(ctx, schedule.CreateScheduleInput{
		FacilityID: "fac-1", FunctionID: "fn-gas", Frequency: schedule.FreqAnnual,
	})
	require.NoError(t, err)

	_, err = reg.Deactivate(ctx, first.ID)
	require.NoError(t, err)

	_, err = reg.Create(ctx, schedule.CreateScheduleInput{
		FacilityID: "fac-1", FunctionID: "fn-gas", Frequency: schedule.FreqAnnual,
	})
	assert.NoError(t, err)
}

func TestCreate_ValidationErrors(t *testing.T) {
	ctx := context.Background()
	reg, _ := newTestRegistry(fixedClock(2024, time.June, 1))

	_, err := reg.Create(ctx, schedule.CreateScheduleInput{FunctionID: "fn-gas"})
	assert.ErrorIs(t, err, schedule.ErrMissingField, "missing facility_id")

	_, err = reg.Create(ctx, schedule.CreateScheduleInput{FacilityID: "fac-1"})
	assert.ErrorIs(t, err, schedule.ErrMissingField, "missing function_id")

	_, err = reg.Create(ctx, schedule.CreateScheduleInput{
		FacilityID: "fac-1", FunctionID: "fn-gas", Frequency: "fortnightly",
	})
	assert.ErrorIs(t, err, schedule.ErrUnknownFrequency)
}

// =============================================================================
// UPDATE
// =============================================================================

func TestUpdate_RecomputesNextDueFromAnchorWhenNothingCompleted(t *testing.T) {
	// GIVEN: A schedule with no completed records
	// WHEN: Changing its frequency
	// THEN: Next due date re-derives from the anchor, not from today

	ctx := context.Background()
	reg, _ := newTestRegistry(fixedClock(2024, time.June, 1))

	s, err := reg.Create(ctx, schedule.CreateScheduleInput{
		FacilityID: "fac-1", FunctionID: "fn-gas",
		Frequency: schedule.FreqAnnual, StartDate: day(2024, time.March, 10),
	})
	require.NoError(t, err)

	monthly := schedule.FreqMonthly
	updated, err := reg.Update(ctx, s.ID, schedule.UpdateScheduleInput{Frequency: &monthly})
	require.NoError(t, err)

	assert.Equal(t, schedule.FreqMonthly, updated.Frequency)
	assert.Equal(t, day(2024, time.March, 10), updated.NextDueDate)
}

func TestUpdate_RecomputesNextDueFromLastCompletion(t *testing.T) {
	// GIVEN: A quarterly schedule whose 2024-04-01 record is completed
	// WHEN: Switching the frequency to monthly
	// THEN: Next due date is one MONTH past the completed due date
	//       (2024-05-01), not one quarter

	ctx := context.Background()
	clock := fixedClock(2024, time.April, 5)
	reg, mem := newTestRegistry(clock)

	s, err := reg.Create(ctx, schedule.CreateScheduleInput{
		FacilityID: "fac-1", FunctionID: "fn-gas",
		Frequency: schedule.FreqQuarterly, StartDate: day(2024, time.January, 1),
	})
	require.NoError(t, err)

	rec := schedule.Record{
		ID: "rec-1", ScheduleID: s.ID,
		DueDate: day(2024, time.April, 1), Status: schedule.StatusUpcoming,
	}
	require.NoError(t, mem.InsertRecord(ctx, rec))
	_, err = mem.CompleteRecord(ctx, rec.ID, clock.Today(), "inspector", "")
	require.NoError(t, err)

	monthly := schedule.FreqMonthly
	updated, err := reg.Update(ctx, s.ID, schedule.UpdateScheduleInput{Frequency: &monthly})
	require.NoError(t, err)

	assert.Equal(t, day(2024, time.May, 1), updated.NextDueDate)
}

func TestUpdate_UnknownScheduleNotFound(t *testing.T) {
	reg, _ := newTestRegistry(fixedClock(2024, time.June, 1))

	assigned := "somebody"
	_, err := reg.Update(context.Background(), "missing", schedule.UpdateScheduleInput{AssignedTo: &assigned})
	assert.ErrorIs(t, err, schedule.ErrScheduleNotFound)
}

// =============================================================================
// DEACTIVATE
// =============================================================================

func TestDeactivate_KeepsScheduleAndHistory(t *testing.T) {
	ctx := context.Background()
	reg, mem := newTestRegistry(fixedClock(2024, time.June, 1))

	s, err := reg.Create(ctx, schedule.CreateScheduleInput{
		FacilityID: "fac-1", FunctionID: "fn-gas", Frequency: schedule.FreqAnnual,
	})
	require.NoError(t, err)

	got, err := reg.Deactivate(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	// Still readable, just excluded from the active set.
	_, err = reg.Get(ctx, s.ID)
	assert.NoError(t, err)

	active, err := mem.ActiveSchedules(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}
