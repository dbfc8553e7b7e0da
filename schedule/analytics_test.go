package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/compliance-engine/schedule"
	"github.com/warp/compliance-engine/schedule/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// seedAnalyticsFixture loads two facilities with schedules and records
// around today = 2024-06-10.
func seedAnalyticsFixture(t *testing.T) *store.Memory {
	t.Helper()
	ctx := context.Background()
	mem := store.NewMemory()

	schedules := []schedule.Schedule{
		{ID: "sch-1", FacilityID: "fac-1", FunctionID: "fn-gas", Frequency: schedule.FreqAnnual,
			StartDate: day(2024, time.March, 10), NextDueDate: day(2025, time.March, 10), IsActive: true},
		{ID: "sch-2", FacilityID: "fac-1", FunctionID: "fn-alarm", Frequency: schedule.FreqWeekly,
			StartDate: day(2024, time.June, 3), NextDueDate: day(2024, time.June, 17), IsActive: true},
		{ID: "sch-3", FacilityID: "fac-2", FunctionID: "fn-gas", Frequency: schedule.FreqMonthly,
			StartDate: day(2024, time.January, 15), NextDueDate: day(2024, time.June, 15), IsActive: true},
		{ID: "sch-4", FacilityID: "fac-2", FunctionID: "fn-lift", Frequency: schedule.FreqSemiAnnual,
			StartDate: day(2023, time.January, 1), NextDueDate: day(2024, time.July, 1), IsActive: false},
	}
	for _, s := range schedules {
		require.NoError(t, mem.InsertSchedule(ctx, s))
	}

	records := []schedule.Record{
		{ID: "rec-1", ScheduleID: "sch-1", DueDate: day(2024, time.March, 10),
			Status: schedule.StatusCompleted, CompletedDate: day(2024, time.March, 12), CompletedBy: "inspector"},
		{ID: "rec-2", ScheduleID: "sch-2", DueDate: day(2024, time.June, 3), Status: schedule.StatusOverdue},
		{ID: "rec-3", ScheduleID: "sch-2", DueDate: day(2024, time.June, 10), Status: schedule.StatusUpcoming},
		{ID: "rec-4", ScheduleID: "sch-3", DueDate: day(2024, time.June, 15), Status: schedule.StatusUpcoming},
		{ID: "rec-5", ScheduleID: "sch-3", DueDate: day(2024, time.July, 15), Status: schedule.StatusPending},
	}
	for _, r := range records {
		require.NoError(t, mem.InsertRecord(ctx, r))
	}
	return mem
}

// =============================================================================
// SCHEDULE ROLLUP
// =============================================================================

func TestScheduleSummary_CountsAndUpcoming(t *testing.T) {
	// GIVEN: Three active schedules (one annual, one weekly, one monthly)
	//        and one inactive
	// WHEN: Summarizing without a facility filter
	// THEN: Totals and frequency breakdown cover only active schedules,
	//       and upcoming due dates are sorted soonest first

	mem := seedAnalyticsFixture(t)
	agg := schedule.NewAggregator(mem, fixedClock(2024, time.June, 10))

	out, err := agg.ScheduleSummary(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 3, out.TotalSchedules)
	assert.Equal(t, 1, out.FrequencyBreakdown[schedule.FreqAnnual])
	assert.Equal(t, 1, out.FrequencyBreakdown[schedule.FreqWeekly])
	assert.Equal(t, 1, out.FrequencyBreakdown[schedule.FreqMonthly])
	assert.Zero(t, out.FrequencyBreakdown[schedule.FreqSemiAnnual], "inactive excluded")

	require.Len(t, out.UpcomingDueDates, 3)
	assert.Equal(t, schedule.ScheduleID("sch-3"), out.UpcomingDueDates[0].ScheduleID)
	assert.Equal(t, 5, out.UpcomingDueDates[0].DaysUntilDue)
	assert.Equal(t, schedule.ScheduleID("sch-2"), out.UpcomingDueDates[1].ScheduleID)
	assert.Equal(t, 7, out.UpcomingDueDates[1].DaysUntilDue)
}

func TestScheduleSummary_FacilityScoped(t *testing.T) {
	mem := seedAnalyticsFixture(t)
	agg := schedule.NewAggregator(mem, fixedClock(2024, time.June, 10))

	fac := schedule.FacilityID("fac-1")
	out, err := agg.ScheduleSummary(context.Background(), &fac)
	require.NoError(t, err)

	assert.Equal(t, 2, out.TotalSchedules)
}

// =============================================================================
// RECORD QUERIES
// =============================================================================

func TestOverdueAndDueWithin(t *testing.T) {
	mem := seedAnalyticsFixture(t)
	agg := schedule.NewAggregator(mem, fixedClock(2024, time.June, 10))
	ctx := context.Background()

	overdue, err := agg.Overdue(ctx, nil)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, schedule.RecordID("rec-2"), overdue[0].ID)

	// rec-3 (due today) and rec-4 (due in 5 days) are inside a 7-day
	// window; the completed and far-future records are not.
	due, err := agg.DueWithin(ctx, 7, nil)
	require.NoError(t, err)
	assert.Len(t, due, 2)

	fac := schedule.FacilityID("fac-2")
	dueFac, err := agg.DueWithin(ctx, 7, &fac)
	require.NoError(t, err)
	require.Len(t, dueFac, 1)
	assert.Equal(t, schedule.RecordID("rec-4"), dueFac[0].ID)
}

// =============================================================================
// STATISTICS
// =============================================================================

func TestStatistics_CompletionRateRounded(t *testing.T) {
	// GIVEN: 5 records, 1 completed, 1 overdue
	// WHEN: Computing statistics
	// THEN: Rate is 20.00 percent with two-decimal rounding

	mem := seedAnalyticsFixture(t)
	agg := schedule.NewAggregator(mem, fixedClock(2024, time.June, 10))

	stats, err := agg.Statistics(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 5, stats.TotalRecords)
	assert.Equal(t, 1, stats.CompletedRecords)
	assert.Equal(t, 1, stats.OverdueRecords)
	assert.True(t, stats.CompletionRate.Equal(decimal.NewFromInt(20)),
		"expected 20%%, got %s", stats.CompletionRate)
}

func TestStatistics_EmptyStoreIsAllZeroes(t *testing.T) {
	agg := schedule.NewAggregator(store.NewMemory(), fixedClock(2024, time.June, 10))

	stats, err := agg.Statistics(context.Background(), nil)
	require.NoError(t, err)

	assert.Zero(t, stats.TotalRecords)
	assert.True(t, stats.CompletionRate.IsZero())
}

func TestStatusRollup(t *testing.T) {
	mem := seedAnalyticsFixture(t)
	agg := schedule.NewAggregator(mem, fixedClock(2024, time.June, 10))

	counts, err := agg.StatusRollup(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, counts[schedule.StatusCompleted])
	assert.Equal(t, 1, counts[schedule.StatusOverdue])
	assert.Equal(t, 2, counts[schedule.StatusUpcoming])
	assert.Equal(t, 1, counts[schedule.StatusPending])
}

// =============================================================================
// DASHBOARD
// =============================================================================

func TestBuildDashboard_MonthMatrix(t *testing.T) {
	// GIVEN: A facility with an annual schedule completed in March
	// WHEN: Building the dashboard for 2024
	// THEN: March carries the completed record; the other 11 months
	//       default to pending with no due date

	mem := seedAnalyticsFixture(t)
	agg := schedule.NewAggregator(mem, fixedClock(2024, time.June, 10))

	dash, err := agg.BuildDashboard(context.Background(), "fac-1", 2024)
	require.NoError(t, err)

	assert.Equal(t, schedule.FacilityID("fac-1"), dash.FacilityID)
	assert.Equal(t, 2024, dash.Year)
	require.Len(t, dash.Rows, 2)

	var annual *schedule.DashboardRow
	for i := range dash.Rows {
		if dash.Rows[i].Schedule.ID == "sch-1" {
			annual = &dash.Rows[i]
		}
	}
	require.NotNil(t, annual)
	require.Len(t, annual.Months, 12)

	march := annual.Months[time.March]
	assert.Equal(t, schedule.StatusCompleted, march.Status)
	require.NotNil(t, march.DueDate)
	assert.Equal(t, day(2024, time.March, 10), *march.DueDate)
	require.NotNil(t, march.CompletedDate)
	assert.Equal(t, day(2024, time.March, 12), *march.CompletedDate)

	april := annual.Months[time.April]
	assert.Equal(t, schedule.StatusPending, april.Status)
	assert.Nil(t, april.DueDate)
}

func TestBuildDashboard_IncludesInactiveSchedules(t *testing.T) {
	// Past obligations of a retired schedule stay visible.
	mem := seedAnalyticsFixture(t)
	agg := schedule.NewAggregator(mem, fixedClock(2024, time.June, 10))

	dash, err := agg.BuildDashboard(context.Background(), "fac-2", 2024)
	require.NoError(t, err)
	assert.Len(t, dash.Rows, 2)
}

func TestBuildDashboard_YearScoping(t *testing.T) {
	// Records from other years never leak into the requested matrix.
	mem := seedAnalyticsFixture(t)
	agg := schedule.NewAggregator(mem, fixedClock(2024, time.June, 10))

	dash, err := agg.BuildDashboard(context.Background(), "fac-1", 2023)
	require.NoError(t, err)

	for _, row := range dash.Rows {
		for month, cell := range row.Months {
			assert.Equal(t, schedule.StatusPending, cell.Status, "month %s", month)
			assert.Nil(t, cell.DueDate, "month %s", month)
		}
	}
}
