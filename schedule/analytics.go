/*
analytics.go - Read-only rollups over schedules and records

PURPOSE:
  Derives reporting views entirely from store reads: totals, frequency
  breakdowns, upcoming due dates, per-facility status rollups, and the
  statistics summary. Performs no mutation whatsoever.

PRECISION:
  The completion rate is computed with decimal arithmetic and rounded to
  two places; record counts never pass through floats.
*/
package schedule

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// Aggregator computes read-only rollups.
type Aggregator struct {
	store Store
	clock Clock
}

func NewAggregator(store Store, clock Clock) *Aggregator {
	return &Aggregator{store: store, clock: clock}
}

// =============================================================================
// SCHEDULE ANALYTICS
// =============================================================================

// upcomingLimit caps the upcoming-due-dates list in the analytics view.
const upcomingLimit = 20

// UpcomingDueDate is one schedule's next occurrence, for the analytics view.
type UpcomingDueDate struct {
	ScheduleID   ScheduleID `json:"schedule_id"`
	FacilityID   FacilityID `json:"facility_id"`
	FunctionID   FunctionID `json:"function_id"`
	NextDueDate  Date       `json:"next_due_date"`
	DaysUntilDue int        `json:"days_until_due"`
}

// ScheduleAnalytics is the scheduling rollup.
type ScheduleAnalytics struct {
	TotalSchedules     int               `json:"total_schedules"`
	FrequencyBreakdown map[Frequency]int `json:"frequency_breakdown"`
	UpcomingDueDates   []UpcomingDueDate `json:"upcoming_due_dates"`
}

// ScheduleSummary rolls up active schedules: total, count per frequency
// code, and the nearest upcoming due dates (top 20, soonest first).
// Optionally scoped to one facility.
func (a *Aggregator) ScheduleSummary(ctx context.Context, facilityID *FacilityID) (ScheduleAnalytics, error) {
	schedules, err := a.activeSchedules(ctx, facilityID)
	if err != nil {
		return ScheduleAnalytics{}, err
	}

	today := a.clock.Today()
	out := ScheduleAnalytics{
		FrequencyBreakdown: make(map[Frequency]int),
		UpcomingDueDates:   []UpcomingDueDate{},
	}

	for _, s := range schedules {
		out.TotalSchedules++
		out.FrequencyBreakdown[s.Frequency]++

		if s.NextDueDate.IsZero() {
			continue
		}
		days := DaysUntil(today, s.NextDueDate)
		if days < 0 {
			continue
		}
		out.UpcomingDueDates = append(out.UpcomingDueDates, UpcomingDueDate{
			ScheduleID:   s.ID,
			FacilityID:   s.FacilityID,
			FunctionID:   s.FunctionID,
			NextDueDate:  s.NextDueDate,
			DaysUntilDue: days,
		})
	}

	sort.Slice(out.UpcomingDueDates, func(i, j int) bool {
		return out.UpcomingDueDates[i].DaysUntilDue < out.UpcomingDueDates[j].DaysUntilDue
	})
	if len(out.UpcomingDueDates) > upcomingLimit {
		out.UpcomingDueDates = out.UpcomingDueDates[:upcomingLimit]
	}

	return out, nil
}

func (a *Aggregator) activeSchedules(ctx context.Context, facilityID *FacilityID) ([]Schedule, error) {
	if facilityID == nil {
		return a.store.ActiveSchedules(ctx)
	}
	all, err := a.store.SchedulesByFacility(ctx, *facilityID)
	if err != nil {
		return nil, err
	}
	active := all[:0]
	for _, s := range all {
		if s.IsActive {
			active = append(active, s)
		}
	}
	return active, nil
}

// =============================================================================
// RECORD QUERIES
// =============================================================================

// Overdue returns open records whose due date has passed, optionally
// scoped to one facility.
func (a *Aggregator) Overdue(ctx context.Context, facilityID *FacilityID) ([]Record, error) {
	return a.store.OverdueRecords(ctx, a.clock.Today(), facilityID)
}

// DueWithin returns open records due between today and today + days,
// optionally scoped to one facility.
func (a *Aggregator) DueWithin(ctx context.Context, days int, facilityID *FacilityID) ([]Record, error) {
	today := a.clock.Today()
	return a.store.RecordsDueWithin(ctx, today, today.AddDays(days), facilityID)
}

// StatusRollup returns record counts by status, optionally scoped to one
// facility.
func (a *Aggregator) StatusRollup(ctx context.Context, facilityID *FacilityID) (map[Status]int, error) {
	return a.store.CountRecordsByStatus(ctx, facilityID)
}

// =============================================================================
// STATISTICS SUMMARY
// =============================================================================

// Statistics is the compliance statistics summary.
type Statistics struct {
	TotalRecords     int             `json:"total_records"`
	CompletedRecords int             `json:"completed_records"`
	CompletionRate   decimal.Decimal `json:"completion_rate"`
	OverdueRecords   int             `json:"overdue_records"`
}

// Statistics computes totals, completion rate (percent, two decimal
// places) and overdue count, optionally scoped to one facility.
func (a *Aggregator) Statistics(ctx context.Context, facilityID *FacilityID) (Statistics, error) {
	counts, err := a.store.CountRecordsByStatus(ctx, facilityID)
	if err != nil {
		return Statistics{}, err
	}

	var stats Statistics
	for _, n := range counts {
		stats.TotalRecords += n
	}
	stats.CompletedRecords = counts[StatusCompleted]

	if stats.TotalRecords > 0 {
		stats.CompletionRate = decimal.NewFromInt(int64(stats.CompletedRecords)).
			Div(decimal.NewFromInt(int64(stats.TotalRecords))).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	} else {
		stats.CompletionRate = decimal.Zero
	}

	overdue, err := a.store.OverdueRecords(ctx, a.clock.Today(), facilityID)
	if err != nil {
		return Statistics{}, err
	}
	stats.OverdueRecords = len(overdue)

	return stats, nil
}
