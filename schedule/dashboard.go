/*
dashboard.go - Facility dashboard projection (schedule x month matrix)

PURPOSE:
  Builds the read model behind the facility compliance dashboard: for a
  facility and year, one row per schedule, one cell per calendar month,
  each cell carrying {status, due_date, completed_date, has_documents}
  from the record (if any) due that month.

  Months without a record project as an empty pending cell, so the UI
  always renders a full 12-column row.

  Pure read model: derived by intersecting each schedule's generated
  records with calendar months, no mutation.
*/
package schedule

import (
	"context"
	"time"
)

// DashboardCell is one month's state for one schedule.
type DashboardCell struct {
	Status        Status `json:"status"`
	DueDate       *Date  `json:"due_date,omitempty"`
	CompletedDate *Date  `json:"completed_date,omitempty"`
	HasDocuments  bool   `json:"has_documents"`
}

// DashboardRow is one schedule's year, keyed by month 1-12.
type DashboardRow struct {
	Schedule Schedule                     `json:"schedule"`
	Months   map[time.Month]DashboardCell `json:"months"`
}

// Dashboard is the full facility/year matrix.
type Dashboard struct {
	FacilityID FacilityID     `json:"facility_id"`
	Year       int            `json:"year"`
	Rows       []DashboardRow `json:"rows"`
}

// BuildDashboard projects the facility's schedules onto the given year.
// Includes inactive schedules: past obligations remain visible.
func (a *Aggregator) BuildDashboard(ctx context.Context, facilityID FacilityID, year int) (Dashboard, error) {
	schedules, err := a.store.SchedulesByFacility(ctx, facilityID)
	if err != nil {
		return Dashboard{}, err
	}

	dash := Dashboard{FacilityID: facilityID, Year: year, Rows: []DashboardRow{}}

	for _, s := range schedules {
		records, err := a.store.RecordsByScheduleYear(ctx, s.ID, year)
		if err != nil {
			return Dashboard{}, err
		}

		row := DashboardRow{Schedule: s, Months: make(map[time.Month]DashboardCell, 12)}
		for m := time.January; m <= time.December; m++ {
			row.Months[m] = DashboardCell{Status: StatusPending}
		}
		for _, r := range records {
			r := r
			cell := DashboardCell{
				Status:       r.Status,
				DueDate:      &r.DueDate,
				HasDocuments: r.HasDocuments,
			}
			if !r.CompletedDate.IsZero() {
				cell.CompletedDate = &r.CompletedDate
			}
			row.Months[r.DueDate.Month()] = cell
		}

		dash.Rows = append(dash.Rows, row)
	}

	return dash, nil
}
