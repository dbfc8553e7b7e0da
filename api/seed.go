/*
seed.go - Demo dataset loader

PURPOSE:
  Populates the store with a realistic demo dataset: two care
  facilities, a catalogue of statutory compliance functions with their
  default frequencies and citation references, and one schedule per
  facility/function pair. Runs generation afterwards so the dashboard
  has records to show.

USAGE:
  POST /api/seed

  Idempotent-ish: re-posting skips facilities, functions and schedules
  that already exist (duplicate errors are counted, not fatal).

SEE ALSO:
  - handlers.go: Endpoint wiring
*/
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/warp/compliance-engine/refdata"
	"github.com/warp/compliance-engine/schedule"
)

// =============================================================================
// SEED DATA
// =============================================================================

type seedFunction struct {
	id        string
	name      string
	desc      string
	category  string
	frequency schedule.Frequency
	citations []string
}

var seedFacilities = []refdata.Facility{
	{
		ID:           "fac-maple-grove",
		Name:         "Maple Grove Care Home",
		Address:      "14 Orchard Lane, Kendal",
		FacilityType: "residential",
		Capacity:     42,
		IsActive:     true,
	},
	{
		ID:           "fac-riverside",
		Name:         "Riverside Lodge",
		Address:      "3 Mill Street, Lancaster",
		FacilityType: "nursing",
		Capacity:     58,
		IsActive:     true,
	},
}

var seedFunctions = []seedFunction{
	{
		id: "fn-fire-alarm-test", name: "Fire Alarm Call Point Test",
		desc:     "Weekly test of the fire alarm from a rotating call point",
		category: "fire_safety", frequency: schedule.FreqWeekly,
		citations: []string{"RRO 2005 Art. 17", "BS 5839-1"},
	},
	{
		id: "fn-fire-drill", name: "Fire Evacuation Drill",
		desc:     "Full evacuation drill covering day and night staffing",
		category: "fire_safety", frequency: schedule.FreqQuarterly,
		citations: []string{"RRO 2005 Art. 15"},
	},
	{
		id: "fn-emergency-lighting", name: "Emergency Lighting Function Test",
		desc:     "Monthly function test of emergency escape lighting",
		category: "fire_safety", frequency: schedule.FreqMonthly,
		citations: []string{"BS 5266-1"},
	},
	{
		id: "fn-fire-extinguishers", name: "Fire Extinguisher Service",
		desc:     "Annual service of portable fire extinguishers",
		category: "fire_safety", frequency: schedule.FreqAnnual,
		citations: []string{"BS 5306-3"},
	},
	{
		id: "fn-gas-safety", name: "Gas Safety Inspection",
		desc:     "Landlord gas safety inspection of appliances and flues",
		category: "environmental_health", frequency: schedule.FreqAnnual,
		citations: []string{"Gas Safety Regs 1998"},
	},
	{
		id: "fn-legionella-risk", name: "Legionella Risk Assessment Review",
		desc:     "Review of the water hygiene risk assessment",
		category: "environmental_health", frequency: schedule.FreqTwoYear,
		citations: []string{"HSE ACOP L8"},
	},
	{
		id: "fn-water-temps", name: "Water Temperature Monitoring",
		desc:     "Sentinel outlet hot and cold temperature checks",
		category: "environmental_health", frequency: schedule.FreqMonthly,
		citations: []string{"HSE HSG274"},
	},
	{
		id: "fn-pat-testing", name: "Portable Appliance Testing",
		desc:     "Inspection and test of portable electrical appliances",
		category: "electrical", frequency: schedule.FreqAnnual,
		citations: []string{"IET Code of Practice"},
	},
	{
		id: "fn-eicr", name: "Electrical Installation Condition Report",
		desc:     "Fixed wiring inspection of the installation",
		category: "electrical", frequency: schedule.FreqFiveYear,
		citations: []string{"BS 7671"},
	},
	{
		id: "fn-lift-service", name: "Passenger Lift Thorough Examination",
		desc:     "Thorough examination of passenger lifting equipment",
		category: "equipment", frequency: schedule.FreqSemiAnnual,
		citations: []string{"LOLER 1998 Reg. 9"},
	},
	{
		id: "fn-hoist-inspection", name: "Patient Hoist Inspection",
		desc:     "Thorough examination of patient hoists and slings",
		category: "equipment", frequency: schedule.FreqSemiAnnual,
		citations: []string{"LOLER 1998 Reg. 9"},
	},
	{
		id: "fn-fire-risk-assessment", name: "Fire Risk Assessment Review",
		desc:     "Review of the premises fire risk assessment",
		category: "fire_safety", frequency: schedule.FreqThreeYear,
		citations: []string{"RRO 2005 Art. 9"},
	},
}

// =============================================================================
// SEED HANDLER
// =============================================================================

// SeedResult reports what the seed pass created.
type SeedResult struct {
	Facilities       int `json:"facilities"`
	Functions        int `json:"functions"`
	Schedules        int `json:"schedules"`
	Skipped          int `json:"skipped"`
	RecordsGenerated int `json:"records_generated"`
}

// Seed loads the demo dataset and runs an initial generation pass.
func (h *Handler) Seed(w http.ResponseWriter, r *http.Request) {
	result, err := h.loadSeed(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load seed data", err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) loadSeed(ctx context.Context) (SeedResult, error) {
	var result SeedResult

	for _, f := range seedFacilities {
		if _, err := h.Store.GetFacility(ctx, f.ID); err == nil {
			result.Skipped++
			continue
		}
		if err := h.Store.CreateFacility(ctx, f); err != nil {
			return result, err
		}
		result.Facilities++
	}

	for _, sf := range seedFunctions {
		fn := refdata.Function{
			ID:                 schedule.FunctionID(sf.id),
			Name:               sf.name,
			Description:        sf.desc,
			Category:           sf.category,
			DefaultFrequency:   sf.frequency,
			CitationReferences: sf.citations,
			IsActive:           true,
		}
		if _, err := h.Store.GetFunction(ctx, fn.ID); err == nil {
			result.Skipped++
			continue
		}
		if err := h.Store.CreateFunction(ctx, fn); err != nil {
			return result, err
		}
		result.Functions++
	}

	// One schedule per facility/function pair, anchored a year back so
	// the dashboard shows history and some overdue entries.
	start := h.Clock.Today().AddDays(-365)
	for _, f := range seedFacilities {
		for _, sf := range seedFunctions {
			_, err := h.Registry.Create(ctx, schedule.CreateScheduleInput{
				FacilityID: f.ID,
				FunctionID: schedule.FunctionID(sf.id),
				StartDate:  start,
				AssignedTo: "maintenance.team",
			})
			if err != nil {
				if errors.Is(err, schedule.ErrDuplicateSchedule) {
					result.Skipped++
					continue
				}
				return result, err
			}
			result.Schedules++
		}
	}

	gen, err := h.Generator.Generate(ctx, h.HorizonDays)
	if err != nil {
		return result, err
	}
	result.RecordsGenerated = gen.RecordsGenerated

	return result, nil
}
