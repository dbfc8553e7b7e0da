/*
handlers.go - HTTP API handlers for the compliance schedule engine

PURPOSE:
  Exposes the compliance engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Schedules:
    GET    /api/schedules                 List schedules (optional ?facility_id=)
    POST   /api/schedules                 Create schedule
    GET    /api/schedules/{id}           Get schedule
    PUT    /api/schedules/{id}           Update schedule
    DELETE /api/schedules/{id}           Deactivate schedule
    POST   /api/schedules/bulk-update    Bulk frequency/assignee updates
    GET    /api/schedules/{id}/records   Records for a schedule

  Records:
    GET    /api/records/{id}             Get record
    POST   /api/records/{id}/complete    Complete record
    GET    /api/records/overdue          Overdue records
    GET    /api/records/due              Records due within ?days=

  Maintenance:
    POST   /api/maintenance/generate     Generate records + mark overdue
    POST   /api/maintenance/sweep        Mark overdue only

  Analytics:
    GET    /api/analytics/schedules      Schedule rollup + upcoming due dates
    GET    /api/analytics/statistics     Completion statistics
    GET    /api/analytics/status         Record counts by status

  Reference data:
    GET/POST /api/facilities, GET /api/facilities/{id}
    GET      /api/facilities/{id}/dashboard?year=
    GET/POST /api/functions, GET /api/functions/{id}

  Demo:
    POST   /api/seed                     Load demo dataset

ARCHITECTURE:
  Handler struct holds all dependencies: store, registry, generator,
  sweeper, completer, bulk updater, aggregator, clock.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (duplicate schedule, already completed)
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.
  The completing/updating actor is taken from the request body.

SEE ALSO:
  - dto.go: Request/response data structures
  - seed.go: Demo dataset loader
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/warp/compliance-engine/refdata"
	"github.com/warp/compliance-engine/schedule"
	"github.com/warp/compliance-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// DefaultHorizonDays is the generation look-ahead when the request does
// not override it.
const DefaultHorizonDays = 45

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store

	Registry   *schedule.Registry
	Generator  *schedule.Generator
	Sweeper    *schedule.Sweeper
	Completer  *schedule.Completer
	Bulk       *schedule.BulkUpdater
	Aggregator *schedule.Aggregator

	Clock       schedule.Clock
	HorizonDays int
}

// NewHandler wires the engine components around the given store.
func NewHandler(store *sqlite.Store) *Handler {
	clock := schedule.SystemClock{}
	registry := schedule.NewRegistry(store, store, clock)
	return &Handler{
		Store:       store,
		Registry:    registry,
		Generator:   schedule.NewGenerator(store, clock),
		Sweeper:     schedule.NewSweeper(store, clock),
		Completer:   schedule.NewCompleter(store, clock),
		Bulk:        schedule.NewBulkUpdater(registry, store, clock),
		Aggregator:  schedule.NewAggregator(store, clock),
		Clock:       clock,
		HorizonDays: DefaultHorizonDays,
	}
}

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

// ListSchedules returns schedules, optionally scoped to one facility.
func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		schedules []schedule.Schedule
		err       error
	)
	if fid := r.URL.Query().Get("facility_id"); fid != "" {
		schedules, err = h.Registry.GetByFacility(ctx, schedule.FacilityID(fid))
	} else {
		schedules, err = h.Store.ActiveSchedules(ctx)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list schedules", err)
		return
	}

	writeJSON(w, http.StatusOK, toScheduleDTOs(schedules))
}

// CreateSchedule registers a facility/function schedule.
func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req CreateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	in := schedule.CreateScheduleInput{
		FacilityID: schedule.FacilityID(req.FacilityID),
		FunctionID: schedule.FunctionID(req.FunctionID),
		Frequency:  schedule.Frequency(req.Frequency),
		AssignedTo: req.AssignedTo,
	}
	if req.StartDate != "" {
		d, err := schedule.ParseDate(req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start_date format (use YYYY-MM-DD)", err)
			return
		}
		in.StartDate = d
	}

	created, err := h.Registry.Create(r.Context(), in)
	if err != nil {
		writeScheduleError(w, "Failed to create schedule", err)
		return
	}

	writeJSON(w, http.StatusCreated, toScheduleDTO(created))
}

// GetSchedule returns a single schedule.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	id := schedule.ScheduleID(chi.URLParam(r, "id"))

	s, err := h.Registry.Get(r.Context(), id)
	if err != nil {
		writeScheduleError(w, "Failed to get schedule", err)
		return
	}

	writeJSON(w, http.StatusOK, toScheduleDTO(s))
}

// UpdateSchedule changes frequency/assignee/start date.
func (h *Handler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	id := schedule.ScheduleID(chi.URLParam(r, "id"))

	var req UpdateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	in, err := updateInputFromRequest(req.Frequency, req.AssignedTo, req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date format (use YYYY-MM-DD)", err)
		return
	}

	updated, err := h.Registry.Update(r.Context(), id, in)
	if err != nil {
		writeScheduleError(w, "Failed to update schedule", err)
		return
	}

	writeJSON(w, http.StatusOK, toScheduleDTO(updated))
}

// DeactivateSchedule retires a schedule without deleting its history.
func (h *Handler) DeactivateSchedule(w http.ResponseWriter, r *http.Request) {
	id := schedule.ScheduleID(chi.URLParam(r, "id"))

	s, err := h.Registry.Deactivate(r.Context(), id)
	if err != nil {
		writeScheduleError(w, "Failed to deactivate schedule", err)
		return
	}

	writeJSON(w, http.StatusOK, toScheduleDTO(s))
}

// BulkUpdateSchedules applies a batch of per-schedule updates. Item
// failures are reported per item; the batch itself always succeeds.
func (h *Handler) BulkUpdateSchedules(w http.ResponseWriter, r *http.Request) {
	var req BulkUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.Updates) == 0 {
		writeError(w, http.StatusBadRequest, "At least one update is required", nil)
		return
	}

	items := make([]schedule.BulkUpdateItem, 0, len(req.Updates))
	for _, u := range req.Updates {
		in, err := updateInputFromRequest(u.Frequency, u.AssignedTo, u.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("Invalid start_date for schedule %s (use YYYY-MM-DD)", u.ScheduleID), err)
			return
		}
		items = append(items, schedule.BulkUpdateItem{
			ScheduleID: schedule.ScheduleID(u.ScheduleID),
			Frequency:  in.Frequency,
			AssignedTo: in.AssignedTo,
			StartDate:  in.StartDate,
		})
	}

	result, err := h.Bulk.BulkUpdate(r.Context(), items)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to apply bulk update", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func updateInputFromRequest(frequency, assignedTo, startDate *string) (schedule.UpdateScheduleInput, error) {
	var in schedule.UpdateScheduleInput
	if frequency != nil {
		f := schedule.Frequency(*frequency)
		in.Frequency = &f
	}
	in.AssignedTo = assignedTo
	if startDate != nil {
		d, err := schedule.ParseDate(*startDate)
		if err != nil {
			return in, err
		}
		in.StartDate = &d
	}
	return in, nil
}

// ListScheduleRecords returns the record history for one schedule.
func (h *Handler) ListScheduleRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := schedule.ScheduleID(chi.URLParam(r, "id"))

	if _, err := h.Registry.Get(ctx, id); err != nil {
		writeScheduleError(w, "Failed to get schedule", err)
		return
	}

	records, err := h.Store.RecordsBySchedule(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list records", err)
		return
	}

	writeJSON(w, http.StatusOK, toRecordDTOs(records))
}

// =============================================================================
// RECORD HANDLERS
// =============================================================================

// GetRecord returns a single record.
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	id := schedule.RecordID(chi.URLParam(r, "id"))

	rec, err := h.Store.GetRecord(r.Context(), id)
	if err != nil {
		writeScheduleError(w, "Failed to get record", err)
		return
	}

	writeJSON(w, http.StatusOK, toRecordDTO(rec))
}

// CompleteRecord finalizes a record and advances the schedule's cached
// next due date.
func (h *Handler) CompleteRecord(w http.ResponseWriter, r *http.Request) {
	id := schedule.RecordID(chi.URLParam(r, "id"))

	var req CompleteRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rec, err := h.Completer.Complete(r.Context(), id, req.CompletedBy, req.Notes)
	if err != nil {
		writeScheduleError(w, "Failed to complete record", err)
		return
	}

	writeJSON(w, http.StatusOK, toRecordDTO(rec))
}

// ListOverdueRecords returns overdue records, optionally per facility.
func (h *Handler) ListOverdueRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.Aggregator.Overdue(r.Context(), facilityFilter(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list overdue records", err)
		return
	}

	writeJSON(w, http.StatusOK, toRecordDTOs(records))
}

// ListDueRecords returns open records due within ?days= (default 7).
func (h *Handler) ListDueRecords(w http.ResponseWriter, r *http.Request) {
	days := schedule.DefaultUpcomingWindowDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid days parameter", err)
			return
		}
		days = n
	}

	records, err := h.Aggregator.DueWithin(r.Context(), days, facilityFilter(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list due records", err)
		return
	}

	writeJSON(w, http.StatusOK, toRecordDTOs(records))
}

// =============================================================================
// MAINTENANCE HANDLERS
// =============================================================================

// RunGeneration creates records for all active schedules inside the
// horizon and marks overdue records. Safe to call repeatedly.
func (h *Handler) RunGeneration(w http.ResponseWriter, r *http.Request) {
	horizonDays := h.HorizonDays
	if raw := r.URL.Query().Get("horizon_days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid horizon_days parameter", err)
			return
		}
		horizonDays = n
	}

	result, err := h.Generator.Generate(r.Context(), horizonDays)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate records", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// RunSweep marks past-due open records overdue without generating.
func (h *Handler) RunSweep(w http.ResponseWriter, r *http.Request) {
	result, err := h.Sweeper.Sweep(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to sweep overdue records", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// =============================================================================
// ANALYTICS HANDLERS
// =============================================================================

// GetScheduleAnalytics returns the schedule rollup and upcoming due dates.
func (h *Handler) GetScheduleAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.Aggregator.ScheduleSummary(r.Context(), facilityFilter(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute analytics", err)
		return
	}

	writeJSON(w, http.StatusOK, analytics)
}

// GetStatistics returns completion statistics.
func (h *Handler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Aggregator.Statistics(r.Context(), facilityFilter(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute statistics", err)
		return
	}

	writeJSON(w, http.StatusOK, StatisticsDTO{
		TotalRecords:     stats.TotalRecords,
		CompletedRecords: stats.CompletedRecords,
		CompletionRate:   stats.CompletionRate.InexactFloat64(),
		OverdueRecords:   stats.OverdueRecords,
	})
}

// GetStatusRollup returns record counts keyed by status.
func (h *Handler) GetStatusRollup(w http.ResponseWriter, r *http.Request) {
	counts, err := h.Aggregator.StatusRollup(r.Context(), facilityFilter(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute status rollup", err)
		return
	}

	out := make(map[string]int, len(counts))
	for status, n := range counts {
		out[string(status)] = n
	}
	writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// DASHBOARD HANDLER
// =============================================================================

// GetDashboard returns the facility's month-by-month compliance matrix
// for ?year= (default: current year).
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facilityID := schedule.FacilityID(chi.URLParam(r, "id"))

	year := h.Clock.Today().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year parameter", err)
			return
		}
		year = n
	}

	facility, err := h.Store.GetFacility(ctx, facilityID)
	if err != nil {
		if errors.Is(err, refdata.ErrFacilityNotFound) {
			writeError(w, http.StatusNotFound, "Facility not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get facility", err)
		return
	}

	dash, err := h.Aggregator.BuildDashboard(ctx, facilityID, year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build dashboard", err)
		return
	}

	writeJSON(w, http.StatusOK, h.toDashboardDTO(ctx, facility, dash))
}

func (h *Handler) toDashboardDTO(ctx context.Context, facility refdata.Facility, dash schedule.Dashboard) DashboardDTO {
	out := DashboardDTO{
		FacilityID:   string(dash.FacilityID),
		FacilityName: facility.Name,
		Year:         dash.Year,
		Schedules:    make([]DashboardRowDTO, 0, len(dash.Rows)),
	}

	for _, row := range dash.Rows {
		dto := DashboardRowDTO{
			ScheduleID:         string(row.Schedule.ID),
			FunctionName:       string(row.Schedule.FunctionID),
			Frequency:          string(row.Schedule.Frequency),
			FrequencyDisplay:   row.Schedule.Frequency.Display(),
			CitationReferences: []string{},
			MonthlyStatus:      make(map[int]DashboardCellDTO, len(row.Months)),
		}

		// Enrich from the function registry when the id resolves.
		if fn, err := h.Store.GetFunction(ctx, row.Schedule.FunctionID); err == nil {
			dto.FunctionName = fn.Name
			dto.FunctionCategory = fn.Category
			if fn.CitationReferences != nil {
				dto.CitationReferences = fn.CitationReferences
			}
		}

		for month, cell := range row.Months {
			c := DashboardCellDTO{
				Status:       string(cell.Status),
				HasDocuments: cell.HasDocuments,
			}
			if cell.DueDate != nil {
				c.DueDate = cell.DueDate.String()
			}
			if cell.CompletedDate != nil {
				c.CompletedDate = cell.CompletedDate.String()
			}
			dto.MonthlyStatus[int(month)] = c
		}

		out.Schedules = append(out.Schedules, dto)
	}

	return out
}

// =============================================================================
// REFERENCE DATA HANDLERS
// =============================================================================

// ListFacilities returns all facilities.
func (h *Handler) ListFacilities(w http.ResponseWriter, r *http.Request) {
	facilities, err := h.Store.ListFacilities(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list facilities", err)
		return
	}

	dtos := make([]FacilityDTO, len(facilities))
	for i, f := range facilities {
		dtos[i] = toFacilityDTO(f)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetFacility returns one facility.
func (h *Handler) GetFacility(w http.ResponseWriter, r *http.Request) {
	id := schedule.FacilityID(chi.URLParam(r, "id"))

	f, err := h.Store.GetFacility(r.Context(), id)
	if err != nil {
		if errors.Is(err, refdata.ErrFacilityNotFound) {
			writeError(w, http.StatusNotFound, "Facility not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get facility", err)
		return
	}

	writeJSON(w, http.StatusOK, toFacilityDTO(f))
}

// CreateFacility registers a facility.
func (h *Handler) CreateFacility(w http.ResponseWriter, r *http.Request) {
	var req CreateFacilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}

	f := refdata.Facility{
		ID:           schedule.FacilityID(newID()),
		Name:         req.Name,
		Address:      req.Address,
		FacilityType: req.FacilityType,
		Capacity:     req.Capacity,
		IsActive:     true,
	}

	if err := h.Store.CreateFacility(r.Context(), f); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create facility", err)
		return
	}

	writeJSON(w, http.StatusCreated, toFacilityDTO(f))
}

// ListFunctions returns all compliance functions.
func (h *Handler) ListFunctions(w http.ResponseWriter, r *http.Request) {
	functions, err := h.Store.ListFunctions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list functions", err)
		return
	}

	dtos := make([]FunctionDTO, len(functions))
	for i, f := range functions {
		dtos[i] = toFunctionDTO(f)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetFunction returns one compliance function.
func (h *Handler) GetFunction(w http.ResponseWriter, r *http.Request) {
	id := schedule.FunctionID(chi.URLParam(r, "id"))

	f, err := h.Store.GetFunction(r.Context(), id)
	if err != nil {
		if errors.Is(err, refdata.ErrFunctionNotFound) {
			writeError(w, http.StatusNotFound, "Function not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get function", err)
		return
	}

	writeJSON(w, http.StatusOK, toFunctionDTO(f))
}

// CreateFunction registers a compliance function.
func (h *Handler) CreateFunction(w http.ResponseWriter, r *http.Request) {
	var req CreateFunctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}

	freq, err := schedule.ParseFrequency(req.DefaultFrequency)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid default_frequency", err)
		return
	}

	f := refdata.Function{
		ID:                 schedule.FunctionID(newID()),
		Name:               req.Name,
		Description:        req.Description,
		Category:           req.Category,
		DefaultFrequency:   freq,
		CitationReferences: req.CitationReferences,
		IsActive:           true,
	}
	if f.CitationReferences == nil {
		f.CitationReferences = []string{}
	}

	if err := h.Store.CreateFunction(r.Context(), f); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create function", err)
		return
	}

	writeJSON(w, http.StatusCreated, toFunctionDTO(f))
}

// =============================================================================
// HELPERS
// =============================================================================

func facilityFilter(r *http.Request) *schedule.FacilityID {
	if raw := r.URL.Query().Get("facility_id"); raw != "" {
		id := schedule.FacilityID(raw)
		return &id
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeScheduleError maps engine errors onto HTTP statuses.
func writeScheduleError(w http.ResponseWriter, message string, err error) {
	switch {
	case schedule.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case schedule.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	case schedule.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func newID() string {
	return uuid.NewString()
}
