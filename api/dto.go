/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers and the engine, not in DTOs. DTOs are
  pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/warp/compliance-engine/refdata"
	"github.com/warp/compliance-engine/schedule"
)

// =============================================================================
// SCHEDULE TYPES
// =============================================================================

// ScheduleDTO represents a compliance schedule in API responses.
type ScheduleDTO struct {
	ID          string `json:"id"`
	FacilityID  string `json:"facility_id"`
	FunctionID  string `json:"function_id"`
	Frequency   string `json:"frequency"`
	StartDate   string `json:"start_date,omitempty"`
	NextDueDate string `json:"next_due_date,omitempty"`
	AssignedTo  string `json:"assigned_to,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// CreateScheduleRequest registers a facility/function pair.
// Frequency and start_date are optional: frequency falls back to the
// function's default, start_date to today.
type CreateScheduleRequest struct {
	FacilityID string `json:"facility_id"`
	FunctionID string `json:"function_id"`
	Frequency  string `json:"frequency,omitempty"`
	StartDate  string `json:"start_date,omitempty"`
	AssignedTo string `json:"assigned_to,omitempty"`
}

// UpdateScheduleRequest changes frequency/assignee/start date.
// Absent fields are left unchanged.
type UpdateScheduleRequest struct {
	Frequency  *string `json:"frequency,omitempty"`
	AssignedTo *string `json:"assigned_to,omitempty"`
	StartDate  *string `json:"start_date,omitempty"`
}

// BulkUpdateRequest applies one update spec per schedule id.
type BulkUpdateRequest struct {
	Updates []BulkUpdateItemRequest `json:"updates"`
}

type BulkUpdateItemRequest struct {
	ScheduleID string  `json:"schedule_id"`
	Frequency  *string `json:"frequency,omitempty"`
	AssignedTo *string `json:"assigned_to,omitempty"`
	StartDate  *string `json:"start_date,omitempty"`
}

// =============================================================================
// RECORD TYPES
// =============================================================================

// RecordDTO represents a compliance record in API responses.
type RecordDTO struct {
	ID            string `json:"id"`
	ScheduleID    string `json:"schedule_id"`
	DueDate       string `json:"due_date"`
	Status        string `json:"status"`
	CompletedDate string `json:"completed_date,omitempty"`
	CompletedBy   string `json:"completed_by,omitempty"`
	Notes         string `json:"notes,omitempty"`
	HasDocuments  bool   `json:"has_documents"`
}

// CompleteRecordRequest finalizes a record.
type CompleteRecordRequest struct {
	CompletedBy string `json:"completed_by"`
	Notes       string `json:"notes,omitempty"`
}

// =============================================================================
// REFERENCE DATA TYPES
// =============================================================================

type FacilityDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Address      string `json:"address,omitempty"`
	FacilityType string `json:"facility_type,omitempty"`
	Capacity     int    `json:"capacity,omitempty"`
	IsActive     bool   `json:"is_active"`
}

type CreateFacilityRequest struct {
	Name         string `json:"name"`
	Address      string `json:"address,omitempty"`
	FacilityType string `json:"facility_type,omitempty"`
	Capacity     int    `json:"capacity,omitempty"`
}

type FunctionDTO struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Description        string   `json:"description,omitempty"`
	Category           string   `json:"category,omitempty"`
	DefaultFrequency   string   `json:"default_frequency"`
	FrequencyDisplay   string   `json:"frequency_display"`
	CitationReferences []string `json:"citation_references"`
	IsActive           bool     `json:"is_active"`
}

type CreateFunctionRequest struct {
	Name               string   `json:"name"`
	Description        string   `json:"description,omitempty"`
	Category           string   `json:"category,omitempty"`
	DefaultFrequency   string   `json:"default_frequency"`
	CitationReferences []string `json:"citation_references,omitempty"`
}

// =============================================================================
// ANALYTICS TYPES
// =============================================================================

// StatisticsDTO is the record-level statistics summary.
type StatisticsDTO struct {
	TotalRecords     int     `json:"total_records"`
	CompletedRecords int     `json:"completed_records"`
	CompletionRate   float64 `json:"completion_rate"`
	OverdueRecords   int     `json:"overdue_records"`
}

// DashboardDTO is the facility/year compliance matrix.
type DashboardDTO struct {
	FacilityID   string            `json:"facility_id"`
	FacilityName string            `json:"facility_name"`
	Year         int               `json:"year"`
	Schedules    []DashboardRowDTO `json:"schedules"`
}

type DashboardRowDTO struct {
	ScheduleID         string                   `json:"schedule_id"`
	FunctionName       string                   `json:"function_name"`
	FunctionCategory   string                   `json:"function_category,omitempty"`
	Frequency          string                   `json:"frequency"`
	FrequencyDisplay   string                   `json:"frequency_display"`
	CitationReferences []string                 `json:"citation_references"`
	MonthlyStatus      map[int]DashboardCellDTO `json:"monthly_status"`
}

type DashboardCellDTO struct {
	Status        string `json:"status"`
	DueDate       string `json:"due_date,omitempty"`
	CompletedDate string `json:"completed_date,omitempty"`
	HasDocuments  bool   `json:"has_documents"`
}

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toScheduleDTO(s schedule.Schedule) ScheduleDTO {
	return ScheduleDTO{
		ID:          string(s.ID),
		FacilityID:  string(s.FacilityID),
		FunctionID:  string(s.FunctionID),
		Frequency:   string(s.Frequency),
		StartDate:   dateString(s.StartDate),
		NextDueDate: dateString(s.NextDueDate),
		AssignedTo:  s.AssignedTo,
		IsActive:    s.IsActive,
	}
}

func toScheduleDTOs(schedules []schedule.Schedule) []ScheduleDTO {
	dtos := make([]ScheduleDTO, len(schedules))
	for i, s := range schedules {
		dtos[i] = toScheduleDTO(s)
	}
	return dtos
}

func toRecordDTO(r schedule.Record) RecordDTO {
	return RecordDTO{
		ID:            string(r.ID),
		ScheduleID:    string(r.ScheduleID),
		DueDate:       dateString(r.DueDate),
		Status:        string(r.Status),
		CompletedDate: dateString(r.CompletedDate),
		CompletedBy:   r.CompletedBy,
		Notes:         r.Notes,
		HasDocuments:  r.HasDocuments,
	}
}

func toRecordDTOs(records []schedule.Record) []RecordDTO {
	dtos := make([]RecordDTO, len(records))
	for i, r := range records {
		dtos[i] = toRecordDTO(r)
	}
	return dtos
}

func toFacilityDTO(f refdata.Facility) FacilityDTO {
	return FacilityDTO{
		ID:           string(f.ID),
		Name:         f.Name,
		Address:      f.Address,
		FacilityType: f.FacilityType,
		Capacity:     f.Capacity,
		IsActive:     f.IsActive,
	}
}

func toFunctionDTO(f refdata.Function) FunctionDTO {
	return FunctionDTO{
		ID:                 string(f.ID),
		Name:               f.Name,
		Description:        f.Description,
		Category:           f.Category,
		DefaultFrequency:   string(f.DefaultFrequency),
		FrequencyDisplay:   f.DefaultFrequency.Display(),
		CitationReferences: f.CitationReferences,
		IsActive:           f.IsActive,
	}
}

func dateString(d schedule.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}
