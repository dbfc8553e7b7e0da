/*
Package refdata holds the facility and compliance-function reference data
the schedule engine consumes.

PURPOSE:
  The engine references facilities and functions by identifier only; this
  package is the read-mostly collaborator behind those identifiers. It is
  deliberately thin - name/identity lookups, default frequencies, citation
  references - because reference-data management is not the system's core.

SEE ALSO:
  - store/sqlite: Directory implementation
  - schedule/store.go: FunctionDefaults, the engine-facing slice of this
*/
package refdata

import (
	"context"
	"errors"

	"github.com/warp/compliance-engine/schedule"
)

var (
	ErrFacilityNotFound = errors.New("facility not found")
	ErrFunctionNotFound = errors.New("compliance function not found")
)

// Facility is a site with compliance obligations.
type Facility struct {
	ID           schedule.FacilityID `json:"id"`
	Name         string              `json:"name"`
	Address      string              `json:"address,omitempty"`
	FacilityType string              `json:"facility_type,omitempty"`
	Capacity     int                 `json:"capacity,omitempty"`
	IsActive     bool                `json:"is_active"`
}

// Function is a fire-safety or environmental-health compliance function.
type Function struct {
	ID                 schedule.FunctionID `json:"id"`
	Name               string              `json:"name"`
	Description        string              `json:"description,omitempty"`
	Category           string              `json:"category,omitempty"`
	DefaultFrequency   schedule.Frequency  `json:"default_frequency"`
	CitationReferences []string            `json:"citation_references"`
	IsActive           bool                `json:"is_active"`
}

// Directory is the reference-data store.
type Directory interface {
	CreateFacility(ctx context.Context, f Facility) error
	GetFacility(ctx context.Context, id schedule.FacilityID) (Facility, error)
	ListFacilities(ctx context.Context) ([]Facility, error)

	CreateFunction(ctx context.Context, f Function) error
	GetFunction(ctx context.Context, id schedule.FunctionID) (Function, error)
	ListFunctions(ctx context.Context) ([]Function, error)
}
