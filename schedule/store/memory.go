// Package store provides an in-memory schedule.Store implementation
// (for testing/dev). Invariants match the SQLite store: pair uniqueness,
// (schedule, due date) uniqueness, and compare-and-set completion.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/compliance-engine/schedule"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	schedules map[schedule.ScheduleID]schedule.Schedule
	records   map[schedule.RecordID]schedule.Record
	byDueDate map[dueKey]schedule.RecordID
	defaults  map[schedule.FunctionID]schedule.Frequency
}

type dueKey struct {
	ScheduleID schedule.ScheduleID
	DueDate    string
}

func NewMemory() *Memory {
	return &Memory{
		schedules: make(map[schedule.ScheduleID]schedule.Schedule),
		records:   make(map[schedule.RecordID]schedule.Record),
		byDueDate: make(map[dueKey]schedule.RecordID),
		defaults:  make(map[schedule.FunctionID]schedule.Frequency),
	}
}

// RegisterFunctionDefault seeds a compliance function's default frequency.
func (m *Memory) RegisterFunctionDefault(id schedule.FunctionID, f schedule.Frequency) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaults[id] = f
}

// DefaultFrequency implements schedule.FunctionDefaults.
func (m *Memory) DefaultFrequency(_ context.Context, id schedule.FunctionID) (schedule.Frequency, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.defaults[id]
	if !ok {
		return "", schedule.ErrFunctionNotFound
	}
	return f, nil
}

// =============================================================================
// SCHEDULE STORE
// =============================================================================

func (m *Memory) InsertSchedule(_ context.Context, s schedule.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.IsActive {
		for _, existing := range m.schedules {
			if existing.IsActive && existing.FacilityID == s.FacilityID && existing.FunctionID == s.FunctionID {
				return &schedule.DuplicateScheduleError{
					FacilityID: s.FacilityID,
					FunctionID: s.FunctionID,
					ExistingID: existing.ID,
				}
			}
		}
	}
	m.schedules[s.ID] = s
	return nil
}

func (m *Memory) GetSchedule(_ context.Context, id schedule.ScheduleID) (schedule.Schedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.schedules[id]
	if !ok {
		return schedule.Schedule{}, schedule.ErrScheduleNotFound
	}
	return s, nil
}

func (m *Memory) SchedulesByFacility(_ context.Context, facilityID schedule.FacilityID) ([]schedule.Schedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []schedule.Schedule
	for _, s := range m.schedules {
		if s.FacilityID == facilityID {
			out = append(out, s)
		}
	}
	sortSchedules(out)
	return out, nil
}

func (m *Memory) ActiveSchedules(_ context.Context) ([]schedule.Schedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []schedule.Schedule
	for _, s := range m.schedules {
		if s.IsActive {
			out = append(out, s)
		}
	}
	sortSchedules(out)
	return out, nil
}

func (m *Memory) FindActiveSchedule(_ context.Context, facilityID schedule.FacilityID, functionID schedule.FunctionID) (schedule.Schedule, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.schedules {
		if s.IsActive && s.FacilityID == facilityID && s.FunctionID == functionID {
			return s, true, nil
		}
	}
	return schedule.Schedule{}, false, nil
}

func (m *Memory) UpdateSchedule(_ context.Context, s schedule.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.schedules[s.ID]; !ok {
		return schedule.ErrScheduleNotFound
	}
	m.schedules[s.ID] = s
	return nil
}

func (m *Memory) SetNextDue(_ context.Context, id schedule.ScheduleID, next schedule.Date, updatedAt schedule.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.schedules[id]
	if !ok {
		return schedule.ErrScheduleNotFound
	}
	s.NextDueDate = next
	s.UpdatedAt = updatedAt
	m.schedules[id] = s
	return nil
}

// =============================================================================
// RECORD STORE
// =============================================================================

func (m *Memory) InsertRecord(_ context.Context, r schedule.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := dueKey{ScheduleID: r.ScheduleID, DueDate: r.DueDate.String()}
	if _, exists := m.byDueDate[k]; exists {
		return schedule.ErrDuplicateRecord
	}
	m.records[r.ID] = r
	m.byDueDate[k] = r.ID
	return nil
}

func (m *Memory) GetRecord(_ context.Context, id schedule.RecordID) (schedule.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[id]
	if !ok {
		return schedule.Record{}, schedule.ErrRecordNotFound
	}
	return r, nil
}

func (m *Memory) RecordsBySchedule(_ context.Context, scheduleID schedule.ScheduleID) ([]schedule.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []schedule.Record
	for _, r := range m.records {
		if r.ScheduleID == scheduleID {
			out = append(out, r)
		}
	}
	sortRecords(out)
	return out, nil
}

func (m *Memory) RecordsByScheduleYear(_ context.Context, scheduleID schedule.ScheduleID, year int) ([]schedule.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []schedule.Record
	for _, r := range m.records {
		if r.ScheduleID == scheduleID && r.DueDate.Year() == year {
			out = append(out, r)
		}
	}
	sortRecords(out)
	return out, nil
}

func (m *Memory) MarkOverdue(_ context.Context, today schedule.Date) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	updated := 0
	for id, r := range m.records {
		if !r.Status.IsOpen() || r.Status == schedule.StatusOverdue {
			continue
		}
		if !r.DueDate.Before(today) {
			continue
		}
		owner, ok := m.schedules[r.ScheduleID]
		if !ok || !owner.IsActive {
			continue
		}
		r.Status = schedule.StatusOverdue
		r.UpdatedAt = today
		m.records[id] = r
		updated++
	}
	return updated, nil
}

func (m *Memory) CompleteRecord(_ context.Context, id schedule.RecordID, completedDate schedule.Date, completedBy, notes string) (schedule.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.records[id]
	if !ok {
		return schedule.Record{}, schedule.ErrRecordNotFound
	}
	// Compare-and-set under the lock: exactly one caller wins a race.
	if r.Status == schedule.StatusCompleted {
		return schedule.Record{}, &schedule.AlreadyCompletedError{
			RecordID:      id,
			CompletedBy:   r.CompletedBy,
			CompletedDate: r.CompletedDate,
		}
	}
	if !r.Status.CanTransitionTo(schedule.StatusCompleted) {
		return schedule.Record{}, &schedule.InvalidTransitionError{
			RecordID: id, From: r.Status, To: schedule.StatusCompleted,
		}
	}
	r.Status = schedule.StatusCompleted
	r.CompletedDate = completedDate
	r.CompletedBy = completedBy
	if notes != "" {
		r.Notes = notes
	}
	r.UpdatedAt = completedDate
	m.records[id] = r
	return r, nil
}

func (m *Memory) LastCompletedDueDate(_ context.Context, scheduleID schedule.ScheduleID) (schedule.Date, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var last schedule.Date
	found := false
	for _, r := range m.records {
		if r.ScheduleID != scheduleID || r.Status != schedule.StatusCompleted {
			continue
		}
		if !found || r.DueDate.After(last) {
			last = r.DueDate
			found = true
		}
	}
	return last, found, nil
}

func (m *Memory) OverdueRecords(_ context.Context, asOf schedule.Date, facilityID *schedule.FacilityID) ([]schedule.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []schedule.Record
	for _, r := range m.records {
		if !r.Status.IsOpen() || !r.DueDate.Before(asOf) {
			continue
		}
		if !m.matchesFacility(r, facilityID) {
			continue
		}
		out = append(out, r)
	}
	sortRecords(out)
	return out, nil
}

func (m *Memory) RecordsDueWithin(_ context.Context, from, to schedule.Date, facilityID *schedule.FacilityID) ([]schedule.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []schedule.Record
	for _, r := range m.records {
		if !r.Status.IsOpen() {
			continue
		}
		if r.DueDate.Before(from) || r.DueDate.After(to) {
			continue
		}
		if !m.matchesFacility(r, facilityID) {
			continue
		}
		out = append(out, r)
	}
	sortRecords(out)
	return out, nil
}

func (m *Memory) CountRecordsByStatus(_ context.Context, facilityID *schedule.FacilityID) (map[schedule.Status]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[schedule.Status]int)
	for _, r := range m.records {
		if !m.matchesFacility(r, facilityID) {
			continue
		}
		counts[r.Status]++
	}
	return counts, nil
}

// matchesFacility joins a record to its schedule's facility. Caller holds m.mu.
func (m *Memory) matchesFacility(r schedule.Record, facilityID *schedule.FacilityID) bool {
	if facilityID == nil {
		return true
	}
	s, ok := m.schedules[r.ScheduleID]
	return ok && s.FacilityID == *facilityID
}

func sortSchedules(s []schedule.Schedule) {
	sort.Slice(s, func(i, j int) bool { return s[i].ID < s[j].ID })
}

func sortRecords(r []schedule.Record) {
	sort.Slice(r, func(i, j int) bool {
		if !r[i].DueDate.Equal(r[j].DueDate) {
			return r[i].DueDate.Before(r[j].DueDate)
		}
		return r[i].ID < r[j].ID
	})
}
