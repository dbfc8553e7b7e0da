/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements schedule.Store, schedule.FunctionDefaults and
  refdata.Directory using SQLite. The same patterns apply to PostgreSQL -
  only minor SQL dialect differences.

INVARIANTS LIVE IN THE SCHEMA:
  The engine's correctness guarantees are enforced here with constraints,
  not application locks:

  - idx_schedules_active_pair: partial unique index so at most ONE active
    schedule exists per (facility_id, function_id) pair.
  - idx_records_schedule_due: unique (schedule_id, due_date), which makes
    record generation idempotent and safe under overlapping runs.
  - CompleteRecord: single UPDATE guarded on status != 'completed', a
    compare-and-set so exactly one of two racing completions wins.
  - No DELETE statements on schedules or records. Schedules deactivate,
    records are permanent.

WAL MODE:
  SQLite is opened with WAL for better concurrency: readers don't block,
  single writer at a time, better crash recovery.

DATES:
  Day-granularity fields are stored as YYYY-MM-DD TEXT. start_date is
  nullable: rows migrated from the legacy system can lack an anchor, and
  the bulk updater's today-fallback depends on reading that back as a
  zero date rather than failing.

SEE ALSO:
  - schedule/store.go: Interface contracts
  - schedule/store/memory.go: In-memory implementation for engine tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/compliance-engine/refdata"
	"github.com/warp/compliance-engine/schedule"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single writer keeps SQLite's locking simple under concurrent handlers.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Reference data: facilities
	CREATE TABLE IF NOT EXISTS facilities (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT,
		facility_type TEXT,
		capacity INTEGER DEFAULT 0,
		is_active BOOLEAN DEFAULT TRUE,
		created_at TEXT NOT NULL
	);

	-- Reference data: compliance functions
	CREATE TABLE IF NOT EXISTS compliance_functions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		category TEXT,
		default_frequency TEXT NOT NULL,
		citation_refs_json TEXT,
		is_active BOOLEAN DEFAULT TRUE,
		created_at TEXT NOT NULL
	);

	-- Schedules: one recurring obligation per facility/function pair
	CREATE TABLE IF NOT EXISTS compliance_schedules (
		id TEXT PRIMARY KEY,
		facility_id TEXT NOT NULL,
		function_id TEXT NOT NULL,
		frequency TEXT NOT NULL,
		start_date TEXT,
		next_due_date TEXT,
		assigned_to TEXT,
		is_active BOOLEAN DEFAULT TRUE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- CRITICAL: exactly one ACTIVE schedule per (facility, function) pair.
	-- Deactivated schedules stay behind without blocking a replacement.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_schedules_active_pair
		ON compliance_schedules(facility_id, function_id)
		WHERE is_active;

	CREATE INDEX IF NOT EXISTS idx_schedules_facility
		ON compliance_schedules(facility_id);
	CREATE INDEX IF NOT EXISTS idx_schedules_active
		ON compliance_schedules(is_active);

	-- Records: one concrete occurrence per schedule and due date
	CREATE TABLE IF NOT EXISTS compliance_records (
		id TEXT PRIMARY KEY,
		schedule_id TEXT NOT NULL,
		due_date TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		completed_date TEXT,
		completed_by TEXT,
		notes TEXT,
		document_count INTEGER DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- CRITICAL: no duplicate occurrences. This is what makes generation
	-- idempotent; overlapping Generate runs never double-insert.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_records_schedule_due
		ON compliance_records(schedule_id, due_date);

	CREATE INDEX IF NOT EXISTS idx_records_status
		ON compliance_records(status);
	CREATE INDEX IF NOT EXISTS idx_records_due_date
		ON compliance_records(due_date);

	-- Overdue sweep hot path
	CREATE INDEX IF NOT EXISTS idx_records_status_due
		ON compliance_records(status, due_date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SCHEDULE STORE (schedule.ScheduleStore interface)
// =============================================================================

const scheduleColumns = `id, facility_id, function_id, frequency, start_date,
	next_due_date, assigned_to, is_active, created_at, updated_at`

// InsertSchedule persists a new schedule; the partial unique index rejects
// a second active schedule for the pair.
func (s *Store) InsertSchedule(ctx context.Context, sch schedule.Schedule) error {
	query := `
		INSERT INTO compliance_schedules
		(id, facility_id, function_id, frequency, start_date, next_due_date,
		 assigned_to, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		sch.ID, sch.FacilityID, sch.FunctionID, sch.Frequency,
		nullDate(sch.StartDate), nullDate(sch.NextDueDate),
		nullString(sch.AssignedTo), sch.IsActive,
		sch.CreatedAt.String(), sch.UpdatedAt.String(),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			existing, ok, ferr := s.FindActiveSchedule(ctx, sch.FacilityID, sch.FunctionID)
			dup := &schedule.DuplicateScheduleError{
				FacilityID: sch.FacilityID,
				FunctionID: sch.FunctionID,
			}
			if ferr == nil && ok {
				dup.ExistingID = existing.ID
			}
			return dup
		}
		return fmt.Errorf("failed to insert schedule: %w", err)
	}
	return nil
}

func (s *Store) GetSchedule(ctx context.Context, id schedule.ScheduleID) (schedule.Schedule, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+scheduleColumns+` FROM compliance_schedules WHERE id = ?`, id)
	sch, err := scanSchedule(row)
	if err == sql.ErrNoRows {
		return schedule.Schedule{}, schedule.ErrScheduleNotFound
	}
	return sch, err
}

func (s *Store) SchedulesByFacility(ctx context.Context, facilityID schedule.FacilityID) ([]schedule.Schedule, error) {
	return s.querySchedules(ctx,
		`SELECT `+scheduleColumns+` FROM compliance_schedules
		 WHERE facility_id = ? ORDER BY created_at DESC, id`, facilityID)
}

func (s *Store) ActiveSchedules(ctx context.Context) ([]schedule.Schedule, error) {
	return s.querySchedules(ctx,
		`SELECT `+scheduleColumns+` FROM compliance_schedules
		 WHERE is_active ORDER BY created_at DESC, id`)
}

func (s *Store) FindActiveSchedule(ctx context.Context, facilityID schedule.FacilityID, functionID schedule.FunctionID) (schedule.Schedule, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+scheduleColumns+` FROM compliance_schedules
		 WHERE facility_id = ? AND function_id = ? AND is_active`,
		facilityID, functionID)
	sch, err := scanSchedule(row)
	if err == sql.ErrNoRows {
		return schedule.Schedule{}, false, nil
	}
	if err != nil {
		return schedule.Schedule{}, false, err
	}
	return sch, true, nil
}

func (s *Store) UpdateSchedule(ctx context.Context, sch schedule.Schedule) error {
	query := `
		UPDATE compliance_schedules
		SET frequency = ?, start_date = ?, next_due_date = ?, assigned_to = ?,
		    is_active = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		sch.Frequency, nullDate(sch.StartDate), nullDate(sch.NextDueDate),
		nullString(sch.AssignedTo), sch.IsActive, sch.UpdatedAt.String(), sch.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update schedule: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return schedule.ErrScheduleNotFound
	}
	return nil
}

func (s *Store) SetNextDue(ctx context.Context, id schedule.ScheduleID, next schedule.Date, updatedAt schedule.Date) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE compliance_schedules SET next_due_date = ?, updated_at = ? WHERE id = ?`,
		nullDate(next), updatedAt.String(), id)
	if err != nil {
		return fmt.Errorf("failed to set next due date: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return schedule.ErrScheduleNotFound
	}
	return nil
}

func (s *Store) querySchedules(ctx context.Context, query string, args ...any) ([]schedule.Schedule, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}
	defer rows.Close()

	var out []schedule.Schedule
	for rows.Next() {
		sch, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sch)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row rowScanner) (schedule.Schedule, error) {
	var sch schedule.Schedule
	var startDate, nextDue, assignedTo sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&sch.ID, &sch.FacilityID, &sch.FunctionID, &sch.Frequency,
		&startDate, &nextDue, &assignedTo, &sch.IsActive, &createdAt, &updatedAt)
	if err != nil {
		return schedule.Schedule{}, err
	}

	sch.StartDate = parseStoredDate(startDate)
	sch.NextDueDate = parseStoredDate(nextDue)
	sch.AssignedTo = assignedTo.String
	sch.CreatedAt, _ = schedule.ParseDate(createdAt)
	sch.UpdatedAt, _ = schedule.ParseDate(updatedAt)
	return sch, nil
}

// =============================================================================
// RECORD STORE (schedule.RecordStore interface)
// =============================================================================

const recordColumns = `id, schedule_id, due_date, status, completed_date,
	completed_by, notes, document_count, created_at, updated_at`

// InsertRecord persists a record; idx_records_schedule_due rejects a
// duplicate occurrence.
func (s *Store) InsertRecord(ctx context.Context, r schedule.Record) error {
	query := `
		INSERT INTO compliance_records
		(id, schedule_id, due_date, status, completed_date, completed_by,
		 notes, document_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	docCount := 0
	if r.HasDocuments {
		docCount = 1
	}
	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.ScheduleID, r.DueDate.String(), r.Status,
		nullDate(r.CompletedDate), nullString(r.CompletedBy),
		nullString(r.Notes), docCount,
		r.CreatedAt.String(), r.UpdatedAt.String(),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return schedule.ErrDuplicateRecord
		}
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

func (s *Store) GetRecord(ctx context.Context, id schedule.RecordID) (schedule.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM compliance_records WHERE id = ?`, id)
	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return schedule.Record{}, schedule.ErrRecordNotFound
	}
	return r, err
}

func (s *Store) RecordsBySchedule(ctx context.Context, scheduleID schedule.ScheduleID) ([]schedule.Record, error) {
	return s.queryRecords(ctx,
		`SELECT `+recordColumns+` FROM compliance_records
		 WHERE schedule_id = ? ORDER BY due_date, id`, scheduleID)
}

func (s *Store) RecordsByScheduleYear(ctx context.Context, scheduleID schedule.ScheduleID, year int) ([]schedule.Record, error) {
	from := schedule.NewDate(year, time.January, 1)
	to := schedule.NewDate(year, time.December, 31)
	return s.queryRecords(ctx,
		`SELECT `+recordColumns+` FROM compliance_records
		 WHERE schedule_id = ? AND due_date >= ? AND due_date <= ?
		 ORDER BY due_date, id`,
		scheduleID, from.String(), to.String())
}

// MarkOverdue flips open records of active schedules whose due date has
// passed. One statement, idempotent, never touches completed records.
func (s *Store) MarkOverdue(ctx context.Context, today schedule.Date) (int, error) {
	query := `
		UPDATE compliance_records
		SET status = 'overdue', updated_at = ?
		WHERE status IN ('pending', 'upcoming')
		  AND due_date < ?
		  AND schedule_id IN (SELECT id FROM compliance_schedules WHERE is_active)
	`
	res, err := s.db.ExecContext(ctx, query, today.String(), today.String())
	if err != nil {
		return 0, fmt.Errorf("failed to mark overdue: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// CompleteRecord is the completion compare-and-set: the UPDATE only
// matches while status is not yet 'completed', so two racing completions
// resolve to exactly one winner.
func (s *Store) CompleteRecord(ctx context.Context, id schedule.RecordID, completedDate schedule.Date, completedBy, notes string) (schedule.Record, error) {
	query := `
		UPDATE compliance_records
		SET status = 'completed', completed_date = ?, completed_by = ?,
		    notes = CASE WHEN ? != '' THEN ? ELSE notes END,
		    updated_at = ?
		WHERE id = ? AND status != 'completed'
	`
	res, err := s.db.ExecContext(ctx, query,
		completedDate.String(), completedBy, notes, notes,
		completedDate.String(), id)
	if err != nil {
		return schedule.Record{}, fmt.Errorf("failed to complete record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return schedule.Record{}, err
	}
	if n == 0 {
		// Lost the CAS or the record never existed; read back to tell which.
		existing, getErr := s.GetRecord(ctx, id)
		if getErr != nil {
			return schedule.Record{}, getErr
		}
		return schedule.Record{}, &schedule.AlreadyCompletedError{
			RecordID:      id,
			CompletedBy:   existing.CompletedBy,
			CompletedDate: existing.CompletedDate,
		}
	}
	return s.GetRecord(ctx, id)
}

func (s *Store) LastCompletedDueDate(ctx context.Context, scheduleID schedule.ScheduleID) (schedule.Date, bool, error) {
	var due string
	err := s.db.QueryRowContext(ctx,
		`SELECT due_date FROM compliance_records
		 WHERE schedule_id = ? AND status = 'completed'
		 ORDER BY due_date DESC LIMIT 1`, scheduleID).Scan(&due)
	if err == sql.ErrNoRows {
		return schedule.Date{}, false, nil
	}
	if err != nil {
		return schedule.Date{}, false, err
	}
	d, err := schedule.ParseDate(due)
	if err != nil {
		return schedule.Date{}, false, err
	}
	return d, true, nil
}

func (s *Store) OverdueRecords(ctx context.Context, asOf schedule.Date, facilityID *schedule.FacilityID) ([]schedule.Record, error) {
	query := `
		SELECT r.id, r.schedule_id, r.due_date, r.status, r.completed_date,
		       r.completed_by, r.notes, r.document_count, r.created_at, r.updated_at
		FROM compliance_records r
		JOIN compliance_schedules s ON s.id = r.schedule_id
		WHERE r.status != 'completed' AND r.due_date < ?
	`
	args := []any{asOf.String()}
	if facilityID != nil {
		query += ` AND s.facility_id = ?`
		args = append(args, *facilityID)
	}
	query += ` ORDER BY r.due_date, r.id`
	return s.queryRecords(ctx, query, args...)
}

func (s *Store) RecordsDueWithin(ctx context.Context, from, to schedule.Date, facilityID *schedule.FacilityID) ([]schedule.Record, error) {
	query := `
		SELECT r.id, r.schedule_id, r.due_date, r.status, r.completed_date,
		       r.completed_by, r.notes, r.document_count, r.created_at, r.updated_at
		FROM compliance_records r
		JOIN compliance_schedules s ON s.id = r.schedule_id
		WHERE r.status != 'completed' AND r.due_date >= ? AND r.due_date <= ?
	`
	args := []any{from.String(), to.String()}
	if facilityID != nil {
		query += ` AND s.facility_id = ?`
		args = append(args, *facilityID)
	}
	query += ` ORDER BY r.due_date, r.id`
	return s.queryRecords(ctx, query, args...)
}

func (s *Store) CountRecordsByStatus(ctx context.Context, facilityID *schedule.FacilityID) (map[schedule.Status]int, error) {
	query := `
		SELECT r.status, COUNT(*)
		FROM compliance_records r
		JOIN compliance_schedules s ON s.id = r.schedule_id
	`
	var args []any
	if facilityID != nil {
		query += ` WHERE s.facility_id = ?`
		args = append(args, *facilityID)
	}
	query += ` GROUP BY r.status`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}
	defer rows.Close()

	counts := make(map[schedule.Status]int)
	for rows.Next() {
		var status schedule.Status
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]schedule.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var out []schedule.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanRecord(row rowScanner) (schedule.Record, error) {
	var r schedule.Record
	var dueDate string
	var completedDate, completedBy, notes sql.NullString
	var docCount int
	var createdAt, updatedAt string

	err := row.Scan(&r.ID, &r.ScheduleID, &dueDate, &r.Status,
		&completedDate, &completedBy, &notes, &docCount, &createdAt, &updatedAt)
	if err != nil {
		return schedule.Record{}, err
	}

	r.DueDate, err = schedule.ParseDate(dueDate)
	if err != nil {
		return schedule.Record{}, fmt.Errorf("bad due_date %q: %w", dueDate, err)
	}
	r.CompletedDate = parseStoredDate(completedDate)
	r.CompletedBy = completedBy.String
	r.Notes = notes.String
	r.HasDocuments = docCount > 0
	r.CreatedAt, _ = schedule.ParseDate(createdAt)
	r.UpdatedAt, _ = schedule.ParseDate(updatedAt)
	return r, nil
}

// =============================================================================
// REFERENCE DATA (refdata.Directory + schedule.FunctionDefaults)
// =============================================================================

func (s *Store) CreateFacility(ctx context.Context, f refdata.Facility) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO facilities (id, name, address, facility_type, capacity, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.Name, nullString(f.Address), nullString(f.FacilityType),
		f.Capacity, f.IsActive, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to create facility: %w", err)
	}
	return nil
}

func (s *Store) GetFacility(ctx context.Context, id schedule.FacilityID) (refdata.Facility, error) {
	var f refdata.Facility
	var address, ftype sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, address, facility_type, capacity, is_active
		 FROM facilities WHERE id = ?`, id).
		Scan(&f.ID, &f.Name, &address, &ftype, &f.Capacity, &f.IsActive)
	if err == sql.ErrNoRows {
		return refdata.Facility{}, refdata.ErrFacilityNotFound
	}
	if err != nil {
		return refdata.Facility{}, err
	}
	f.Address = address.String
	f.FacilityType = ftype.String
	return f, nil
}

func (s *Store) ListFacilities(ctx context.Context) ([]refdata.Facility, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, address, facility_type, capacity, is_active
		 FROM facilities WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list facilities: %w", err)
	}
	defer rows.Close()

	var out []refdata.Facility
	for rows.Next() {
		var f refdata.Facility
		var address, ftype sql.NullString
		if err := rows.Scan(&f.ID, &f.Name, &address, &ftype, &f.Capacity, &f.IsActive); err != nil {
			return nil, err
		}
		f.Address = address.String
		f.FacilityType = ftype.String
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *Store) CreateFunction(ctx context.Context, f refdata.Function) error {
	citations, _ := json.Marshal(f.CitationReferences)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO compliance_functions
		 (id, name, description, category, default_frequency, citation_refs_json, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.Name, nullString(f.Description), nullString(f.Category),
		f.DefaultFrequency, string(citations), f.IsActive,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to create function: %w", err)
	}
	return nil
}

func (s *Store) GetFunction(ctx context.Context, id schedule.FunctionID) (refdata.Function, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, category, default_frequency, citation_refs_json, is_active
		 FROM compliance_functions WHERE id = ?`, id)
	f, err := scanFunction(row)
	if err == sql.ErrNoRows {
		return refdata.Function{}, refdata.ErrFunctionNotFound
	}
	return f, err
}

func (s *Store) ListFunctions(ctx context.Context) ([]refdata.Function, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, category, default_frequency, citation_refs_json, is_active
		 FROM compliance_functions WHERE is_active ORDER BY category, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list functions: %w", err)
	}
	defer rows.Close()

	var out []refdata.Function
	for rows.Next() {
		f, err := scanFunction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// DefaultFrequency implements schedule.FunctionDefaults for the registry.
func (s *Store) DefaultFrequency(ctx context.Context, id schedule.FunctionID) (schedule.Frequency, error) {
	var freq schedule.Frequency
	err := s.db.QueryRowContext(ctx,
		`SELECT default_frequency FROM compliance_functions WHERE id = ?`, id).Scan(&freq)
	if err == sql.ErrNoRows {
		return "", schedule.ErrFunctionNotFound
	}
	return freq, err
}

func scanFunction(row rowScanner) (refdata.Function, error) {
	var f refdata.Function
	var description, category, citations sql.NullString
	err := row.Scan(&f.ID, &f.Name, &description, &category,
		&f.DefaultFrequency, &citations, &f.IsActive)
	if err != nil {
		return refdata.Function{}, err
	}
	f.Description = description.String
	f.Category = category.String
	f.CitationReferences = []string{}
	if citations.Valid && citations.String != "" {
		json.Unmarshal([]byte(citations.String), &f.CitationReferences)
	}
	return f, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func parseStoredDate(ns sql.NullString) schedule.Date {
	if !ns.Valid || ns.String == "" {
		return schedule.Date{}
	}
	d, _ := schedule.ParseDate(ns.String)
	return d
}

func nullDate(d schedule.Date) sql.NullString {
	if d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
