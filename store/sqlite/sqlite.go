/*
Package sqlite provides the SQLite-backed persistence for the off-schedule
manager.

PURPOSE:
  Stores the four durable record kinds of the system: employees, leave
  requests, schedule entries, and company holidays. The domain core in
  roster/ never touches this package - handlers load records here, hand
  plain values to the core, and persist what comes back.

KEY TABLES:
  employees:        roster records incl. settlement fields
  leave_requests:   dated requests with an approval status
  schedule_entries: one row per grid cell per day
  company_holidays: clinic-wide non-working dates

SCHEDULE PERSISTENCE:
  The UI replaces a month wholesale: ReplaceScheduleMonth deletes the
  month's rows and bulk-inserts the new set inside one transaction, which
  is how a drag-and-drop save or an auto-generate accept lands.

UNIQUENESS:
  A partial unique index enforces at most one "working" entry per
  (date, employee). Spacer rows (negative employee IDs) are exempt.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety, and WAL mode so readers don't block.

USAGE:
  store, err := sqlite.New("./data/clinic.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - roster/types.go: the record shapes stored here
  - api: the handlers driving this store
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/SunQthecodemaker/off-schedule-manager-sub000/roster"
)

// Store implements persistence for all record kinds using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	ErrNotFound             = errors.New("record not found")
	ErrApprovedImmutable    = errors.New("approved leave request cannot change status")
	ErrDuplicateWorkingDay  = errors.New("employee already has a working entry on this date")
	ErrDuplicateHolidayDate = errors.New("holiday already exists on this date")
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

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
	CREATE TABLE IF NOT EXISTS employees (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		entry_date TEXT,
		renewal_date TEXT,
		work_days INTEGER NOT NULL DEFAULT 5,
		adjustment REAL NOT NULL DEFAULT 0,
		carried_over REAL NOT NULL DEFAULT 0,
		department TEXT NOT NULL DEFAULT '',
		position TEXT NOT NULL DEFAULT '',
		fixed_holidays TEXT NOT NULL DEFAULT '[]',
		retired BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS leave_requests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id INTEGER NOT NULL,
		dates_json TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		reason TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_leave_requests_employee
		ON leave_requests(employee_id);
	CREATE INDEX IF NOT EXISTS idx_leave_requests_status
		ON leave_requests(status);

	CREATE TABLE IF NOT EXISTS schedule_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		employee_id INTEGER NOT NULL,
		status TEXT NOT NULL,
		grid_pos INTEGER NOT NULL,
		sort_order INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_schedule_entries_date
		ON schedule_entries(date);

	-- At most one working entry per (date, employee). Spacer rows use the
	-- reserved negative ID range and are exempt.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_schedule_unique_working
		ON schedule_entries(date, employee_id)
		WHERE status = 'working' AND employee_id > 0;

	CREATE TABLE IF NOT EXISTS company_holidays (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_company_holidays_date
		ON company_holidays(date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// CreateEmployee inserts a new employee and returns its identifier.
func (s *Store) CreateEmployee(ctx context.Context, emp roster.Employee) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	holidaysJSON, _ := json.Marshal(weekdayInts(emp.FixedHolidays))

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO employees
		(name, entry_date, renewal_date, work_days, adjustment, carried_over,
		 department, position, fixed_holidays, retired, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		emp.Name,
		nullDate(emp.EntryDate),
		nullDate(emp.RenewalDate),
		workDaysOrDefault(emp.WorkDays),
		emp.Adjustment,
		emp.CarriedOverCnt,
		emp.Department,
		emp.Position,
		string(holidaysJSON),
		emp.Retired,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert employee: %w", err)
	}
	return res.LastInsertId()
}

// UpdateEmployee overwrites an existing employee record.
func (s *Store) UpdateEmployee(ctx context.Context, emp roster.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	holidaysJSON, _ := json.Marshal(weekdayInts(emp.FixedHolidays))

	res, err := s.db.ExecContext(ctx, `
		UPDATE employees SET
			name = ?, entry_date = ?, renewal_date = ?, work_days = ?,
			adjustment = ?, carried_over = ?, department = ?, position = ?,
			fixed_holidays = ?, retired = ?
		WHERE id = ?`,
		emp.Name,
		nullDate(emp.EntryDate),
		nullDate(emp.RenewalDate),
		workDaysOrDefault(emp.WorkDays),
		emp.Adjustment,
		emp.CarriedOverCnt,
		emp.Department,
		emp.Position,
		string(holidaysJSON),
		emp.Retired,
		emp.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}
	return requireRow(res)
}

// ApplySettlement writes the settlement fields the accrual calculator
// consumes: the manual adjustment and the confirmed carry-over.
func (s *Store) ApplySettlement(ctx context.Context, employeeID int64, adjustment, carriedOver float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE employees SET adjustment = ?, carried_over = ? WHERE id = ?`,
		adjustment, carriedOver, employeeID,
	)
	if err != nil {
		return fmt.Errorf("failed to apply settlement: %w", err)
	}
	return requireRow(res)
}

// GetEmployee loads one employee by ID.
func (s *Store) GetEmployee(ctx context.Context, id int64) (roster.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, entry_date, renewal_date, work_days, adjustment,
		       carried_over, department, position, fixed_holidays, retired
		FROM employees WHERE id = ?`, id)

	emp, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return roster.Employee{}, ErrNotFound
	}
	return emp, err
}

// ListEmployees returns all employees ordered by ID.
func (s *Store) ListEmployees(ctx context.Context) ([]roster.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, entry_date, renewal_date, work_days, adjustment,
		       carried_over, department, position, fixed_holidays, retired
		FROM employees ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []roster.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// DeleteEmployee removes an employee record.
func (s *Store) DeleteEmployee(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (roster.Employee, error) {
	var (
		emp          roster.Employee
		entryDate    sql.NullString
		renewalDate  sql.NullString
		holidaysJSON string
	)
	err := row.Scan(
		&emp.ID, &emp.Name, &entryDate, &renewalDate, &emp.WorkDays,
		&emp.Adjustment, &emp.CarriedOverCnt, &emp.Department, &emp.Position,
		&holidaysJSON, &emp.Retired,
	)
	if err != nil {
		return roster.Employee{}, err
	}

	emp.EntryDate = parseNullDate(entryDate)
	emp.RenewalDate = parseNullDate(renewalDate)

	var weekdays []int
	if err := json.Unmarshal([]byte(holidaysJSON), &weekdays); err == nil {
		for _, wd := range weekdays {
			emp.FixedHolidays = append(emp.FixedHolidays, time.Weekday(wd))
		}
	}
	return emp, nil
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

// CreateLeaveRequest inserts a request in pending status (or the status it
// carries) and returns its identifier.
func (s *Store) CreateLeaveRequest(ctx context.Context, req roster.LeaveRequest) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := req.Status
	if status == "" {
		status = roster.LeavePending
	}
	createdAt := req.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_requests (employee_id, dates_json, status, reason, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		req.EmployeeID,
		marshalDates(req.Dates),
		status,
		req.Reason,
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert leave request: %w", err)
	}
	return res.LastInsertId()
}

// GetLeaveRequest loads one request by ID.
func (s *Store) GetLeaveRequest(ctx context.Context, id int64) (roster.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, employee_id, dates_json, status, reason, created_at
		FROM leave_requests WHERE id = ?`, id)

	req, err := scanLeaveRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return roster.LeaveRequest{}, ErrNotFound
	}
	return req, err
}

// ListLeaveRequests returns requests, optionally filtered by status.
func (s *Store) ListLeaveRequests(ctx context.Context, status roster.LeaveStatus) ([]roster.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, employee_id, dates_json, status, reason, created_at
		FROM leave_requests`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	var requests []roster.LeaveRequest
	for rows.Next() {
		req, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// SetLeaveStatus moves a pending request to approved or rejected.
// Approved requests are immutable except for administrative deletion.
func (s *Store) SetLeaveStatus(ctx context.Context, id int64, status roster.LeaveStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE leave_requests SET status = ? WHERE id = ? AND status != ?`,
		status, id, roster.LeaveApproved,
	)
	if err != nil {
		return fmt.Errorf("failed to update leave status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Either the row is missing or it is already approved.
		var exists int
		if err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM leave_requests WHERE id = ?`, id).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return ErrNotFound
		}
		return ErrApprovedImmutable
	}
	return nil
}

// DeleteLeaveRequest removes a request (administrative operation; the only
// way an approved request goes away).
func (s *Store) DeleteLeaveRequest(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM leave_requests WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete leave request: %w", err)
	}
	return requireRow(res)
}

func scanLeaveRequest(row rowScanner) (roster.LeaveRequest, error) {
	var (
		req       roster.LeaveRequest
		datesJSON string
		createdAt string
	)
	if err := row.Scan(&req.ID, &req.EmployeeID, &datesJSON, &req.Status, &req.Reason, &createdAt); err != nil {
		return roster.LeaveRequest{}, err
	}
	req.Dates = unmarshalDates(datesJSON)
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		req.CreatedAt = t
	}
	return req, nil
}

// =============================================================================
// SCHEDULE ENTRIES
// =============================================================================

// ListScheduleMonth returns all entries for one calendar month ordered by
// date, then sort order.
func (s *Store) ListScheduleMonth(ctx context.Context, year int, month time.Month) ([]roster.ScheduleEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	first := roster.StartOfMonth(year, month)
	last := roster.EndOfMonth(year, month)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, employee_id, status, grid_pos, sort_order
		FROM schedule_entries
		WHERE date >= ? AND date <= ?
		ORDER BY date, sort_order, id`,
		first.String(), last.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule: %w", err)
	}
	defer rows.Close()

	var entries []roster.ScheduleEntry
	for rows.Next() {
		var (
			entry   roster.ScheduleEntry
			id      int64
			dateStr string
		)
		if err := rows.Scan(&id, &dateStr, &entry.EmployeeID, &entry.Status, &entry.GridPos, &entry.SortOrder); err != nil {
			return nil, err
		}
		entry.ID = roster.FormatEntryID(id)
		if d, err := roster.ParseDate(dateStr); err == nil {
			entry.Date = d
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// ReplaceScheduleMonth deletes the month's entries and bulk-inserts the
// given set - the persistence pattern behind both a manual save and an
// accepted auto-generate proposal. Temporary identifiers on the incoming
// entries are discarded; the store assigns numeric ones.
func (s *Store) ReplaceScheduleMonth(ctx context.Context, year int, month time.Month, entries []roster.ScheduleEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	first := roster.StartOfMonth(year, month)
	last := roster.EndOfMonth(year, month)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM schedule_entries WHERE date >= ? AND date <= ?`,
		first.String(), last.String()); err != nil {
		return fmt.Errorf("failed to clear month: %w", err)
	}

	for _, entry := range entries {
		status := entry.Status
		if status == "" {
			status = roster.EntryWorking
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO schedule_entries (date, employee_id, status, grid_pos, sort_order)
			VALUES (?, ?, ?, ?, ?)`,
			entry.Date.String(), entry.EmployeeID, status, entry.GridPos, entry.SortOrder,
		); err != nil {
			if isUniqueConstraintError(err) {
				return ErrDuplicateWorkingDay
			}
			return fmt.Errorf("failed to insert schedule entry: %w", err)
		}
	}

	return tx.Commit()
}

// =============================================================================
// COMPANY HOLIDAYS
// =============================================================================

// CreateHoliday inserts a clinic-wide holiday.
func (s *Store) CreateHoliday(ctx context.Context, h roster.CompanyHoliday) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO company_holidays (date, name, created_at)
		VALUES (?, ?, ?)`,
		h.Date.String(), h.Name, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return 0, ErrDuplicateHolidayDate
		}
		return 0, fmt.Errorf("failed to insert holiday: %w", err)
	}
	return res.LastInsertId()
}

// ListHolidays returns all holidays ordered by date.
func (s *Store) ListHolidays(ctx context.Context) ([]roster.CompanyHoliday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, name FROM company_holidays ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []roster.CompanyHoliday
	for rows.Next() {
		var (
			h       roster.CompanyHoliday
			dateStr string
		)
		if err := rows.Scan(&h.ID, &dateStr, &h.Name); err != nil {
			return nil, err
		}
		if d, err := roster.ParseDate(dateStr); err == nil {
			h.Date = d
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// DeleteHoliday removes a holiday.
func (s *Store) DeleteHoliday(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM company_holidays WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	return requireRow(res)
}

// =============================================================================
// HELPERS
// =============================================================================

func nullDate(d *roster.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func parseNullDate(s sql.NullString) *roster.Date {
	if !s.Valid || s.String == "" {
		return nil
	}
	d, err := roster.ParseDate(s.String)
	if err != nil {
		return nil
	}
	return &d
}

func marshalDates(dates []roster.Date) string {
	strs := make([]string, 0, len(dates))
	for _, d := range dates {
		strs = append(strs, d.String())
	}
	out, _ := json.Marshal(strs)
	return string(out)
}

func unmarshalDates(raw string) []roster.Date {
	var strs []string
	if err := json.Unmarshal([]byte(raw), &strs); err != nil {
		return nil
	}
	var dates []roster.Date
	for _, s := range strs {
		if d, err := roster.ParseDate(s); err == nil {
			dates = append(dates, d)
		}
	}
	return dates
}

func weekdayInts(weekdays []time.Weekday) []int {
	out := make([]int, 0, len(weekdays))
	for _, wd := range weekdays {
		out = append(out, int(wd))
	}
	return out
}

func workDaysOrDefault(n int) int {
	if n == 0 {
		return 5
	}
	return n
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
