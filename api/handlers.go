/*
handlers.go - HTTP handler implementations

PURPOSE:
  Implements the REST endpoints for the off-schedule manager: employee
  roster CRUD, the leave-request workflow, the balance endpoint wrapping
  the accrual calculator, month schedule persistence, the auto-generate
  proposal endpoint, company holidays, and admin settlements.

HANDLER PATTERN:
  1. Parse request (URL params, query, JSON body)
  2. Load records from the store
  3. Call domain logic in roster/
  4. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid input (bad dates, bad IDs)
  - 404: Record not found
  - 409: Conflict (approved request immutability, duplicate working day)
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization; role checks live in the frontend.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - roster/: The domain logic these handlers wrap
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/SunQthecodemaker/off-schedule-manager-sub000/roster"
	"github.com/SunQthecodemaker/off-schedule-manager-sub000/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     *sqlite.Store
	Scheduler *roster.Scheduler
}

// NewHandler creates a new handler with the given store and scheduler.
func NewHandler(store *sqlite.Store, scheduler *roster.Scheduler) *Handler {
	return &Handler{Store: store, Scheduler: scheduler}
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEmployee creates an employee.
// POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req SaveEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}

	emp, err := req.toEmployee(0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	id, err := h.Store.CreateEmployee(r.Context(), emp)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create employee", err)
		return
	}
	emp.ID = id
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// GetEmployee returns a single employee.
// GET /api/employees/{id}
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeStoreError(w, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// UpdateEmployee overwrites an employee record.
// PUT /api/employees/{id}
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req SaveEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	emp, err := req.toEmployee(id)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	if err := h.Store.UpdateEmployee(r.Context(), emp); err != nil {
		writeStoreError(w, "Failed to update employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// DeleteEmployee removes an employee.
// DELETE /api/employees/{id}
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Store.DeleteEmployee(r.Context(), id); err != nil {
		writeStoreError(w, "Failed to delete employee", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetBalance returns the employee's accrual result and period usage.
// GET /api/employees/{id}/balance?date=2006-01-02
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ref := roster.Today()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := roster.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date", err)
			return
		}
		ref = parsed
	}

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeStoreError(w, "Failed to get employee", err)
		return
	}

	accrual := roster.Calculate(emp, ref)

	approved, err := h.Store.ListLeaveRequests(r.Context(), roster.LeaveApproved)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leave requests", err)
		return
	}
	used := roster.UsedInPeriod(emp, approved, ref)

	writeJSON(w, http.StatusOK, BalanceDTO{
		EmployeeID: emp.ID,
		AsOf:       ref.String(),
		Accrual:    toAccrualDTO(accrual),
		Used:       used,
		Remaining:  accrual.Final - float64(used),
	})
}

// ApplySettlement writes an employee's settlement fields.
// POST /api/admin/settlements
func (h *Handler) ApplySettlement(w http.ResponseWriter, r *http.Request) {
	var req SettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Store.ApplySettlement(r.Context(), req.EmployeeID, req.Adjustment, req.CarriedOver); err != nil {
		writeStoreError(w, "Failed to apply settlement", err)
		return
	}

	emp, err := h.Store.GetEmployee(r.Context(), req.EmployeeID)
	if err != nil {
		writeStoreError(w, "Failed to reload employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// =============================================================================
// LEAVE REQUEST HANDLERS
// =============================================================================

// ListLeaves returns leave requests, optionally filtered by status.
// GET /api/leaves?status=pending
func (h *Handler) ListLeaves(w http.ResponseWriter, r *http.Request) {
	status := roster.LeaveStatus(r.URL.Query().Get("status"))

	requests, err := h.Store.ListLeaveRequests(r.Context(), status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leave requests", err)
		return
	}

	dtos := make([]LeaveRequestDTO, len(requests))
	for i, req := range requests {
		dtos[i] = toLeaveRequestDTO(req)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SubmitLeave creates a pending leave request.
// POST /api/leaves
func (h *Handler) SubmitLeave(w http.ResponseWriter, r *http.Request) {
	var req SubmitLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.Dates) == 0 {
		writeError(w, http.StatusBadRequest, "At least one date is required", nil)
		return
	}

	dates := make([]roster.Date, 0, len(req.Dates))
	for _, raw := range req.Dates {
		d, err := roster.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date", err)
			return
		}
		dates = append(dates, d)
	}

	leave := roster.LeaveRequest{
		EmployeeID: req.EmployeeID,
		Dates:      dates,
		Status:     roster.LeavePending,
		Reason:     req.Reason,
		CreatedAt:  time.Now().UTC(),
	}

	id, err := h.Store.CreateLeaveRequest(r.Context(), leave)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create leave request", err)
		return
	}
	leave.ID = id
	writeJSON(w, http.StatusCreated, toLeaveRequestDTO(leave))
}

// ApproveLeave approves a pending request.
// POST /api/leaves/{id}/approve
func (h *Handler) ApproveLeave(w http.ResponseWriter, r *http.Request) {
	h.setLeaveStatus(w, r, roster.LeaveApproved)
}

// RejectLeave rejects a pending request.
// POST /api/leaves/{id}/reject
func (h *Handler) RejectLeave(w http.ResponseWriter, r *http.Request) {
	h.setLeaveStatus(w, r, roster.LeaveRejected)
}

func (h *Handler) setLeaveStatus(w http.ResponseWriter, r *http.Request, status roster.LeaveStatus) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.Store.SetLeaveStatus(r.Context(), id, status); err != nil {
		writeStoreError(w, "Failed to update leave request", err)
		return
	}

	req, err := h.Store.GetLeaveRequest(r.Context(), id)
	if err != nil {
		writeStoreError(w, "Failed to reload leave request", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveRequestDTO(req))
}

// DeleteLeave removes a request. This is the only way an approved request
// goes away.
// DELETE /api/leaves/{id}
func (h *Handler) DeleteLeave(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Store.DeleteLeaveRequest(r.Context(), id); err != nil {
		writeStoreError(w, "Failed to delete leave request", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

// GetSchedule returns the persisted entries for one month.
// GET /api/schedules?month=2006-01
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	year, month, ok := queryMonth(w, r)
	if !ok {
		return
	}

	entries, err := h.Store.ListScheduleMonth(r.Context(), year, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list schedule", err)
		return
	}

	dtos := make([]ScheduleEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toScheduleEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ReplaceSchedule replaces one month's entries wholesale (the save path
// for both manual edits and accepted auto-generate proposals).
// PUT /api/schedules?month=2006-01
func (h *Handler) ReplaceSchedule(w http.ResponseWriter, r *http.Request) {
	year, month, ok := queryMonth(w, r)
	if !ok {
		return
	}

	var req ReplaceScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	entries := make([]roster.ScheduleEntry, 0, len(req.Entries))
	for _, dto := range req.Entries {
		entry, err := dto.toEntry()
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid entry date", err)
			return
		}
		entries = append(entries, entry)
	}

	if err := h.Store.ReplaceScheduleMonth(r.Context(), year, month, entries); err != nil {
		writeStoreError(w, "Failed to replace schedule", err)
		return
	}

	saved, err := h.Store.ListScheduleMonth(r.Context(), year, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload schedule", err)
		return
	}
	dtos := make([]ScheduleEntryDTO, len(saved))
	for i, e := range saved {
		dtos[i] = toScheduleEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GenerateSchedule runs the auto-scheduler for one month and returns the
// proposal without persisting it. The client saves via ReplaceSchedule.
// POST /api/schedules/generate?month=2006-01
func (h *Handler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	year, month, ok := queryMonth(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	employees, err := h.Store.ListEmployees(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}
	approved, err := h.Store.ListLeaveRequests(ctx, roster.LeaveApproved)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leave requests", err)
		return
	}
	holidays, err := h.Store.ListHolidays(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list holidays", err)
		return
	}

	entries := h.Scheduler.GenerateMonth(year, month, employees, approved, roster.NewHolidaySet(holidays))

	dtos := make([]ScheduleEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toScheduleEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns all company holidays.
// GET /api/holidays
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.Store.ListHolidays(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list holidays", err)
		return
	}

	dtos := make([]HolidayDTO, len(holidays))
	for i, hol := range holidays {
		dtos[i] = HolidayDTO{ID: hol.ID, Date: hol.Date.String(), Name: hol.Name}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateHoliday adds a company holiday.
// POST /api/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := roster.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	id, err := h.Store.CreateHoliday(r.Context(), roster.CompanyHoliday{Date: date, Name: req.Name})
	if err != nil {
		writeStoreError(w, "Failed to create holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, HolidayDTO{ID: id, Date: date.String(), Name: req.Name})
}

// DeleteHoliday removes a company holiday.
// DELETE /api/holidays/{id}
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Store.DeleteHoliday(r.Context(), id); err != nil {
		writeStoreError(w, "Failed to delete holiday", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HELPERS
// =============================================================================

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid identifier", err)
		return 0, false
	}
	return id, true
}

func queryMonth(w http.ResponseWriter, r *http.Request) (int, time.Month, bool) {
	raw := r.URL.Query().Get("month")
	t, err := time.Parse("2006-01", raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month, want YYYY-MM", err)
		return 0, 0, false
	}
	return t.Year(), t.Month(), true
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

// writeStoreError maps store sentinel errors onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, sqlite.ErrNotFound):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, sqlite.ErrApprovedImmutable),
		errors.Is(err, sqlite.ErrDuplicateWorkingDay),
		errors.Is(err, sqlite.ErrDuplicateHolidayDate):
		writeError(w, http.StatusConflict, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
