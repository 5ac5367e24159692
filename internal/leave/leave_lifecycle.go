package leave

import (
	"strings"
	"time"
	"unicode/utf8"

	leaveerrors "go-ems/internal/leave/errors"
)

const (
	StatusPending   = "Pending"
	StatusApproved  = "Approved"
	StatusRejected  = "Rejected"
	StatusCancelled = "Cancelled"
)

const (
	TypeCasual    = "Casual"
	TypeSick      = "Sick"
	TypePaid      = "Paid"
	TypeUnpaid    = "Unpaid"
	TypeMaternity = "Maternity"
	TypePaternity = "Paternity"
)

const (
	dateLayout = "2006-01-02"

	// MaxEmployeeIDLen matches the employee_id column width.
	MaxEmployeeIDLen = 64
)

var leaveTypes = map[string]struct{}{
	TypeCasual:    {},
	TypeSick:      {},
	TypePaid:      {},
	TypeUnpaid:    {},
	TypeMaternity: {},
	TypePaternity: {},
}

var statuses = map[string]struct{}{
	StatusPending:   {},
	StatusApproved:  {},
	StatusRejected:  {},
	StatusCancelled: {},
}

// transitions lists every legal move. Terminal states have no entry.
var transitions = map[string]map[string]struct{}{
	StatusPending: {
		StatusApproved:  {},
		StatusRejected:  {},
		StatusCancelled: {},
	},
}

func IsValidLeaveType(t string) bool {
	_, ok := leaveTypes[t]
	return ok
}

func IsValidStatus(s string) bool {
	_, ok := statuses[s]
	return ok
}

func isAllowedStatusTransition(currentStatus, targetStatus string) bool {
	next, ok := transitions[currentStatus]
	if !ok {
		return false
	}
	_, ok = next[targetStatus]
	return ok
}

// requiresApproval reports whether moving to status needs the approval
// capability regardless of who owns the request.
func requiresApproval(status string) bool {
	return status == StatusApproved || status == StatusRejected
}

// DayCount is the inclusive number of calendar days between start and end.
func DayCount(start, end time.Time) int {
	s := truncateToDate(start)
	e := truncateToDate(end)
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s)/(24*time.Hour)) + 1
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

type validatedSubmission struct {
	employeeID string
	leaveType  string
	startDate  time.Time
	endDate    time.Time
	reason     string
}

func validateCreateRequest(req CreateLeaveRequest) (validatedSubmission, error) {
	employeeID := strings.TrimSpace(req.EmployeeID)
	if employeeID == "" {
		return validatedSubmission{}, leaveerrors.ErrEmployeeRequired
	}
	if utf8.RuneCountInString(employeeID) > MaxEmployeeIDLen {
		return validatedSubmission{}, leaveerrors.ErrEmployeeIDTooLong
	}
	if !IsValidLeaveType(req.LeaveType) {
		return validatedSubmission{}, leaveerrors.ErrInvalidLeaveType
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return validatedSubmission{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return validatedSubmission{}, err
	}
	if startDate.After(endDate) {
		return validatedSubmission{}, leaveerrors.ErrInvalidDateRange
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return validatedSubmission{}, leaveerrors.ErrReasonRequired
	}
	return validatedSubmission{
		employeeID: employeeID,
		leaveType:  req.LeaveType,
		startDate:  startDate,
		endDate:    endDate,
		reason:     reason,
	}, nil
}

func optionalText(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
