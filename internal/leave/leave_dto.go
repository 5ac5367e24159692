package leave

import "go-ems/internal/employee"

type CreateLeaveRequest struct {
	EmployeeID string `json:"employee" binding:"required,max=64"`
	LeaveType  string `json:"leaveType" binding:"required,oneof=Casual Sick Paid Unpaid Maternity Paternity"`
	StartDate  string `json:"startDate" binding:"required"`
	EndDate    string `json:"endDate" binding:"required"`
	Reason     string `json:"reason" binding:"required"`
}

type UpdateStatusRequest struct {
	Status     string  `json:"status" binding:"required,oneof=Pending Approved Rejected Cancelled"`
	Remarks    *string `json:"remarks"`
	ApprovedBy *string `json:"approvedBy"`
}

type ListFilter struct {
	EmployeeID string
	Status     string
}

type LeaveResponse struct {
	ID          string           `json:"id"`
	EmployeeID  string           `json:"employeeId"`
	Employee    employee.Summary `json:"employee"`
	LeaveType   string           `json:"leaveType"`
	StartDate   string           `json:"startDate"`
	EndDate     string           `json:"endDate"`
	TotalDays   int              `json:"totalDays"`
	Reason      string           `json:"reason"`
	Status      string           `json:"status"`
	AppliedDate string           `json:"appliedDate"`
	ApprovedBy  *string          `json:"approvedBy,omitempty"`
	Remarks     *string          `json:"remarks,omitempty"`
	DecidedAt   *string          `json:"decidedAt,omitempty"`
}

type BalanceResponse struct {
	EmployeeID     string           `json:"employeeId"`
	Employee       employee.Summary `json:"employee"`
	Year           int              `json:"year"`
	Entitlement    int              `json:"entitlement"`
	UsedDays       int              `json:"usedDays"`
	Available      int              `json:"available"`
	PendingCount   int              `json:"pendingCount"`
	ApprovedCount  int              `json:"approvedCount"`
	RejectedCount  int              `json:"rejectedCount"`
	CancelledCount int              `json:"cancelledCount"`
}
