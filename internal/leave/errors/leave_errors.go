package leaveerrors

import (
	"net/http"

	"go-ems/internal/shared/apperror"
)

// Validation
var (
	ErrEmployeeRequired = apperror.New(
		apperror.CodeInvalidInput,
		"employee is required",
		http.StatusBadRequest,
	)
	ErrEmployeeIDTooLong = apperror.New(
		apperror.CodeInvalidInput,
		"employee must be at most 64 characters",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveType = apperror.New(
		apperror.CodeInvalidInput,
		"leaveType must be one of: Casual, Sick, Paid, Unpaid, Maternity, Paternity",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"startDate must be before or equal to endDate",
		http.StatusBadRequest,
	)
	ErrReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"reason is required",
		http.StatusBadRequest,
	)
	ErrInvalidStatus = apperror.New(
		apperror.CodeInvalidInput,
		"status must be one of: Pending, Approved, Rejected, Cancelled",
		http.StatusBadRequest,
	)
	ErrRemarksRequired = apperror.New(
		apperror.CodeInvalidInput,
		"remarks are required when rejecting a leave request",
		http.StatusBadRequest,
	)
	ErrInvalidYear = apperror.New(
		apperror.CodeInvalidInput,
		"year must be between 1970 and 9999",
		http.StatusBadRequest,
	)
)

// Authorization
var (
	ErrPrincipalRequired = apperror.New(
		apperror.CodeUnauthorized,
		"authenticated employee is required",
		http.StatusUnauthorized,
	)
	ErrApprovalCapabilityRequired = apperror.New(
		apperror.CodeForbidden,
		"only a manager or HR can approve or reject leave requests",
		http.StatusForbidden,
	)
	ErrSubmitForOtherForbidden = apperror.New(
		apperror.CodeForbidden,
		"you can only submit leave requests for yourself",
		http.StatusForbidden,
	)
	ErrReadForbidden = apperror.New(
		apperror.CodeForbidden,
		"you can only view your own leave requests",
		http.StatusForbidden,
	)
	ErrCancelForbidden = apperror.New(
		apperror.CodeForbidden,
		"you can only cancel your own leave requests",
		http.StatusForbidden,
	)
	ErrApprovedByMismatch = apperror.New(
		apperror.CodeForbidden,
		"approvedBy must match the acting approver",
		http.StatusForbidden,
	)
)

// State
var (
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"invalid leave status transition",
		http.StatusConflict,
	)
	ErrLeaveOverlap = apperror.New(
		apperror.CodeConflict,
		"leave already exists in overlapping period",
		http.StatusConflict,
	)
)
