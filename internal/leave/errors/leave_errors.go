package leaveerrors

import (
	"fmt"
	"net/http"
	"strings"

	"dayflow-hris/internal/shared/apperror"
)

var (
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave id",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveType = apperror.New(
		apperror.CodeInvalidInput,
		"leave_type must be one of Paid, Sick, Unpaid",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrInvalidYear = apperror.New(
		apperror.CodeInvalidInput,
		"invalid year",
		http.StatusBadRequest,
	)
	ErrLeaveOverlap = apperror.New(
		apperror.CodeConflict,
		"You already have a leave request for these dates",
		http.StatusConflict,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"Leave request not found",
		http.StatusNotFound,
	)
	ErrAlreadyProcessed = apperror.New(
		apperror.CodeConflict,
		"Leave request has already been processed",
		http.StatusConflict,
	)
	ErrNotFoundOrProcessed = apperror.New(
		apperror.CodeNotFound,
		"Leave request not found or already processed",
		http.StatusNotFound,
	)
	ErrCannotCancel = apperror.New(
		apperror.CodeNotFound,
		"Leave request not found or cannot be cancelled",
		http.StatusNotFound,
	)
	ErrRejectionReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"rejection_reason is required",
		http.StatusBadRequest,
	)
)

// InsufficientBalance reports the remaining days of the requested type.
func InsufficientBalance(leaveType string, available int) *apperror.AppError {
	return apperror.New(
		apperror.CodeInvalidInput,
		fmt.Sprintf("Insufficient %s leave balance. Available: %d days", strings.ToLower(leaveType), available),
		http.StatusBadRequest,
	)
}
