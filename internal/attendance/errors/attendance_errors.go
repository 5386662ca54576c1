package attendanceerrors

import (
	"net/http"

	"dayflow-hris/internal/shared/apperror"
)

var (
	ErrAlreadyCheckedIn = apperror.New(
		apperror.CodeConflict,
		"Already checked in today",
		http.StatusConflict,
	)
	ErrAlreadyCheckedOut = apperror.New(
		apperror.CodeConflict,
		"Already checked out today",
		http.StatusConflict,
	)
	ErrNotCheckedIn = apperror.New(
		apperror.CodeInvalidInput,
		"Must check in before checking out",
		http.StatusBadRequest,
	)
	ErrOnApprovedLeave = apperror.New(
		apperror.CodeConflict,
		"Cannot mark attendance while on approved leave",
		http.StatusConflict,
	)
	ErrInvalidPeriod = apperror.New(
		apperror.CodeInvalidInput,
		"month must be between 1 and 12 and year must be valid",
		http.StatusBadRequest,
	)
	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"date must be in YYYY-MM-DD format",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid employee ID",
		http.StatusBadRequest,
	)
)
