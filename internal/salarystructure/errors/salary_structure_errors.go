package salarystructureerrors

import (
	"net/http"

	"dayflow-hris/internal/shared/apperror"
)

var (
	ErrSalaryStructureNotFound = apperror.New(
		apperror.CodeNotFound,
		"No salary structure found for this employee",
		http.StatusNotFound,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid employee ID",
		http.StatusBadRequest,
	)
	ErrInvalidEffectiveDate = apperror.New(
		apperror.CodeInvalidInput,
		"effective_from must be a date in YYYY-MM-DD format",
		http.StatusBadRequest,
	)
	ErrSalaryVersionConflict = apperror.New(
		apperror.CodeConflict,
		"Salary structure for this employee and effective date already exists",
		http.StatusConflict,
	)
)
