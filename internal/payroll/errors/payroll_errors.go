package payrollerrors

import (
	"net/http"

	"dayflow-hris/internal/shared/apperror"
)

var (
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidPeriod = apperror.New(
		apperror.CodeInvalidInput,
		"invalid period, month must be 1-12 and year 1900-9999",
		http.StatusBadRequest,
	)
	ErrSalaryStructureNotFound = apperror.New(
		apperror.CodeNotFound,
		"No salary structure found for this employee",
		http.StatusNotFound,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found",
		http.StatusNotFound,
	)
)
