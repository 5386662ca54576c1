package salarystructure

import (
	"errors"

	salarystructureerrors "dayflow-hris/internal/salarystructure/errors"
	"dayflow-hris/internal/shared/apperror"

	"gorm.io/gorm"
)

const uniqueEmployeeEffective = "uq_salary_structures_employee_effective"

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return salarystructureerrors.ErrSalaryStructureNotFound
	}

	// upsert menangani konflik normal; ini hanya terjadi kalau dua request
	// menulis versi yang sama di tengah transaksi lain
	if apperror.IsUniqueViolation(err, uniqueEmployeeEffective) {
		return salarystructureerrors.ErrSalaryVersionConflict
	}

	return err
}
