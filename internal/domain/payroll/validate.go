package payroll

import (
	"fmt"
	"math"
	"strings"
)

const minPayrollYear = 2000

// ValidateEmployee checks a roster entry before it is added to a submission.
// Negative earnings and deductions are rejected; salary reversals are not
// modelled.
func ValidateEmployee(employee Employee) error {
	id := strings.TrimSpace(employee.EmployeeID)
	if id == "" {
		return &ValidationError{Field: "employeeId", Message: "is required"}
	}
	if !safeEmployeeID(id) {
		return &ValidationError{EmployeeID: id, Field: "employeeId", Message: "must not contain path separators or \"..\""}
	}
	if strings.TrimSpace(employee.Name) == "" {
		return &ValidationError{EmployeeID: id, Field: "name", Message: "is required"}
	}
	if !(employee.BasicSalary > 0) || math.IsInf(employee.BasicSalary, 0) {
		return &ValidationError{EmployeeID: id, Field: "basicSalary", Message: "must be greater than zero"}
	}

	amounts := []struct {
		field string
		value float64
	}{
		{"housingAllowance", employee.HousingAllowance},
		{"transportAllowance", employee.TransportAllowance},
		{"otherAllowances", employee.OtherAllowances},
		{"loan", employee.Loan},
		{"advance", employee.Advance},
		{"otherDeductions", employee.OtherDeductions},
	}
	for _, amount := range amounts {
		if !(amount.value >= 0) {
			return &ValidationError{EmployeeID: id, Field: amount.field, Message: "must not be negative"}
		}
		if math.IsInf(amount.value, 0) {
			return &ValidationError{EmployeeID: id, Field: amount.field, Message: "must be finite"}
		}
	}
	return nil
}

// safeEmployeeID reports whether id can name a file inside the payslip
// directory.
func safeEmployeeID(id string) bool {
	return !strings.ContainsAny(id, `/\`) && !strings.Contains(id, "..")
}

func validateRoster(employees []Employee) error {
	seen := make(map[string]struct{}, len(employees))
	for _, employee := range employees {
		if err := ValidateEmployee(employee); err != nil {
			return err
		}
		key := strings.TrimSpace(employee.EmployeeID)
		if _, ok := seen[key]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateEmployee, key)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func validatePeriod(month, year int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: month %d", ErrInvalidPeriod, month)
	}
	if year < minPayrollYear {
		return fmt.Errorf("%w: year %d", ErrInvalidPeriod, year)
	}
	return nil
}
