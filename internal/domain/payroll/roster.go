package payroll

import (
	"context"
	"fmt"
	"strings"
)

// RosterEmployee is an active-employee record from the HR roster. Percent
// fields are pointers so an absent split can be told apart from an explicit 0.
type RosterEmployee struct {
	EmployeeID       string   `json:"employeeId" yaml:"employeeId"`
	Name             string   `json:"name" yaml:"name"`
	Department       string   `json:"department" yaml:"department"`
	Position         string   `json:"position" yaml:"position"`
	Status           string   `json:"status" yaml:"status"`
	EmployeeType     string   `json:"employeeType" yaml:"employeeType"`
	AnnualGross      float64  `json:"annualGross" yaml:"annualGross"`
	ATMCount         float64  `json:"atmCount" yaml:"atmCount"`
	RatePerATM       float64  `json:"ratePerAtm" yaml:"ratePerAtm"`
	BasicPercent     *float64 `json:"basicPercent,omitempty" yaml:"basicPercent,omitempty"`
	HousingPercent   *float64 `json:"housingPercent,omitempty" yaml:"housingPercent,omitempty"`
	TransportPercent *float64 `json:"transportPercent,omitempty" yaml:"transportPercent,omitempty"`
	OthersPercent    *float64 `json:"othersPercent,omitempty" yaml:"othersPercent,omitempty"`
	Loan             float64  `json:"loan" yaml:"loan"`
	HMO              float64  `json:"hmo" yaml:"hmo"`
}

func (r RosterEmployee) active() bool {
	status := strings.ToLower(strings.TrimSpace(r.Status))
	return status == "" || status == RosterStatusActive
}

// FromRoster maps a roster record onto the payroll earnings and deduction
// inputs. Permanent staff split a twelfth of the annual gross by percentage;
// any other type is paid per serviced ATM and the whole amount is basic.
func FromRoster(record RosterEmployee) (Employee, error) {
	employee := Employee{
		EmployeeID:      strings.TrimSpace(record.EmployeeID),
		Name:            strings.TrimSpace(record.Name),
		Department:      strings.TrimSpace(record.Department),
		Position:        strings.TrimSpace(record.Position),
		Loan:            record.Loan,
		OtherDeductions: record.HMO,
	}

	kind := strings.ToLower(strings.TrimSpace(record.EmployeeType))
	if kind == "" {
		kind = EmployeeTypeContract
		if record.AnnualGross > 0 {
			kind = EmployeeTypePermanent
		}
	}

	switch kind {
	case EmployeeTypePermanent:
		monthly := record.AnnualGross / monthsInYear
		if record.BasicPercent == nil && record.HousingPercent == nil && record.TransportPercent == nil && record.OthersPercent == nil {
			employee.BasicSalary = monthly
			return employee, nil
		}
		employee.BasicSalary = monthly * percentOrZero(record.BasicPercent) / percentBase
		employee.HousingAllowance = monthly * percentOrZero(record.HousingPercent) / percentBase
		employee.TransportAllowance = monthly * percentOrZero(record.TransportPercent) / percentBase
		employee.OtherAllowances = monthly * percentOrZero(record.OthersPercent) / percentBase
	case EmployeeTypeContract, "unit", "atm":
		employee.BasicSalary = record.ATMCount * record.RatePerATM
	default:
		return Employee{}, fmt.Errorf("%w: %q for employee %s", ErrUnknownEmployeeType, record.EmployeeType, employee.EmployeeID)
	}
	return employee, nil
}

// SeedEmployees loads the active roster and maps every record. The first
// mapping failure aborts the seed.
func SeedEmployees(ctx context.Context, source RosterSource) ([]Employee, error) {
	records, err := source.ActiveEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("load employee roster: %w", err)
	}
	employees := make([]Employee, 0, len(records))
	for _, record := range records {
		if !record.active() {
			continue
		}
		employee, err := FromRoster(record)
		if err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}
	return employees, nil
}

func percentOrZero(value *float64) float64 {
	if value == nil {
		return 0
	}
	return *value
}
