package payroll

import (
	"errors"
	"fmt"
)

var (
	ErrSubmissionNotFound      = errors.New("payroll submission not found")
	ErrPeriodExists            = errors.New("a payroll submission already exists for this period; edit or delete it instead")
	ErrInvalidPeriod           = errors.New("invalid payroll period")
	ErrEmptyRoster             = errors.New("payroll submission has no employees")
	ErrRejectionReasonRequired = errors.New("rejection reason is required")
	ErrInvalidTransition       = errors.New("invalid payroll status transition")
	ErrNotEditable             = errors.New("only draft or rejected submissions can be edited")
	ErrDeleteNotAllowed        = errors.New("only draft or rejected submissions can be deleted")
	ErrInvalidEmployee         = errors.New("invalid payroll employee")
	ErrDuplicateEmployee       = errors.New("employee already in payroll roster")
	ErrEmployeeNotInRoster     = errors.New("employee not in payroll roster")
	ErrUnknownEmployeeType     = errors.New("unknown employee type")
	ErrActorRequired           = errors.New("acting user is required")
	ErrNoRosterSource          = errors.New("no employee roster source configured")
)

type ValidationError struct {
	EmployeeID string
	Field      string
	Message    string
}

func (e *ValidationError) Error() string {
	if e.EmployeeID != "" {
		return fmt.Sprintf("employee %s: %s %s", e.EmployeeID, e.Field, e.Message)
	}
	return fmt.Sprintf("employee: %s %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidEmployee
}

func transitionError(from, to string) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
