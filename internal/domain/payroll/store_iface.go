package payroll

import "context"

// Store persists the whole submission collection. The service reads the full
// list, applies one transition and writes the full list back.
type Store interface {
	List(ctx context.Context) ([]Submission, error)
	Save(ctx context.Context, submissions []Submission) error
}

type RosterSource interface {
	ActiveEmployees(ctx context.Context) ([]RosterEmployee, error)
}
