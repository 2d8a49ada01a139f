package payroll

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngpayroll/internal/domain/audit"
	"ngpayroll/internal/platform/metrics"
)

type recordingAudit struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordingAudit) Record(_ context.Context, evt audit.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func (r *recordingAudit) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, evt := range r.events {
		out = append(out, evt.Action)
	}
	return out
}

type staticRoster struct {
	records []RosterEmployee
	err     error
}

func (s staticRoster) ActiveEmployees(context.Context) ([]RosterEmployee, error) {
	return s.records, s.err
}

var baseTime = time.Date(2024, time.June, 28, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, opts ...Option) (*Service, *recordingAudit) {
	t.Helper()
	recorder := &recordingAudit{}
	tick := 0
	seq := 0
	defaults := []Option{
		WithAudit(recorder),
		WithClock(func() time.Time {
			tick++
			return baseTime.Add(time.Duration(tick) * time.Minute)
		}),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("sub-%d", seq)
		}),
	}
	return NewService(NewMemoryStore(), append(defaults, opts...)...), recorder
}

func referenceEmployee() Employee {
	return Employee{
		EmployeeID:         "EMP-001",
		Name:               "Ada Obi",
		Department:         "Operations",
		Position:           "Field Engineer",
		BasicSalary:        200000,
		HousingAllowance:   50000,
		TransportAllowance: 30000,
	}
}

func seniorEmployee() Employee {
	return Employee{
		EmployeeID:         "EMP-002",
		Name:               "Bola Ade",
		BasicSalary:        2000000,
		HousingAllowance:   500000,
		TransportAllowance: 300000,
		OtherAllowances:    200000,
		Loan:               50000,
		Advance:            20000,
		OtherDeductions:    5000,
	}
}

func createSubmitted(t *testing.T, svc *Service, month, year int) Submission {
	t.Helper()
	sub, err := svc.Create(context.Background(), CreateInput{
		Month:     month,
		Year:      year,
		Employees: []Employee{referenceEmployee()},
		Actor:     "hr-1",
		Submit:    true,
	})
	require.NoError(t, err)
	return sub
}

func TestCreateDraftComputesTotals(t *testing.T) {
	svc, _ := newTestService(t)

	sub, err := svc.Create(context.Background(), CreateInput{
		Month:     6,
		Year:      2024,
		Employees: []Employee{referenceEmployee(), seniorEmployee()},
		Actor:     " hr-1 ",
	})
	require.NoError(t, err)

	assert.Equal(t, "sub-1", sub.ID)
	assert.Equal(t, StatusDraft, sub.Status)
	assert.Equal(t, "hr-1", sub.PreparedBy)
	assert.Equal(t, 1, sub.Version)
	assert.Nil(t, sub.SubmittedAt)
	assert.Equal(t, 3280000.0, sub.TotalGross)
	assert.Equal(t, 2611140.0, sub.TotalNet)
	assert.Equal(t, 668860.0, sub.TotalDeductions)
	assert.Equal(t, ComputeTotals(sub.Employees), sub.Totals())

	stored, err := svc.Get(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, sub, stored)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Month: 13, Year: 2024, Actor: "hr-1"})
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	_, err = svc.Create(ctx, CreateInput{Month: 1, Year: 1999, Actor: "hr-1"})
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	_, err = svc.Create(ctx, CreateInput{Month: 6, Year: 2024})
	assert.ErrorIs(t, err, ErrActorRequired)

	bad := referenceEmployee()
	bad.HousingAllowance = -1
	_, err = svc.Create(ctx, CreateInput{Month: 6, Year: 2024, Actor: "hr-1", Employees: []Employee{bad}})
	require.ErrorIs(t, err, ErrInvalidEmployee)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "housingAllowance", verr.Field)
	assert.Equal(t, "EMP-001", verr.EmployeeID)

	for _, id := range []string{"../../escaped", "ops/EMP-1", `ops\EMP-1`, "EMP..1"} {
		traversal := referenceEmployee()
		traversal.EmployeeID = id
		_, err = svc.Create(ctx, CreateInput{Month: 6, Year: 2024, Actor: "hr-1", Employees: []Employee{traversal}})
		require.True(t, errors.As(err, &verr), id)
		assert.Equal(t, "employeeId", verr.Field, id)
	}

	infinite := referenceEmployee()
	infinite.OtherAllowances = math.Inf(1)
	_, err = svc.Create(ctx, CreateInput{Month: 6, Year: 2024, Actor: "hr-1", Employees: []Employee{infinite}})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "otherAllowances", verr.Field)

	infinite = referenceEmployee()
	infinite.BasicSalary = math.Inf(1)
	_, err = svc.Create(ctx, CreateInput{Month: 6, Year: 2024, Actor: "hr-1", Employees: []Employee{infinite}})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "basicSalary", verr.Field)

	_, err = svc.Create(ctx, CreateInput{Month: 6, Year: 2024, Actor: "hr-1", Employees: []Employee{referenceEmployee(), referenceEmployee()}})
	assert.ErrorIs(t, err, ErrDuplicateEmployee)

	_, err = svc.Create(ctx, CreateInput{Month: 6, Year: 2024, Actor: "hr-1", Submit: true})
	assert.ErrorIs(t, err, ErrEmptyRoster)

	all, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateRefusesDuplicatePeriod(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateInput{Month: 6, Year: 2024, Actor: "hr-1", Employees: []Employee{referenceEmployee()}})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateInput{Month: 6, Year: 2024, Actor: "hr-2", Employees: []Employee{seniorEmployee()}})
	require.ErrorIs(t, err, ErrPeriodExists)
	assert.Contains(t, err.Error(), first.ID)

	// Other periods are unaffected.
	_, err = svc.Create(ctx, CreateInput{Month: 7, Year: 2024, Actor: "hr-1", Employees: []Employee{referenceEmployee()}})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Month: 6, Year: 2023, Actor: "hr-1", Employees: []Employee{referenceEmployee()}})
	require.NoError(t, err)
}

func TestRejectedSubmissionFreesPeriod(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sub := createSubmitted(t, svc, 6, 2024)
	_, err := svc.Reject(ctx, sub.ID, "fin-1", "wrong housing figures")
	require.NoError(t, err)

	replacement, err := svc.Create(ctx, CreateInput{Month: 6, Year: 2024, Actor: "hr-1", Employees: []Employee{referenceEmployee()}})
	require.NoError(t, err)

	active, err := svc.FindActiveForPeriod(ctx, 6, 2024)
	require.NoError(t, err)
	assert.Equal(t, replacement.ID, active.ID)
}

func TestFullApprovalLifecycle(t *testing.T) {
	svc, recorder := newTestService(t)
	ctx := context.Background()

	draft, err := svc.Create(ctx, CreateInput{Month: 6, Year: 2024, Actor: "hr-1", Employees: []Employee{referenceEmployee()}})
	require.NoError(t, err)

	submitted, err := svc.Submit(ctx, draft.ID, "hr-1")
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, submitted.Status)
	assert.Equal(t, "hr-1", submitted.SubmittedBy)
	require.NotNil(t, submitted.SubmittedAt)
	assert.Equal(t, 2, submitted.Version)

	approved, err := svc.Approve(ctx, draft.ID, "fin-1", " looks good ")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)
	assert.Equal(t, "fin-1", approved.ApprovedBy)
	assert.Equal(t, "looks good", approved.ApprovalComments)
	require.NotNil(t, approved.ApprovedAt)

	paid, err := svc.MarkPaid(ctx, draft.ID, "fin-2")
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, paid.Status)
	assert.Equal(t, "fin-2", paid.PaidBy)
	require.NotNil(t, paid.PaidAt)
	assert.True(t, paid.PaidAt.After(*paid.ApprovedAt))
	assert.Equal(t, 4, paid.Version)
	assert.Equal(t, draft.TotalNet, paid.TotalNet)

	assert.Equal(t, []string{
		audit.ActionPayrollCreate,
		audit.ActionPayrollSubmit,
		audit.ActionPayrollApprove,
		audit.ActionPayrollPay,
	}, recorder.actions())
}

func TestInvalidTransitionsLeaveStateUnchanged(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	draft, err := svc.Create(ctx, CreateInput{Month: 6, Year: 2024, Actor: "hr-1", Employees: []Employee{referenceEmployee()}})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, draft.ID, "fin-1", "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.Reject(ctx, draft.ID, "fin-1", "no")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.MarkPaid(ctx, draft.ID, "fin-1")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.Submit(ctx, draft.ID, "hr-1")
	require.NoError(t, err)
	_, err = svc.Submit(ctx, draft.ID, "hr-1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.MarkPaid(ctx, draft.ID, "fin-1")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	stored, err := svc.Get(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, stored.Status)
	assert.Equal(t, 2, stored.Version)

	_, err = svc.Submit(ctx, "missing", "hr-1")
	assert.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestRejectRequiresReason(t *testing.T) {
	svc, recorder := newTestService(t)
	ctx := context.Background()

	sub := createSubmitted(t, svc, 6, 2024)

	_, err := svc.Reject(ctx, sub.ID, "fin-1", "   ")
	require.ErrorIs(t, err, ErrRejectionReasonRequired)

	stored, err := svc.Get(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, sub, stored)
	assert.Equal(t, []string{audit.ActionPayrollSubmit}, recorder.actions())

	rejected, err := svc.Reject(ctx, sub.ID, "fin-1", "Transport allowance missing")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rejected.Status)
	assert.Equal(t, "fin-1", rejected.RejectedBy)
	assert.Equal(t, "Transport allowance missing", rejected.RejectionReason)
	require.NotNil(t, rejected.RejectedAt)
}

func TestEditRejectedAndResubmit(t *testing.T) {
	svc, recorder := newTestService(t)
	ctx := context.Background()

	sub := createSubmitted(t, svc, 6, 2024)
	rejected, err := svc.Reject(ctx, sub.ID, "fin-1", "missing senior staff")
	require.NoError(t, err)

	resubmitted, err := svc.Update(ctx, sub.ID, UpdateInput{
		Employees: []Employee{referenceEmployee(), seniorEmployee()},
		Actor:     "hr-2",
		Submit:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, sub.ID, resubmitted.ID)
	assert.Equal(t, StatusSubmitted, resubmitted.Status)
	assert.Equal(t, "hr-1", resubmitted.SubmittedBy)
	require.NotNil(t, resubmitted.SubmittedAt)
	assert.True(t, resubmitted.SubmittedAt.After(*sub.SubmittedAt))
	assert.Empty(t, resubmitted.RejectedBy)
	assert.Empty(t, resubmitted.RejectionReason)
	assert.Nil(t, resubmitted.RejectedAt)
	assert.Equal(t, rejected.Version+1, resubmitted.Version)
	assert.Equal(t, 3280000.0, resubmitted.TotalGross)
	assert.Equal(t, ComputeTotals(resubmitted.Employees), resubmitted.Totals())

	all, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	assert.Equal(t, []string{
		audit.ActionPayrollSubmit,
		audit.ActionPayrollReject,
		audit.ActionPayrollSubmit,
	}, recorder.actions())
}

func TestEditRejectedReturnsToDraft(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sub := createSubmitted(t, svc, 6, 2024)
	_, err := svc.Reject(ctx, sub.ID, "fin-1", "recheck")
	require.NoError(t, err)

	draft, err := svc.Update(ctx, sub.ID, UpdateInput{Employees: []Employee{seniorEmployee()}, Actor: "hr-1"})
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, draft.Status)
	assert.Equal(t, 3000000.0, draft.TotalGross)
	assert.Equal(t, 2358540.0, draft.TotalNet)
}

func TestEditRejectedRefusedWhenPeriodTaken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sub := createSubmitted(t, svc, 6, 2024)
	_, err := svc.Reject(ctx, sub.ID, "fin-1", "recheck")
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Month: 6, Year: 2024, Actor: "hr-2", Employees: []Employee{seniorEmployee()}})
	require.NoError(t, err)

	_, err = svc.Update(ctx, sub.ID, UpdateInput{Employees: []Employee{referenceEmployee()}, Actor: "hr-1"})
	assert.ErrorIs(t, err, ErrPeriodExists)

	stored, err := svc.Get(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, stored.Status)
}

func TestEditLockedOutsideDraftAndRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sub := createSubmitted(t, svc, 6, 2024)
	_, err := svc.Update(ctx, sub.ID, UpdateInput{Employees: []Employee{seniorEmployee()}, Actor: "hr-1"})
	assert.ErrorIs(t, err, ErrNotEditable)

	_, err = svc.AddEmployee(ctx, sub.ID, "hr-1", seniorEmployee(), false)
	assert.ErrorIs(t, err, ErrNotEditable)

	_, err = svc.Approve(ctx, sub.ID, "fin-1", "")
	require.NoError(t, err)
	_, err = svc.RemoveEmployee(ctx, sub.ID, "hr-1", "EMP-001", false)
	assert.ErrorIs(t, err, ErrNotEditable)
}

func TestRosterEditsRecomputeTotals(t *testing.T) {
	svc, recorder := newTestService(t)
	ctx := context.Background()

	sub, err := svc.Create(ctx, CreateInput{Month: 6, Year: 2024, Actor: "hr-1", Employees: []Employee{referenceEmployee()}})
	require.NoError(t, err)

	sub, err = svc.AddEmployee(ctx, sub.ID, "hr-1", seniorEmployee(), false)
	require.NoError(t, err)
	assert.Len(t, sub.Employees, 2)
	assert.Equal(t, 3280000.0, sub.TotalGross)

	_, err = svc.AddEmployee(ctx, sub.ID, "hr-1", seniorEmployee(), false)
	assert.ErrorIs(t, err, ErrDuplicateEmployee)

	raised := referenceEmployee()
	raised.BasicSalary = 250000
	sub, err = svc.ReplaceEmployee(ctx, sub.ID, "hr-1", raised, false)
	require.NoError(t, err)
	assert.Equal(t, 250000.0, sub.Employees[0].BasicSalary)
	assert.Equal(t, 3330000.0, sub.TotalGross)

	ghost := referenceEmployee()
	ghost.EmployeeID = "EMP-404"
	_, err = svc.ReplaceEmployee(ctx, sub.ID, "hr-1", ghost, false)
	assert.ErrorIs(t, err, ErrEmployeeNotInRoster)

	sub, err = svc.RemoveEmployee(ctx, sub.ID, "hr-1", "EMP-002", false)
	require.NoError(t, err)
	require.Len(t, sub.Employees, 1)
	assert.Equal(t, ComputeTotals([]Employee{raised}), sub.Totals())

	_, err = svc.RemoveEmployee(ctx, sub.ID, "hr-1", "EMP-002", false)
	assert.ErrorIs(t, err, ErrEmployeeNotInRoster)

	sub, err = svc.RemoveEmployee(ctx, sub.ID, "hr-1", "EMP-001", false)
	require.NoError(t, err)
	assert.Empty(t, sub.Employees)
	assert.Equal(t, Totals{}, sub.Totals())

	_, err = svc.Submit(ctx, sub.ID, "hr-1")
	assert.ErrorIs(t, err, ErrEmptyRoster)

	assert.Equal(t, 5, sub.Version)
	assert.Len(t, recorder.actions(), 5)
}

func TestEditAndSubmitIsOneSave(t *testing.T) {
	svc, recorder := newTestService(t)
	ctx := context.Background()

	sub := createSubmitted(t, svc, 6, 2024)
	rejected, err := svc.Reject(ctx, sub.ID, "fin-1", "wrong")
	require.NoError(t, err)

	_, err = svc.RemoveEmployee(ctx, sub.ID, "hr-2", "EMP-001", true)
	assert.ErrorIs(t, err, ErrEmptyRoster)

	stored, err := svc.Get(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, rejected, stored)
	assert.Len(t, recorder.actions(), 2)

	resubmitted, err := svc.AddEmployee(ctx, sub.ID, "hr-2", seniorEmployee(), true)
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, resubmitted.Status)
	assert.Equal(t, "hr-1", resubmitted.SubmittedBy)
	assert.Empty(t, resubmitted.RejectionReason)
	assert.Equal(t, rejected.Version+1, resubmitted.Version)
	assert.Equal(t, audit.ActionPayrollSubmit, recorder.actions()[2])
}

func TestDeleteRules(t *testing.T) {
	svc, recorder := newTestService(t)
	ctx := context.Background()

	draft, err := svc.Create(ctx, CreateInput{Month: 5, Year: 2024, Actor: "hr-1", Employees: []Employee{referenceEmployee()}})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, draft.ID, "hr-1"))
	_, err = svc.Get(ctx, draft.ID)
	assert.ErrorIs(t, err, ErrSubmissionNotFound)

	submitted := createSubmitted(t, svc, 6, 2024)
	assert.ErrorIs(t, svc.Delete(ctx, submitted.ID, "hr-1"), ErrDeleteNotAllowed)

	_, err = svc.Reject(ctx, submitted.ID, "fin-1", "duplicate run")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, submitted.ID, "hr-1"))

	assert.ErrorIs(t, svc.Delete(ctx, "missing", "hr-1"), ErrSubmissionNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, draft.ID, ""), ErrActorRequired)

	actions := recorder.actions()
	assert.Equal(t, audit.ActionPayrollDelete, actions[len(actions)-1])
}

func TestListOrdersNewestPeriodFirst(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	periods := [][2]int{{3, 2024}, {11, 2023}, {6, 2024}}
	for _, p := range periods {
		_, err := svc.Create(ctx, CreateInput{Month: p[0], Year: p[1], Actor: "hr-1", Employees: []Employee{referenceEmployee()}})
		require.NoError(t, err)
	}
	_, err := svc.Submit(ctx, "sub-1", "hr-1")
	require.NoError(t, err)

	all, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"sub-3", "sub-1", "sub-2"}, []string{all[0].ID, all[1].ID, all[2].ID})

	submitted, err := svc.List(ctx, Filter{Status: StatusSubmitted})
	require.NoError(t, err)
	require.Len(t, submitted, 1)
	assert.Equal(t, "sub-1", submitted[0].ID)

	older, err := svc.List(ctx, Filter{Year: 2023})
	require.NoError(t, err)
	require.Len(t, older, 1)
	assert.Equal(t, "sub-2", older[0].ID)
}

func TestFindActiveForPeriodNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.FindActiveForPeriod(context.Background(), 1, 2024)
	assert.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestSummaryGroupsDepartments(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sub, err := svc.Create(ctx, CreateInput{Month: 6, Year: 2024, Actor: "hr-1", Employees: []Employee{seniorEmployee(), referenceEmployee()}})
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.EmployeeCount)
	assert.Equal(t, sub.TotalGross, summary.TotalGross)
	assert.Equal(t, 292460.0, summary.TotalPAYE)
	assert.Equal(t, 246400.0, summary.TotalPensionEmployee)
	assert.Equal(t, 308000.0, summary.TotalPensionEmployer)
	assert.Equal(t, 55000.0, summary.TotalNHF)
	assert.Equal(t, []DepartmentTotals{
		{Department: "Operations", EmployeeCount: 1, TotalGross: 280000, TotalNet: 252600},
		{Department: "Unassigned", EmployeeCount: 1, TotalGross: 3000000, TotalNet: 2358540},
	}, summary.Departments)
}

func TestCreateFromRoster(t *testing.T) {
	basic, housing, transport, others := 50.0, 30.0, 15.0, 5.0
	roster := staticRoster{records: []RosterEmployee{
		{
			EmployeeID:       "P-1",
			Name:             "Chidi Eze",
			Department:       "Finance",
			EmployeeType:     "Permanent",
			AnnualGross:      3600000,
			BasicPercent:     &basic,
			HousingPercent:   &housing,
			TransportPercent: &transport,
			OthersPercent:    &others,
			HMO:              2500,
		},
		{EmployeeID: "C-1", Name: "Dayo Musa", EmployeeType: "contract", ATMCount: 12, RatePerATM: 15000},
		{EmployeeID: "C-2", Name: "Left Company", Status: "terminated", ATMCount: 3, RatePerATM: 15000},
	}}
	svc, _ := newTestService(t, WithRoster(roster))

	sub, err := svc.CreateFromRoster(context.Background(), 6, 2024, "hr-1", false)
	require.NoError(t, err)
	require.Len(t, sub.Employees, 2)

	permanent := sub.Employees[0]
	assert.Equal(t, 150000.0, permanent.BasicSalary)
	assert.Equal(t, 90000.0, permanent.HousingAllowance)
	assert.Equal(t, 45000.0, permanent.TransportAllowance)
	assert.Equal(t, 15000.0, permanent.OtherAllowances)
	assert.Equal(t, 2500.0, permanent.OtherDeductions)
	assert.Zero(t, permanent.Advance)

	contract := sub.Employees[1]
	assert.Equal(t, 180000.0, contract.BasicSalary)
	assert.Zero(t, contract.HousingAllowance)
	assert.Equal(t, ComputeTotals(sub.Employees), sub.Totals())
}

func TestCreateFromRosterErrors(t *testing.T) {
	ctx := context.Background()

	svc, _ := newTestService(t)
	_, err := svc.CreateFromRoster(ctx, 6, 2024, "hr-1", false)
	assert.ErrorIs(t, err, ErrNoRosterSource)

	boom := errors.New("roster unavailable")
	svc, _ = newTestService(t, WithRoster(staticRoster{err: boom}))
	_, err = svc.CreateFromRoster(ctx, 6, 2024, "hr-1", false)
	assert.ErrorIs(t, err, boom)

	svc, _ = newTestService(t, WithRoster(staticRoster{records: []RosterEmployee{
		{EmployeeID: "X-1", Name: "Odd Type", EmployeeType: "intern", AnnualGross: 100},
	}}))
	_, err = svc.CreateFromRoster(ctx, 6, 2024, "hr-1", false)
	assert.ErrorIs(t, err, ErrUnknownEmployeeType)
}

func TestConcurrentCreatesAllowOneSubmissionPerPeriod(t *testing.T) {
	svc := NewService(NewMemoryStore())
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, CreateInput{Month: 6, Year: 2024, Actor: "hr-1", Employees: []Employee{referenceEmployee()}})
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, created)
}

type recordingNotifier struct {
	actions []string
	err     error
}

func (r *recordingNotifier) Notify(_ context.Context, action string, sub Submission) error {
	r.actions = append(r.actions, action+":"+sub.Status)
	return r.err
}

func TestNotifierSeesSavedState(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("mail relay down")}
	collector := metrics.New()
	svc, _ := newTestService(t, WithNotifier(notifier), WithMetrics(collector))
	ctx := context.Background()

	sub := createSubmitted(t, svc, 6, 2024)
	_, err := svc.Reject(ctx, sub.ID, "fin-1", "")
	require.ErrorIs(t, err, ErrRejectionReasonRequired)
	_, err = svc.Reject(ctx, sub.ID, "fin-1", "recheck")
	require.NoError(t, err, "notification failures must not fail the transition")
	require.NoError(t, svc.Delete(ctx, sub.ID, "hr-1"))

	assert.Equal(t, []string{
		audit.ActionPayrollSubmit + ":" + StatusSubmitted,
		audit.ActionPayrollReject + ":" + StatusRejected,
	}, notifier.actions)

	snap := collector.Snapshot()
	assert.Equal(t, uint64(4), snap["operationsTotal"])
	assert.Equal(t, uint64(1), snap["failuresTotal"])
}
