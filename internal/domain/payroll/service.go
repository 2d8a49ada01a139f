package payroll

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ngpayroll/internal/domain/audit"
	"ngpayroll/internal/platform/metrics"
)

// Notifier is told about every stored workflow change after it is saved.
type Notifier interface {
	Notify(ctx context.Context, action string, sub Submission) error
}

type Service struct {
	store    Store
	roster   RosterSource
	audit    audit.Recorder
	notifier Notifier
	metrics  *metrics.Collector
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string

	// mu serializes read-modify-write cycles against the store.
	mu sync.Mutex
}

type Option func(*Service)

func WithRoster(roster RosterSource) Option {
	return func(s *Service) { s.roster = roster }
}

func WithAudit(recorder audit.Recorder) Option {
	return func(s *Service) { s.audit = recorder }
}

func WithNotifier(notifier Notifier) Option {
	return func(s *Service) { s.notifier = notifier }
}

func WithMetrics(collector *metrics.Collector) Option {
	return func(s *Service) { s.metrics = collector }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: zap.NewNop(),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateInput struct {
	Month     int
	Year      int
	Employees []Employee
	Actor     string
	// Submit sends the new submission straight to Finance instead of saving a draft.
	Submit bool
}

type UpdateInput struct {
	Employees []Employee
	Actor     string
	Submit    bool
}

func (s *Service) Create(ctx context.Context, input CreateInput) (_ Submission, err error) {
	defer s.observe(audit.ActionPayrollCreate, time.Now(), &err)

	actor := strings.TrimSpace(input.Actor)
	if actor == "" {
		return Submission{}, ErrActorRequired
	}
	if err := validatePeriod(input.Month, input.Year); err != nil {
		return Submission{}, err
	}
	if err := validateRoster(input.Employees); err != nil {
		return Submission{}, err
	}
	if input.Submit && len(input.Employees) == 0 {
		return Submission{}, ErrEmptyRoster
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return Submission{}, err
	}
	if existing, ok := activeForPeriod(all, input.Month, input.Year, ""); ok {
		return Submission{}, fmt.Errorf("%w (id %s, status %s)", ErrPeriodExists, existing.ID, existing.Status)
	}

	now := s.now()
	sub := Submission{
		ID:         s.newID(),
		Month:      input.Month,
		Year:       input.Year,
		Employees:  append([]Employee(nil), input.Employees...),
		Status:     StatusDraft,
		PreparedBy: actor,
		CreatedAt:  now,
		UpdatedAt:  now,
		Version:    1,
	}
	applyTotals(&sub)
	action := audit.ActionPayrollCreate
	if input.Submit {
		markSubmitted(&sub, actor, now)
		action = audit.ActionPayrollSubmit
	}

	all = append(all, sub)
	if err := s.save(ctx, all); err != nil {
		return Submission{}, err
	}
	s.recordTransition(ctx, actor, action, nil, sub)
	return sub.clone(), nil
}

// CreateFromRoster seeds a new submission from the active employee roster.
func (s *Service) CreateFromRoster(ctx context.Context, month, year int, actor string, submit bool) (Submission, error) {
	if s.roster == nil {
		return Submission{}, ErrNoRosterSource
	}
	employees, err := SeedEmployees(ctx, s.roster)
	if err != nil {
		return Submission{}, err
	}
	return s.Create(ctx, CreateInput{Month: month, Year: year, Employees: employees, Actor: actor, Submit: submit})
}

// Update replaces the roster of a draft or rejected submission. A rejected
// submission re-enters draft under the same ID.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (Submission, error) {
	if err := validateRoster(input.Employees); err != nil {
		return Submission{}, err
	}
	if input.Submit && len(input.Employees) == 0 {
		return Submission{}, ErrEmptyRoster
	}
	return s.editRoster(ctx, id, input.Actor, input.Submit, func(sub *Submission) error {
		sub.Employees = append([]Employee(nil), input.Employees...)
		return nil
	})
}

// AddEmployee appends one employee. With submit the edited submission goes
// to Finance in the same save.
func (s *Service) AddEmployee(ctx context.Context, id, actor string, employee Employee, submit bool) (Submission, error) {
	if err := ValidateEmployee(employee); err != nil {
		return Submission{}, err
	}
	return s.editRoster(ctx, id, actor, submit, func(sub *Submission) error {
		if rosterIndex(sub.Employees, employee.EmployeeID) >= 0 {
			return fmt.Errorf("%w: %s", ErrDuplicateEmployee, employee.EmployeeID)
		}
		sub.Employees = append(sub.Employees, employee)
		return nil
	})
}

// ReplaceEmployee swaps the roster entry that has the same employee ID.
func (s *Service) ReplaceEmployee(ctx context.Context, id, actor string, employee Employee, submit bool) (Submission, error) {
	if err := ValidateEmployee(employee); err != nil {
		return Submission{}, err
	}
	return s.editRoster(ctx, id, actor, submit, func(sub *Submission) error {
		idx := rosterIndex(sub.Employees, employee.EmployeeID)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrEmployeeNotInRoster, employee.EmployeeID)
		}
		sub.Employees[idx] = employee
		return nil
	})
}

func (s *Service) RemoveEmployee(ctx context.Context, id, actor, employeeID string, submit bool) (Submission, error) {
	return s.editRoster(ctx, id, actor, submit, func(sub *Submission) error {
		idx := rosterIndex(sub.Employees, employeeID)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrEmployeeNotInRoster, employeeID)
		}
		sub.Employees = append(sub.Employees[:idx], sub.Employees[idx+1:]...)
		return nil
	})
}

// editRoster reopens the submission, applies edit and optionally submits it,
// all inside one mutation. Nothing is stored if any step fails.
func (s *Service) editRoster(ctx context.Context, id, actor string, submit bool, edit func(sub *Submission) error) (Submission, error) {
	action := audit.ActionPayrollUpdate
	if submit {
		action = audit.ActionPayrollSubmit
	}
	return s.mutate(ctx, id, actor, action, func(sub *Submission, all []Submission) error {
		if err := reopen(sub, all); err != nil {
			return err
		}
		if err := edit(sub); err != nil {
			return err
		}
		applyTotals(sub)
		if submit {
			if len(sub.Employees) == 0 {
				return ErrEmptyRoster
			}
			markSubmitted(sub, strings.TrimSpace(actor), s.now())
		}
		return nil
	})
}

func (s *Service) Submit(ctx context.Context, id, actor string) (Submission, error) {
	return s.mutate(ctx, id, actor, audit.ActionPayrollSubmit, func(sub *Submission, _ []Submission) error {
		if sub.Status != StatusDraft {
			return transitionError(sub.Status, StatusSubmitted)
		}
		if len(sub.Employees) == 0 {
			return ErrEmptyRoster
		}
		markSubmitted(sub, strings.TrimSpace(actor), s.now())
		return nil
	})
}

func (s *Service) Approve(ctx context.Context, id, actor, comments string) (Submission, error) {
	return s.mutate(ctx, id, actor, audit.ActionPayrollApprove, func(sub *Submission, _ []Submission) error {
		if sub.Status != StatusSubmitted {
			return transitionError(sub.Status, StatusApproved)
		}
		now := s.now()
		sub.Status = StatusApproved
		sub.ApprovedBy = strings.TrimSpace(actor)
		sub.ApprovedAt = &now
		sub.ApprovalComments = strings.TrimSpace(comments)
		return nil
	})
}

func (s *Service) Reject(ctx context.Context, id, actor, reason string) (Submission, error) {
	return s.mutate(ctx, id, actor, audit.ActionPayrollReject, func(sub *Submission, _ []Submission) error {
		if sub.Status != StatusSubmitted {
			return transitionError(sub.Status, StatusRejected)
		}
		reason = strings.TrimSpace(reason)
		if reason == "" {
			return ErrRejectionReasonRequired
		}
		now := s.now()
		sub.Status = StatusRejected
		sub.RejectedBy = strings.TrimSpace(actor)
		sub.RejectedAt = &now
		sub.RejectionReason = reason
		return nil
	})
}

func (s *Service) MarkPaid(ctx context.Context, id, actor string) (Submission, error) {
	return s.mutate(ctx, id, actor, audit.ActionPayrollPay, func(sub *Submission, _ []Submission) error {
		if sub.Status != StatusApproved {
			return transitionError(sub.Status, StatusPaid)
		}
		now := s.now()
		sub.Status = StatusPaid
		sub.PaidBy = strings.TrimSpace(actor)
		sub.PaidAt = &now
		return nil
	})
}

func (s *Service) Delete(ctx context.Context, id, actor string) (err error) {
	defer s.observe(audit.ActionPayrollDelete, time.Now(), &err)

	if strings.TrimSpace(actor) == "" {
		return ErrActorRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return err
	}
	idx := submissionIndex(all, id)
	if idx < 0 {
		return ErrSubmissionNotFound
	}
	removed := all[idx]
	if removed.Status != StatusDraft && removed.Status != StatusRejected {
		return ErrDeleteNotAllowed
	}

	all = append(all[:idx], all[idx+1:]...)
	if err := s.save(ctx, all); err != nil {
		return err
	}
	s.recordTransition(ctx, strings.TrimSpace(actor), audit.ActionPayrollDelete, &removed, Submission{})
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (Submission, error) {
	all, err := s.load(ctx)
	if err != nil {
		return Submission{}, err
	}
	idx := submissionIndex(all, id)
	if idx < 0 {
		return Submission{}, ErrSubmissionNotFound
	}
	return all[idx], nil
}

// List returns submissions newest period first.
func (s *Service) List(ctx context.Context, filter Filter) ([]Submission, error) {
	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Submission, 0, len(all))
	for _, sub := range all {
		if filter.Status != "" && sub.Status != filter.Status {
			continue
		}
		if filter.Year != 0 && sub.Year != filter.Year {
			continue
		}
		out = append(out, sub)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		if out[i].Month != out[j].Month {
			return out[i].Month > out[j].Month
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Service) FindActiveForPeriod(ctx context.Context, month, year int) (Submission, error) {
	all, err := s.load(ctx)
	if err != nil {
		return Submission{}, err
	}
	sub, ok := activeForPeriod(all, month, year, "")
	if !ok {
		return Submission{}, ErrSubmissionNotFound
	}
	return sub, nil
}

func (s *Service) Summary(ctx context.Context, id string) (Summary, error) {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(sub), nil
}

// Summarize aggregates statutory components and per-department totals. The
// headline totals are the ones stored on the submission.
func Summarize(sub Submission) Summary {
	summary := Summary{
		SubmissionID:    sub.ID,
		Month:           sub.Month,
		Year:            sub.Year,
		Status:          sub.Status,
		EmployeeCount:   len(sub.Employees),
		TotalGross:      sub.TotalGross,
		TotalNet:        sub.TotalNet,
		TotalDeductions: sub.TotalDeductions,
	}
	departments := map[string]*DepartmentTotals{}
	var order []string
	for _, employee := range sub.Employees {
		b := CalculateBreakdown(employee)
		summary.TotalPAYE += b.PAYE
		summary.TotalPensionEmployee += b.PensionEmployee
		summary.TotalPensionEmployer += b.PensionEmployer
		summary.TotalNHF += b.NHF

		name := strings.TrimSpace(employee.Department)
		if name == "" {
			name = "Unassigned"
		}
		dept, ok := departments[name]
		if !ok {
			dept = &DepartmentTotals{Department: name}
			departments[name] = dept
			order = append(order, name)
		}
		dept.EmployeeCount++
		dept.TotalGross += b.GrossSalary
		dept.TotalNet += b.NetPay
	}
	sort.Strings(order)
	for _, name := range order {
		summary.Departments = append(summary.Departments, *departments[name])
	}
	return summary
}

func (s *Service) mutate(ctx context.Context, id, actor, action string, apply func(sub *Submission, all []Submission) error) (_ Submission, err error) {
	defer s.observe(action, time.Now(), &err)

	actor = strings.TrimSpace(actor)
	if actor == "" {
		return Submission{}, ErrActorRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return Submission{}, err
	}
	idx := submissionIndex(all, id)
	if idx < 0 {
		return Submission{}, ErrSubmissionNotFound
	}

	before := all[idx].clone()
	current := all[idx].clone()
	if err := apply(&current, all); err != nil {
		return Submission{}, err
	}
	current.Version++
	current.UpdatedAt = s.now()

	all[idx] = current
	if err := s.save(ctx, all); err != nil {
		return Submission{}, err
	}
	s.recordTransition(ctx, actor, action, &before, current)
	return current.clone(), nil
}

func (s *Service) load(ctx context.Context) ([]Submission, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load payroll submissions: %w", err)
	}
	out := make([]Submission, len(all))
	for i, sub := range all {
		out[i] = sub.clone()
	}
	return out, nil
}

func (s *Service) save(ctx context.Context, all []Submission) error {
	if err := s.store.Save(ctx, all); err != nil {
		return fmt.Errorf("save payroll submissions: %w", err)
	}
	return nil
}

func (s *Service) recordTransition(ctx context.Context, actor, action string, before *Submission, after Submission) {
	entityID := after.ID
	var afterSnapshot any = after
	if before != nil && after.ID == "" {
		entityID = before.ID
		afterSnapshot = nil
	}
	status := after.Status
	if status == "" && before != nil {
		status = before.Status
	}

	s.logger.Info("payroll submission updated",
		zap.String("submissionId", entityID),
		zap.String("action", action),
		zap.String("status", status),
		zap.String("actor", actor),
		zap.Int("version", after.Version),
	)

	s.recordAudit(ctx, actor, action, entityID, before, afterSnapshot)

	if s.notifier != nil && after.ID != "" {
		if err := s.notifier.Notify(ctx, action, after); err != nil {
			s.logger.Warn("payroll notification failed", zap.String("action", action), zap.String("submissionId", entityID), zap.Error(err))
		}
	}
}

func (s *Service) recordAudit(ctx context.Context, actor, action, entityID string, before *Submission, after any) {
	if s.audit == nil {
		return
	}
	var beforeSnapshot any
	if before != nil {
		beforeSnapshot = before
	}
	evt, err := audit.NewEvent(actor, action, audit.EntityPayrollSubmission, entityID, beforeSnapshot, after)
	if err != nil {
		s.logger.Warn("audit event marshal failed", zap.String("action", action), zap.Error(err))
		return
	}
	if err := s.audit.Record(ctx, evt); err != nil {
		s.logger.Warn("audit record failed", zap.String("action", action), zap.String("submissionId", entityID), zap.Error(err))
	}
}

func (s *Service) observe(action string, start time.Time, err *error) {
	if s.metrics == nil {
		return
	}
	s.metrics.Record(action, *err, time.Since(start))
}

// reopen moves a rejected submission back into preparation. Drafts pass
// through unchanged; every other status is locked.
func reopen(sub *Submission, all []Submission) error {
	switch sub.Status {
	case StatusDraft:
		return nil
	case StatusRejected:
		if existing, ok := activeForPeriod(all, sub.Month, sub.Year, sub.ID); ok {
			return fmt.Errorf("%w (id %s, status %s)", ErrPeriodExists, existing.ID, existing.Status)
		}
		sub.Status = StatusDraft
		sub.RejectedBy = ""
		sub.RejectedAt = nil
		sub.RejectionReason = ""
		return nil
	default:
		return fmt.Errorf("%w: status %s", ErrNotEditable, sub.Status)
	}
}

func markSubmitted(sub *Submission, actor string, now time.Time) {
	sub.Status = StatusSubmitted
	if sub.SubmittedBy == "" {
		sub.SubmittedBy = actor
	}
	sub.SubmittedAt = &now
}

func applyTotals(sub *Submission) {
	totals := ComputeTotals(sub.Employees)
	sub.TotalGross = totals.TotalGross
	sub.TotalNet = totals.TotalNet
	sub.TotalDeductions = totals.TotalDeductions
}

func activeForPeriod(all []Submission, month, year int, excludeID string) (Submission, bool) {
	for _, sub := range all {
		if sub.ID == excludeID {
			continue
		}
		if sub.Month == month && sub.Year == year && sub.Status != StatusRejected {
			return sub, true
		}
	}
	return Submission{}, false
}

func submissionIndex(all []Submission, id string) int {
	for i, sub := range all {
		if sub.ID == id {
			return i
		}
	}
	return -1
}

func rosterIndex(employees []Employee, employeeID string) int {
	key := strings.TrimSpace(employeeID)
	for i, employee := range employees {
		if strings.TrimSpace(employee.EmployeeID) == key {
			return i
		}
	}
	return -1
}
