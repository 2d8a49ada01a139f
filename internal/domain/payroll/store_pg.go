package payroll

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGStore struct {
	DB *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{DB: db}
}

func (s *PGStore) List(ctx context.Context) ([]Submission, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, period_month, period_year, status, employees,
           total_gross, total_net, total_deductions,
           prepared_by, created_at, updated_at,
           submitted_by, submitted_at, approved_by, approved_at, approval_comments,
           rejected_by, rejected_at, rejection_reason, paid_by, paid_at, version
    FROM payroll_submissions
    ORDER BY position, created_at
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Submission
	for rows.Next() {
		var sub Submission
		var employeesJSON []byte
		if err := rows.Scan(&sub.ID, &sub.Month, &sub.Year, &sub.Status, &employeesJSON,
			&sub.TotalGross, &sub.TotalNet, &sub.TotalDeductions,
			&sub.PreparedBy, &sub.CreatedAt, &sub.UpdatedAt,
			&sub.SubmittedBy, &sub.SubmittedAt, &sub.ApprovedBy, &sub.ApprovedAt, &sub.ApprovalComments,
			&sub.RejectedBy, &sub.RejectedAt, &sub.RejectionReason, &sub.PaidBy, &sub.PaidAt, &sub.Version); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(employeesJSON, &sub.Employees); err != nil {
			return nil, fmt.Errorf("decode employees for submission %s: %w", sub.ID, err)
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

// Save replaces the stored collection inside one transaction: rows missing
// from submissions are deleted and the rest upserted in list order.
func (s *PGStore) Save(ctx context.Context, submissions []Submission) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ids := make([]string, 0, len(submissions))
	for _, sub := range submissions {
		ids = append(ids, sub.ID)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM payroll_submissions WHERE NOT (id = ANY($1))", ids); err != nil {
		return err
	}

	for position, sub := range submissions {
		employeesJSON, err := json.Marshal(employeesOrEmpty(sub.Employees))
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
      INSERT INTO payroll_submissions (
        id, position, period_month, period_year, status, employees,
        total_gross, total_net, total_deductions,
        prepared_by, created_at, updated_at,
        submitted_by, submitted_at, approved_by, approved_at, approval_comments,
        rejected_by, rejected_at, rejection_reason, paid_by, paid_at, version
      ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)
      ON CONFLICT (id) DO UPDATE SET
        position = EXCLUDED.position,
        status = EXCLUDED.status,
        employees = EXCLUDED.employees,
        total_gross = EXCLUDED.total_gross,
        total_net = EXCLUDED.total_net,
        total_deductions = EXCLUDED.total_deductions,
        updated_at = EXCLUDED.updated_at,
        submitted_by = EXCLUDED.submitted_by,
        submitted_at = EXCLUDED.submitted_at,
        approved_by = EXCLUDED.approved_by,
        approved_at = EXCLUDED.approved_at,
        approval_comments = EXCLUDED.approval_comments,
        rejected_by = EXCLUDED.rejected_by,
        rejected_at = EXCLUDED.rejected_at,
        rejection_reason = EXCLUDED.rejection_reason,
        paid_by = EXCLUDED.paid_by,
        paid_at = EXCLUDED.paid_at,
        version = EXCLUDED.version
    `, sub.ID, position, sub.Month, sub.Year, sub.Status, string(employeesJSON),
			sub.TotalGross, sub.TotalNet, sub.TotalDeductions,
			sub.PreparedBy, sub.CreatedAt, sub.UpdatedAt,
			sub.SubmittedBy, sub.SubmittedAt, sub.ApprovedBy, sub.ApprovedAt, sub.ApprovalComments,
			sub.RejectedBy, sub.RejectedAt, sub.RejectionReason, sub.PaidBy, sub.PaidAt, sub.Version); err != nil {
			return fmt.Errorf("upsert submission %s: %w", sub.ID, err)
		}
	}
	return tx.Commit(ctx)
}

func employeesOrEmpty(employees []Employee) []Employee {
	if employees == nil {
		return []Employee{}
	}
	return employees
}
