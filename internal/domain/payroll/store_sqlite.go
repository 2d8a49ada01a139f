package payroll

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// SQLiteStore persists submissions in an embedded SQLite database. Timestamps
// are stored as RFC 3339 text.
type SQLiteStore struct {
	DB *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{DB: db}
}

func (s *SQLiteStore) List(ctx context.Context) ([]Submission, error) {
	rows, err := s.DB.QueryContext(ctx, `
    SELECT id, period_month, period_year, status, employees,
           total_gross, total_net, total_deductions,
           prepared_by, created_at, updated_at,
           submitted_by, submitted_at, approved_by, approved_at, approval_comments,
           rejected_by, rejected_at, rejection_reason, paid_by, paid_at, version
    FROM payroll_submissions
    ORDER BY position
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Submission
	for rows.Next() {
		var sub Submission
		var employeesJSON, createdAt, updatedAt string
		var submittedAt, approvedAt, rejectedAt, paidAt sql.NullString
		if err := rows.Scan(&sub.ID, &sub.Month, &sub.Year, &sub.Status, &employeesJSON,
			&sub.TotalGross, &sub.TotalNet, &sub.TotalDeductions,
			&sub.PreparedBy, &createdAt, &updatedAt,
			&sub.SubmittedBy, &submittedAt, &sub.ApprovedBy, &approvedAt, &sub.ApprovalComments,
			&sub.RejectedBy, &rejectedAt, &sub.RejectionReason, &sub.PaidBy, &paidAt, &sub.Version); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(employeesJSON), &sub.Employees); err != nil {
			return nil, fmt.Errorf("decode employees for submission %s: %w", sub.ID, err)
		}
		if sub.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, err
		}
		if sub.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
			return nil, err
		}
		for _, field := range []struct {
			raw sql.NullString
			dst **time.Time
		}{
			{submittedAt, &sub.SubmittedAt},
			{approvedAt, &sub.ApprovedAt},
			{rejectedAt, &sub.RejectedAt},
			{paidAt, &sub.PaidAt},
		} {
			if *field.dst, err = parseNullTime(field.raw); err != nil {
				return nil, err
			}
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Save(ctx context.Context, submissions []Submission) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM payroll_submissions"); err != nil {
		return err
	}
	for position, sub := range submissions {
		employeesJSON, err := json.Marshal(employeesOrEmpty(sub.Employees))
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
      INSERT INTO payroll_submissions (
        id, position, period_month, period_year, status, employees,
        total_gross, total_net, total_deductions,
        prepared_by, created_at, updated_at,
        submitted_by, submitted_at, approved_by, approved_at, approval_comments,
        rejected_by, rejected_at, rejection_reason, paid_by, paid_at, version
      ) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
    `, sub.ID, position, sub.Month, sub.Year, sub.Status, string(employeesJSON),
			sub.TotalGross, sub.TotalNet, sub.TotalDeductions,
			sub.PreparedBy, formatTime(sub.CreatedAt), formatTime(sub.UpdatedAt),
			sub.SubmittedBy, formatNullTime(sub.SubmittedAt), sub.ApprovedBy, formatNullTime(sub.ApprovedAt), sub.ApprovalComments,
			sub.RejectedBy, formatNullTime(sub.RejectedAt), sub.RejectionReason, sub.PaidBy, formatNullTime(sub.PaidAt), sub.Version); err != nil {
			return fmt.Errorf("insert submission %s: %w", sub.ID, err)
		}
	}
	return tx.Commit()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatNullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseNullTime(raw sql.NullString) (*time.Time, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, raw.String)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
