package payroll

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PGRoster struct {
	DB *pgxpool.Pool
}

func NewPGRoster(db *pgxpool.Pool) *PGRoster {
	return &PGRoster{DB: db}
}

func (r *PGRoster) ActiveEmployees(ctx context.Context) ([]RosterEmployee, error) {
	rows, err := r.DB.Query(ctx, `
    SELECT id, name, department, position, status, employee_type,
           annual_gross, atm_count, rate_per_atm,
           basic_percent, housing_percent, transport_percent, others_percent,
           loan, hmo
    FROM employees
    WHERE status = $1
    ORDER BY name
  `, RosterStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RosterEmployee
	for rows.Next() {
		var record RosterEmployee
		if err := rows.Scan(&record.EmployeeID, &record.Name, &record.Department, &record.Position, &record.Status, &record.EmployeeType,
			&record.AnnualGross, &record.ATMCount, &record.RatePerATM,
			&record.BasicPercent, &record.HousingPercent, &record.TransportPercent, &record.OthersPercent,
			&record.Loan, &record.HMO); err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}
