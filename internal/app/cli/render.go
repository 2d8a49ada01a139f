package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"ngpayroll/internal/domain/audit"
	"ngpayroll/internal/domain/payroll"
	"ngpayroll/internal/platform/money"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	amountStyle = cellStyle.Align(lipgloss.Right)
	titleStyle  = lipgloss.NewStyle().Bold(true)
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderTable right-aligns every column listed in amountCols.
func renderTable(w io.Writer, headers []string, rows [][]string, amountCols ...int) error {
	amounts := make(map[int]bool, len(amountCols))
	for _, col := range amountCols {
		amounts[col] = true
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case amounts[col]:
				return amountStyle
			default:
				return cellStyle
			}
		})
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func renderBreakdown(w io.Writer, b payroll.Breakdown) error {
	rows := [][]string{
		{"Basic salary", money.FormatNaira(b.BasicSalary)},
		{"Housing allowance", money.FormatNaira(b.HousingAllowance)},
		{"Transport allowance", money.FormatNaira(b.TransportAllowance)},
		{"Other allowances", money.FormatNaira(b.OtherAllowances)},
		{"Gross salary", money.FormatNaira(b.GrossSalary)},
		{"Pension (8%)", money.FormatNaira(b.PensionEmployee)},
		{"Employer pension (10%)", money.FormatNaira(b.PensionEmployer)},
		{"NHF (2.5%)", money.FormatNaira(b.NHF)},
		{"CRA", money.FormatNaira(b.CRA)},
		{"Taxable income", money.FormatNaira(b.TaxableIncome)},
		{"PAYE", money.FormatNaira(b.PAYE)},
		{"Effective tax rate", formatRate(payroll.EffectiveTaxRate(b))},
		{"Loan", money.FormatNaira(b.Loan)},
		{"Advance", money.FormatNaira(b.Advance)},
		{"Other deductions", money.FormatNaira(b.OtherDeductions)},
		{"Total deductions", money.FormatNaira(b.TotalDeductions)},
		{"Net pay", money.FormatNaira(b.NetPay)},
	}
	return renderTable(w, []string{"Component", "Amount"}, rows, 1)
}

func formatRate(rate float64) string {
	return strconv.FormatFloat(rate*100, 'f', 2, 64) + "%"
}

func renderSubmissions(w io.Writer, subs []payroll.Submission) error {
	if len(subs) == 0 {
		_, err := fmt.Fprintln(w, "no payroll submissions")
		return err
	}
	rows := make([][]string, 0, len(subs))
	for _, sub := range subs {
		rows = append(rows, []string{
			sub.ID,
			payroll.PeriodLabel(sub.Month, sub.Year),
			sub.Status,
			strconv.Itoa(len(sub.Employees)),
			money.FormatNaira(sub.TotalGross),
			money.FormatNaira(sub.TotalDeductions),
			money.FormatNaira(sub.TotalNet),
			sub.PreparedBy,
		})
	}
	return renderTable(w, []string{"ID", "Period", "Status", "Staff", "Gross", "Deductions", "Net", "Prepared by"}, rows, 4, 5, 6)
}

func renderSubmissionDetail(w io.Writer, sub payroll.Submission, summary payroll.Summary) error {
	if _, err := fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Payroll %s (%s)", payroll.PeriodLabel(sub.Month, sub.Year), sub.Status))); err != nil {
		return err
	}
	if sub.RejectionReason != "" {
		if _, err := fmt.Fprintf(w, "Rejected by %s: %s\n", sub.RejectedBy, sub.RejectionReason); err != nil {
			return err
		}
	}
	if sub.ApprovalComments != "" {
		if _, err := fmt.Fprintf(w, "Approved by %s: %s\n", sub.ApprovedBy, sub.ApprovalComments); err != nil {
			return err
		}
	}

	rows := make([][]string, 0, len(sub.Employees))
	for _, employee := range sub.Employees {
		b := payroll.CalculateBreakdown(employee)
		rows = append(rows, []string{
			employee.EmployeeID,
			employee.Name,
			money.FormatNaira(b.GrossSalary),
			money.FormatNaira(b.PensionEmployee),
			money.FormatNaira(b.NHF),
			money.FormatNaira(b.PAYE),
			money.FormatNaira(b.TotalDeductions),
			money.FormatNaira(b.NetPay),
		})
	}
	if err := renderTable(w, []string{"ID", "Name", "Gross", "Pension", "NHF", "PAYE", "Deductions", "Net"}, rows, 2, 3, 4, 5, 6, 7); err != nil {
		return err
	}

	deptRows := make([][]string, 0, len(summary.Departments))
	for _, dept := range summary.Departments {
		deptRows = append(deptRows, []string{
			dept.Department,
			strconv.Itoa(dept.EmployeeCount),
			money.FormatNaira(dept.TotalGross),
			money.FormatNaira(dept.TotalNet),
		})
	}
	deptRows = append(deptRows, []string{
		"Total",
		strconv.Itoa(summary.EmployeeCount),
		money.FormatNaira(summary.TotalGross),
		money.FormatNaira(summary.TotalNet),
	})
	if err := renderTable(w, []string{"Department", "Staff", "Gross", "Net"}, deptRows, 2, 3); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "PAYE %s  Pension %s (employer %s)  NHF %s\n",
		money.FormatNaira(summary.TotalPAYE),
		money.FormatNaira(summary.TotalPensionEmployee),
		money.FormatNaira(summary.TotalPensionEmployer),
		money.FormatNaira(summary.TotalNHF),
	)
	return err
}

func renderHistory(w io.Writer, total int, events []audit.Event) error {
	if len(events) == 0 {
		_, err := fmt.Fprintln(w, "no recorded history")
		return err
	}
	rows := make([][]string, 0, len(events))
	for _, evt := range events {
		rows = append(rows, []string{
			evt.CreatedAt.Format(time.RFC3339),
			evt.Action,
			evt.ActorID,
			snapshotStatus(evt.After),
		})
	}
	if err := renderTable(w, []string{"When", "Action", "Actor", "Status"}, rows); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d of %d events\n", len(events), total)
	return err
}

// snapshotStatus reads the status out of a stored submission snapshot.
func snapshotStatus(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "-"
	}
	var snapshot struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(raw, &snapshot); err != nil || snapshot.Status == "" {
		return "-"
	}
	return snapshot.Status
}
