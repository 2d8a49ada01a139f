package payroll

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/sync/errgroup"

	cryptoutil "ngpayroll/internal/platform/crypto"
	"ngpayroll/internal/platform/money"
)

// The core PDF fonts cannot render the Naira sign.
const payslipCurrency = "NGN"

const payslipWorkers = 4

func PeriodLabel(month, year int) string {
	return fmt.Sprintf("%s %d", time.Month(month).String(), year)
}

func RenderPayslip(w io.Writer, sub Submission, employee Employee) error {
	b := CalculateBreakdown(employee)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Payslip %s %s", employee.EmployeeID, PeriodLabel(sub.Month, sub.Year)), false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s (%s)", employee.Name, employee.EmployeeID))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Department: %s    Position: %s", employee.Department, employee.Position))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s    Status: %s", PeriodLabel(sub.Month, sub.Year), sub.Status))
	pdf.Ln(10)

	section := func(title string, rows [][2]string) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, title)
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		for _, row := range rows {
			pdf.CellFormat(110, 7, row[0], "", 0, "L", false, 0, "")
			pdf.CellFormat(60, 7, row[1], "", 1, "R", false, 0, "")
		}
		pdf.Ln(4)
	}
	amount := func(v float64) string {
		return payslipCurrency + " " + money.FormatAmount(v)
	}

	section("Earnings", [][2]string{
		{"Basic salary", amount(b.BasicSalary)},
		{"Housing allowance", amount(b.HousingAllowance)},
		{"Transport allowance", amount(b.TransportAllowance)},
		{"Other allowances", amount(b.OtherAllowances)},
		{"Gross salary", amount(b.GrossSalary)},
	})
	section("Deductions", [][2]string{
		{"Pension (employee 8%)", amount(b.PensionEmployee)},
		{"NHF (2.5%)", amount(b.NHF)},
		{"PAYE", amount(b.PAYE)},
		{"Loan", amount(b.Loan)},
		{"Salary advance", amount(b.Advance)},
		{"Other deductions", amount(b.OtherDeductions)},
		{"Total deductions", amount(b.TotalDeductions)},
	})
	section("Tax computation", [][2]string{
		{"Consolidated relief allowance", amount(b.CRA)},
		{"Taxable income", amount(b.TaxableIncome)},
		{"Effective tax rate", fmt.Sprintf("%.2f%%", EffectiveTaxRate(b)*100)},
		{"Employer pension (10%, not deducted)", amount(b.PensionEmployer)},
	})

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(110, 9, "Net pay", "T", 0, "L", false, 0, "")
	pdf.CellFormat(60, 9, amount(b.NetPay), "T", 1, "R", false, 0, "")

	return pdf.Output(w)
}

// PayslipWriter stores rendered payslips on disk, sealed when the data
// encryption key is configured.
type PayslipWriter struct {
	Dir    string
	crypto *cryptoutil.Service
}

func NewPayslipWriter(dir string, crypto *cryptoutil.Service) *PayslipWriter {
	return &PayslipWriter{Dir: dir, crypto: crypto}
}

// Write renders the payslip for one employee on the submission roster and
// returns the file path.
func (p *PayslipWriter) Write(sub Submission, employeeID string) (string, error) {
	idx := rosterIndex(sub.Employees, employeeID)
	if idx < 0 {
		return "", fmt.Errorf("%w: %s", ErrEmployeeNotInRoster, employeeID)
	}
	employee := sub.Employees[idx]
	if !safeEmployeeID(employee.EmployeeID) {
		return "", &ValidationError{EmployeeID: employee.EmployeeID, Field: "employeeId", Message: "cannot be used as a payslip file name"}
	}

	var buf bytes.Buffer
	if err := RenderPayslip(&buf, sub, employee); err != nil {
		return "", err
	}

	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join(p.Dir, filepath.Base(fmt.Sprintf("%d-%02d-%s.pdf", sub.Year, sub.Month, employee.EmployeeID)))

	if p.crypto != nil && p.crypto.Configured() {
		encrypted, err := p.crypto.Encrypt(buf.Bytes())
		if err != nil {
			return "", err
		}
		encryptedPath := filePath + ".enc"
		if err := os.WriteFile(encryptedPath, encrypted, 0o600); err != nil {
			return "", err
		}
		return encryptedPath, nil
	}

	if err := os.WriteFile(filePath, buf.Bytes(), 0o600); err != nil {
		return "", err
	}
	return filePath, nil
}

// WriteAll renders a payslip for every employee on the roster, in parallel.
// Paths are returned in roster order.
func (p *PayslipWriter) WriteAll(ctx context.Context, sub Submission) ([]string, error) {
	paths := make([]string, len(sub.Employees))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(payslipWorkers)
	for i, employee := range sub.Employees {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path, err := p.Write(sub, employee.EmployeeID)
			if err != nil {
				return err
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}
