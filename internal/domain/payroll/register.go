package payroll

import (
	"io"
	"math"

	"github.com/gocarina/gocsv"
)

// RegisterRow is one line of the payroll register export.
type RegisterRow struct {
	EmployeeID      string  `csv:"employee_id"`
	Name            string  `csv:"name"`
	Department      string  `csv:"department"`
	Gross           float64 `csv:"gross"`
	PensionEmployee float64 `csv:"pension_employee"`
	PensionEmployer float64 `csv:"pension_employer"`
	NHF             float64 `csv:"nhf"`
	PAYE            float64 `csv:"paye"`
	OtherDeductions float64 `csv:"other_deductions"`
	TotalDeductions float64 `csv:"total_deductions"`
	Net             float64 `csv:"net"`
}

// JournalLine is a double-entry posting for the payroll journal export.
type JournalLine struct {
	Account string  `csv:"account"`
	Debit   float64 `csv:"debit"`
	Credit  float64 `csv:"credit"`
}

func Register(sub Submission) []RegisterRow {
	rows := make([]RegisterRow, 0, len(sub.Employees))
	for _, employee := range sub.Employees {
		b := CalculateBreakdown(employee)
		rows = append(rows, RegisterRow{
			EmployeeID:      employee.EmployeeID,
			Name:            employee.Name,
			Department:      employee.Department,
			Gross:           b.GrossSalary,
			PensionEmployee: b.PensionEmployee,
			PensionEmployer: b.PensionEmployer,
			NHF:             b.NHF,
			PAYE:            b.PAYE,
			OtherDeductions: b.Loan + b.Advance + b.OtherDeductions,
			TotalDeductions: b.TotalDeductions,
			Net:             b.NetPay,
		})
	}
	return rows
}

// Journal posts gross pay and employer pension as expense, and credits each
// statutory liability plus net cash. Debits equal credits.
func Journal(sub Submission) []JournalLine {
	summary := Summarize(sub)
	other := summary.TotalDeductions - summary.TotalPAYE - summary.TotalPensionEmployee - summary.TotalNHF
	return []JournalLine{
		{Account: "Payroll Expense", Debit: summary.TotalGross},
		{Account: "Employer Pension Expense", Debit: summary.TotalPensionEmployer},
		{Account: "PAYE Payable", Credit: summary.TotalPAYE},
		{Account: "Pension Payable", Credit: summary.TotalPensionEmployee + summary.TotalPensionEmployer},
		{Account: "NHF Payable", Credit: summary.TotalNHF},
		{Account: "Other Deductions Payable", Credit: math.Max(other, 0)},
		{Account: "Payroll Cash", Credit: summary.TotalNet},
	}
}

func WriteRegisterCSV(w io.Writer, sub Submission) error {
	return gocsv.Marshal(Register(sub), w)
}

func WriteJournalCSV(w io.Writer, sub Submission) error {
	return gocsv.Marshal(Journal(sub), w)
}
