package payroll

import "math"

// CalculateCRA returns the Consolidated Relief Allowance for an annualised
// gross income figure. It is not rounded.
func CalculateCRA(grossIncome float64) float64 {
	return math.Max(CRAFixedRelief+CRAGrossRate*grossIncome, CRAMinimumRate*grossIncome)
}

// CalculatePAYE walks TaxBands over taxableIncome and returns the tax rounded
// to the nearest whole Naira.
func CalculatePAYE(taxableIncome float64) float64 {
	if taxableIncome <= 0 {
		return 0
	}

	remaining := taxableIncome
	tax := 0.0
	for _, band := range TaxBands {
		if remaining <= 0 {
			break
		}
		slice := remaining
		if band.Width > 0 && band.Width < remaining {
			slice = band.Width
		}
		tax += slice * band.Rate
		remaining -= slice
	}
	return math.Round(tax)
}

// CalculateBreakdown derives gross pay, statutory deductions and net pay for
// one employee's monthly figures.
func CalculateBreakdown(employee Employee) Breakdown {
	gross := employee.BasicSalary + employee.HousingAllowance + employee.TransportAllowance + employee.OtherAllowances
	pensionable := employee.BasicSalary + employee.HousingAllowance + employee.TransportAllowance

	pensionEmployee := math.Round(pensionable * PensionEmployeeRate)
	pensionEmployer := math.Round(pensionable * PensionEmployerRate)
	nhf := math.Round(employee.BasicSalary * NHFRate)
	cra := CalculateCRA(gross)
	taxable := gross - pensionEmployee - nhf - cra
	paye := CalculatePAYE(taxable)

	totalDeductions := pensionEmployee + nhf + paye + employee.Loan + employee.Advance + employee.OtherDeductions

	return Breakdown{
		BasicSalary:        employee.BasicSalary,
		HousingAllowance:   employee.HousingAllowance,
		TransportAllowance: employee.TransportAllowance,
		OtherAllowances:    employee.OtherAllowances,
		GrossSalary:        gross,
		PensionableIncome:  pensionable,
		PensionEmployee:    pensionEmployee,
		PensionEmployer:    pensionEmployer,
		NHF:                nhf,
		CRA:                cra,
		TaxableIncome:      taxable,
		PAYE:               paye,
		Loan:               employee.Loan,
		Advance:            employee.Advance,
		OtherDeductions:    employee.OtherDeductions,
		TotalDeductions:    totalDeductions,
		NetPay:             gross - totalDeductions,
	}
}

// Breakdowns calculates each employee's breakdown in roster order.
func Breakdowns(employees []Employee) []Breakdown {
	out := make([]Breakdown, 0, len(employees))
	for _, employee := range employees {
		out = append(out, CalculateBreakdown(employee))
	}
	return out
}

// ComputeTotals sums the per-employee breakdowns in roster order. The three
// totals are accumulated independently so they match a caller summing the
// same breakdowns field by field.
func ComputeTotals(employees []Employee) Totals {
	var totals Totals
	for _, employee := range employees {
		b := CalculateBreakdown(employee)
		totals.TotalGross += b.GrossSalary
		totals.TotalNet += b.NetPay
		totals.TotalDeductions += b.TotalDeductions
	}
	return totals
}

// EffectiveTaxRate is PAYE as a fraction of gross pay, 0 when gross is 0.
func EffectiveTaxRate(b Breakdown) float64 {
	if b.GrossSalary == 0 {
		return 0
	}
	return b.PAYE / b.GrossSalary
}
