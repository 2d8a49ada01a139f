package payroll

const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusPaid      = "paid"

	EmployeeTypePermanent = "permanent"
	EmployeeTypeContract  = "contract"

	RosterStatusActive = "active"
)

// Statutory rates.
const (
	PensionEmployeeRate = 0.08
	PensionEmployerRate = 0.10
	NHFRate             = 0.025

	CRAFixedRelief = 200000
	CRAGrossRate   = 0.20
	CRAMinimumRate = 0.01
)

const (
	monthsInYear = 12
	percentBase  = 100
)

type TaxBand struct {
	Width float64 `json:"width"`
	Rate  float64 `json:"rate"`
}

// TaxBands are applied to successive slices of taxable income. The last band
// has no upper bound.
var TaxBands = []TaxBand{
	{Width: 300000, Rate: 0.07},
	{Width: 300000, Rate: 0.11},
	{Width: 500000, Rate: 0.15},
	{Width: 500000, Rate: 0.19},
	{Width: 1600000, Rate: 0.21},
	{Width: 0, Rate: 0.24},
}
