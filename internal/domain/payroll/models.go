package payroll

import "time"

type Employee struct {
	EmployeeID         string  `json:"employeeId" yaml:"employeeId"`
	Name               string  `json:"name" yaml:"name"`
	Department         string  `json:"department" yaml:"department"`
	Position           string  `json:"position" yaml:"position"`
	BasicSalary        float64 `json:"basicSalary" yaml:"basicSalary"`
	HousingAllowance   float64 `json:"housingAllowance" yaml:"housingAllowance"`
	TransportAllowance float64 `json:"transportAllowance" yaml:"transportAllowance"`
	OtherAllowances    float64 `json:"otherAllowances" yaml:"otherAllowances"`
	Loan               float64 `json:"loan,omitempty" yaml:"loan,omitempty"`
	Advance            float64 `json:"advance,omitempty" yaml:"advance,omitempty"`
	OtherDeductions    float64 `json:"otherDeductions,omitempty" yaml:"otherDeductions,omitempty"`
}

type Breakdown struct {
	BasicSalary        float64 `json:"basicSalary"`
	HousingAllowance   float64 `json:"housingAllowance"`
	TransportAllowance float64 `json:"transportAllowance"`
	OtherAllowances    float64 `json:"otherAllowances"`
	GrossSalary        float64 `json:"grossSalary"`
	PensionableIncome  float64 `json:"pensionableIncome"`
	PensionEmployee    float64 `json:"pensionEmployee"`
	PensionEmployer    float64 `json:"pensionEmployer"`
	NHF                float64 `json:"nhf"`
	CRA                float64 `json:"cra"`
	TaxableIncome      float64 `json:"taxableIncome"`
	PAYE               float64 `json:"paye"`
	Loan               float64 `json:"loan"`
	Advance            float64 `json:"advance"`
	OtherDeductions    float64 `json:"otherDeductions"`
	TotalDeductions    float64 `json:"totalDeductions"`
	NetPay             float64 `json:"netPay"`
}

type Totals struct {
	TotalGross      float64 `json:"totalGross"`
	TotalNet        float64 `json:"totalNet"`
	TotalDeductions float64 `json:"totalDeductions"`
}

type Submission struct {
	ID               string     `json:"id"`
	Month            int        `json:"month"`
	Year             int        `json:"year"`
	Employees        []Employee `json:"employees"`
	TotalGross       float64    `json:"totalGross"`
	TotalNet         float64    `json:"totalNet"`
	TotalDeductions  float64    `json:"totalDeductions"`
	Status           string     `json:"status"`
	PreparedBy       string     `json:"preparedBy"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	SubmittedBy      string     `json:"submittedBy,omitempty"`
	SubmittedAt      *time.Time `json:"submittedAt,omitempty"`
	ApprovedBy       string     `json:"approvedBy,omitempty"`
	ApprovedAt       *time.Time `json:"approvedAt,omitempty"`
	ApprovalComments string     `json:"approvalComments,omitempty"`
	RejectedBy       string     `json:"rejectedBy,omitempty"`
	RejectedAt       *time.Time `json:"rejectedAt,omitempty"`
	RejectionReason  string     `json:"rejectionReason,omitempty"`
	PaidBy           string     `json:"paidBy,omitempty"`
	PaidAt           *time.Time `json:"paidAt,omitempty"`
	Version          int        `json:"version"`
}

func (s Submission) Totals() Totals {
	return Totals{TotalGross: s.TotalGross, TotalNet: s.TotalNet, TotalDeductions: s.TotalDeductions}
}

// clone returns a copy that shares no slices or pointers with s.
func (s Submission) clone() Submission {
	out := s
	out.Employees = append([]Employee(nil), s.Employees...)
	out.SubmittedAt = cloneTime(s.SubmittedAt)
	out.ApprovedAt = cloneTime(s.ApprovedAt)
	out.RejectedAt = cloneTime(s.RejectedAt)
	out.PaidAt = cloneTime(s.PaidAt)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

type Filter struct {
	Status string
	Year   int
}

type DepartmentTotals struct {
	Department    string  `json:"department"`
	EmployeeCount int     `json:"employeeCount"`
	TotalGross    float64 `json:"totalGross"`
	TotalNet      float64 `json:"totalNet"`
}

type Summary struct {
	SubmissionID         string             `json:"submissionId"`
	Month                int                `json:"month"`
	Year                 int                `json:"year"`
	Status               string             `json:"status"`
	EmployeeCount        int                `json:"employeeCount"`
	TotalGross           float64            `json:"totalGross"`
	TotalNet             float64            `json:"totalNet"`
	TotalDeductions      float64            `json:"totalDeductions"`
	TotalPAYE            float64            `json:"totalPaye"`
	TotalPensionEmployee float64            `json:"totalPensionEmployee"`
	TotalPensionEmployer float64            `json:"totalPensionEmployer"`
	TotalNHF             float64            `json:"totalNhf"`
	Departments          []DepartmentTotals `json:"departments"`
}
