package notifications

const (
	TypePayrollSubmitted = "payroll_submitted"
	TypePayrollApproved  = "payroll_approved"
	TypePayrollRejected  = "payroll_rejected"
	TypePayrollPaid      = "payroll_paid"
)

const (
	AudienceFinance = "finance"
	AudienceHR      = "hr"
)
