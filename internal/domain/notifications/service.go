package notifications

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"ngpayroll/internal/domain/audit"
	"ngpayroll/internal/domain/payroll"
	"ngpayroll/internal/platform/money"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// Recipients are the mailboxes of the two desks in the approval loop.
type Recipients struct {
	Finance string
	HR      string
}

type Message struct {
	Type     string
	Audience string
	Subject  string
	Body     string
}

// Service mails the desk that has to act next on a submission.
type Service struct {
	Mailer      Mailer
	DefaultFrom string
	Recipients  Recipients
	logger      *zap.Logger
}

func New(mailer Mailer, from string, recipients Recipients, logger *zap.Logger) *Service {
	if from == "" {
		from = "no-reply@example.com"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{Mailer: mailer, DefaultFrom: from, Recipients: recipients, logger: logger}
}

// Notify implements payroll.Notifier. Actions without a message are ignored.
func (s *Service) Notify(ctx context.Context, action string, sub payroll.Submission) error {
	msg, ok := Compose(action, sub)
	if !ok || s.Mailer == nil {
		return nil
	}
	to := s.recipient(msg.Audience)
	if to == "" {
		s.logger.Debug("notification skipped, no recipient", zap.String("type", msg.Type), zap.String("audience", msg.Audience))
		return nil
	}
	if err := s.Mailer.Send(ctx, s.DefaultFrom, to, msg.Subject, msg.Body); err != nil {
		return fmt.Errorf("send %s notification: %w", msg.Type, err)
	}
	s.logger.Info("notification sent", zap.String("type", msg.Type), zap.String("submissionId", sub.ID))
	return nil
}

func (s *Service) recipient(audience string) string {
	switch audience {
	case AudienceFinance:
		return strings.TrimSpace(s.Recipients.Finance)
	case AudienceHR:
		return strings.TrimSpace(s.Recipients.HR)
	default:
		return ""
	}
}

// Compose builds the message for a workflow action.
func Compose(action string, sub payroll.Submission) (Message, bool) {
	period := payroll.PeriodLabel(sub.Month, sub.Year)
	totals := fmt.Sprintf("Employees: %d\nGross: %s\nDeductions: %s\nNet: %s\n",
		len(sub.Employees),
		money.FormatNaira(sub.TotalGross),
		money.FormatNaira(sub.TotalDeductions),
		money.FormatNaira(sub.TotalNet),
	)

	switch action {
	case audit.ActionPayrollSubmit:
		return Message{
			Type:     TypePayrollSubmitted,
			Audience: AudienceFinance,
			Subject:  fmt.Sprintf("Payroll for %s awaiting approval", period),
			Body:     fmt.Sprintf("%s submitted payroll %s for %s.\n\n%s", sub.SubmittedBy, sub.ID, period, totals),
		}, true
	case audit.ActionPayrollApprove:
		body := fmt.Sprintf("%s approved payroll %s for %s.\n\n%s", sub.ApprovedBy, sub.ID, period, totals)
		if sub.ApprovalComments != "" {
			body += "\nComments: " + sub.ApprovalComments + "\n"
		}
		return Message{Type: TypePayrollApproved, Audience: AudienceHR, Subject: fmt.Sprintf("Payroll for %s approved", period), Body: body}, true
	case audit.ActionPayrollReject:
		return Message{
			Type:     TypePayrollRejected,
			Audience: AudienceHR,
			Subject:  fmt.Sprintf("Payroll for %s rejected", period),
			Body:     fmt.Sprintf("%s rejected payroll %s for %s.\n\nReason: %s\n", sub.RejectedBy, sub.ID, period, sub.RejectionReason),
		}, true
	case audit.ActionPayrollPay:
		return Message{
			Type:     TypePayrollPaid,
			Audience: AudienceHR,
			Subject:  fmt.Sprintf("Payroll for %s paid", period),
			Body:     fmt.Sprintf("%s marked payroll %s for %s as paid.\n\n%s", sub.PaidBy, sub.ID, period, totals),
		}, true
	default:
		return Message{}, false
	}
}
