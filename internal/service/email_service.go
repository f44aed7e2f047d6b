package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"loan-servicing/configs"
	"loan-servicing/internal/models"
	"loan-servicing/internal/repository"
	"loan-servicing/pkg/utils"
)

// EmailSvc is an implementation of the service.EmailService interface
type EmailSvc struct {
	repos  *repository.Repository
	logger *logrus.Logger
	config *configs.Config
}

// NewEmailService creates a new EmailSvc
func NewEmailService(deps Dependencies) *EmailSvc {
	return &EmailSvc{
		repos:  deps.Repos,
		logger: deps.Logger,
		config: deps.Config,
	}
}

// SendInvitation sends an invitation email with the acceptance link
func (s *EmailSvc) SendInvitation(ctx context.Context, invitation *models.Invitation, organizationName string) error {
	link := fmt.Sprintf("%s/invitations/accept?token=%s", s.config.Email.BaseURL, invitation.Token)

	subject := fmt.Sprintf("You have been invited to join %s", organizationName)

	body := fmt.Sprintf(`
	<h2>Invitation to %s</h2>
	<p>You have been invited to join %s as %s.</p>

	<p><a href="%s">Accept the invitation</a> to set your password and get started.</p>

	<p>The invitation expires on %s.</p>
	`,
		organizationName, organizationName, invitation.Role,
		link,
		invitation.ExpiresAt.Format("2006-01-02"),
	)

	if err := s.sendEmail(invitation.Email, subject, body); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Invitation email sent to %s", invitation.Email)

	return nil
}

// SendPaymentReminder sends a reminder for an upcoming or overdue installment
func (s *EmailSvc) SendPaymentReminder(ctx context.Context, loan *models.Loan, borrower *models.Borrower, entry *models.ScheduleEntry) error {
	if borrower.Email == "" {
		return nil
	}

	outstanding := entry.TotalDue - entry.PrincipalPaid - entry.InterestPaid
	amountStr := utils.FormatCurrency(outstanding, loan.CurrencyCode)

	var subject string
	if entry.IsOverdue {
		subject = fmt.Sprintf("OVERDUE payment on loan %s", loan.Reference)
	} else {
		subject = fmt.Sprintf("Upcoming payment on loan %s", loan.Reference)
	}

	body := fmt.Sprintf(`
	<h2>Payment Reminder</h2>
	<p>Dear %s,</p>

	<p>Installment %d of loan %s for %s is due on %s.</p>

	<p>Please make the payment using your usual reference.</p>
	`,
		borrower.Name,
		entry.InstallmentNumber, loan.Reference, amountStr,
		entry.DueDate.Format("2006-01-02"),
	)

	if err := s.sendEmail(borrower.Email, subject, body); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Payment reminder sent to %s for loan %d installment %d",
		borrower.Email, loan.ID, entry.InstallmentNumber)

	return nil
}

// sendEmail sends an HTML email via the configured SMTP server
func (s *EmailSvc) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.config.Email.SenderEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(
		s.config.Email.SMTPHost,
		s.config.Email.SMTPPort,
		s.config.Email.SMTPUser,
		s.config.Email.SMTPPassword,
	)

	return d.DialAndSend(m)
}
