package email

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/bloXbandit/CreditKadabbra-sub000/internal/config"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/models"
)

const dateLayout = "2006-01-02"

type sendFunc func(e *email.Email, addr string, auth smtp.Auth) error

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   sendFunc
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// SendPaymentReminder emails the recommendation for one account
func (s *Sender) SendPaymentReminder(to, name string, rec models.PaymentRecommendation) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Pay %s by %s to lower your reported utilization",
		rec.AccountName, rec.OptimalPaymentDate.Format(dateLayout))
	e.Text = []byte(reminderBody(name, rec))

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := s.send(e, addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

func reminderBody(name string, rec models.PaymentRecommendation) string {
	body := fmt.Sprintf("Dear %s,\n\n", name)
	body += fmt.Sprintf(
		"Your %s statement closes on %s.\n"+
			"Recommended payment window: %s to %s.\n\n",
		rec.AccountName, rec.StatementDate.Format(dateLayout),
		rec.OptimalPaymentWindow.Start.Format(dateLayout), rec.OptimalPaymentWindow.End.Format(dateLayout),
	)
	body += rec.Reasoning + "\n"
	body += "\nBest regards,\nCredit Repair Service"
	return body
}
