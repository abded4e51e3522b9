package services

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/deployprime/agency-backend/internal/config"
	"github.com/deployprime/agency-backend/internal/models"
)

// QuoteNotifier sends the "new quote request" email to the site admin.
// Failures are logged by the caller and never fail the quote submission.
type QuoteNotifier interface {
	NotifyQuote(q *models.Quote) error
}

// SMTPNotifier delivers over plain SMTP with AUTH. When the host is
// unconfigured it is a no-op, so dev environments need no mail server.
type SMTPNotifier struct {
	cfg        config.SMTPConfig
	adminEmail string
}

func NewSMTPNotifier(cfg config.SMTPConfig, adminEmail string) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, adminEmail: adminEmail}
}

func (n *SMTPNotifier) NotifyQuote(q *models.Quote) error {
	if n.cfg.Host == "" || n.adminEmail == "" {
		return nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", n.cfg.User)
	fmt.Fprintf(&b, "To: %s\r\n", n.adminEmail)
	fmt.Fprintf(&b, "Subject: New Quote Request from %s\r\n", q.Name)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&b, "Reference: %s\n", q.Reference)
	fmt.Fprintf(&b, "Name: %s\n", q.Name)
	fmt.Fprintf(&b, "Email: %s\n", q.Email)
	fmt.Fprintf(&b, "Phone: %s\n", orNA(q.Phone))
	fmt.Fprintf(&b, "Project Type: %s\n", orNA(q.ProjectType))
	fmt.Fprintf(&b, "Budget: %s\n", orNA(q.Budget))
	fmt.Fprintf(&b, "Submitted: %s\n\n", q.CreatedAt.Format(time.RFC1123))
	fmt.Fprintf(&b, "Message:\n%s\n", q.Message)

	addr := n.cfg.Host + ":" + n.cfg.Port
	auth := smtp.PlainAuth("", n.cfg.User, n.cfg.Pass, n.cfg.Host)
	return smtp.SendMail(addr, auth, n.cfg.User, []string{n.adminEmail}, []byte(b.String()))
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
