package email

import (
	"fmt"
	"log"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/callforge/callforge/pkg/models"
)

// Service handles outbound email delivery.
// If a SendGrid key is provided, emails are sent via SendGrid;
// otherwise they are logged to console (development mode).
type Service struct {
	fromEmail   string
	fromName    string
	sendGridKey string
	useSendGrid bool
}

// NewService creates a new email delivery service
func NewService(fromEmail, fromName, sendGridAPIKey string) *Service {
	useSendGrid := sendGridAPIKey != ""
	if useSendGrid {
		log.Printf("✅ Email service initialized with SendGrid")
	} else {
		log.Printf("⚠️  Email service in console-only mode (set SENDGRID_API_KEY for production)")
	}

	return &Service{
		fromEmail:   fromEmail,
		fromName:    fromName,
		sendGridKey: sendGridAPIKey,
		useSendGrid: useSendGrid,
	}
}

// SendToLead renders placeholders against the lead and delivers the
// email. Leads without an email address are skipped with an error.
func (s *Service) SendToLead(lead *models.Lead, subject, content string) error {
	if lead.Email == "" {
		return fmt.Errorf("lead %s has no email address", lead.ID)
	}

	subject = RenderPlaceholders(subject, lead)
	body := RenderPlaceholders(content, lead)

	if s.useSendGrid {
		return s.sendViaSendGrid(lead.Email, lead.Name, subject, body)
	}
	return s.logEmailToConsole(lead.Email, lead.Name, subject)
}

// Send delivers a plain email to an arbitrary recipient, without
// lead placeholder rendering. Used for operator-facing notifications
// such as follow-up reminders.
func (s *Service) Send(toEmail, toName, subject, body string) error {
	if toEmail == "" {
		return fmt.Errorf("recipient email is empty")
	}
	if s.useSendGrid {
		return s.sendViaSendGrid(toEmail, toName, subject, body)
	}
	return s.logEmailToConsole(toEmail, toName, subject)
}

// RenderPlaceholders substitutes {{name}} and {{company}} with the
// lead's values
func RenderPlaceholders(text string, lead *models.Lead) string {
	r := strings.NewReplacer(
		"{{name}}", lead.Name,
		"{{company}}", lead.Company,
	)
	return r.Replace(text)
}

// sendViaSendGrid sends email using SendGrid API
func (s *Service) sendViaSendGrid(toEmail, toName, subject, body string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)

	message := mail.NewSingleEmail(from, subject, to, body, body)

	client := sendgrid.NewSendClient(s.sendGridKey)
	response, err := client.Send(message)
	if err != nil {
		log.Printf("❌ SendGrid error: %v", err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		log.Printf("❌ SendGrid returned error status %d: %s", response.StatusCode, response.Body)
		return fmt.Errorf("sendgrid returned error status: %d", response.StatusCode)
	}

	log.Printf("✅ Email sent successfully to %s (SendGrid status: %d)", toEmail, response.StatusCode)
	return nil
}

// logEmailToConsole logs email details to console (development mode)
func (s *Service) logEmailToConsole(toEmail, toName, subject string) error {
	log.Printf("📧 [EMAIL] %s", subject)
	log.Printf("   To: %s <%s>", toName, toEmail)
	log.Printf("   From: %s <%s>", s.fromName, s.fromEmail)
	log.Printf("   ⚠️  Email NOT sent (development mode)")
	return nil
}
