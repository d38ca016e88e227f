package utils

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"sync"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type EmailContent struct {
	To      string
	Name    string
	Subject string
	HTML    string
}

// Mailer delivers transactional email.
type Mailer interface {
	Send(ctx context.Context, msg EmailContent) error
}

// SendgridMailer sends through the SendGrid v3 API.
type SendgridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
}

func NewSendgridMailer(apiKey, sender string) *SendgridMailer {
	return &SendgridMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail("Languagevio", sender),
	}
}

func (m *SendgridMailer) Send(ctx context.Context, msg EmailContent) error {
	to := mail.NewEmail(msg.Name, msg.To)
	message := mail.NewSingleEmail(m.from, msg.Subject, to, msg.Subject, msg.HTML)

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// NoopMailer drops every message. Used when no SendGrid key is configured.
type NoopMailer struct {
	Logger *slog.Logger
}

func (m NoopMailer) Send(_ context.Context, msg EmailContent) error {
	if m.Logger != nil {
		m.Logger.Debug("email disabled, dropping message", "to", msg.To, "subject", msg.Subject)
	}
	return nil
}

// NewMailer picks SendGrid when a key is present.
func NewMailer(apiKey, sender string, logger *slog.Logger) Mailer {
	if apiKey == "" {
		return NoopMailer{Logger: logger}
	}
	return NewSendgridMailer(apiKey, sender)
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F4F7FB; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #1B3A6B; padding: 28px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 22px; letter-spacing: 1px; }
			.content { padding: 36px 30px; color: #1B3A6B; line-height: 1.6; }
			.info-box { background: #EEF4FF; padding: 15px; border-radius: 4px; border-left: 4px solid #F2A541; margin: 20px 0; }
			.footer { background-color: #F4F7FB; padding: 18px; text-align: center; font-size: 12px; color: #666666; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>LANGUAGEVIO</h1></div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">&copy; Languagevio. Happy learning!</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// EnrollmentReceiptEmail confirms a paid enrollment to the student.
func EnrollmentReceiptEmail(email, className, instructorName, transactionID string, price float64) EmailContent {
	body := fmt.Sprintf(`
		<p>You are now enrolled in <strong>%s</strong> with %s.</p>
		<div class="info-box">
			<strong>Amount paid:</strong> $%.2f<br>
			<strong>Transaction:</strong> %s
		</div>
		<p>Your class is waiting for you on your dashboard.</p>
	`, html.EscapeString(className), html.EscapeString(instructorName), price, html.EscapeString(transactionID))

	return EmailContent{
		To:      email,
		Subject: "Enrollment confirmed: " + className,
		HTML:    getEmailTemplate("Enrollment Confirmed", body),
	}
}

// ClassReviewedEmail tells the instructor how an admin ruled on a submission.
func ClassReviewedEmail(email, instructorName, className string, approved bool) EmailContent {
	title, verdict := "Class Denied", "was not approved this time. Check the feedback on your dashboard."
	if approved {
		title, verdict = "Class Approved", "has been approved and is now open for enrollment."
	}
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your class <strong>%s</strong> %s</p>
	`, html.EscapeString(instructorName), html.EscapeString(className), verdict)

	return EmailContent{
		To:      email,
		Name:    instructorName,
		Subject: title + ": " + className,
		HTML:    getEmailTemplate(title, body),
	}
}

// EmailSendTimeout bounds a single background delivery.
var EmailSendTimeout = 30 * time.Second

var pendingEmails sync.WaitGroup

// SendAsync delivers msg on its own goroutine; failures are only logged.
func SendAsync(mailer Mailer, logger *slog.Logger, msg EmailContent) {
	if mailer == nil || msg.To == "" {
		return
	}
	timeout := EmailSendTimeout
	pendingEmails.Add(1)
	go func() {
		defer pendingEmails.Done()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := mailer.Send(ctx, msg); err != nil && logger != nil {
			logger.Warn("email delivery failed", "to", msg.To, "subject", msg.Subject, "err", err)
		}
	}()
}

// WaitForEmails blocks until background deliveries finish or timeout passes.
// It reports whether every delivery finished.
func WaitForEmails(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		pendingEmails.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
