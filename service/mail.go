package service

import (
	"fmt"
	"net/smtp"
	"os"

	"github.com/jordan-wright/email"
)

// MailService sends transactional mail over SMTP.
type MailService struct {
	host     string
	port     string
	username string
	password string
	from     string
	baseURL  string
}

func NewMailService() *MailService {
	return &MailService{
		host:     os.Getenv("SMTP_HOST"),
		port:     os.Getenv("SMTP_PORT"),
		username: os.Getenv("SMTP_USER"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     os.Getenv("EMAIL_FROM"),
		baseURL:  os.Getenv("APP_BASE_URL"),
	}
}

// SendResetEmail mails a password-reset link carrying the given token.
func (m *MailService) SendResetEmail(to string, token string) error {
	resetUrl := fmt.Sprintf("%s/reset-password?token=%s", m.baseURL, token)

	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = "Password Reset Request - SheaBot"
	e.HTML = []byte(fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Password Reset Request</h2>
  <p>You requested a password reset for your SheaBot account.</p>
  <p>Click the button below to set a new password. This link will expire in 1 hour.</p>
  <div style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #0070f3; color: white; padding: 12px 24px; text-decoration: none; border-radius: 5px; font-weight: bold;">Reset Password</a>
  </div>
  <p>If you did not request this, please ignore this email.</p>
  <hr style="border: 0; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="font-size: 12px; color: #666;">This is an automated message, please do not reply.</p>
</div>`, resetUrl))

	addr := fmt.Sprintf("%s:%s", m.host, m.port)
	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	if err := e.Send(addr, auth); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	logger.Infof("[mail] reset email sent to %s", to)
	return nil
}
