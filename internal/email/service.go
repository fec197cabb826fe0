package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/shainakels/harmonilink-backend/internal/logging"
)

// Service sends transactional mail over SMTP.
type Service struct {
	smtpHost     string
	smtpPort     string
	smtpUser     string
	smtpPassword string
	fromEmail    string
	frontendURL  string
}

func NewService(smtpHost, smtpPort, smtpUser, smtpPassword, frontendURL string) *Service {
	return &Service{
		smtpHost:     smtpHost,
		smtpPort:     smtpPort,
		smtpUser:     smtpUser,
		smtpPassword: smtpPassword,
		fromEmail:    smtpUser,
		frontendURL:  frontendURL,
	}
}

// SendOTPEmail mails a 6-digit verification code. Designed to run in a
// goroutine; failures are reported to the caller for logging only.
func (s *Service) SendOTPEmail(ctx context.Context, toEmail, username, code string) error {
	logger := logging.GetLoggerFromContext(ctx)

	subject := "Verification Code - Harmonilink"
	body, err := renderTemplate(otpTemplate, map[string]string{
		"Username": username,
		"Code":     code,
	})
	if err != nil {
		logger.Error("failed to render OTP email template", "error", err)
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.sendEmail(toEmail, subject, body); err != nil {
		logger.Error("failed to send OTP email", "email", toEmail, "error", err)
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("verification email sent", "email", toEmail)
	return nil
}

// SendPasswordResetEmail mails a reset link valid for one hour.
func (s *Service) SendPasswordResetEmail(ctx context.Context, toEmail, token string) error {
	logger := logging.GetLoggerFromContext(ctx)

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, token)

	subject := "Password Reset Request - Harmonilink"
	body, err := renderTemplate(resetTemplate, map[string]string{
		"ResetLink": resetLink,
	})
	if err != nil {
		logger.Error("failed to render reset email template", "error", err)
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.sendEmail(toEmail, subject, body); err != nil {
		logger.Error("failed to send password reset email", "email", toEmail, "error", err)
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("password reset email sent", "email", toEmail)
	return nil
}

func (s *Service) sendEmail(to, subject, body string) error {
	auth := smtp.PlainAuth("", s.smtpUser, s.smtpPassword, s.smtpHost)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		s.fromEmail, to, subject, body,
	))

	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)
	return smtp.SendMail(addr, auth, s.fromEmail, []string{to}, msg)
}

func renderTemplate(tmpl string, data map[string]string) (string, error) {
	t, err := template.New("email").Parse(tmpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const otpTemplate = `
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #322848; max-width: 480px; margin: 0 auto; padding: 24px;">
    <div style="background: #c697bd; color: #fff; padding: 24px; text-align: center; border-radius: 8px 8px 0 0;">
        <h2 style="margin: 0;">Harmonilink</h2>
    </div>
    <div style="background: #f9f9f9; padding: 32px; border-radius: 0 0 8px 8px; text-align: center;">
        <p>Hi {{.Username}},</p>
        <p>Here's your verification code:</p>
        <div style="background: #432775; color: #fff; font-size: 32px; font-weight: bold; letter-spacing: 8px; padding: 20px; border-radius: 8px; margin: 24px 0;">
            {{.Code}}
        </div>
        <p style="color: #666; font-size: 14px;">This verification code will expire in <b>10 minutes</b>.</p>
    </div>
</body>
</html>
`

const resetTemplate = `
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #322848; max-width: 480px; margin: 0 auto; padding: 24px;">
    <p>You requested a password reset for your Harmonilink account. Click the link below to reset your password:</p>
    <p><a href="{{.ResetLink}}" style="color: #1a73e8; text-decoration: none;">Reset Password</a></p>
    <p>This link expires in one hour. If you did not request this, please ignore this email. Your password will remain unchanged.</p>
    <p>Thank you,<br>The Harmonilink Team</p>
</body>
</html>
`
