// Package email delivers transactional mail over SMTP, best-effort.
package email

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strconv"

	"github.com/rs/zerolog"
)

// Service defines the interface for email operations. Every send is
// best-effort: callers never fail their own operation on a mail error.
type Service interface {
	SendOtpEmail(toEmail, toName, code string) error
	SendPasswordResetEmail(toEmail, toName, code string) error
	SendPaymentApprovedEmail(toEmail, toName string) error
	SendPaymentDeniedEmail(toEmail, toName, reason string) error
}

// SMTPConfig holds configuration for the SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool
}

// SMTPService implements Service over a plain SMTP connection
type SMTPService struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewSMTPService creates a new SMTP-backed email service
func NewSMTPService(config SMTPConfig, logger zerolog.Logger) *SMTPService {
	return &SMTPService{
		config: config,
		logger: logger,
	}
}

// devMode reports whether SMTP credentials are missing; in that case mail
// content is logged instead of sent so local setups work without a relay.
func (s *SMTPService) devMode() bool {
	return s.config.Username == "" || s.config.Password == ""
}

// SendOtpEmail sends the email verification code.
func (s *SMTPService) SendOtpEmail(toEmail, toName, code string) error {
	if s.devMode() {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("code", code).
			Msg("SMTP credentials not configured - verification code not sent. Use the code above for testing.")
		return nil
	}

	subject := "Your LearnSphere Verification Code"
	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2 style="color: #333;">Welcome to LearnSphere!</h2>
				<p>Hello %s,</p>
				<p>Use the following code to verify your email address:</p>
				<div style="text-align: center; margin: 30px 0;">
					<span style="font-size: 28px; letter-spacing: 6px; font-weight: bold;">%s</span>
				</div>
				<p>This code will expire in 10 minutes.</p>
				<p>If you did not register for a LearnSphere account, please ignore this email.</p>
				<p>Best regards,<br>The LearnSphere Team</p>
			</div>
		</body>
		</html>
	`, toName, code)
	plain := fmt.Sprintf("Hello %s,\n\nYour LearnSphere verification code is %s. It expires in 10 minutes.\n", toName, code)

	return s.sendWithFallback(toEmail, subject, body, plain)
}

// SendPasswordResetEmail sends the password reset code.
func (s *SMTPService) SendPasswordResetEmail(toEmail, toName, code string) error {
	if s.devMode() {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("code", code).
			Msg("SMTP credentials not configured - password reset code not sent.")
		return nil
	}

	subject := "Reset Your LearnSphere Password"
	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2 style="color: #333;">Password Reset</h2>
				<p>Hello %s,</p>
				<p>Use the following code to reset your password:</p>
				<div style="text-align: center; margin: 30px 0;">
					<span style="font-size: 28px; letter-spacing: 6px; font-weight: bold;">%s</span>
				</div>
				<p>This code will expire in 10 minutes. If you did not request a reset, ignore this email.</p>
				<p>Best regards,<br>The LearnSphere Team</p>
			</div>
		</body>
		</html>
	`, toName, code)
	plain := fmt.Sprintf("Hello %s,\n\nYour LearnSphere password reset code is %s. It expires in 10 minutes.\n", toName, code)

	return s.sendWithFallback(toEmail, subject, body, plain)
}

// SendPaymentApprovedEmail notifies a user their payment was approved and
// their subscription is active.
func (s *SMTPService) SendPaymentApprovedEmail(toEmail, toName string) error {
	if s.devMode() {
		s.logger.Warn().Str("toEmail", toEmail).Msg("SMTP credentials not configured - approval email not sent.")
		return nil
	}

	subject := "Your LearnSphere Subscription is Active"
	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2 style="color: #333;">Payment Approved</h2>
				<p>Hello %s,</p>
				<p>Your payment has been approved and your subscription is now active for one year. Your account has been activated and you can log in to access all materials.</p>
				<p>Best regards,<br>The LearnSphere Team</p>
			</div>
		</body>
		</html>
	`, toName)
	plain := fmt.Sprintf("Hello %s,\n\nYour payment has been approved. Your LearnSphere subscription is active for one year.\n", toName)

	return s.sendWithFallback(toEmail, subject, body, plain)
}

// SendPaymentDeniedEmail notifies a user their payment was denied.
func (s *SMTPService) SendPaymentDeniedEmail(toEmail, toName, reason string) error {
	if s.devMode() {
		s.logger.Warn().Str("toEmail", toEmail).Str("reason", reason).Msg("SMTP credentials not configured - denial email not sent.")
		return nil
	}

	subject := "Your LearnSphere Payment Was Not Approved"
	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2 style="color: #333;">Payment Denied</h2>
				<p>Hello %s,</p>
				<p>Unfortunately your payment could not be approved:</p>
				<p style="margin: 20px 0; padding: 12px; background: #f8f8f8;">%s</p>
				<p>Please submit a new payment with a valid proof of transaction.</p>
				<p>Best regards,<br>The LearnSphere Team</p>
			</div>
		</body>
		</html>
	`, toName, reason)
	plain := fmt.Sprintf("Hello %s,\n\nYour payment was denied: %s\n", toName, reason)

	return s.sendWithFallback(toEmail, subject, body, plain)
}

// sendWithFallback tries the HTML body first and falls back to plain text.
func (s *SMTPService) sendWithFallback(toEmail, subject, htmlBody, plainBody string) error {
	err := s.send(toEmail, subject, htmlBody, "text/html; charset=UTF-8")
	if err == nil {
		return nil
	}
	s.logger.Warn().Err(err).Str("toEmail", toEmail).Msg("HTML email failed, retrying as plain text")

	if err2 := s.send(toEmail, subject, plainBody, "text/plain; charset=UTF-8"); err2 != nil {
		return fmt.Errorf("plain text fallback failed: %w (html: %v)", err2, err)
	}
	return nil
}

// send delivers a single message over SMTP.
func (s *SMTPService) send(toEmail, subject, body, contentType string) error {
	auth := smtp.PlainAuth(
		"",
		s.config.Username,
		s.config.Password,
		s.config.Host,
	)

	headers := map[string]string{
		"From":         fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail),
		"To":           toEmail,
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": contentType,
	}

	message := ""
	for key, value := range headers {
		message += fmt.Sprintf("%s: %s\r\n", key, value)
	}
	message += "\r\n" + body

	serverAddress := s.config.Host + ":" + strconv.Itoa(s.config.Port)

	if s.config.UseTLS {
		tlsConfig := &tls.Config{
			InsecureSkipVerify: true,
			ServerName:         s.config.Host,
		}

		conn, err := tls.Dial("tcp", serverAddress, tlsConfig)
		if err != nil {
			return fmt.Errorf("failed to connect to SMTP server: %w", err)
		}
		defer conn.Close()

		client, err := smtp.NewClient(conn, s.config.Host)
		if err != nil {
			return fmt.Errorf("failed to create SMTP client: %w", err)
		}
		defer client.Quit()

		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}

		if err = client.Mail(s.config.FromEmail); err != nil {
			return fmt.Errorf("failed to set sender: %w", err)
		}
		if err = client.Rcpt(toEmail); err != nil {
			return fmt.Errorf("failed to set recipient: %w", err)
		}

		w, err := client.Data()
		if err != nil {
			return fmt.Errorf("failed to get data writer: %w", err)
		}
		if _, err = w.Write([]byte(message)); err != nil {
			return fmt.Errorf("failed to write email message: %w", err)
		}
		if err = w.Close(); err != nil {
			return fmt.Errorf("failed to close data writer: %w", err)
		}

		return nil
	}

	if err := smtp.SendMail(serverAddress, auth, s.config.FromEmail, []string{toEmail}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
