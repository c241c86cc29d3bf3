package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"html"
	"net/smtp"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/edutech/internal/pkg/metrics"
)

// EmailService defines the interface for email operations
type EmailService interface {
	SendMail(ctx context.Context, toEmail, subject, htmlBody string) error
	SendPasswordResetCode(ctx context.Context, toEmail, toName, code string) error
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool
}

// EmailServiceImpl implements EmailService
type EmailServiceImpl struct {
	config  SMTPConfig
	logger  zerolog.Logger
	metrics *metrics.Metrics
	// deliver is swapped out in tests
	deliver func(toEmail string, message []byte) error
}

// NewEmailService creates a new EmailService
func NewEmailService(config SMTPConfig, logger zerolog.Logger, m *metrics.Metrics) *EmailServiceImpl {
	s := &EmailServiceImpl{
		config:  config,
		logger:  logger,
		metrics: m,
	}
	s.deliver = s.sendSMTP
	return s
}

// SendMail sends an HTML message. Without SMTP credentials the message is
// only logged, which keeps local development usable.
func (s *EmailServiceImpl) SendMail(ctx context.Context, toEmail, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.config.Username == "" || s.config.Password == "" {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("subject", subject).
			Msg("SMTP credentials not configured - email not sent")
		return nil
	}

	if err := s.deliver(toEmail, s.buildMessage(toEmail, subject, htmlBody)); err != nil {
		s.metrics.RecordRelayFailure(metrics.RelayMail)
		return err
	}
	return nil
}

// SendPasswordResetCode mails the 4-digit reset code to the account owner
func (s *EmailServiceImpl) SendPasswordResetCode(ctx context.Context, toEmail, toName, code string) error {
	if s.config.Username == "" || s.config.Password == "" {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("code", code).
			Msg("SMTP credentials not configured - reset code not sent. Use the code above for testing.")
		return nil
	}
	return s.SendMail(ctx, toEmail, "Password Reset Code", passwordResetBody(toName, code))
}

func passwordResetBody(name, code string) string {
	return fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2 style="color: #333;">Password Reset</h2>
				<p>Hello %s,</p>
				<p>We received a request to reset the password of your EduTech account. Use the code below to continue:</p>

				<div style="text-align: center; margin: 30px 0; font-size: 28px; letter-spacing: 8px; font-weight: bold;">%s</div>

				<p>This code expires in 1 hour.</p>

				<p>If you did not request a password reset, you can ignore this email.</p>

				<p>Best regards,<br>The EduTech Team</p>
			</div>
		</body>
		</html>
	`, html.EscapeString(name), html.EscapeString(code))
}

func (s *EmailServiceImpl) buildMessage(toEmail, subject, htmlBody string) []byte {
	headers := map[string]string{
		"From":         fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail),
		"To":           toEmail,
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=UTF-8",
	}

	keys := make([]string, 0, len(headers))
	for key := range headers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var message strings.Builder
	for _, key := range keys {
		fmt.Fprintf(&message, "%s: %s\r\n", key, headers[key])
	}
	message.WriteString("\r\n")
	message.WriteString(htmlBody)
	return []byte(message.String())
}

// sendSMTP delivers the message through the configured server
func (s *EmailServiceImpl) sendSMTP(toEmail string, message []byte) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	serverAddress := s.config.Host + ":" + strconv.Itoa(s.config.Port)

	if !s.config.UseTLS {
		if err := smtp.SendMail(serverAddress, auth, s.config.FromEmail, []string{toEmail}, message); err != nil {
			s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to send email")
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	}

	conn, err := tls.Dial("tcp", serverAddress, &tls.Config{ServerName: s.config.Host})
	if err != nil {
		s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to connect to SMTP server")
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit()

	if err = client.Auth(auth); err != nil {
		s.logger.Error().Err(err).Msg("SMTP authentication failed")
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
	if _, err = w.Write(message); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return nil
}
