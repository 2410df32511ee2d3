package services

import (
	"context"
	"fmt"
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/six-app/six-backend/internal/logger"
)

type EmailService interface {
	SendEmail(ctx context.Context, toEmail string, subject string, plainText string, htmlContent string, emailType string) error
}

type emailService struct {
	log               *logger.Logger
	client            *sendgrid.Client
	fromAuthEmail     string
	fromSupportEmail  string
	fromFallbackEmail string
}

func NewEmailService(log *logger.Logger) (EmailService, error) {
	serviceLog := log.With("service", "EmailService")
	apiKey := os.Getenv("SENDGRID_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("missing SENDGRID_API_KEY environment variable")
	}
	fromAuth := os.Getenv("SENDGRID_AUTH_EMAIL")
	if fromAuth == "" {
		serviceLog.Warn("SENDGRID_AUTH_EMAIL not set; using fallback verify@6ixapp.com")
		fromAuth = "verify@6ixapp.com"
	}
	fromSupport := os.Getenv("SENDGRID_SUPPORT_EMAIL")
	if fromSupport == "" {
		serviceLog.Warn("SENDGRID_SUPPORT_EMAIL not set; using fallback no-reply@6ixapp.com")
		fromSupport = "no-reply@6ixapp.com"
	}
	// Optional second sender identity, retried when the primary domain
	// is rejected (unverified sender, suspended domain). Must itself be
	// a verified SendGrid sender; when unset there is no retry.
	fromFallback := os.Getenv("SENDGRID_FALLBACK_EMAIL")
	if fromFallback == "" {
		serviceLog.Warn("SENDGRID_FALLBACK_EMAIL not set; delivery will not retry from a fallback sender")
	}
	client := sendgrid.NewSendClient(apiKey)

	return &emailService{
		log:               serviceLog,
		client:            client,
		fromAuthEmail:     fromAuth,
		fromSupportEmail:  fromSupport,
		fromFallbackEmail: fromFallback,
	}, nil
}

func (es *emailService) SendEmail(ctx context.Context, toEmail string, subject string, plainText string, htmlContent string, emailType string) error {
	var fromName = "6ix"
	var fromEmail = es.fromSupportEmail
	switch emailType {
	case "authorization":
		fromName = "6ix Verification"
		fromEmail = es.fromAuthEmail
	case "support":
		fromName = "6ix Support"
		fromEmail = es.fromSupportEmail
	default:
	}

	if err := es.send(ctx, fromName, fromEmail, toEmail, subject, plainText, htmlContent); err != nil {
		if es.fromFallbackEmail == "" {
			return fmt.Errorf("email delivery failed: %w", err)
		}
		// A 4xx from the provider usually means the from address or its
		// domain is not verified. Retry once from the fallback sender
		// before giving up.
		es.log.Warn("Primary sender failed, retrying from fallback address", "error", err, "fallback", es.fromFallbackEmail)
		if fbErr := es.send(ctx, fromName, es.fromFallbackEmail, toEmail, subject, plainText, htmlContent); fbErr != nil {
			es.log.Warn("Fallback sender failed too", "error", fbErr)
			return fmt.Errorf("email delivery failed: %w", fbErr)
		}
	}
	return nil
}

func (es *emailService) send(ctx context.Context, fromName, fromEmail, toEmail, subject, plainText, htmlContent string) error {
	from := mail.NewEmail(fromName, fromEmail)
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)
	response, err := es.client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return fmt.Errorf("sendgrid responded with HTTP %d: %s", response.StatusCode, response.Body)
	}
	es.log.Info("Email sent", "to", toEmail, "from", fromEmail, "statusCode", response.StatusCode)
	return nil
}
