package notifications

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/shopkart-labs/shopkart-backend/pkg/config"
	pkgerrors "github.com/shopkart-labs/shopkart-backend/pkg/errors"
	"github.com/shopkart-labs/shopkart-backend/pkg/logger"
)

// Mailer sends transactional storefront email.
type Mailer interface {
	SendActivationEmail(ctx context.Context, to, name, link string) error
	SendReceiptEmail(ctx context.Context, to, name, invoicePath string) error
}

// SendgridMailer delivers mail through the SendGrid API.
type SendgridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
	logger *logger.Logger
}

// NewSendgridMailer validates the credentials and builds the mailer.
func NewSendgridMailer(cfg config.SendgridConfig, logg *logger.Logger) (*SendgridMailer, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("sendgrid api key is required")
	}
	fromAddr := strings.TrimSpace(cfg.DefaultFrom)
	if fromAddr == "" {
		return nil, fmt.Errorf("sendgrid from address is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("sendgrid logger is required")
	}
	return &SendgridMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail("Shopkart", fromAddr),
		logger: logg,
	}, nil
}

// SendActivationEmail delivers the email-verification link.
func (m *SendgridMailer) SendActivationEmail(ctx context.Context, to, name, link string) error {
	subject := "Activate your Shopkart account"
	plain := fmt.Sprintf(
		"Hi %s,\n\nWelcome to Shopkart. Confirm your email address to activate your account:\n\n%s\n\nThe link expires in 24 hours.",
		displayName(name), link,
	)
	html := fmt.Sprintf(
		`<p>Hi %s,</p><p>Welcome to Shopkart. Confirm your email address to activate your account:</p><p><a href="%s">Activate account</a></p><p>The link expires in 24 hours.</p>`,
		displayName(name), link,
	)
	message := mail.NewSingleEmail(m.from, subject, mail.NewEmail(name, to), plain, html)
	return m.send(ctx, message, "activation")
}

// SendReceiptEmail delivers the payment receipt with the PDF invoice attached.
func (m *SendgridMailer) SendReceiptEmail(ctx context.Context, to, name, invoicePath string) error {
	subject := "Your Shopkart order receipt"
	plain := fmt.Sprintf(
		"Hi %s,\n\nThanks for your order. Your payment was received; the invoice is attached.",
		displayName(name),
	)
	html := fmt.Sprintf(
		"<p>Hi %s,</p><p>Thanks for your order. Your payment was received; the invoice is attached.</p>",
		displayName(name),
	)
	message := mail.NewSingleEmail(m.from, subject, mail.NewEmail(name, to), plain, html)

	if invoicePath != "" {
		content, err := os.ReadFile(invoicePath)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read invoice for attachment")
		}
		attachment := mail.NewAttachment()
		attachment.SetContent(base64.StdEncoding.EncodeToString(content))
		attachment.SetType("application/pdf")
		attachment.SetFilename(filepath.Base(invoicePath))
		attachment.SetDisposition("attachment")
		message.AddAttachment(attachment)
	}

	return m.send(ctx, message, "receipt")
}

func (m *SendgridMailer) send(ctx context.Context, message *mail.SGMailV3, kind string) error {
	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("send %s email", kind))
	}
	if resp.StatusCode >= 400 {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("send %s email: sendgrid status %d", kind, resp.StatusCode))
	}
	m.logger.Info(m.logger.WithField(ctx, "email_kind", kind), "email sent")
	return nil
}

// NoopMailer logs instead of sending; used when no API key is configured.
type NoopMailer struct {
	logger *logger.Logger
}

// NewNoopMailer builds the log-only mailer.
func NewNoopMailer(logg *logger.Logger) *NoopMailer {
	return &NoopMailer{logger: logg}
}

func (m *NoopMailer) SendActivationEmail(ctx context.Context, to, _, link string) error {
	if m.logger != nil {
		ctx = m.logger.WithFields(ctx, map[string]any{"to": to, "link": link})
		m.logger.Info(ctx, "activation email suppressed (no mailer configured)")
	}
	return nil
}

func (m *NoopMailer) SendReceiptEmail(ctx context.Context, to, _, invoicePath string) error {
	if m.logger != nil {
		ctx = m.logger.WithFields(ctx, map[string]any{"to": to, "invoice": invoicePath})
		m.logger.Info(ctx, "receipt email suppressed (no mailer configured)")
	}
	return nil
}

func displayName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "there"
	}
	return name
}
