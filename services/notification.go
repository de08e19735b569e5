package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/linesmerrill/legal-officer-api/logging"
)

// Notification templates.
const (
	TemplateProtectionRequested = "protection-requested"
	TemplateProtectionAccepted  = "protection-accepted"
	TemplateProtectionRejected  = "protection-rejected"
	TemplateRecoveryRequested   = "recovery-requested"
	TemplateRecoveryAccepted    = "recovery-accepted"
	TemplateRecoveryRejected    = "recovery-rejected"
)

// notifyTimeout bounds one asynchronous delivery.
const notifyTimeout = 30 * time.Second

// Notifier delivers templated notifications by email.
type Notifier interface {
	Notify(ctx context.Context, to, template string, data map[string]interface{}) error
}

// MailSender sends a sendgrid v3 message; *sendgrid.Client implements it.
type MailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// NotificationService sends notifications through sendgrid dynamic templates.
type NotificationService struct {
	Client    MailSender
	From      *mail.Email
	Templates map[string]string
	Logger    *zap.SugaredLogger
}

// NewNotificationService creates a sendgrid backed notifier. templates maps
// template names to sendgrid dynamic template ids.
func NewNotificationService(apiKey, from string, templates map[string]string) *NotificationService {
	return &NotificationService{
		Client:    sendgrid.NewSendClient(apiKey),
		From:      mail.NewEmail("Legal Officer", from),
		Templates: templates,
	}
}

// Notify sends template to the address to, filling it with data.
func (n *NotificationService) Notify(ctx context.Context, to, template string, data map[string]interface{}) error {
	templateID, ok := n.Templates[template]
	if !ok {
		return fmt.Errorf("no sendgrid template configured for %q", template)
	}
	if to == "" {
		return fmt.Errorf("no recipient for %q", template)
	}

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail("", to))
	for k, v := range data {
		p.SetDynamicTemplateData(k, v)
	}
	message := mail.NewV3Mail()
	message.SetFrom(n.From)
	message.SetTemplateID(templateID)
	message.AddPersonalizations(p)

	response, err := n.Client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d: %s", response.StatusCode, response.Body)
	}
	logging.Or(n.Logger, "notification").Infow("email sent successfully", "to", to, "template", template)
	return nil
}

// NotifyAsync delivers a notification in the background. Failures are only logged.
func NotifyAsync(n Notifier, to, template string, data map[string]interface{}) {
	if n == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := n.Notify(ctx, to, template, data); err != nil {
			logging.Named("notification").Warnw("failed to send email", "template", template, "to", to, "error", err)
		}
	}()
}
