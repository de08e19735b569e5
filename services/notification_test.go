package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/legal-officer-api/services"
)

type fakeMailSender struct {
	sent     []*mail.SGMailV3
	response *rest.Response
	err      error
}

func (f *fakeMailSender) SendWithContext(_ context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	f.sent = append(f.sent, email)
	return f.response, f.err
}

func newNotificationService(sender *fakeMailSender) *services.NotificationService {
	n := services.NewNotificationService("key", "noreply@example.org", map[string]string{
		services.TemplateProtectionRequested: "d-123",
	})
	n.Client = sender
	return n
}

func TestNotificationService_Notify(t *testing.T) {
	sender := &fakeMailSender{response: &rest.Response{StatusCode: 202}}
	n := newNotificationService(sender)

	err := n.Notify(context.Background(), "officer@example.org", services.TemplateProtectionRequested,
		map[string]interface{}{"requesterAddress": requester})

	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	message := sender.sent[0]
	assert.Equal(t, "d-123", message.TemplateID)
	assert.Equal(t, "noreply@example.org", message.From.Address)
	require.Len(t, message.Personalizations, 1)
	assert.Equal(t, "officer@example.org", message.Personalizations[0].To[0].Address)
	assert.Equal(t, requester, message.Personalizations[0].DynamicTemplateData["requesterAddress"])
}

func TestNotificationService_Errors(t *testing.T) {
	tests := []struct {
		name     string
		sender   *fakeMailSender
		to       string
		template string
		err      string
	}{
		{name: "unknown template", sender: &fakeMailSender{}, to: "a@example.org", template: "nope",
			err: `no sendgrid template configured for "nope"`},
		{name: "no recipient", sender: &fakeMailSender{}, template: services.TemplateProtectionRequested,
			err: `no recipient for "protection-requested"`},
		{name: "transport", sender: &fakeMailSender{err: errors.New("mocked-error")}, to: "a@example.org",
			template: services.TemplateProtectionRequested, err: "mocked-error"},
		{name: "rejected", sender: &fakeMailSender{response: &rest.Response{StatusCode: 401, Body: "denied"}},
			to: "a@example.org", template: services.TemplateProtectionRequested, err: "sendgrid error: status 401: denied"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newNotificationService(tt.sender).Notify(context.Background(), tt.to, tt.template, nil)
			assert.EqualError(t, err, tt.err)
		})
	}
}

type notifierFunc func(ctx context.Context, to, template string, data map[string]interface{}) error

func (f notifierFunc) Notify(ctx context.Context, to, template string, data map[string]interface{}) error {
	return f(ctx, to, template, data)
}

func TestNotifyAsync(t *testing.T) {
	done := make(chan string, 1)
	services.NotifyAsync(notifierFunc(func(_ context.Context, to, _ string, _ map[string]interface{}) error {
		done <- to
		return nil
	}), "a@example.org", services.TemplateProtectionAccepted, nil)

	assert.Equal(t, "a@example.org", <-done)
	services.NotifyAsync(nil, "a@example.org", services.TemplateProtectionAccepted, nil)
}
