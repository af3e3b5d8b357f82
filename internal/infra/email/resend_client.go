// internal/infra/email/resend_client.go
package email

import (
	"context"
	"fmt"

	domainEmail "quiet_hours_notifier/internal/domain/email"

	"github.com/resend/resend-go/v2"
	"golang.org/x/time/rate"
)

// ResendAdapter implements the email.Client interface using the Resend SDK.
// Each send waits on a shared rate limiter so a large batch stays under the
// provider's request rate.
type ResendAdapter struct {
	client  *resend.Client
	limiter *rate.Limiter
}

func NewResendAdapter(apiKey string, sendsPerSecond float64) *ResendAdapter {
	return &ResendAdapter{
		client:  resend.NewClient(apiKey),
		limiter: rate.NewLimiter(rate.Limit(sendsPerSecond), 1),
	}
}

// Send delivers the message and returns the Resend-assigned email id.
func (a *ResendAdapter) Send(ctx context.Context, msg domainEmail.Message) (string, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return "", err
	}

	params := &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	}
	sent, err := a.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", fmt.Errorf("resend send failed: %w", err)
	}
	return sent.Id, nil
}
