package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	gomail "gopkg.in/gomail.v2"

	"github.com/innkeep/enquiry/models/property_models"
)

// Provider delivers one rendered instruction over a channel's transport.
// Providers are black boxes to the pipeline: success or failure, nothing
// else. Each call must bound its own runtime; dispatch has no outer
// timeout.
type Provider interface {
	Send(ctx context.Context, ins Instruction) error
}

// EmailProvider sends the always-available channel over SMTP.
type EmailProvider struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailProvider(host string, port int, user, pass, from string) *EmailProvider {
	return &EmailProvider{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
	}
}

func (p *EmailProvider) Send(_ context.Context, ins Instruction) error {
	m := gomail.NewMessage()
	m.SetHeader("From", p.from)
	m.SetHeader("To", ins.Address)
	m.SetHeader("Subject", ins.Subject)
	m.SetBody("text/html", ins.HTML)

	if err := p.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}

// WebhookProvider posts messaging-channel instructions to a provider
// endpoint (WhatsApp or SMS gateway).
type WebhookProvider struct {
	channel  property_models.Channel
	endpoint string
	client   *http.Client
}

func NewWebhookProvider(channel property_models.Channel, endpoint string, timeout time.Duration) *WebhookProvider {
	return &WebhookProvider{
		channel:  channel,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (p *WebhookProvider) Send(ctx context.Context, ins Instruction) error {
	if p.endpoint == "" {
		return fmt.Errorf("%s provider not configured", p.channel)
	}

	payload, err := json.Marshal(map[string]string{
		"to":   ins.Address,
		"text": ins.Text,
	})
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", p.channel, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", p.channel, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", p.channel, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%s provider returned status %d", p.channel, resp.StatusCode)
	}
	return nil
}
