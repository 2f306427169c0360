package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/tarslive/waitlist-api/internal/log"
	"github.com/tarslive/waitlist-api/pkg/circuitbreaker"
	"github.com/tarslive/waitlist-api/pkg/utils"
)

const defaultResendEndpoint = "https://api.resend.com/emails"

// welcomeTemplate is the fixed HTML body, personalized with the
// recipient's name.
var welcomeTemplate = template.Must(template.New("welcome").Parse(`
<div style="font-family:-apple-system,'Segoe UI',Roboto,sans-serif;font-size:16px;line-height:26px;color:#1a1a1a">
  <p>Hi {{.Name}},</p>
  <p>Thank you for joining the waitlist! We&#39;ll let you know as soon as your spot opens up.</p>
  <p>We&#39;re excited to have you on board!<br/>The Team</p>
  <hr style="border-color:#cccccc;margin:20px 0"/>
  <p style="color:#8898aa;font-size:12px">You&#39;re receiving this email because you joined the waitlist.</p>
</div>`))

type sendEmailRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// ResendConfig is read from the environment; the notifier is disabled
// when APIKey is empty.
type ResendConfig struct {
	APIKey   string
	From     string
	Endpoint string
}

func NewResendConfigFromEnv() *ResendConfig {
	return &ResendConfig{
		APIKey:   utils.GetEnvTrimmed("RESEND_API_KEY"),
		From:     utils.GetEnvTrimmedOrDefault("MAIL_FROM", "Waitlist <hello@tars.live>"),
		Endpoint: utils.GetEnvTrimmedOrDefault("RESEND_ENDPOINT", defaultResendEndpoint),
	}
}

// ResendNotifier delivers the welcome email through the Resend HTTP
// API. Calls go through a circuit breaker so a failing provider is not
// hammered on every signup; callers treat every returned error as
// non-fatal.
type ResendNotifier struct {
	config  *ResendConfig
	client  *http.Client
	breaker circuitbreaker.CircuitBreaker
	logger  *log.Logger
}

func NewResendNotifier(config *ResendConfig, logger *log.Logger) *ResendNotifier {
	if config == nil {
		config = NewResendConfigFromEnv()
	}

	return &ResendNotifier{
		config:  config,
		client:  &http.Client{Timeout: 10 * time.Second},
		breaker: circuitbreaker.NewCircuitBreaker(nil),
		logger:  logger,
	}
}

func (n *ResendNotifier) SendWelcomeEmail(ctx context.Context, toEmail, name string) error {
	if n.config.APIKey == "" {
		n.logger.Info("RESEND_API_KEY not set, skipping welcome email", "to", toEmail)
		return nil
	}

	var body bytes.Buffer
	if err := welcomeTemplate.Execute(&body, struct{ Name string }{Name: name}); err != nil {
		return fmt.Errorf("render welcome template: %w", err)
	}

	payload, err := json.Marshal(sendEmailRequest{
		From:    n.config.From,
		To:      toEmail,
		Subject: "Welcome to the Waitlist!",
		HTML:    body.String(),
	})
	if err != nil {
		return fmt.Errorf("encode email payload: %w", err)
	}

	return n.breaker.Call(func() error {
		return n.post(ctx, payload)
	})
}

func (n *ResendNotifier) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.config.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("email provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("email provider rejected send: status %d: %s", resp.StatusCode, string(detail))
	}

	return nil
}
