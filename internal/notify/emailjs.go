package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// EmailJSSender sends verification codes through the EmailJS REST API.
type EmailJSSender struct {
	endpoint   string
	serviceID  string
	templateID string
	publicKey  string
	httpClient *http.Client
}

func NewEmailJSSender(endpoint, serviceID, templateID, publicKey string) *EmailJSSender {
	return &EmailJSSender{
		endpoint:   endpoint,
		serviceID:  serviceID,
		templateID: templateID,
		publicKey:  publicKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
}

func (s *EmailJSSender) Send(ctx context.Context, email, code string) error {
	payload := emailJSRequest{
		ServiceID:  s.serviceID,
		TemplateID: s.templateID,
		UserID:     s.publicKey,
		TemplateParams: map[string]string{
			"to_email": email,
			"message":  fmt.Sprintf("Your RupayX Verification Code is: %s", code),
			"code":     code,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Error("failed to send OTP email", "email", email, "error", err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		slog.Error("OTP email delivery rejected", "email", email, "status", resp.StatusCode)
		return fmt.Errorf("email delivery failed with status %d", resp.StatusCode)
	}

	slog.Info("OTP email sent", "email", email)
	return nil
}
