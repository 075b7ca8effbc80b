package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type smsRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// SMSGatewaySender отправляет SMS через HTTP шлюз с bearer авторизацией.
// Тема письма для SMS не используется.
type SMSGatewaySender struct {
	url        string
	token      string
	httpClient *http.Client
}

func NewSMSGatewaySender(url, token string, timeout time.Duration) *SMSGatewaySender {
	return &SMSGatewaySender{
		url:        url,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *SMSGatewaySender) Send(ctx context.Context, to, _, body string) error {
	payload, err := json.Marshal(smsRequest{To: to, Message: body})
	if err != nil {
		return fmt.Errorf("failed to marshal sms request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call sms gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("sms gateway returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return nil
}
