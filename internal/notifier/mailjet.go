package notifier

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/mailjet/mailjet-apiv3-go/v4"
	"github.com/shenikar/incident_reporting_api/internal/config"
)

// MailjetSender отправляет письма через Mailjet Send API v3.1
type MailjetSender struct {
	cfg    config.MailjetConfig
	client *mailjet.Client
}

// NewMailjetSender создает отправителя; timeout ограничивает каждый вызов API
func NewMailjetSender(cfg config.MailjetConfig, timeout time.Duration) *MailjetSender {
	// клиент сам дописывает ".1/send" к базе вида https://api.mailjet.com/v3
	client := mailjet.NewMailjetClient(cfg.APIKeyPublic, cfg.APIKeyPrivate, strings.TrimRight(cfg.BaseURL, "/")+"/v3")
	client.SetClient(&http.Client{Timeout: timeout})
	return &MailjetSender{
		cfg:    cfg,
		client: client,
	}
}

// Send отправляет одно письмо. Ошибка API или статус сообщения не "success" считаются ошибкой.
func (s *MailjetSender) Send(ctx context.Context, to, subject, body string) error {
	messages := mailjet.MessagesV31{
		Info: []mailjet.InfoMessagesV31{{
			From:     &mailjet.RecipientV31{Email: s.cfg.SenderEmail, Name: s.cfg.SenderName},
			To:       &mailjet.RecipientsV31{{Email: to}},
			Subject:  subject,
			TextPart: body,
			HTMLPart: toHTML(body),
		}},
	}

	withContext := func(req *http.Request) { *req = *req.WithContext(ctx) }
	result, err := s.client.SendMailV31(&messages, withContext)
	if err != nil {
		return fmt.Errorf("failed to send mailjet message: %w", err)
	}
	for _, m := range result.ResultsV31 {
		if m.Status != "success" {
			return fmt.Errorf("mailjet message status %q", m.Status)
		}
	}
	return nil
}

func toHTML(body string) string {
	lines := strings.Split(html.EscapeString(body), "\n")
	return "<p>" + strings.Join(lines, "<br>") + "</p>"
}
