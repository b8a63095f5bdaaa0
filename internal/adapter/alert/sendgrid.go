package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
)

const (
	sendGridSource   = "sendgrid"
	sendGridMailPath = "/v3/mail/send"
)

// SendGridOptions configures a SendGrid mailer.
type SendGridOptions struct {
	BaseURL  string
	APIKey   string
	From     string
	FromName string
	To       []string
	Timeout  time.Duration
}

// SendGrid delivers alerts through the SendGrid v3 Mail Send API.
type SendGrid struct {
	opts   SendGridOptions
	http   *http.Client
	logger *slog.Logger
}

func NewSendGrid(opts SendGridOptions, logger *slog.Logger) *SendGrid {
	opts.BaseURL = strings.TrimSuffix(opts.BaseURL, "/")
	return &SendGrid{
		opts:   opts,
		http:   &http.Client{Timeout: opts.Timeout},
		logger: logger,
	}
}

type mailPayload struct {
	Personalizations []personalization `json:"personalizations"`
	From             address           `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
}

type personalization struct {
	To []address `json:"to"`
}

type address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type errorResponse struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Send posts one message to every recipient. Any status other than 202 is a
// *domain.NetworkError carrying the provider's first error message.
func (s *SendGrid) Send(ctx context.Context, msg Message) error {
	to := make([]address, 0, len(s.opts.To))
	for _, addr := range s.opts.To {
		to = append(to, address{Email: addr})
	}
	body, err := json.Marshal(mailPayload{
		Personalizations: []personalization{{To: to}},
		From:             address{Email: s.opts.From, Name: s.opts.FromName},
		Subject:          msg.Subject,
		Content: []content{
			{Type: "text/plain", Value: msg.Text},
			{Type: "text/html", Value: msg.HTML},
		},
	})
	if err != nil {
		return fmt.Errorf("marshal mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.opts.BaseURL+sendGridMailPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.opts.APIKey)

	resp, err := s.http.Do(req)
	if err != nil {
		return &domain.NetworkError{Source: sendGridSource, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusAccepted {
		s.logger.Debug("alert accepted", "message_id", resp.Header.Get("X-Message-Id"), "recipients", len(to))
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	reason := strings.TrimSpace(string(raw))
	var er errorResponse
	if json.Unmarshal(raw, &er) == nil && len(er.Errors) > 0 {
		reason = er.Errors[0].Message
	}
	return &domain.NetworkError{
		Source:     sendGridSource,
		StatusCode: resp.StatusCode,
		Err:        fmt.Errorf("mail send rejected: %s", reason),
	}
}
