package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/careshare/internal/access/domain"
	"github.com/aussiebroadwan/careshare/pkg/slogx"
)

// Sender hands a message to an out-of-band delivery channel.
type Sender interface {
	Send(ctx context.Context, target string, channel domain.Channel, message string) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, target string, channel domain.Channel, message string) error

func (f SenderFunc) Send(ctx context.Context, target string, channel domain.Channel, message string) error {
	return f(ctx, target, channel, message)
}

// LogSender is the development sender. It logs that a message went out but
// never the message itself.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, target string, channel domain.Channel, message string) error {
	slogx.FromContext(ctx).Info("delivery skipped, log sender in use",
		slog.String("channel", string(channel)),
		slog.Int("message_length", len(message)),
	)
	return nil
}

// WebhookSender posts messages as JSON to an email/SMS gateway.
type WebhookSender struct {
	URL    string
	Client *http.Client
}

type webhookPayload struct {
	Target  string `json:"target"`
	Channel string `json:"channel"`
	Message string `json:"message"`
}

func (s *WebhookSender) Send(ctx context.Context, target string, channel domain.Channel, message string) error {
	body, err := json.Marshal(webhookPayload{Target: target, Channel: string(channel), Message: message})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("delivery gateway returned status %d", resp.StatusCode)
	}
	return nil
}

// otpMessage is the only copy this service writes: a purpose label and the code.
func otpMessage(purpose, code string) string {
	label := strings.ReplaceAll(purpose, "_", " ")
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	return fmt.Sprintf("%s code: %s", label, code)
}
