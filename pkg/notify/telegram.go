package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const telegramAPIBase = "https://api.telegram.org"

// Sender posts messages to a single Telegram chat via the Bot API and
// implements Bus.
type Sender struct {
	token   string
	chatID  string
	client  *http.Client
	logger  *slog.Logger
	metrics MetricsRecorder
}

// MetricsRecorder is the minimal interface Sender needs to record outcomes,
// satisfied directly by *telemetry.Metrics.
type MetricsRecorder interface {
	RecordNotification(event, outcome string)
}

// NewSender creates a Telegram Sender. If enabled is true, token and
// chatID must both be non-empty — this is a fatal misconfiguration
// (§7: "Telegram enabled without creds") and is reported as an error for
// the caller to fail startup on.
func NewSender(token, chatID string, enabled bool, logger *slog.Logger, metrics MetricsRecorder) (*Sender, error) {
	if enabled && (token == "" || chatID == "") {
		return nil, fmt.Errorf("telegram notification transport enabled but credentials are incomplete")
	}
	return &Sender{
		token:   token,
		chatID:  chatID,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
		metrics: metrics,
	}, nil
}

// Enabled reports whether the sender has usable credentials.
func (s *Sender) Enabled() bool {
	return s != nil && s.token != "" && s.chatID != ""
}

type sendMessageRequest struct {
	ChatID              string `json:"chat_id"`
	Text                string `json:"text"`
	ParseMode           string `json:"parse_mode"`
	DisableNotification bool   `json:"disable_notification"`
}

// SendText posts text to the configured chat. Returns false (never an
// error) on any failure — notification delivery never blocks the caller.
func (s *Sender) SendText(ctx context.Context, text string, disableNotification bool) bool {
	if !s.Enabled() {
		return false
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:              s.chatID,
		Text:                text,
		ParseMode:           "HTML",
		DisableNotification: disableNotification,
	})
	if err != nil {
		s.logger.Warn("notify: marshaling sendMessage body failed", "error", err)
		return false
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", telegramAPIBase, s.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		s.logger.Warn("notify: building sendMessage request failed", "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("notify: sendMessage request failed", "error", err)
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// Emit implements Bus: it renders the event and sends it, logging and
// dropping the event on failure without surfacing an error to the caller.
func (s *Sender) Emit(event Event) {
	text := Render(event)
	if text == "" {
		return
	}

	ok := s.SendText(context.Background(), text, false)
	outcome := "sent"
	if !ok {
		outcome = "failed"
	}
	if s.metrics != nil {
		s.metrics.RecordNotification(eventName(event), outcome)
	}
	if !ok {
		s.logger.Warn("notify: dropping event after failed send", "event", eventName(event))
	}
}

func eventName(event Event) string {
	switch event.(type) {
	case ServerStarted:
		return "server_started"
	case ClientConnected:
		return "client_connected"
	case IPChanged:
		return "ip_changed"
	case NoClients:
		return "no_clients"
	default:
		return "unknown"
	}
}
