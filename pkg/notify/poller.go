package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
)

type update struct {
	UpdateID int64        `json:"update_id"`
	Message  *chatMessage `json:"message"`
}

type chatMessage struct {
	Chat struct {
		ID int64 `json:"id"`
	} `json:"chat"`
	Text string `json:"text"`
}

type getUpdatesResponse struct {
	OK     bool     `json:"ok"`
	Result []update `json:"result"`
}

// Router dispatches incoming chat text to a command handler and returns
// the reply text.
type Router interface {
	Dispatch(text string) string
}

// Poll runs the inbound long-poll loop. It blocks until ctx is cancelled.
// On a transient failure it backs off 5 seconds before retrying; on a
// normal iteration it sleeps 1 second, per the spec.
func (s *Sender) Poll(ctx context.Context, router Router) {
	if !s.Enabled() {
		return
	}

	retryDelay := backoff.NewConstantBackOff(5 * time.Second)
	var lastUpdateID int64

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		updates, err := s.getUpdates(ctx, lastUpdateID+1)
		if err != nil {
			s.logger.Warn("notify: getUpdates failed, retrying", "error", err)
			sleep(ctx, retryDelay.NextBackOff())
			continue
		}

		for _, u := range updates {
			if u.UpdateID > lastUpdateID {
				lastUpdateID = u.UpdateID
			}
			if u.Message == nil {
				continue
			}
			chatID := strconv.FormatInt(u.Message.Chat.ID, 10)
			if chatID != s.chatID {
				s.logger.Info("notify: ignoring update from unconfigured chat", "chat_id", chatID)
				continue
			}
			reply := router.Dispatch(u.Message.Text)
			if reply != "" {
				s.SendText(ctx, reply, true)
			}
		}

		sleep(ctx, time.Second)
	}
}

func (s *Sender) getUpdates(ctx context.Context, offset int64) ([]update, error) {
	url := fmt.Sprintf("%s/bot%s/getUpdates?offset=%d&timeout=30", telegramAPIBase, s.token, offset)

	reqCtx, cancel := context.WithTimeout(ctx, 35*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building getUpdates request: %w", err)
	}

	// The Sender's shared client timeout is shorter than the long poll, so
	// this request is bounded by reqCtx's 35-second deadline instead.
	client := *s.client
	client.Timeout = 0
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("getUpdates request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("getUpdates returned status %d", resp.StatusCode)
	}

	var parsed getUpdatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding getUpdates response: %w", err)
	}
	return parsed.Result, nil
}

// sleep waits for d or until ctx is cancelled, whichever comes first.
func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
