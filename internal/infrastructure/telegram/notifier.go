package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"NewsTrendMonitor/internal/domain"
	"NewsTrendMonitor/internal/ports"
)

// Notifier sends spike alerts to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// NotifySpikes posts a Markdown alert listing the detected spikes.
func (n *Notifier) NotifySpikes(ctx context.Context, keyword string, spikes []domain.SpikeEvent) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}
	if len(spikes) == 0 {
		return nil
	}

	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", buildAlertMessage(keyword, spikes))
	form.Set("parse_mode", "Markdown")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}

func buildAlertMessage(keyword string, spikes []domain.SpikeEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Sentiment spikes for %q*\n", keyword)
	for _, s := range spikes {
		fmt.Fprintf(&b, "- %s: value %.3f (score %.2f)\n",
			s.Timestamp.Format("2006-01-02 15:04"), s.Value, s.Score)
	}
	return b.String()
}
