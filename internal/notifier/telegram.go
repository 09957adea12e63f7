package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/amishk599/jobwatch/internal/model"
)

// DefaultTelegramAPI is the Bot API base URL.
const DefaultTelegramAPI = "https://api.telegram.org"

// Ensure TelegramNotifier implements model.Notifier.
var _ model.Notifier = (*TelegramNotifier)(nil)

// TelegramNotifier sends each posting as a Markdown message to one chat via the Bot API.
type TelegramNotifier struct {
	apiBase    string
	botToken   string
	chatID     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewTelegramNotifier returns a notifier posting to chatID. An empty apiBase uses DefaultTelegramAPI.
func NewTelegramNotifier(apiBase, botToken, chatID string, httpClient *http.Client, logger *slog.Logger) *TelegramNotifier {
	if apiBase == "" {
		apiBase = DefaultTelegramAPI
	}
	return &TelegramNotifier{
		apiBase:    strings.TrimRight(apiBase, "/"),
		botToken:   botToken,
		chatID:     chatID,
		httpClient: httpClient,
		logger:     logger,
	}
}

type telegramMessage struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Notify sends one message. It is not retried.
func (t *TelegramNotifier) Notify(ctx context.Context, n model.Notification) error {
	body, err := json.Marshal(telegramMessage{
		ChatID:                t.chatID,
		Text:                  Format(n),
		ParseMode:             "Markdown",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("marshal telegram message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		// the URL carries the bot token; keep it out of the error
		return errors.New("create telegram request: invalid api base url")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post to telegram: %w", redactToken(err, t.botToken))
	}
	defer resp.Body.Close()

	respBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var tr telegramResponse
	_ = json.Unmarshal(respBytes, &tr)

	if resp.StatusCode != http.StatusOK || !tr.OK {
		return fmt.Errorf("telegram returned %d: %s", resp.StatusCode, tr.Description)
	}
	t.logger.Info("telegram message sent", "source", n.Posting.Source, "title", n.Posting.Title)
	return nil
}

// redactToken strips the bot token from transport errors, which embed the request URL.
func redactToken(err error, token string) error {
	if token == "" || !strings.Contains(err.Error(), token) {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(err.Error(), token, "<redacted>"))
}
