package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/amishk599/jobwatch/internal/model"
)

// Ensure SlackNotifier implements model.Notifier.
var _ model.Notifier = (*SlackNotifier)(nil)

// SlackNotifier sends posting alerts to a Slack channel via Incoming Webhooks.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSlackNotifier returns a notifier that posts each posting to Slack via webhook.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Notify sends one Block Kit message. It is not retried.
func (s *SlackNotifier) Notify(ctx context.Context, n model.Notification) error {
	body, err := json.Marshal(buildPayload(n))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned %d", resp.StatusCode)
	}
	s.logger.Info("slack message sent", "source", n.Posting.Source, "title", n.Posting.Title)
	return nil
}

// Block Kit payload types.

type slackPayload struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string         `json:"type"`
	Text     *slackText     `json:"text,omitempty"`
	Fields   []slackText    `json:"fields,omitempty"`
	Elements []slackElement `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackElement struct {
	Type  string    `json:"type"`
	Text  slackText `json:"text"`
	URL   string    `json:"url"`
	Style string    `json:"style"`
}

func buildPayload(n model.Notification) slackPayload {
	p := n.Posting

	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: "🔔 " + p.Title},
		},
		{
			Type:   "section",
			Fields: []slackText{{Type: "mrkdwn", Text: "*Source:*\n" + p.Source}},
		},
	}

	if e := n.Enrichment; e != nil {
		blocks = append(blocks,
			slackBlock{
				Type: "section",
				Fields: []slackText{
					{Type: "mrkdwn", Text: "*Org:*\n" + orDefault(e.Organization, fallbackOrg)},
					{Type: "mrkdwn", Text: "*Edu:*\n" + orDefault(e.Education, fallbackEdu)},
				},
			},
			slackBlock{
				Type: "section",
				Fields: []slackText{
					{Type: "mrkdwn", Text: "*Exp:*\n" + orDefault(e.Experience, fallbackExp)},
					{Type: "mrkdwn", Text: "*Salary:*\n" + orDefault(e.Salary, fallbackSalary)},
				},
			},
		)
	}

	blocks = append(blocks,
		slackBlock{
			Type: "actions",
			Elements: []slackElement{
				{
					Type:  "button",
					Text:  slackText{Type: "plain_text", Text: "View Circular"},
					URL:   p.Link,
					Style: "primary",
				},
			},
		},
		slackBlock{Type: "divider"},
	)

	return slackPayload{Text: "New job: " + p.Title, Blocks: blocks}
}
