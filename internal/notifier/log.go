package notifier

import (
	"context"
	"log/slog"

	"github.com/amishk599/jobwatch/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes new postings to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each posting via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the posting and any enrichment. Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(_ context.Context, note model.Notification) error {
	p := note.Posting
	args := []any{"source", p.Source, "title", p.Title, "url", p.Link}
	if e := note.Enrichment; e != nil {
		args = append(args,
			"org", e.Organization,
			"edu", e.Education,
			"exp", e.Experience,
			"salary", e.Salary,
		)
	}
	n.logger.Info("new posting", args...)
	return nil
}
