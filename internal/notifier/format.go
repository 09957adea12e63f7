package notifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/amishk599/jobwatch/internal/model"
)

// Fallbacks shown when the summarizer left a field empty.
const (
	fallbackOrg    = "N/A"
	fallbackEdu    = "Not Mentioned"
	fallbackExp    = "N/A"
	fallbackSalary = "Negotiable"
)

var markdownEscaper = strings.NewReplacer(
	`_`, `\_`,
	`*`, `\*`,
	"`", "\\`",
	`[`, `\[`,
	`]`, `\]`,
)

// escapeMarkdown escapes characters that are special in Telegram's legacy Markdown.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// escapeLinkTarget keeps a ")" in the URL from closing the Markdown link early.
func escapeLinkTarget(s string) string {
	return strings.ReplaceAll(s, ")", "%29")
}

// Format renders n as Markdown text. Without enrichment only the title and link are shown.
func Format(n model.Notification) string {
	p := n.Posting
	link := fmt.Sprintf("[%s](%s)", escapeMarkdown(p.Title), escapeLinkTarget(p.Link))

	if n.Enrichment == nil {
		return "🔔 *New Job:* " + link
	}

	e := n.Enrichment
	var b strings.Builder
	b.WriteString("🔔 *New Job Circular!*\n\n")
	fmt.Fprintf(&b, "📌 *Post:* %s\n", link)
	fmt.Fprintf(&b, "🏢 *Org:* %s\n", escapeMarkdown(orDefault(e.Organization, fallbackOrg)))
	fmt.Fprintf(&b, "🎓 *Edu:* %s\n", escapeMarkdown(orDefault(e.Education, fallbackEdu)))
	fmt.Fprintf(&b, "⏳ *Exp:* %s\n", escapeMarkdown(orDefault(e.Experience, fallbackExp)))
	fmt.Fprintf(&b, "💰 *Salary:* %s", escapeMarkdown(orDefault(e.Salary, fallbackSalary)))
	return b.String()
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// SendTestMessage sends a sample notification to verify the integration works.
func SendTestMessage(ctx context.Context, n model.Notifier) error {
	return n.Notify(ctx, model.Notification{
		Posting: model.Posting{
			Source: "test",
			Title:  "Test Notification - Integration Verified",
			Link:   "https://jobs.bdjobs.com/",
		},
		Enrichment: &model.Enrichment{
			Organization: "jobwatch",
			Education:    "Any",
			Experience:   "None",
		},
	})
}
