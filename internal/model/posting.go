package model

import "context"

// Posting is one job listing extracted from a source page.
type Posting struct {
	Source string // configured source name
	Title  string // whitespace-collapsed card title
	Link   string // absolute URL, resolved against the source base
}

// Enrichment holds the structured fields summarized from a posting's detail page.
// Any field may be empty when the summarizer could not find it.
type Enrichment struct {
	Organization string
	Education    string
	Experience   string
	Salary       string
}

// Notification is what a Notifier receives for each newly seen posting.
// Enrichment is nil when the detail fetch or the summarizer failed or is disabled.
type Notification struct {
	Posting    Posting
	Enrichment *Enrichment
}

// Notifier delivers a single notification. Delivery is best effort; callers
// log the error and move on.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// PostingFilter decides whether a posting matches the configured keywords.
type PostingFilter interface {
	Match(p Posting) bool
}

// HistoryStore loads and persists the set of already processed posting IDs.
type HistoryStore interface {
	Load(ctx context.Context) (*History, error)
	Save(ctx context.Context, h *History) error
}
