package poller

import (
	"context"
	"log/slog"

	"github.com/amishk599/jobwatch/internal/adapter"
	"github.com/amishk599/jobwatch/internal/ai"
	"github.com/amishk599/jobwatch/internal/model"
)

// Enricher fetches a posting's detail page and summarizes its text.
type Enricher struct {
	fetcher    PageFetcher
	summarizer ai.Summarizer
	logger     *slog.Logger
}

// NewEnricher creates an Enricher. fetcher should carry the detail page timeout.
func NewEnricher(fetcher PageFetcher, summarizer ai.Summarizer, logger *slog.Logger) *Enricher {
	return &Enricher{fetcher: fetcher, summarizer: summarizer, logger: logger}
}

// Enrich returns structured fields for the posting, or nil when the detail
// page or the summarizer is unavailable. It makes one attempt.
func (e *Enricher) Enrich(ctx context.Context, p model.Posting) *model.Enrichment {
	if _, ok := e.summarizer.(*ai.NopSummarizer); ok {
		return nil
	}

	doc, err := e.fetcher.Fetch(ctx, p.Link)
	if err != nil {
		e.logger.Warn("detail fetch failed", "source", p.Source, "url", p.Link, "error", err)
		return nil
	}

	text := adapter.PageText(doc)
	if text == "" {
		e.logger.Warn("detail page has no text", "source", p.Source, "url", p.Link)
		return nil
	}

	enrichment, err := e.summarizer.Summarize(ctx, text)
	if err != nil {
		e.logger.Warn("summarization failed", "source", p.Source, "title", p.Title, "error", err)
		return nil
	}
	return enrichment
}
