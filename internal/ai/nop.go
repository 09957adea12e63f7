package ai

import (
	"context"

	"github.com/amishk599/jobwatch/internal/model"
)

// NopSummarizer is used when no summarizer credential is configured.
// It makes no LLM calls and always reports "no enrichment".
type NopSummarizer struct{}

// NewNopSummarizer returns a NopSummarizer.
func NewNopSummarizer() *NopSummarizer {
	return &NopSummarizer{}
}

// Summarize returns nil.
func (n *NopSummarizer) Summarize(_ context.Context, _ string) (*model.Enrichment, error) {
	return nil, nil
}
