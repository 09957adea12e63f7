package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/amishk599/jobwatch/internal/model"
)

// DefaultMaxInputChars bounds the page text sent to the LLM.
const DefaultMaxInputChars = 8000

// Summarizer extracts structured fields from a posting's full text.
// A nil result with a nil error means enrichment is not configured.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (*model.Enrichment, error)
}

// LLMSummarizer implements Summarizer using an LLM.
type LLMSummarizer struct {
	provider LLMProvider
	tmpl     *template.Template
	maxChars int
	timeout  time.Duration
}

// NewLLMSummarizer creates a summarizer. maxChars <= 0 uses DefaultMaxInputChars;
// timeout <= 0 leaves the provider's own client timeout in charge.
func NewLLMSummarizer(provider LLMProvider, tmpl *template.Template, maxChars int, timeout time.Duration) *LLMSummarizer {
	if maxChars <= 0 {
		maxChars = DefaultMaxInputChars
	}
	return &LLMSummarizer{
		provider: provider,
		tmpl:     tmpl,
		maxChars: maxChars,
		timeout:  timeout,
	}
}

// Summarize truncates text, asks the LLM for the four summary fields and parses them.
// Exactly one provider call is made.
func (s *LLMSummarizer) Summarize(ctx context.Context, text string) (*model.Enrichment, error) {
	text = truncate(strings.TrimSpace(text), s.maxChars)
	if text == "" {
		return nil, fmt.Errorf("summarize: empty page text")
	}

	var promptBuf bytes.Buffer
	if err := s.tmpl.Execute(&promptBuf, struct{ Text string }{Text: text}); err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	raw, err := s.provider.Complete(ctx, promptBuf.String())
	if err != nil {
		return nil, fmt.Errorf("llm complete: %w", err)
	}

	e, err := parseSummary(raw)
	if err != nil {
		return nil, fmt.Errorf("parse summary: %w", err)
	}
	return e, nil
}

// rawSummary is the JSON shape returned by the LLM (matches jobSummarySchema).
type rawSummary struct {
	Org string `json:"org"`
	Edu string `json:"edu"`
	Exp string `json:"exp"`
	Sal string `json:"sal"`
}

// parseSummary deserializes the LLM response. Free models sometimes wrap the
// object in a markdown code fence, so that is stripped first.
func parseSummary(raw string) (*model.Enrichment, error) {
	raw = stripCodeFence(raw)

	var rs rawSummary
	if err := json.Unmarshal([]byte(raw), &rs); err != nil {
		return nil, fmt.Errorf("unmarshal summary JSON: %w", err)
	}

	return &model.Enrichment{
		Organization: strings.TrimSpace(rs.Org),
		Education:    strings.TrimSpace(rs.Edu),
		Experience:   strings.TrimSpace(rs.Exp),
		Salary:       strings.TrimSpace(rs.Sal),
	}, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// truncate cuts s to at most max runes.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
