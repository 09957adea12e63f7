package adapter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/jobwatch/internal/model"
)

const (
	defaultCardSelector  = "div"
	defaultCardPattern   = `(norm-jobs-wrapper|sout-jobs-wrapper)`
	defaultTitleSelector = "div.job-title-text a"
)

// CardGridAdapter extracts postings from pages that render each job as a card
// whose class attribute matches a pattern, with the title link nested inside.
type CardGridAdapter struct {
	opts    Options
	pattern *regexp.Regexp
}

// NewCardGridAdapter compiles the card pattern and fills in defaults.
func NewCardGridAdapter(opts Options) (*CardGridAdapter, error) {
	if opts.CardSelector == "" {
		opts.CardSelector = defaultCardSelector
	}
	if opts.CardPattern == "" {
		opts.CardPattern = defaultCardPattern
	}
	if opts.TitleSelector == "" {
		opts.TitleSelector = defaultTitleSelector
	}
	re, err := regexp.Compile(opts.CardPattern)
	if err != nil {
		return nil, fmt.Errorf("card-grid %s: card_pattern: %w", opts.Source, err)
	}
	return &CardGridAdapter{opts: opts, pattern: re}, nil
}

// Extract returns one posting per well-formed card, in page order.
func (a *CardGridAdapter) Extract(doc *goquery.Document) []model.Posting {
	seen := make(map[string]bool)
	var postings []model.Posting

	doc.Find(a.opts.CardSelector).Each(func(_ int, card *goquery.Selection) {
		if !a.isCard(card) {
			return
		}
		anchor := card.Find(a.opts.TitleSelector).First()
		if anchor.Length() == 0 {
			return
		}
		p, ok := buildPosting(a.opts, anchor, CleanText(anchor.Text()))
		if !ok || seen[p.Link] {
			return
		}
		seen[p.Link] = true
		postings = append(postings, p)
	})

	return postings
}

func (a *CardGridAdapter) isCard(s *goquery.Selection) bool {
	class, ok := s.Attr("class")
	if !ok {
		return false
	}
	for _, token := range strings.Fields(class) {
		if a.pattern.MatchString(token) {
			return true
		}
	}
	return false
}
