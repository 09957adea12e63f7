package adapter

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/jobwatch/internal/identity"
	"github.com/amishk599/jobwatch/internal/model"
)

// CleanText collapses all runs of whitespace (NBSP included) into single spaces and trims.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// PageText returns the visible text of doc with scripts and styles removed.
func PageText(doc *goquery.Document) string {
	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	body = body.Clone()
	body.Find("script, style, noscript, template").Remove()

	var b strings.Builder
	body.Each(func(_ int, s *goquery.Selection) {
		s.Contents().Each(func(_ int, n *goquery.Selection) {
			writeText(&b, n)
		})
	})
	return CleanText(b.String())
}

// writeText appends the text of s, separating element boundaries with spaces
// so adjacent blocks do not run together.
func writeText(b *strings.Builder, s *goquery.Selection) {
	if goquery.NodeName(s) == "#text" {
		b.WriteString(s.Text())
		return
	}
	b.WriteByte(' ')
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		writeText(b, c)
	})
	b.WriteByte(' ')
}

// buildPosting resolves the anchor href and pairs it with title.
// It reports false when either is missing.
func buildPosting(opts Options, anchor *goquery.Selection, title string) (model.Posting, bool) {
	if title == "" {
		return model.Posting{}, false
	}
	href, ok := anchor.Attr("href")
	if !ok {
		return model.Posting{}, false
	}
	link, err := identity.Resolve(opts.Base, href)
	if err != nil {
		return model.Posting{}, false
	}
	return model.Posting{Source: opts.Source, Title: title, Link: link}, true
}
