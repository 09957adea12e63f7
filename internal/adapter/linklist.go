package adapter

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/jobwatch/internal/model"
)

const defaultLinkSelector = "a[data-job-link]"

// LinkListAdapter extracts postings from flat lists of tagged anchors.
type LinkListAdapter struct {
	opts Options
}

// NewLinkListAdapter fills in defaults for the anchor selector.
func NewLinkListAdapter(opts Options) (*LinkListAdapter, error) {
	if opts.LinkSelector == "" {
		opts.LinkSelector = defaultLinkSelector
	}
	return &LinkListAdapter{opts: opts}, nil
}

// Extract returns one posting per tagged anchor with a title and href.
// The anchor's title attribute is used when its text is empty.
func (a *LinkListAdapter) Extract(doc *goquery.Document) []model.Posting {
	seen := make(map[string]bool)
	var postings []model.Posting

	doc.Find(a.opts.LinkSelector).Each(func(_ int, anchor *goquery.Selection) {
		title := CleanText(anchor.Text())
		if title == "" {
			title = CleanText(anchor.AttrOr("title", ""))
		}
		p, ok := buildPosting(a.opts, anchor, title)
		if !ok || seen[p.Link] {
			return
		}
		seen[p.Link] = true
		postings = append(postings, p)
	})

	return postings
}
