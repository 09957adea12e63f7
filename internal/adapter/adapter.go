package adapter

import (
	"fmt"
	"net/url"
	"sort"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/jobwatch/internal/model"
)

// Extractor turns a fetched listing page into candidate postings.
// Malformed cards are skipped; Extract never fails the whole page.
type Extractor interface {
	Extract(doc *goquery.Document) []model.Posting
}

// Options carries the per-source settings a layout may use.
type Options struct {
	Source        string   // source name stamped on each posting
	Base          *url.URL // base for resolving relative hrefs
	CardSelector  string   // card-grid: element selector for candidate cards
	CardPattern   string   // card-grid: regexp matched against each class token
	TitleSelector string   // card-grid: title anchor inside a card
	LinkSelector  string   // link-list: anchors that mark a posting
}

// constructor builds an Extractor for one layout.
type constructor func(opts Options) (Extractor, error)

// Layout names accepted in config.
const (
	LayoutCardGrid = "card-grid"
	LayoutLinkList = "link-list"
)

var layouts = map[string]constructor{
	LayoutCardGrid: func(opts Options) (Extractor, error) { return NewCardGridAdapter(opts) },
	LayoutLinkList: func(opts Options) (Extractor, error) { return NewLinkListAdapter(opts) },
}

// New builds the Extractor registered under layout.
func New(layout string, opts Options) (Extractor, error) {
	build, ok := layouts[layout]
	if !ok {
		return nil, fmt.Errorf("unknown layout %q (known: %v)", layout, Layouts())
	}
	if opts.Base == nil {
		return nil, fmt.Errorf("layout %s for %s: base url is required", layout, opts.Source)
	}
	return build(opts)
}

// Layouts returns the registered layout names, sorted.
func Layouts() []string {
	names := make([]string, 0, len(layouts))
	for name := range layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
