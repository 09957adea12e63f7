package filter

import (
	"strings"

	"github.com/amishk599/jobwatch/internal/model"
)

// KeywordFilter matches postings whose title contains any of the keywords.
// Matching is case-insensitive. An empty keyword list matches nothing;
// a title containing any exclude keyword never matches.
type KeywordFilter struct {
	keywords []string
	excludes []string
}

// NewKeywordFilter returns a filter over the given keywords and exclude keywords.
// Blank entries are dropped.
func NewKeywordFilter(keywords []string, excludeKeywords []string) *KeywordFilter {
	return &KeywordFilter{
		keywords: lowerAll(keywords),
		excludes: lowerAll(excludeKeywords),
	}
}

// Match reports whether p's title contains any keyword and no exclude keyword.
func (f *KeywordFilter) Match(p model.Posting) bool {
	title := strings.ToLower(p.Title)

	for _, ex := range f.excludes {
		if strings.Contains(title, ex) {
			return false
		}
	}

	for _, kw := range f.keywords {
		if strings.Contains(title, kw) {
			return true
		}
	}
	return false
}

// Empty reports whether the filter has no keywords and so rejects everything.
func (f *KeywordFilter) Empty() bool { return len(f.keywords) == 0 }

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
