package poller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/jobwatch/internal/adapter"
	"github.com/amishk599/jobwatch/internal/ai"
	"github.com/amishk599/jobwatch/internal/filter"
	"github.com/amishk599/jobwatch/internal/identity"
	"github.com/amishk599/jobwatch/internal/model"
	"github.com/amishk599/jobwatch/internal/ratelimit"
	"github.com/amishk599/jobwatch/internal/store"
)

// --- Fakes ---

// fakeFetcher serves canned HTML by URL and records every request.
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	errs  map[string]error
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, u string) (*goquery.Document, error) {
	f.mu.Lock()
	f.calls = append(f.calls, u)
	f.mu.Unlock()

	if err := f.errs[u]; err != nil {
		return nil, err
	}
	html, ok := f.pages[u]
	if !ok {
		return nil, errors.New("not found: " + u)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// memStore is an in-memory history store.
type memStore struct {
	ids     []string
	loadErr error
	saveErr error
	saves   int
	saved   []string
}

func (s *memStore) Load(_ context.Context) (*model.History, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return model.NewHistory(s.ids...), nil
}

func (s *memStore) Save(_ context.Context, h *model.History) error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = h.IDs()
	s.ids = s.saved
	return nil
}

// recordingNotifier records notifications and optionally fails.
type recordingNotifier struct {
	sent []model.Notification
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, note model.Notification) error {
	n.sent = append(n.sent, note)
	return n.err
}

// fakeSummarizer returns a fixed result and records its input.
type fakeSummarizer struct {
	result *model.Enrichment
	err    error
	texts  []string
}

func (s *fakeSummarizer) Summarize(_ context.Context, text string) (*model.Enrichment, error) {
	s.texts = append(s.texts, text)
	return s.result, s.err
}

// --- Helpers ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func linkListSource(t *testing.T, name, listingURL string) Source {
	t.Helper()
	base, err := url.Parse(listingURL)
	if err != nil {
		t.Fatal(err)
	}
	ex, err := adapter.New(adapter.LayoutLinkList, adapter.Options{Source: name, Base: base})
	if err != nil {
		t.Fatal(err)
	}
	return Source{Name: name, URL: listingURL, Extractor: ex}
}

func listingPage(links map[string]string) string {
	var b strings.Builder
	b.WriteString("<html><body><ul>")
	for href, title := range links {
		b.WriteString(`<li><a data-job-link href="` + href + `">` + title + `</a></li>`)
	}
	b.WriteString("</ul></body></html>")
	return b.String()
}

func newTestPoller(sources []Source, fetcher *fakeFetcher, hs model.HistoryStore, sum *fakeSummarizer, n model.Notifier) *Poller {
	return New(
		sources,
		fetcher,
		filter.NewKeywordFilter([]string{"Consultant", "Climate"}, nil),
		hs,
		NewEnricher(fetcher, sum, discardLogger()),
		n,
		ratelimit.NewSourceLimiter(0),
		Options{},
		discardLogger(),
	)
}

// --- Tests ---

func TestRun_EndToEndAndRerun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.txt")
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://source/": listingPage(map[string]string{"/jobs/123": "Senior National Consultant"}),
	}}
	sources := []Source{linkListSource(t, "source", "https://source/")}
	sum := &fakeSummarizer{err: errors.New("unavailable")}

	fs, err := store.OpenFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	n := &recordingNotifier{}
	summary, err := newTestPoller(sources, fetcher, fs, sum, n).Run(context.Background())
	fs.Close()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(n.sent) != 1 {
		t.Fatalf("notifications = %d, want 1", len(n.sent))
	}
	if n.sent[0].Posting.Link != "https://source/jobs/123" {
		t.Errorf("Link = %q", n.sent[0].Posting.Link)
	}
	if summary.New != 1 || summary.Matched != 1 || summary.Candidates != 1 {
		t.Errorf("Summary = %+v", summary)
	}

	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := identity.Of("https://source/jobs/123") + "\n"
	if string(first) != want {
		t.Errorf("history = %q, want %q", first, want)
	}
	infoBefore, _ := os.Stat(path)

	// Second run against unchanged sources.
	fs, err = store.OpenFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	n2 := &recordingNotifier{}
	summary, err = newTestPoller(sources, fetcher, fs, sum, n2).Run(context.Background())
	fs.Close()
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if len(n2.sent) != 0 {
		t.Errorf("second run notifications = %d, want 0", len(n2.sent))
	}
	if summary.New != 0 {
		t.Errorf("second run New = %d, want 0", summary.New)
	}

	second, _ := os.ReadFile(path)
	if string(second) != string(first) {
		t.Errorf("history changed on re-run: %q", second)
	}
	infoAfter, _ := os.Stat(path)
	if !infoAfter.ModTime().Equal(infoBefore.ModTime()) {
		t.Error("history file rewritten although nothing changed")
	}
}

func TestRun_NothingNewSkipsSave(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://source/": listingPage(map[string]string{"/jobs/1": "Climate Specialist"}),
	}}
	st := &memStore{ids: []string{identity.Of("https://source/jobs/1")}}
	n := &recordingNotifier{}

	_, err := newTestPoller([]Source{linkListSource(t, "source", "https://source/")}, fetcher, st, &fakeSummarizer{}, n).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(n.sent) != 0 {
		t.Errorf("notifications = %d, want 0", len(n.sent))
	}
	if st.saves != 0 {
		t.Errorf("saves = %d, want 0", st.saves)
	}
}

func TestRun_PartialSourceFailure(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: map[string]string{
			"https://b.example/": listingPage(map[string]string{"/jobs/9": "Climate Consultant"}),
		},
		errs: map[string]error{"https://a.example/": errors.New("connection refused")},
	}
	sources := []Source{
		linkListSource(t, "a", "https://a.example/"),
		linkListSource(t, "b", "https://b.example/"),
	}
	st := &memStore{}
	n := &recordingNotifier{}

	summary, err := newTestPoller(sources, fetcher, st, &fakeSummarizer{}, n).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.FailedSources != 1 || summary.Sources != 2 {
		t.Errorf("Summary = %+v", summary)
	}
	if len(n.sent) != 1 || n.sent[0].Posting.Source != "b" {
		t.Fatalf("notifications = %+v, want one from b", n.sent)
	}
	if len(st.saved) != 1 || st.saved[0] != identity.Of("https://b.example/jobs/9") {
		t.Errorf("saved = %v", st.saved)
	}
}

func TestRun_KeepsSourceOrder(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{}}
	var sources []Source
	names := []string{"s1", "s2", "s3", "s4"}
	for _, name := range names {
		u := "https://" + name + ".example/"
		fetcher.pages[u] = listingPage(map[string]string{"/jobs/1": name + " Consultant"})
		sources = append(sources, linkListSource(t, name, u))
	}
	n := &recordingNotifier{}

	if _, err := newTestPoller(sources, fetcher, &memStore{}, &fakeSummarizer{}, n).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(n.sent) != len(names) {
		t.Fatalf("notifications = %d, want %d", len(n.sent), len(names))
	}
	for i, name := range names {
		if n.sent[i].Posting.Source != name {
			t.Errorf("notification %d from %s, want %s", i, n.sent[i].Posting.Source, name)
		}
	}
}

func TestRun_DuplicateAcrossSourcesNotifiedOnce(t *testing.T) {
	page := `<a data-job-link href="https://shared.example/jobs/5">Climate Consultant</a>`
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://a.example/": page,
		"https://b.example/": page,
	}}
	sources := []Source{
		linkListSource(t, "a", "https://a.example/"),
		linkListSource(t, "b", "https://b.example/"),
	}
	n := &recordingNotifier{}

	summary, err := newTestPoller(sources, fetcher, &memStore{}, &fakeSummarizer{}, n).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(n.sent) != 1 {
		t.Errorf("notifications = %d, want 1", len(n.sent))
	}
	if summary.Matched != 2 || summary.New != 1 {
		t.Errorf("Summary = %+v", summary)
	}
}

func TestRun_EnrichmentDegradesToTitleOnly(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://source/": listingPage(map[string]string{"/jobs/7": "Climate Consultant"}),
		// detail page missing: fetch fails
	}}
	st := &memStore{}
	n := &recordingNotifier{}

	_, err := newTestPoller([]Source{linkListSource(t, "source", "https://source/")}, fetcher, st, &fakeSummarizer{}, n).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(n.sent) != 1 {
		t.Fatalf("notifications = %d, want 1", len(n.sent))
	}
	if n.sent[0].Enrichment != nil {
		t.Errorf("Enrichment = %+v, want nil", n.sent[0].Enrichment)
	}
	if len(st.saved) != 1 {
		t.Errorf("saved = %v, want posting marked seen", st.saved)
	}
}

func TestRun_EnrichesFromDetailPage(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://source/":       listingPage(map[string]string{"/jobs/7": "Climate Consultant"}),
		"https://source/jobs/7": `<html><head><script>var x = 1;</script></head><body><h1>Climate Consultant</h1><p>UNDP   Dhaka</p></body></html>`,
	}}
	sum := &fakeSummarizer{result: &model.Enrichment{Organization: "UNDP", Salary: "Negotiable"}}
	n := &recordingNotifier{}

	_, err := newTestPoller([]Source{linkListSource(t, "source", "https://source/")}, fetcher, &memStore{}, sum, n).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(sum.texts) != 1 {
		t.Fatalf("summarizer calls = %d, want 1", len(sum.texts))
	}
	if strings.Contains(sum.texts[0], "var x") {
		t.Errorf("page text includes script: %q", sum.texts[0])
	}
	if !strings.Contains(sum.texts[0], "UNDP Dhaka") {
		t.Errorf("page text = %q, want collapsed body text", sum.texts[0])
	}
	if len(n.sent) != 1 || n.sent[0].Enrichment == nil || n.sent[0].Enrichment.Organization != "UNDP" {
		t.Errorf("notifications = %+v", n.sent)
	}
}

func TestRun_NotifyFailureStillMarksSeen(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://source/": listingPage(map[string]string{"/jobs/1": "Climate Consultant"}),
	}}
	st := &memStore{}
	n := &recordingNotifier{err: errors.New("telegram down")}

	summary, err := newTestPoller([]Source{linkListSource(t, "source", "https://source/")}, fetcher, st, &fakeSummarizer{}, n).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.NotifyFailures != 1 {
		t.Errorf("NotifyFailures = %d, want 1", summary.NotifyFailures)
	}
	if len(st.saved) != 1 || st.saved[0] != identity.Of("https://source/jobs/1") {
		t.Errorf("saved = %v", st.saved)
	}
}

func TestRun_EmptyKeywordsMatchNothing(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://source/": listingPage(map[string]string{"/jobs/1": "Climate Consultant"}),
	}}
	st := &memStore{}
	n := &recordingNotifier{}
	p := New(
		[]Source{linkListSource(t, "source", "https://source/")},
		fetcher,
		filter.NewKeywordFilter(nil, nil),
		st,
		NewEnricher(fetcher, &fakeSummarizer{}, discardLogger()),
		n,
		ratelimit.NewSourceLimiter(0),
		Options{},
		discardLogger(),
	)

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(n.sent) != 0 || st.saves != 0 {
		t.Errorf("sent = %d, saves = %d; want 0, 0", len(n.sent), st.saves)
	}
	if summary.Candidates != 1 || summary.Matched != 0 {
		t.Errorf("Summary = %+v", summary)
	}
}

func TestRun_HistoryErrorsAreFatal(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://source/": listingPage(map[string]string{"/jobs/1": "Climate Consultant"}),
	}}
	sources := []Source{linkListSource(t, "source", "https://source/")}

	t.Run("load", func(t *testing.T) {
		loadErr := errors.New("disk gone")
		n := &recordingNotifier{}
		_, err := newTestPoller(sources, fetcher, &memStore{loadErr: loadErr}, &fakeSummarizer{}, n).Run(context.Background())
		if !errors.Is(err, loadErr) {
			t.Fatalf("err = %v, want wrapped load error", err)
		}
		if len(n.sent) != 0 {
			t.Errorf("notifications = %d, want 0", len(n.sent))
		}
	})

	t.Run("save", func(t *testing.T) {
		saveErr := errors.New("read-only")
		_, err := newTestPoller(sources, fetcher, &memStore{saveErr: saveErr}, &fakeSummarizer{}, &recordingNotifier{}).Run(context.Background())
		if !errors.Is(err, saveErr) {
			t.Fatalf("err = %v, want wrapped save error", err)
		}
	})
}

func TestEnricher_SkipsFetchWithoutSummarizer(t *testing.T) {
	fetcher := &fakeFetcher{}
	e := NewEnricher(fetcher, ai.NewNopSummarizer(), discardLogger())

	got := e.Enrich(context.Background(), model.Posting{Title: "x", Link: "https://source/jobs/1"})
	if got != nil {
		t.Errorf("Enrich = %+v, want nil", got)
	}
	if len(fetcher.calls) != 0 {
		t.Errorf("fetch calls = %v, want none", fetcher.calls)
	}
}
