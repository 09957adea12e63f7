package poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/amishk599/jobwatch/internal/adapter"
	"github.com/amishk599/jobwatch/internal/identity"
	"github.com/amishk599/jobwatch/internal/model"
)

// PageFetcher retrieves and parses a page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// DelayLimiter paces detail fetches per source.
type DelayLimiter interface {
	Wait(ctx context.Context, source string) error
}

// Source is one configured listing page and the extractor for its layout.
type Source struct {
	Name      string
	URL       string
	Extractor adapter.Extractor
}

// Summary reports what one run did.
type Summary struct {
	Sources        int
	FailedSources  int
	Candidates     int
	Matched        int
	New            int
	NotifyFailures int
}

// Poller owns the full scan pipeline:
// fetch listings → extract → filter → dedup → enrich → notify → save history.
type Poller struct {
	sources       []Source
	fetcher       PageFetcher
	filter        model.PostingFilter
	store         model.HistoryStore
	enricher      *Enricher
	notifier      model.Notifier
	limiter       DelayLimiter
	notifyTimeout time.Duration
	concurrency   int
	logger        *slog.Logger
}

// Options carries the tunables of a Poller.
type Options struct {
	NotifyTimeout time.Duration // per notification, default 10s
	Concurrency   int           // listing fetches in flight, default 2
}

// New creates a poller wired with all its dependencies.
func New(
	sources []Source,
	fetcher PageFetcher,
	filter model.PostingFilter,
	store model.HistoryStore,
	enricher *Enricher,
	notifier model.Notifier,
	limiter DelayLimiter,
	opts Options,
	logger *slog.Logger,
) *Poller {
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = 10 * time.Second
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 2
	}
	return &Poller{
		sources:       sources,
		fetcher:       fetcher,
		filter:        filter,
		store:         store,
		enricher:      enricher,
		notifier:      notifier,
		limiter:       limiter,
		notifyTimeout: opts.NotifyTimeout,
		concurrency:   opts.Concurrency,
		logger:        logger,
	}
}

type listing struct {
	doc *goquery.Document
	err error
}

// Run performs one scan over every source. Only history load and save
// failures are returned; source, enrichment and notify failures are logged.
func (p *Poller) Run(ctx context.Context) (Summary, error) {
	logger := p.logger.With("run", uuid.NewString())
	summary := Summary{Sources: len(p.sources)}

	history, err := p.store.Load(ctx)
	if err != nil {
		return summary, fmt.Errorf("loading history: %w", err)
	}

	listings := p.fetchListings(ctx)

	for i, src := range p.sources {
		if listings[i].err != nil {
			summary.FailedSources++
			logger.Warn("source failed", "source", src.Name, "url", src.URL, "error", listings[i].err)
			continue
		}
		p.processSource(ctx, logger, src, listings[i].doc, history, &summary)
	}

	if history.Changed() {
		if err := p.store.Save(ctx, history); err != nil {
			return summary, fmt.Errorf("saving history: %w", err)
		}
	}

	logger.Info("scan complete",
		"sources", summary.Sources,
		"failed", summary.FailedSources,
		"candidates", summary.Candidates,
		"matched", summary.Matched,
		"new", summary.New,
		"notify_failures", summary.NotifyFailures,
	)

	return summary, nil
}

// fetchListings fetches every listing page with bounded concurrency.
// Results are indexed by source position.
func (p *Poller) fetchListings(ctx context.Context) []listing {
	results := make([]listing, len(p.sources))

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, src := range p.sources {
		g.Go(func() error {
			doc, err := p.fetcher.Fetch(ctx, src.URL)
			results[i] = listing{doc: doc, err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (p *Poller) processSource(ctx context.Context, logger *slog.Logger, src Source, doc *goquery.Document, history *model.History, summary *Summary) {
	postings := src.Extractor.Extract(doc)
	summary.Candidates += len(postings)

	var matched, fresh int
	for _, posting := range postings {
		if !p.filter.Match(posting) {
			continue
		}
		matched++

		if !history.Add(identity.Of(posting.Link)) {
			continue
		}
		fresh++

		if err := p.limiter.Wait(ctx, src.Name); err != nil {
			logger.Warn("politeness wait interrupted", "source", src.Name, "error", err)
		}

		enrichment := p.enricher.Enrich(ctx, posting)
		if err := p.notify(ctx, model.Notification{Posting: posting, Enrichment: enrichment}); err != nil {
			summary.NotifyFailures++
			logger.Error("notification failed", "source", src.Name, "title", posting.Title, "url", posting.Link, "error", err)
		}
	}

	summary.Matched += matched
	summary.New += fresh

	logger.Info("scanned source",
		"source", src.Name,
		"candidates", len(postings),
		"matched", matched,
		"new", fresh,
	)
}

func (p *Poller) notify(ctx context.Context, n model.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, p.notifyTimeout)
	defer cancel()
	return p.notifier.Notify(ctx, n)
}
