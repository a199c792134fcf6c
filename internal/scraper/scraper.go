package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/motogp-ics/internal/config"
	"github.com/pfrederiksen/motogp-ics/internal/event"
	"github.com/pfrederiksen/motogp-ics/internal/logger"
	"github.com/pfrederiksen/motogp-ics/internal/schedule"
)

// FetchError reports a page that could not be fetched or parsed.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: unexpected status code %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Scraper fetches the calendar listing and detail pages.
type Scraper struct {
	client    *http.Client
	url       string
	userAgent string
	sel       config.Selectors
}

// New creates a Scraper from cfg. Each request is bounded by cfg.Timeout.
func New(cfg *config.Config) *Scraper {
	return &Scraper{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		url:       cfg.CalendarURL,
		userAgent: cfg.UserAgent,
		sel:       cfg.Selectors,
	}
}

// FetchEntries fetches the calendar page and returns its entries in page
// order.
func (s *Scraper) FetchEntries(ctx context.Context) ([]event.Entry, error) {
	start := time.Now()
	defer func() { logger.RecordTiming("fetch.calendar", time.Since(start)) }()

	doc, err := s.fetchDocument(ctx, s.url)
	if err != nil {
		return nil, err
	}

	entries := s.parseEntries(doc, s.url)
	logger.Debug("Parsed calendar", logger.Fields{"url": s.url, "entries": len(entries)})

	return entries, nil
}

// FetchSchedule fetches a detail page and returns every row of its
// schedule table, unfiltered.
func (s *Scraper) FetchSchedule(ctx context.Context, pageURL string) ([]schedule.Row, error) {
	start := time.Now()
	defer func() { logger.RecordTiming("fetch.schedule", time.Since(start)) }()

	doc, err := s.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	rows := s.parseSchedule(doc)
	logger.Debug("Parsed schedule", logger.Fields{"url": pageURL, "rows": len(rows)})

	return rows, nil
}

func (s *Scraper) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: fmt.Errorf("parsing HTML: %w", err)}
	}

	return doc, nil
}

// parseEntries extracts event blocks from the calendar listing. The first
// location span is the venue and the second is the country.
func (s *Scraper) parseEntries(doc *goquery.Document, baseURL string) []event.Entry {
	entries := make([]event.Entry, 0)

	doc.Find(s.sel.Entry).Each(func(i int, block *goquery.Selection) {
		link := block.Find(s.sel.Title)
		href, _ := link.First().Attr("href")
		location := block.Find(s.sel.Location)

		entries = append(entries, event.Entry{
			Title:   squash(link.Text()),
			Venue:   squash(location.Eq(0).Text()),
			Country: squash(location.Eq(1).Text()),
			URL:     resolveURL(baseURL, href),
		})
	})

	return entries
}

// parseSchedule extracts every row of a detail page's schedule table.
func (s *Scraper) parseSchedule(doc *goquery.Document) []schedule.Row {
	rows := make([]schedule.Row, 0)

	doc.Find(s.sel.ScheduleRow).Each(func(i int, row *goquery.Selection) {
		start, _ := row.Find(s.sel.Time).Eq(0).Attr(s.sel.TimeAttr)

		rows = append(rows, schedule.Row{
			Tier:     squash(row.Find(s.sel.Tier).Text()),
			Category: squash(row.Find(s.sel.Cell).Eq(s.sel.CategoryCell).Text()),
			Start:    strings.TrimSpace(start),
		})
	})

	return rows
}

// squash trims text and collapses inner whitespace runs to single spaces.
func squash(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// resolveURL makes href absolute against base. Unparseable input is
// returned unchanged and will fail when fetched.
func resolveURL(base, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref.String()
	}
	return b.ResolveReference(ref).String()
}
