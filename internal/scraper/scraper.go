package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/nao1215/fareplot/internal/model"
)

// debugTimestampLayout names debug artifacts, e.g. "timeout-20260701-060000".
const debugTimestampLayout = "20060102-150405"

// Result is the outcome of one price lookup.
type Result struct {
	// Price is the price text, e.g. "£123.45". Empty unless Status is ok.
	Price string

	// Currency is the currency the search requested.
	Currency string

	// Status is the lookup outcome.
	Status model.Status

	// Card is the flight card the price was read from, if any.
	Card model.FlightCard

	// Notes carries diagnostics for failed lookups.
	Notes string

	// DebugFile is the saved page of a failed lookup, if any.
	DebugFile string
}

// Apply copies the result into obs. Flight times found on the card refine
// the departure and arrival dates, e.g. "2026-08-22T06:30".
func (r Result) Apply(obs *model.Observation) {
	obs.Price = r.Price
	obs.Currency = r.Currency
	obs.Status = r.Status
	obs.Notes = r.Notes

	day := obs.DepartureDay()
	if day == "" {
		return
	}
	if len(r.Card.Times) > 0 {
		obs.DepartureDate = day + "T" + r.Card.Times[0]
	}
	if len(r.Card.Times) > 1 {
		obs.ArrivalDate = day + "T" + r.Card.Times[1]
	}
}

// Scraper loads search pages and extracts prices.
type Scraper struct {
	client      *http.Client
	baseURL     string
	userAgent   string
	timeout     time.Duration
	maxBodySize int64
	debugDir    string
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithBaseURL overrides the booking site root. Tests point it at an
// httptest server.
func WithBaseURL(base string) Option {
	return func(s *Scraper) {
		s.baseURL = base
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *Scraper) {
		s.userAgent = ua
	}
}

// WithPageTimeout bounds loading a single search page.
func WithPageTimeout(d time.Duration) Option {
	return func(s *Scraper) {
		s.timeout = d
	}
}

// WithDebugDir saves the page of every failed lookup under dir.
func WithDebugDir(dir string) Option {
	return func(s *Scraper) {
		s.debugDir = dir
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scraper) {
		s.logger = logger
	}
}

// WithMaxBodySize limits how much of a response is read.
func WithMaxBodySize(n int64) Option {
	return func(s *Scraper) {
		s.maxBodySize = n
	}
}

// New creates a Scraper that sends requests with client.
func New(client *http.Client, opts ...Option) *Scraper {
	s := &Scraper{
		client:      client,
		baseURL:     model.DefaultBaseURL,
		userAgent:   DefaultUserAgent,
		timeout:     40 * time.Second,
		maxBodySize: 10 * 1024 * 1024,
		logger:      slog.New(slog.DiscardHandler),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchReturnPrice looks up the return price for q.
//
// The returned error is non-nil only when ctx itself is done; every other
// failure is reported through Result.Status.
func (s *Scraper) FetchReturnPrice(ctx context.Context, q model.SearchQuery) (Result, error) {
	result := Result{Currency: q.Currency}
	searchURL := q.SearchURLWithBase(s.baseURL)
	s.logger.Info("fetching search page", "route", q.RouteID(), "depart", q.DepartDate, "url", searchURL)

	pageCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	body, err := s.fetch(pageCtx, searchURL)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		switch {
		case isTimeout(err):
			s.logger.Warn("timeout while loading the search page", "route", q.RouteID())
			result.Status = model.StatusTimeout
		default:
			s.logger.Warn("failed to load the search page", "route", q.RouteID(), "error", err)
			result.Status = model.StatusFetchError
			result.Notes = err.Error()
		}
		result.DebugFile = s.saveDebug(q, result.Status, body)
		return result, nil
	}

	parsed, err := ParsePage(bytes.NewReader(body))
	if err != nil {
		result.Status = model.StatusFetchError
		result.Notes = fmt.Sprintf("parse: %v", err)
		result.DebugFile = s.saveDebug(q, result.Status, body)
		return result, nil
	}

	card, ok := parsed.FirstPriced()
	switch {
	case ok:
		result.Card = card
		result.Price = card.Price
	case parsed.FallbackPrice != "":
		result.Price = parsed.FallbackPrice
		result.Notes = "price found outside flight cards"
	default:
		s.logger.Warn("no price on the search page", "route", q.RouteID(), "cards", len(parsed.Cards))
		result.Status = model.StatusMissingPrice
		result.DebugFile = s.saveDebug(q, result.Status, body)
		return result, nil
	}

	result.Status = model.StatusOK
	s.logger.Info("found price", "route", q.RouteID(), "price", result.Price)
	return result, nil
}

// fetch returns the response body. For error statuses the body is returned
// alongside the error so it can be saved for debugging.
func (s *Scraper) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-GB,en;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodySize))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return body, fmt.Errorf("%w: HTTP %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return body, nil
}

// saveDebug writes body to the debug directory and returns the file path.
// Failures are logged and otherwise ignored.
func (s *Scraper) saveDebug(q model.SearchQuery, status model.Status, body []byte) string {
	if s.debugDir == "" {
		return ""
	}
	if err := os.MkdirAll(s.debugDir, 0o750); err != nil {
		s.logger.Error("failed to create debug directory", "dir", s.debugDir, "error", err)
		return ""
	}

	label := model.Slugify(q.Label()) + "-" + status.String()
	name := label + "-" + s.now().UTC().Format(debugTimestampLayout) + ".html"
	path := filepath.Join(s.debugDir, name)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		s.logger.Error("failed to write debug artifact", "path", path, "error", err)
		return ""
	}
	s.logger.Info("saved debug artifact", "path", path)
	return path
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
