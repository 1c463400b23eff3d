package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pfrederiksen/cheltenham-going/internal/going"
)

const (
	JockeyClubURL = "https://www.thejockeyclub.co.uk/cheltenham/owners-and-trainers/the-going/"
	RacingPostURL = "https://www.racingpost.com/racecards/38/cheltenham/"
	TurfTraxURL   = "https://www.turftrax.com/"

	UserAgent = "Mozilla/5.0 (compatible; CheltenhamTracker/1.0)"
	Timeout   = 10 * time.Second

	maxBodyBytes = 5 << 20
)

// ParseFunc extracts a going report from a page body. It must not fail:
// unrecognised pages yield a report with no courses.
type ParseFunc func(body string) going.Report

// Adapter fetches one going source and parses it
type Adapter struct {
	source    going.Source
	url       string
	parse     ParseFunc
	client    *http.Client
	userAgent string
}

// Option configures an Adapter
type Option func(*Adapter)

// WithTimeout bounds each fetch, including reading the body
func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) {
		a.client = &http.Client{Timeout: d}
	}
}

// WithUserAgent overrides the client identifier header
func WithUserAgent(ua string) Option {
	return func(a *Adapter) {
		if ua != "" {
			a.userAgent = ua
		}
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(a *Adapter) {
		a.client = c
	}
}

// New creates an adapter for a single source
func New(source going.Source, url string, parse ParseFunc, opts ...Option) *Adapter {
	a := &Adapter{
		source: source,
		url:    url,
		parse:  parse,
		client: &http.Client{
			Timeout: Timeout,
		},
		userAgent: UserAgent,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Sources lists the page URL of each adapter
type Sources struct {
	JockeyClub string
	RacingPost string
	TurfTrax   string
}

// DefaultSources returns the production source URLs
func DefaultSources() Sources {
	return Sources{
		JockeyClub: JockeyClubURL,
		RacingPost: RacingPostURL,
		TurfTrax:   TurfTraxURL,
	}
}

// Defaults builds the adapters in trust order: the racecourse authority
// first, then the racing-news racecard, then the measurement vendor.
func Defaults(src Sources, opts ...Option) []*Adapter {
	return []*Adapter{
		New(going.SourceJockeyClub, src.JockeyClub, ParseJockeyClub, opts...),
		New(going.SourceRacingPost, src.RacingPost, ParseRacingPost, opts...),
		New(going.SourceTurfTrax, src.TurfTrax, ParseTurfTrax, opts...),
	}
}

// Source returns the identifier of the adapter
func (a *Adapter) Source() going.Source {
	return a.source
}

// URL returns the page the adapter fetches
func (a *Adapter) URL() string {
	return a.url
}

// Fetch performs one GET against the source page and parses it.
// The returned error is non-nil only for fetch failures; in that case the
// report is empty.
func (a *Adapter) Fetch(ctx context.Context) (going.Report, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.url, nil)
	if err != nil {
		return going.Report{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", a.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := a.client.Do(req)
	if err != nil {
		return going.Report{}, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return going.Report{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return going.Report{}, fmt.Errorf("reading response: %w", err)
	}

	return a.parse(string(body)), nil
}
