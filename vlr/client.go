// Package vlr scrapes events, matches, and player stat tables from vlr.gg.
// The site has no API; everything comes from HTML pages whose structure is
// matched by CSS class selectors. Selectors live next to the extraction code
// in extract.go.
package vlr

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/itbasis/go-clock"

	"github.com/mattwold/vct-fantasy/model"
)

const BaseURL = "https://www.vlr.gg"

// Browser-like headers. Plain Go user agents get served a challenge page.
var requestHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/122.0.0.0 Safari/537.36",
	"Accept-Language": "en-US,en;q=0.9",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Referer":         "https://www.vlr.gg/",
}

// MatchResult is everything one match page yields: the match record, the
// per-player stat rows (empty for upcoming matches), and zero-stat player
// stubs extracted from profile links when no stat rows exist yet.
type MatchResult struct {
	Match   model.Match
	Players []model.MatchStats
	Stubs   []model.Player
}

type Client interface {
	// DiscoverMatchURLs returns the sorted match page URLs for an event.
	// Zero results is a valid outcome, not an error.
	DiscoverMatchURLs(ctx context.Context, eventURL string) ([]string, error)

	// ScrapeMatch fetches and parses one match page.
	ScrapeMatch(ctx context.Context, matchURL string, tournamentID int64, sourceRegion string) (*MatchResult, error)

	// EventStatsStubs builds zero-stat player stubs from the event stats
	// leaderboard, so players are draftable before any match completes.
	EventStatsStubs(ctx context.Context, eventURL string, tournamentID int64) ([]model.Player, error)

	// UpcomingMatches lists not-yet-played matches from the event listing.
	UpcomingMatches(ctx context.Context, eventURL string, tournamentID int64) ([]model.Match, error)
}

type client struct {
	baseURL    string
	httpClient *http.Client
	clock      clock.Clock
}

func New(c clock.Clock) (Client, error) {
	return &client{
		baseURL: BaseURL,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		clock: c,
	}, nil
}

// NewForTest points the client at a fake server. Tests should pass a mock
// clock so the retry backoff doesn't actually sleep.
func NewForTest(url string, c clock.Clock) Client {
	return &client{
		baseURL: url,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		clock: c,
	}
}

const fetchRetries = 3

// get fetches a page and parses it, retrying transient failures with
// exponential backoff (1s, 2s, 4s).
func (c *client) get(ctx context.Context, url string) (*goquery.Document, error) {
	var lastErr error
	for attempt := 0; attempt < fetchRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-c.clock.After(time.Duration(1<<(attempt-1)) * time.Second):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("error creating http request: %w", err)
		}
		for k, v := range requestHeaders {
			req.Header.Set(k, v)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("error sending http request: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
			continue
		}

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("error parsing response: %w", err)
			continue
		}
		return doc, nil
	}
	return nil, fmt.Errorf("fetching %s: %w", url, lastErr)
}

var eventURLPattern = regexp.MustCompile(`/event(?:/(?:matches|stats|results))?/(\d+)/?([^/?#]*)`)

// ParseEventURL validates an event URL and returns its numeric id and slug.
// The slug may be empty.
func ParseEventURL(eventURL string) (string, string, error) {
	return eventIDAndSlug(eventURL)
}

// eventIDAndSlug pulls the numeric event id and optional slug out of any
// vlr.gg event URL form (/event/N, /event/matches/N/slug, ...).
func eventIDAndSlug(eventURL string) (string, string, error) {
	m := eventURLPattern.FindStringSubmatch(eventURL)
	if m == nil {
		return "", "", fmt.Errorf("no event id in url %q", eventURL)
	}
	return m[1], m[2], nil
}

// safeFloat parses stat cell text, tolerating %, +, unicode minus, and
// empty/placeholder values. Unparseable text reads as 0.
func safeFloat(text string) float64 {
	text = strings.TrimSpace(text)
	text = strings.NewReplacer("%", "", "+", "", "−", "-").Replace(text)
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0
	}
	return v
}

func safeInt(text string) int {
	return int(safeFloat(text))
}
