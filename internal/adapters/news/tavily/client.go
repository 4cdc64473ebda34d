// Package tavily provides a resilient Tavily search client for the enrich
// pipeline
package tavily

import (
	"bytes"
	"context"
	json "encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	perr "newshound/internal/platform/errors"
	"newshound/internal/platform/logger"
	ptime "newshound/internal/platform/time"
	"newshound/internal/services/enrich/domain"
)

const (
	baseURLDefault   = "https://api.tavily.com"
	defaultTimeout   = 30 * time.Second
	defaultMaxRetry  = 3
	defaultRetryBase = 500 * time.Millisecond
	defaultRPS       = 1.0

	// searchDepth is fixed: advanced returns scraped page content, which the
	// merge stage extracts from. Basic returns snippets only
	searchDepth = "advanced"
)

// Options is read once at construction, zero fields take the defaults
// above
type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration

	// transport-level retries, the search ladder above never sees them
	MaxRetries int
	RetryBase  time.Duration

	// RPS and Burst cap outbound calls across all workers sharing this client
	RPS   float64
	Burst int
}

// Client is a minimal Tavily search client with client-side rate limiting
type Client struct {
	http *http.Client
	opts Options
	lim  *rate.Limiter
	log  logger.Logger

	now   func() time.Time
	sleep func(time.Duration)
}

// NewClient fills unset options and wires the shared limiter
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	if o.RPS <= 0 {
		o.RPS = defaultRPS
	}
	if o.Burst <= 0 {
		o.Burst = 1
	}
	return &Client{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		lim:   rate.NewLimiter(rate.Limit(o.RPS), o.Burst),
		log:   *logger.Named("tavily"),
		now:   time.Now,
		sleep: time.Sleep,
	}
}

type searchRequest struct {
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth"`
}

type searchResult struct {
	URL           string  `json:"url"`
	Title         string  `json:"title"`
	Content       string  `json:"content"`
	Score         float64 `json:"score"`
	PublishedDate string  `json:"published_date"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

// Search implements domain.SearcherPort. One call per invocation; ladder
// retries are the coordinator's business, transport retries are ours
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
	body, err := json.Marshal(searchRequest{
		Query:       query,
		MaxResults:  maxResults,
		SearchDepth: searchDepth,
	})
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "tavily marshal request failed")
	}

	resp, err := c.post(ctx, "/search", body)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Msg("tavily close body failed")
		}
	}()

	var out searchResponse
	b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "tavily read body failed")
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "tavily decode failed")
	}

	results := make([]domain.SearchResult, 0, len(out.Results))
	for _, r := range out.Results {
		results = append(results, domain.SearchResult{
			URL:           r.URL,
			Title:         r.Title,
			Content:       r.Content,
			Score:         r.Score,
			PublishedDate: parsePublished(r.PublishedDate),
		})
	}
	return results, nil
}

// post issues one rate-limited request with retries for transient and rate
// limited responses. A non-nil response is always StatusOK
func (c *Client) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	url := c.opts.BaseURL + path
	attempts := 0
	for {
		if err := c.lim.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "tavily new request failed")
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)

		start := c.now()
		resp, err := c.http.Do(req)
		lat := c.now().Sub(start)

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !c.shouldRetry(attempts) {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "tavily do failed")
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Msg("tavily transport error retrying")
			c.sleep(back)
			attempts++
			continue
		}

		c.log.Debug().
			Str("path", path).
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Dur("latency", lat).
			Msg("tavily http response")

		switch resp.StatusCode {
		case http.StatusOK:
			return resp, nil
		case http.StatusTooManyRequests:
			wait := retryAfter(resp.Header)
			if wait <= 0 {
				wait = c.backoff(attempts)
			}
			_ = drainAndClose(resp.Body)
			if !c.shouldRetry(attempts) {
				return nil, perr.Newf(perr.ErrorCodeTooManyRequests, "tavily rate limited")
			}
			c.log.Warn().Dur("sleep", wait).Msg("tavily rate limited backing off")
			c.sleep(wait)
			attempts++
			continue
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			_ = drainAndClose(resp.Body)
			if !c.shouldRetry(attempts) {
				return nil, perr.Unavailablef("tavily transient server error")
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Msg("tavily transient error retrying")
			c.sleep(back)
			attempts++
			continue
		case http.StatusUnauthorized, http.StatusForbidden:
			tail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			_ = resp.Body.Close()
			return nil, perr.Unauthorizedf("tavily auth rejected %d body %s", resp.StatusCode, string(tail))
		default:
			tail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			_ = resp.Body.Close()
			return nil, perr.Internalf("tavily unexpected status %d body %s", resp.StatusCode, string(tail))
		}
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.RetryBase
	// doubles per attempt, capped at 30s
	ms := int64(d / time.Millisecond)
	ms = ms << uint(attempt)
	max := int64(30 * time.Second / time.Millisecond)
	if ms > max {
		ms = max
	}
	return time.Duration(ms) * time.Millisecond
}

func (c *Client) shouldRetry(attempt int) bool {
	return attempt < c.opts.MaxRetries
}

func retryAfter(h http.Header) time.Duration {
	s := h.Get("Retry-After")
	if s == "" {
		return 0
	}
	sec, err := strconv.Atoi(s)
	if err != nil || sec <= 0 {
		return 0
	}
	return time.Duration(sec) * time.Second
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	return rc.Close()
}

// publishedLayouts are the date shapes Tavily has been seen returning. The
// field is best effort: unparseable or absent dates become nil and the
// article simply cannot date-match
var publishedLayouts = []string{
	time.RFC3339,
	time.RFC1123,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parsePublished(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return ptime.Ptr(t.UTC())
		}
	}
	return nil
}

var _ domain.SearcherPort = (*Client)(nil)
