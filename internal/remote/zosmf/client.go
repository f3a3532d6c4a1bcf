// SPDX-License-Identifier: MPL-2.0

// Package zosmf reads partitioned dataset members through the z/OSMF REST
// files interface.
package zosmf

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/cobdeps/cobdeps/internal/dataset"
	"github.com/cobdeps/cobdeps/internal/profile"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// ErrBodyTooLarge is returned when a response exceeds Config.MaxBodySize.
var ErrBodyTooLarge = errors.New("response body too large")

const (
	// DefaultRateLimit is the default request rate per host, per second.
	DefaultRateLimit = 10.0
	// DefaultRateBurst is the default burst size per host.
	DefaultRateBurst = 5
	// DefaultMaxRetries is the default number of retries after the first attempt.
	DefaultMaxRetries = 3
	// DefaultTimeout bounds a single HTTP request.
	DefaultTimeout = 30 * time.Second
	// DefaultPageSize is the member count requested per listing page.
	DefaultPageSize = 1000
	// DefaultMaxBodySize bounds a response body read into memory.
	DefaultMaxBodySize int64 = 32 << 20

	restFilesPath = "/zosmf/restfiles/ds/"
)

type (
	// Config tunes the client. Zero fields take the defaults.
	Config struct {
		RateLimit  float64
		RateBurst  int
		MaxRetries int
		Timeout    time.Duration
		PageSize   int
		// MaxBodySize rejects larger response bodies.
		MaxBodySize int64
		// BaseBackoff is the first retry delay; it doubles per attempt.
		BaseBackoff time.Duration
		// Transport overrides the HTTP transport, for tests.
		Transport http.RoundTripper
		// Scheme is "https" unless set.
		Scheme string
		Logger *log.Logger
	}

	// Client implements dataset.Remote for z/OSMF profiles. Each host gets
	// its own rate limiter.
	Client struct {
		cfg  Config
		http *http.Client

		mu       sync.Mutex
		limiters map[string]*rate.Limiter
	}

	// transportError marks a failure of the HTTP round trip itself.
	transportError struct {
		err error
	}

	// StatusError is returned for non-2xx responses.
	StatusError struct {
		StatusCode int
		Message    string
	}

	memberList struct {
		Items    []memberItem `json:"items"`
		Returned int          `json:"returnedRows"`
		MoreRows bool         `json:"moreRows"`
	}

	memberItem struct {
		Member string `json:"member"`
	}
)

// New creates a client.
func New(cfg Config) *Client {
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = DefaultRateBurst
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	} else if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = DefaultMaxBodySize
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 200 * time.Millisecond
	}
	if cfg.Scheme == "" {
		cfg.Scheme = "https"
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	return &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: cfg.Timeout, Transport: cfg.Transport},
		limiters: make(map[string]*rate.Limiter),
	}
}

// ListMembers pages through the member list of loc.
func (c *Client) ListMembers(ctx context.Context, loc dataset.Location, p profile.Profile) ([]dataset.MemberName, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}

	var members []dataset.MemberName
	start := ""
	for {
		query := url.Values{}
		if start != "" {
			query.Set("start", start)
		}
		headers := map[string]string{"X-IBM-Max-Items": strconv.Itoa(c.cfg.PageSize)}

		body, err := c.get(ctx, p, restFilesPath+loc.String()+"/member", query, headers)
		if err != nil {
			return nil, err
		}

		var page memberList
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decode member list of %s: %w", loc, err)
		}
		items := page.Items
		// A page requested with start begins with the start member itself.
		if start != "" && len(items) > 0 && items[0].Member == start {
			items = items[1:]
		}
		for _, it := range items {
			members = append(members, dataset.MemberName(it.Member))
		}
		if !page.MoreRows || len(items) == 0 {
			return members, nil
		}
		start = items[len(items)-1].Member
	}
}

// FetchContent downloads loc(member) as text.
func (c *Client) FetchContent(ctx context.Context, loc dataset.Location, member dataset.MemberName, p profile.Profile) ([]byte, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	if !member.Safe() {
		return nil, fmt.Errorf("invalid member name %q", member)
	}
	path := restFilesPath + loc.String() + "(" + member.String() + ")"
	return c.get(ctx, p, path, nil, map[string]string{"X-IBM-Data-Type": "text"})
}

// get issues a GET with rate limiting and retries. Retries cover failed
// round trips, 429 and 5xx responses.
func (c *Client) get(ctx context.Context, p profile.Profile, path string, query url.Values, headers map[string]string) ([]byte, error) {
	limiter := c.limiter(p.Address())

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.cfg.BaseBackoff << (attempt - 1)
			c.cfg.Logger.Debug("Retrying z/OSMF request", "path", path, "attempt", attempt, "backoff", backoff, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		body, err := c.doOnce(ctx, p, path, query, headers)
		if err == nil {
			return body, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		lastErr = err
		if !retryable(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) doOnce(ctx context.Context, p profile.Profile, path string, query url.Values, headers map[string]string) ([]byte, error) {
	// RawPath keeps the member parentheses unescaped.
	u := url.URL{Scheme: c.cfg.Scheme, Host: p.Address(), Path: path, RawPath: path, RawQuery: query.Encode()}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("X-CSRF-ZOSMF-HEADER", "true")
	req.Header.Set("Accept", "application/json, text/plain")
	if p.User != "" {
		req.SetBasicAuth(p.User, p.Password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &transportError{err: err}
	}
	defer func() { _ = resp.Body.Close() }() // Read-only body; close error non-critical

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > c.cfg.MaxBodySize {
		return nil, fmt.Errorf("%s: %w (limit %d bytes)", path, ErrBodyTooLarge, c.cfg.MaxBodySize)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", path, dataset.ErrNotFound)
	case resp.StatusCode >= 400:
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: string(body)}
	}
	return body, nil
}

func (c *Client) limiter(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(c.cfg.RateLimit), c.cfg.RateBurst)
		c.limiters[host] = l
	}
	return l
}

// retryable reports whether err came from the network or the server rather
// than from building the request or reading the response.
func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= 500
	}
	var te *transportError
	return errors.As(err, &te)
}

func (e *transportError) Error() string { return "http request: " + e.err.Error() }

func (e *transportError) Unwrap() error { return e.err }

// Error implements the error interface for StatusError.
func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("z/OSMF returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("z/OSMF returned HTTP %d: %s", e.StatusCode, e.Message)
}
