// Package kmb talks to the KMB mobile app endpoints: route list, arrival
// estimates and the daily POI feed.
package kmb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/klauspost/compress/gzip"
)

// Supported response languages.
const (
	LanguageEnglish            = "en"
	LanguageTraditionalChinese = "tc"
)

// Default endpoints and headers used by the KMB iOS app.
const (
	DefaultETABaseURL     = "http://etav2.kmb.hk"
	DefaultDataBaseURL    = "http://etadatafeed.kmb.hk:1933"
	DefaultPOIBaseURL     = "http://www1.kmb.hk"
	DefaultUserAgent      = "KMB/2.9.4 CFNetwork/758.4.3 Darwin/15.5.0"
	DefaultAcceptLanguage = "en-us"
)

// ErrInvalidLanguage is returned by New for a language other than en or tc.
var ErrInvalidLanguage = errors.New("invalid language")

// Cache stores raw response bodies by key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Config configures a Client. Zero values fall back to the defaults above.
type Config struct {
	Language       string
	ETABaseURL     string
	DataBaseURL    string
	POIBaseURL     string
	UserAgent      string
	AcceptLanguage string
	Timeout        time.Duration
	Retries        int
	RetryWait      time.Duration // initial backoff interval
	HTTPClient     *http.Client
	Cache          Cache // nil disables caching
}

// Client is a KMB endpoints client. Safe for concurrent use.
type Client struct {
	cfg  Config
	http *http.Client
	now  func() time.Time
}

// New validates cfg and returns a client.
func New(cfg Config) (*Client, error) {
	if cfg.Language == "" {
		cfg.Language = LanguageEnglish
	}
	if cfg.Language != LanguageEnglish && cfg.Language != LanguageTraditionalChinese {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLanguage, cfg.Language)
	}
	setDefault(&cfg.ETABaseURL, DefaultETABaseURL)
	setDefault(&cfg.DataBaseURL, DefaultDataBaseURL)
	setDefault(&cfg.POIBaseURL, DefaultPOIBaseURL)
	setDefault(&cfg.UserAgent, DefaultUserAgent)
	setDefault(&cfg.AcceptLanguage, DefaultAcceptLanguage)
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = 500 * time.Millisecond
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}

	slog.Debug("kmb client initialized", "language", cfg.Language, "caching", cfg.Cache != nil)
	return &Client{cfg: cfg, http: hc, now: time.Now}, nil
}

func setDefault(s *string, v string) {
	if *s == "" {
		*s = v
	}
}

// StatusError is returned for a non-2xx HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// get fetches base+path with the app headers, retrying transient failures.
func (c *Client) get(ctx context.Context, base, path string) ([]byte, error) {
	url := strings.TrimRight(base, "/") + path

	var body []byte
	op := func() error {
		b, err := c.getOnce(ctx, url)
		if err != nil {
			if !isRetryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		body = b
		return nil
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.cfg.RetryWait
	exp.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(c.cfg.Retries)), ctx)

	attempt := 0
	notify := func(err error, next time.Duration) {
		attempt++
		slog.Warn("request failed, retrying", "url", url, "attempt", attempt, "error", err, "retry_in", next)
	}
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) getOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept-Language", c.cfg.AcceptLanguage)
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	var r io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip response: %w", err)
		}
		defer zr.Close()
		r = zr
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	slog.Debug("fetched", "url", url, "bytes", len(body))
	return body, nil
}

// isRetryable classifies errors as retryable or fail-fast.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return true
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500 || statusErr.StatusCode == http.StatusTooManyRequests
	}

	// DNS resolution: only transient failures are worth another attempt
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary || dnsErr.IsTimeout
	}

	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return true
	}

	msg := err.Error()
	if strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "i/o timeout") ||
		strings.Contains(msg, "EOF") ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	return false
}
