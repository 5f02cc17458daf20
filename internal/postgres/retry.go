package postgres

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	maxRetries = 3
	baseDelay  = 1 * time.Second
	maxJitter  = 500 * time.Millisecond
)

// SQLSTATE codes that no amount of retrying will fix.
var fatalCodes = map[string]bool{
	"28P01": true, // invalid_password
	"28000": true, // invalid_authorization_specification
	"3D000": true, // invalid_catalog_name
	"42501": true, // insufficient_privilege
}

// connectWithRetry wraps newWriterOnce with exponential backoff.
// Retries on transient errors (connection refused, timeout).
// Fails fast on auth, configuration and missing-database errors.
func connectWithRetry(ctx context.Context, cfg Config) (*Writer, error) {
	var lastErr error

	for attempt := range maxRetries {
		w, err := newWriterOnce(ctx, cfg)
		if err == nil {
			if attempt > 0 {
				slog.Info("connected after retry", "attempt", attempt+1)
			}
			return w, nil
		}

		if !isRetryable(err) {
			return nil, err
		}

		lastErr = err
		delay := backoffDelay(attempt)

		slog.Warn("connection failed, retrying",
			"attempt", attempt+1,
			"error", err,
			"retry_in", delay)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, lastErr
}

// isRetryable classifies errors as retryable or fail-fast.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return !fatalCodes[pgErr.Code]
	}

	var parseErr *pgconn.ParseConfigError
	if errors.As(err, &parseErr) {
		return false
	}

	// Some failures only surface as text
	msg := err.Error()
	if strings.Contains(msg, "password authentication failed") ||
		strings.Contains(msg, "no pg_hba.conf entry") ||
		strings.Contains(msg, "no such host") {
		return false
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary || dnsErr.IsTimeout
	}

	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return true
	}

	// Unknown errors may be transient
	return true
}

// backoffDelay returns exponential backoff with jitter.
func backoffDelay(attempt int) time.Duration {
	delay := baseDelay << uint(attempt) // 1s, 2s, 4s
	jitter := time.Duration(rand.Int64N(int64(maxJitter)))
	return delay + jitter
}
