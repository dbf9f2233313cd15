// Package readiness waits for a remote media URL to become retrievable.
//
// The remote job may report a result URL before the object behind it can be
// fetched. A successful HEAD is taken as the readiness signal; the fetch that
// follows remains the authoritative one.
package readiness

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"studio/internal/infra"
)

var errNotReady = errors.New("readiness: not ready")

// Options configures a Poller.
type Options struct {
	HTTPClient *http.Client
	Logger     *infra.Logger
	// CheckTimeout bounds a single HEAD request when HTTPClient is nil.
	CheckTimeout time.Duration
}

// Poller performs bounded, fixed-delay existence checks.
type Poller struct {
	httpClient *http.Client
	logger     *infra.Logger
}

func NewPoller(opts Options) *Poller {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.CheckTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Poller{httpClient: httpClient, logger: logger}
}

// WaitUntilReady issues up to maxAttempts HEAD requests against url, sleeping
// delay between attempts, and reports whether one answered 200. It blocks
// the caller for the whole poll; ctx cancellation ends it early with false.
func (p *Poller) WaitUntilReady(ctx context.Context, url string, maxAttempts int, delay time.Duration) bool {
	if maxAttempts <= 0 {
		return false
	}
	attempt := 0
	check := func() error {
		attempt++
		return p.check(ctx, url)
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(delay), uint64(maxAttempts-1)),
		ctx,
	)
	err := backoff.RetryNotify(check, policy, func(err error, next time.Duration) {
		p.logger.Debug().
			Err(err).
			Str("url", url).
			Int("attempt", attempt).
			Int("max_attempts", maxAttempts).
			Dur("next", next).
			Msg("readiness: media not available yet")
	})
	if err != nil {
		p.logger.Warn().Str("url", url).Int("attempts", attempt).Msg("readiness: gave up waiting")
		return false
	}
	return true
}

func (p *Poller) check(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("readiness: build request: %w", err))
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", errNotReady, err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", errNotReady, resp.StatusCode)
	}
	return nil
}
