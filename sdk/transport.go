package sdk

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// errRetryableStatus marks a response that should be retried.
var errRetryableStatus = errors.New("retryable status")

// RetryTransport is an http.RoundTripper that retries network errors, 5xx
// and 429 responses with exponential backoff and jitter. Request bodies are
// rewound through Request.GetBody. 4xx responses other than 429 are returned
// immediately.
type RetryTransport struct {
	// Next is the underlying transport. Defaults to http.DefaultTransport.
	Next http.RoundTripper

	// Attempts is the number of retries after the first try.
	Attempts int

	// WaitMin and WaitMax bound the wait between attempts.
	WaitMin time.Duration
	WaitMax time.Duration

	// Logger receives one debug entry per retry.
	Logger *zap.Logger
}

// NewRetryTransport wraps next with retries.
func NewRetryTransport(next http.RoundTripper, attempts int, waitMin, waitMax time.Duration, logger *zap.Logger) *RetryTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryTransport{
		Next:     next,
		Attempts: attempts,
		WaitMin:  waitMin,
		WaitMax:  waitMax,
		Logger:   logger,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	var (
		resp    *http.Response
		attempt int
	)

	operation := func() error {
		// Drop the response of the previous failed attempt
		if resp != nil {
			drainAndCloseBody(resp)
			resp = nil
		}

		r, err := rewindRequest(req, attempt)
		if err != nil {
			return backoff.Permanent(err)
		}
		attempt++

		res, err := t.Next.RoundTrip(r)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}

		if isRetryableStatus(res.StatusCode) {
			resp = res
			return fmt.Errorf("%w: %d", errRetryableStatus, res.StatusCode)
		}

		resp = res
		return nil
	}

	notify := func(err error, wait time.Duration) {
		t.Logger.Debug("retrying request",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(t.newBackOff(), uint64(t.Attempts)), ctx)
	err := backoff.RetryNotify(operation, b, notify)

	// Out of attempts on a retryable status: hand back the last response
	if err != nil && errors.Is(err, errRetryableStatus) && resp != nil {
		return resp, nil
	}
	if err != nil {
		if resp != nil {
			drainAndCloseBody(resp)
		}
		return nil, err
	}

	return resp, nil
}

func (t *RetryTransport) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = t.WaitMin
	b.MaxInterval = t.WaitMax
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// rewindRequest returns req for the first attempt and a clone with a fresh
// body for every later one.
func rewindRequest(req *http.Request, attempt int) (*http.Request, error) {
	if attempt == 0 || req.Body == nil || req.Body == http.NoBody {
		return req, nil
	}
	if req.GetBody == nil {
		return nil, errors.New("request body cannot be rewound for retry")
	}

	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("failed to rewind request body: %w", err)
	}

	r := req.Clone(req.Context())
	r.Body = body
	return r, nil
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// drainAndCloseBody reads and closes the response body to ensure connection reuse.
func drainAndCloseBody(resp *http.Response) {
	if resp != nil && resp.Body != nil {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
}
