// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"errors"
	"io"
	"math"
	"net"
	"net/http"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// transient failures. Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

const defaultMaxAttempts = 3

// Transient reports whether an HTTP status code is worth retrying:
// 429 (rate limited) and all 5xx responses. Other 4xx codes indicate a
// request that will never succeed and must not be retried.
func Transient(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// DoWithRetry executes an HTTP request and retries transient failures
// (429, 5xx, network timeouts) with exponential backoff. The delay starts
// at RetryBaseDelay and doubles each attempt.
//
// When maxAttempts is 0 the default (3) is used. Before each retry the
// response body is drained and closed. If the context is cancelled during
// a backoff wait the function returns ctx.Err(). After exhausting attempts
// the last response (or transport error) is returned so the caller can
// inspect it; a non-transient status returns immediately.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxAttempts int) (*http.Response, error) {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	for attempt := 1; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))

		if err != nil {
			var netErr net.Error
			timeout := errors.As(err, &netErr) && netErr.Timeout()
			if !timeout || attempt >= maxAttempts {
				return nil, err
			}
		} else {
			if !Transient(resp.StatusCode) {
				return resp, nil
			}
			// Exhausted attempts — return the response as-is.
			if attempt >= maxAttempts {
				return resp, nil
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		backoff := time.Duration(math.Pow(2, float64(attempt-1))) * RetryBaseDelay

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}
