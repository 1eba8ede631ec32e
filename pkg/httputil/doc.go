// Package httputil provides retry helpers for translator API clients.
//
// # Retry
//
// [Retry] re-runs an operation when it fails with a transient error:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Callers mark transient failures by wrapping them with [Retryable]; any
// other error stops the loop immediately:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    ...
//	})
//
// The delay doubles after every failed attempt and waiting stops as soon as
// the context is cancelled.
package httputil
