// Package httputil fetches documents over HTTP with retries.
//
// # Retry
//
// [Retry] runs an operation again after transient failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Only errors wrapped in [RetryableError] are retried. The delay doubles
// after every failed attempt:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return fetchOnce()
//	})
//
// # Fetch
//
// [Fetch] performs a GET with [DefaultPolicy], classifies the status code
// and returns the body, bounded by a size limit:
//
//	data, err := httputil.Fetch(ctx, nil, "https://example.com/graph.json", 0)
//
// Client errors are not retried. A 404 maps to errors.ErrCodeFileNotFound,
// other 4xx responses to errors.ErrCodeInvalidInput.
package httputil
