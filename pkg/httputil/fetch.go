package httputil

import (
	"context"
	"io"
	"net/http"

	"github.com/matzehuels/graphscape/pkg/errors"
)

// DefaultLimit bounds response bodies read by [Fetch].
const DefaultLimit = 64 << 20

// Fetch GETs url and returns the response body. Network errors, 5xx and 429
// responses are retried under policy; other non-2xx responses fail at once.
// A nil client uses http.DefaultClient and a non-positive limit uses
// [DefaultLimit].
func Fetch(ctx context.Context, client *http.Client, url string, limit int64) ([]byte, error) {
	return FetchWith(ctx, client, DefaultPolicy, url, limit)
}

// FetchWith is [Fetch] with an explicit retry policy.
func FetchWith(ctx context.Context, client *http.Client, policy Policy, url string, limit int64) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	var body []byte
	err := policy.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "invalid URL %s", url)
		}
		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &RetryableError{Err: errors.Wrap(errors.ErrCodeTimeout, err, "GET %s", url)}
		}
		defer resp.Body.Close()

		if err := checkStatus(resp, url); err != nil {
			return err
		}
		data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
		if err != nil {
			return &RetryableError{Err: errors.Wrap(errors.ErrCodeTimeout, err, "read %s", url)}
		}
		if int64(len(data)) > limit {
			return errors.New(errors.ErrCodeInvalidInput, "%s exceeds %d bytes", url, limit)
		}
		body = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func checkStatus(resp *http.Response, url string) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeFileNotFound, "GET %s: %s", url, resp.Status)
	case code == http.StatusTooManyRequests || code >= 500:
		return &RetryableError{Err: errors.New(errors.ErrCodeInternal, "GET %s: %s", url, resp.Status)}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "GET %s: %s", url, resp.Status)
	}
}
