package cache

import (
	"errors"
	"fmt"

	"github.com/matzehuels/graphscape/pkg/httputil"
)

// ErrBackendUnavailable is returned when a remote cache backend cannot be
// reached.
var ErrBackendUnavailable = errors.New("cache backend unavailable")

// connectPolicy bounds the pings remote backends send while connecting.
var connectPolicy = httputil.DefaultPolicy

// unavailable marks a failed ping as transient so connectPolicy retries it.
func unavailable(err error) error {
	return &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrBackendUnavailable, err)}
}
