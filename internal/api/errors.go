package api

import (
	"errors"
	"fmt"
)

// ErrNoCredential is returned before any network call when a keyed
// endpoint is hit without a configured API credential.
var ErrNoCredential = errors.New("no API credential configured")

// ErrAppUnavailable means the storefront answered but has no data for
// the requested app (success=false envelope).
var ErrAppUnavailable = errors.New("storefront has no data for app")

// UpstreamError is a non-2xx upstream response. Body is kept verbatim:
// the upstream conflates many business failures into JSON bodies and the
// gateway deliberately does not reinterpret them.
type UpstreamError struct {
	Status int
	Body   []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: status %d", e.Status)
}

// TransportError is a network-level failure before any upstream answer.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsRateLimited reports whether err is an upstream 429.
func IsRateLimited(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.Status == 429
}
