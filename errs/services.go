package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Upstream provider errors (object store, speech synthesis)
var (
	ErrUpstream           = errors.New("upstream provider failed")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// NewUpstreamError wraps a failure from an external collaborator. The
// enclosing request aborts; nothing is persisted on this path.
func NewUpstreamError(provider string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrUpstream,
		Details:    fmt.Sprintf("%s request failed", provider),
		Cause:      cause,
	}
}

func NewServiceUnavailableError(provider string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusServiceUnavailable,
		err:        ErrServiceUnavailable,
		Details:    provider,
	}
}

func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstream)
}
