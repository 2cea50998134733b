package agvd

import (
	"fmt"
	"net/http"
)

// AuthError reports rejected credentials or a rejected token. It is never
// retried; callers should abort the run rather than continue issuing
// requests that will also be rejected.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("agvd: authentication failed (%d %s)", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("agvd: authentication failed (%d): %s", e.StatusCode, e.Message)
}

// StatusError reports a non-auth request failure: an unexpected HTTP status
// or a GraphQL-level error. It applies to one batch only.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("agvd: request failed (%d %s)", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("agvd: request failed (%d): %s", e.StatusCode, e.Message)
}
