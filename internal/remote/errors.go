package remote

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when the dues service answers 401
var ErrUnauthorized = errors.New("remote dues service: unauthorized")

// HTTPError is any other non-2xx answer from the dues service
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("remote dues service: status %d", e.StatusCode)
	}
	return fmt.Sprintf("remote dues service: status %d: %s", e.StatusCode, e.Body)
}
