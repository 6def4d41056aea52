package devhunt

import (
	"fmt"
	"github.com/pkg/errors"
	"net/http"
)

var ErrUnauthorized = errors.New("unauthorized")

type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status %v, body: %v", e.Code, e.Body)
}

// IsUnauthorized reports whether err is an authorization failure returned by the API.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsClientError reports whether the server rejected the request itself (4xx), so its
// body is meant to be shown to the user.
func IsClientError(err error) (*StatusError, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Code >= http.StatusBadRequest && statusErr.Code < http.StatusInternalServerError {
		return statusErr, true
	}
	return nil, false
}
