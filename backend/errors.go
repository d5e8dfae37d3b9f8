package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrRequestFailed covers transport errors, non-2xx statuses and
	// unreadable bodies.
	ErrRequestFailed = errors.New("request failed")

	// ErrMalformedFragment marks a stream line that had the event prefix but
	// did not decode. Such lines are skipped.
	ErrMalformedFragment = errors.New("malformed stream fragment")
)

// RequestError describes a failed call to the backend.
type RequestError struct {
	Endpoint   string
	StatusCode int    // 0 when no response was received
	Body       string // truncated response body for non-2xx statuses
	Err        error
}

func (e *RequestError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("%s: HTTP error! status: %d: %s", e.Endpoint, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: HTTP error! status: %d", e.Endpoint, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Endpoint, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Endpoint, ErrRequestFailed)
	}
}

func (e *RequestError) Unwrap() error { return e.Err }

func (e *RequestError) Is(target error) bool { return target == ErrRequestFailed }

// FragmentError describes a skipped stream line.
type FragmentError struct {
	Line string
	Err  error
}

func (e *FragmentError) Error() string {
	return fmt.Sprintf("%v: %v (line %q)", ErrMalformedFragment, e.Err, e.Line)
}

func (e *FragmentError) Unwrap() error { return e.Err }

func (e *FragmentError) Is(target error) bool { return target == ErrMalformedFragment }
