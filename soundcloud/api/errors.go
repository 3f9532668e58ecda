package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrTooManyRequests  = errors.New("too many requests")
	ErrTransport        = errors.New("transport failure")
	ErrDecode           = errors.New("response decode failure")
)

const maxErrorBodyLen = 256

// ResponseError is returned for any non-2xx response. It matches
// ErrUnauthorized for 401 and ErrUnexpectedStatus otherwise, plus
// ErrTooManyRequests for 429.
type ResponseError struct {
	StatusCode int
	Body       []byte
	Message    string
}

func (e *ResponseError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("status code %d: %s", e.StatusCode, e.Message)
	}

	body := e.Body
	if len(body) > maxErrorBodyLen {
		body = body[:maxErrorBodyLen]
	}

	return fmt.Sprintf("status code %d with body: %s", e.StatusCode, string(body))
}

func (e *ResponseError) Unwrap() []error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return []error{ErrUnauthorized}
	case http.StatusTooManyRequests:
		return []error{ErrUnexpectedStatus, ErrTooManyRequests}
	default:
		return []error{ErrUnexpectedStatus}
	}
}
