package httputil

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

func ReadResponseBody(resp *http.Response) ([]byte, error) {
	respBody, err := io.ReadAll(resp.Body)
	if nil != err {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return respBody, nil
}

// ReadNonEmptyResponseBody fails on a zero-length body.
func ReadNonEmptyResponseBody(resp *http.Response) ([]byte, error) {
	respBody, err := ReadResponseBody(resp)
	if nil != err {
		return nil, err
	}

	if len(respBody) == 0 {
		return nil, errors.New("unexpected empty response body")
	}

	return respBody, nil
}

func IsSuccessStatus(code int) bool {
	return code >= http.StatusOK && code < http.StatusMultipleChoices
}

// ErrorMessage extracts a human readable message from the error body shapes
// returned by api-v2. It returns an empty string when nothing is found.
func ErrorMessage(b []byte) string {
	if !gjson.ValidBytes(b) {
		return ""
	}

	for _, path := range []string{"errors.0.error_message", "error_message", "message", "error"} {
		if v := gjson.GetBytes(b, path); v.Type == gjson.String {
			if msg := strings.TrimSpace(v.String()); msg != "" {
				return msg
			}
		}
	}

	return ""
}

// Close closes body and joins the close error into err.
func Close(body io.Closer, err *error) {
	if closeErr := body.Close(); nil != closeErr {
		*err = errors.Join(*err, fmt.Errorf("close response body: %v", closeErr))
	}
}
