package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/xeptore/scdl/httputil"
)

type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeAuthFailure
	OutcomeHTTPFailure
	OutcomeTransportFailure
	OutcomeDecodeFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeAuthFailure:
		return "auth_failure"
	case OutcomeHTTPFailure:
		return "http_failure"
	case OutcomeTransportFailure:
		return "transport_failure"
	case OutcomeDecodeFailure:
		return "decode_failure"
	default:
		return "unknown"
	}
}

// Outcome is the classified result of a single request attempt.
type Outcome struct {
	Kind       OutcomeKind
	StatusCode int
	Body       []byte
	Err        error
}

// AsError maps the outcome onto the package errors. It is nil on success.
func (o Outcome) AsError() error {
	switch o.Kind {
	case OutcomeSuccess:
		return nil
	case OutcomeAuthFailure, OutcomeHTTPFailure:
		return &ResponseError{
			StatusCode: o.StatusCode,
			Body:       o.Body,
			Message:    httputil.ErrorMessage(o.Body),
		}
	case OutcomeTransportFailure:
		return fmt.Errorf("%w: %w", ErrTransport, o.Err)
	case OutcomeDecodeFailure:
		return fmt.Errorf("%w: %w", ErrDecode, o.Err)
	default:
		panic(fmt.Sprintf("unexpected outcome kind: %d", o.Kind))
	}
}

type Request struct {
	// Path is relative to the executor base URL, or an absolute URL used as-is.
	Path     string
	Query    url.Values
	ClientID string
}

type Executor interface {
	Execute(ctx context.Context, logger zerolog.Logger, req Request, dst any) Outcome
}

// HTTPExecutor performs a single authenticated GET and classifies the
// response. It never touches credentials.
type HTTPExecutor struct {
	baseURL string
	timeout time.Duration
	limiter *rate.Limiter
}

func NewHTTPExecutor(baseURL string, timeout time.Duration, limiter *rate.Limiter) *HTTPExecutor {
	if nil == limiter {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}

	return &HTTPExecutor{
		baseURL: baseURL,
		timeout: timeout,
		limiter: limiter,
	}
}

// URL builds the request URL with the client id appended after the query.
func (e *HTTPExecutor) URL(req Request) (string, error) {
	target := req.Path
	if u, err := url.Parse(req.Path); nil != err || !u.IsAbs() {
		target = strings.TrimRight(e.baseURL, "/") + "/" + strings.TrimLeft(req.Path, "/")
	}

	u, err := url.Parse(target)
	if nil != err {
		return "", fmt.Errorf("parse request URL: %v", err)
	}

	params := u.Query()
	params.Del("client_id")
	for k, vs := range req.Query {
		for _, v := range vs {
			params.Add(k, v)
		}
	}

	clientID := url.Values{"client_id": []string{req.ClientID}}.Encode()
	if encoded := params.Encode(); encoded != "" {
		u.RawQuery = encoded + "&" + clientID
	} else {
		u.RawQuery = clientID
	}

	return u.String(), nil
}

func (e *HTTPExecutor) Execute(ctx context.Context, logger zerolog.Logger, req Request, dst any) Outcome {
	reqURL, err := e.URL(req)
	if nil != err {
		logger.Error().Err(err).Msg("Failed to build request URL")
		return Outcome{Kind: OutcomeTransportFailure, StatusCode: 0, Body: nil, Err: err}
	}

	if err := e.limiter.Wait(ctx); nil != err {
		return Outcome{Kind: OutcomeTransportFailure, StatusCode: 0, Body: nil, Err: fmt.Errorf("wait for rate limiter: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if nil != err {
		logger.Error().Err(err).Msg("Failed to create request")
		return Outcome{Kind: OutcomeTransportFailure, StatusCode: 0, Body: nil, Err: fmt.Errorf("create request: %w", err)}
	}
	httpReq.Header.Add("Accept", "application/json")

	client := http.Client{Timeout: e.timeout} //nolint:exhaustruct
	resp, err := client.Do(httpReq)
	if nil != err {
		logger.Error().Err(err).Msg("Failed to send request")
		return Outcome{Kind: OutcomeTransportFailure, StatusCode: 0, Body: nil, Err: fmt.Errorf("send request: %w", err)}
	}
	defer func() {
		var closeErr error
		httputil.Close(resp.Body, &closeErr)
		if nil != closeErr {
			logger.Error().Err(closeErr).Msg("Failed to close response body")
		}
	}()

	code := resp.StatusCode
	respBytes, err := httputil.ReadResponseBody(resp)
	if nil != err {
		logger.Error().Err(err).Int("status_code", code).Msg("Failed to read response body")
		return Outcome{Kind: OutcomeTransportFailure, StatusCode: code, Body: nil, Err: err}
	}

	switch {
	case httputil.IsSuccessStatus(code):
	case code == http.StatusUnauthorized:
		logger.Warn().Bytes("response_body", respBytes).Msg("Client id was rejected")
		return Outcome{Kind: OutcomeAuthFailure, StatusCode: code, Body: respBytes, Err: nil}
	default:
		logger.Error().Int("status_code", code).Bytes("response_body", respBytes).Msg("Unexpected response status code")
		return Outcome{Kind: OutcomeHTTPFailure, StatusCode: code, Body: respBytes, Err: nil}
	}

	if nil != dst {
		if err := json.Unmarshal(respBytes, dst); nil != err {
			logger.Error().Err(err).Bytes("response_body", respBytes).Msg("Failed to decode response body")
			return Outcome{Kind: OutcomeDecodeFailure, StatusCode: code, Body: respBytes, Err: err}
		}
	}

	return Outcome{Kind: OutcomeSuccess, StatusCode: code, Body: nil, Err: nil}
}
