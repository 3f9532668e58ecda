package api

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/xeptore/scdl/metrics"
	"github.com/xeptore/scdl/soundcloud/auth"
)

type CredentialProvider interface {
	Credentials() *auth.Credentials
	Refresh(ctx context.Context, logger zerolog.Logger) error
}

type Query interface {
	Values() url.Values
}

// RetryConfig controls recovery from rejected client ids. Only
// authentication failures are ever retried.
type RetryConfig struct {
	MaxRetries         uint
	RetryOnAuthFailure bool
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:         1,
		RetryOnAuthFailure: true,
	}
}

type Client struct {
	executor Executor
	creds    CredentialProvider
	retry    RetryConfig
	metrics  *metrics.Recorder
}

func NewClient(executor Executor, creds CredentialProvider, retryConf RetryConfig, rec *metrics.Recorder) *Client {
	if nil == rec {
		rec = metrics.NewNop()
	}

	return &Client{
		executor: executor,
		creds:    creds,
		retry:    retryConf,
		metrics:  rec,
	}
}

func (c *Client) Credentials() *auth.Credentials {
	return c.creds.Credentials()
}

func (c *Client) RetryConfig() RetryConfig {
	return c.retry
}

func noDelay() retry.Backoff {
	return retry.BackoffFunc(func() (time.Duration, bool) { return 0, false })
}

// Get fetches path and decodes the response into R. A 401 triggers a client
// id refresh followed by another attempt, at most MaxRetries times.
func Get[R any](ctx context.Context, logger zerolog.Logger, c *Client, path string, q Query) (*R, error) {
	logger = logger.With().Str("request_id", uuid.NewString()).Str("path", path).Logger()

	var values url.Values
	if nil != q {
		values = q.Values()
	}

	var (
		out     R
		attempt uint
	)
	err := retry.Do(
		ctx,
		retry.WithMaxRetries(uint64(c.retry.MaxRetries), noDelay()),
		func(ctx context.Context) error {
			if err := ctx.Err(); nil != err {
				return err
			}

			attempt++
			logger := logger.With().Uint("attempt", attempt).Logger()

			req := Request{
				Path:     path,
				Query:    values,
				ClientID: c.creds.Credentials().ClientID,
			}

			start := time.Now()
			outcome := c.executor.Execute(ctx, logger, req, &out)
			c.metrics.ObserveAttempt(outcome.Kind.String(), time.Since(start).Seconds())

			switch outcome.Kind {
			case OutcomeSuccess:
				return nil
			case OutcomeAuthFailure:
				if !c.retry.RetryOnAuthFailure || attempt > c.retry.MaxRetries {
					return outcome.AsError()
				}

				logger.Info().Msg("Refreshing client id after unauthorized response")
				if err := c.creds.Refresh(ctx, logger); nil != err {
					c.metrics.ObserveRefresh(metrics.RefreshAuthFailure, err)
					logger.Error().Err(err).Msg("Failed to refresh client id")

					return fmt.Errorf("refresh client id: %w", err)
				}
				c.metrics.ObserveRefresh(metrics.RefreshAuthFailure, nil)

				return retry.RetryableError(outcome.AsError())
			default:
				return outcome.AsError()
			}
		},
	)
	if nil != err {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}

	return &out, nil
}
