// Package soundcloud is a client for the undocumented api-v2 web API. The
// public client id it needs is scraped from the web player and refreshed
// whenever the API rejects it.
package soundcloud

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/xeptore/scdl/config"
	"github.com/xeptore/scdl/metrics"
	"github.com/xeptore/scdl/ratelimit"
	"github.com/xeptore/scdl/soundcloud/api"
	"github.com/xeptore/scdl/soundcloud/auth"
	"github.com/xeptore/scdl/soundcloud/types"
)

var (
	ErrEmptyIdentifier = errors.New("empty identifier")
	ErrNoNextPage      = errors.New("no next page")
)

type Client struct {
	api     *api.Client
	store   *auth.Store
	conf    config.SoundCloud
	metrics *metrics.Recorder
}

type options struct {
	registerer prometheus.Registerer
	executor   api.Executor
}

type Option func(*options)

// WithRegisterer registers the client metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithExecutor replaces the HTTP request executor.
func WithExecutor(e api.Executor) Option {
	return func(o *options) { o.executor = e }
}

// NewClient discovers a client id, or uses conf.ClientID when set, and
// returns a ready client. conf is expected to carry defaults, see
// config.Default.
func NewClient(ctx context.Context, logger zerolog.Logger, conf config.SoundCloud, opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	rec, err := metrics.New(o.registerer)
	if nil != err {
		return nil, fmt.Errorf("failed to create metrics: %v", err)
	}

	scraper := auth.NewScraper(conf.LandingURL, conf.Timeouts.DiscoveryDuration(), rec)
	store, err := auth.New(ctx, logger, scraper, conf.ClientID)
	if nil != err {
		return nil, fmt.Errorf("failed to acquire client id: %w", err)
	}

	executor := o.executor
	if nil == executor {
		limiter := ratelimit.NewLimiter(conf.RateLimit.RequestsPerSecond, conf.RateLimit.Burst)
		executor = api.NewHTTPExecutor(conf.APIURL, conf.Timeouts.APIRequestDuration(), limiter)
	}

	retryConf := api.RetryConfig{
		MaxRetries:         conf.Retry.MaxRetriesValue(),
		RetryOnAuthFailure: conf.Retry.RetryOnAuthFailureValue(),
	}

	return &Client{
		api:     api.NewClient(executor, store, retryConf, rec),
		store:   store,
		conf:    conf,
		metrics: rec,
	}, nil
}

// ClientID returns the client id currently in use.
func (c *Client) ClientID() string {
	return c.store.Credentials().ClientID
}

// RefreshClientID forces a new discovery.
func (c *Client) RefreshClientID(ctx context.Context, logger zerolog.Logger) error {
	err := c.store.Refresh(ctx, logger)
	c.metrics.ObserveRefresh(metrics.RefreshForced, err)

	return err
}

func (c *Client) RetryConfig() api.RetryConfig {
	return c.api.RetryConfig()
}

// NextPage follows the next_href of a collection page.
func NextPage[T any](ctx context.Context, logger zerolog.Logger, c *Client, page *types.Paging[T]) (*types.Paging[T], error) {
	if nil == page || !page.HasNext() {
		return nil, ErrNoNextPage
	}

	return api.Get[types.Paging[T]](ctx, logger, c.api, page.NextHref, nil)
}

func resourcePath(collection string, id types.Identifier, sub ...string) (string, error) {
	if id.IsZero() {
		return "", ErrEmptyIdentifier
	}

	path := collection + "/" + id.String()
	for _, s := range sub {
		path += "/" + s
	}

	return path, nil
}

func get[R any](ctx context.Context, logger zerolog.Logger, c *Client, collection string, id types.Identifier, q api.Query, sub ...string) (*R, error) {
	path, err := resourcePath(collection, id, sub...)
	if nil != err {
		return nil, err
	}

	return api.Get[R](ctx, logger, c.api, path, q)
}
