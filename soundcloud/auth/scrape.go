package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"github.com/xeptore/scdl/httputil"
	"github.com/xeptore/scdl/metrics"
	"github.com/xeptore/scdl/must"
	"github.com/xeptore/scdl/redact"
)

var (
	ErrClientIDNotFound       = errors.New("client id not found in any script")
	ErrLandingPageUnavailable = errors.New("landing page unavailable")
)

var (
	scriptURLPattern = must.Value(regexp.Compile(`https?://[^\s"]+\.js`))
	clientIDPattern  = must.Value(regexp.Compile(`client_id[:=]"?(\w{32})`))
)

// Scraper finds the public client id embedded in one of the JavaScript
// bundles referenced by the landing page.
type Scraper struct {
	landingURL string
	timeout    time.Duration
	metrics    *metrics.Recorder
}

func NewScraper(landingURL string, timeout time.Duration, rec *metrics.Recorder) *Scraper {
	if nil == rec {
		rec = metrics.NewNop()
	}

	return &Scraper{
		landingURL: landingURL,
		timeout:    timeout,
		metrics:    rec,
	}
}

// Discover scans the landing page for script URLs, then fetches them in
// order of appearance and returns the first client id found. Scripts that
// fail to load are skipped.
func (s *Scraper) Discover(ctx context.Context, logger zerolog.Logger) (clientID string, err error) {
	defer func() { s.metrics.ObserveDiscovery(err) }()

	logger = logger.With().Str("landing_url", s.landingURL).Logger()

	landing, err := s.fetch(ctx, s.landingURL)
	if nil != err {
		logger.Error().Err(err).Msg("Failed to fetch landing page")
		return "", fmt.Errorf("%w: %w", ErrLandingPageUnavailable, err)
	}

	scripts := scriptURLPattern.FindAll(landing, -1)
	logger.Debug().Int("scripts", len(scripts)).Msg("Found script references on landing page")

	for _, script := range scripts {
		scriptURL := string(script)

		body, err := s.fetch(ctx, scriptURL)
		if nil != err {
			if ctxErr := ctx.Err(); nil != ctxErr {
				return "", ctxErr
			}

			logger.Warn().Err(err).Str("script_url", scriptURL).Msg("Failed to fetch script, skipping")
			continue
		}

		if match := clientIDPattern.FindSubmatch(body); nil != match {
			clientID = string(match[1])
			logger.Info().
				Str("script_url", scriptURL).
				Str("client_id", redact.String(clientID)).
				Msg("Discovered client id")

			return clientID, nil
		}
	}

	logger.Error().Int("scripts", len(scripts)).Msg("No script contained a client id")

	return "", ErrClientIDNotFound
}

func (s *Scraper) fetch(ctx context.Context, u string) (b []byte, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if nil != err {
		return nil, fmt.Errorf("create request: %w", err)
	}

	client := http.Client{Timeout: s.timeout} //nolint:exhaustruct
	resp, err := client.Do(req)
	if nil != err {
		return nil, fmt.Errorf("issue request: %w", err)
	}
	defer httputil.Close(resp.Body, &err)

	if code := resp.StatusCode; !httputil.IsSuccessStatus(code) {
		return nil, fmt.Errorf("unexpected status code %d", code)
	}

	return httputil.ReadResponseBody(resp)
}
