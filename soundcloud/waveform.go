package soundcloud

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/xeptore/scdl/httputil"
	"github.com/xeptore/scdl/soundcloud/types"
)

var ErrNoWaveform = errors.New("track has no waveform")

// TrackWaveform fetches the waveform samples of a track. The waveform host
// is public and takes no client id.
func (c *Client) TrackWaveform(ctx context.Context, logger zerolog.Logger, id types.Identifier) (*types.Waveform, error) {
	track, err := c.Track(ctx, logger, id)
	if nil != err {
		return nil, fmt.Errorf("get track: %w", err)
	}

	waveformURL := track.JSONWaveformURL()
	if waveformURL == "" {
		return nil, ErrNoWaveform
	}

	return c.waveform(ctx, logger.With().Str("waveform_url", waveformURL).Logger(), waveformURL)
}

func (c *Client) waveform(ctx context.Context, logger zerolog.Logger, waveformURL string) (w *types.Waveform, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, waveformURL, nil)
	if nil != err {
		logger.Error().Err(err).Msg("Failed to create waveform request")
		return nil, fmt.Errorf("create waveform request: %w", err)
	}
	req.Header.Add("Accept", "application/json")

	client := http.Client{Timeout: c.conf.Timeouts.WaveformDuration()} //nolint:exhaustruct
	resp, err := client.Do(req)
	if nil != err {
		logger.Error().Err(err).Msg("Failed to send waveform request")
		return nil, fmt.Errorf("send waveform request: %w", err)
	}
	defer httputil.Close(resp.Body, &err)

	if code := resp.StatusCode; !httputil.IsSuccessStatus(code) {
		logger.Error().Int("status_code", code).Msg("Unexpected waveform response status code")
		return nil, fmt.Errorf("unexpected waveform response status code %d", code)
	}

	respBytes, err := httputil.ReadNonEmptyResponseBody(resp)
	if nil != err {
		logger.Error().Err(err).Msg("Failed to read waveform response body")
		return nil, err
	}

	var waveform types.Waveform
	if err := json.Unmarshal(respBytes, &waveform); nil != err {
		logger.Error().Err(err).Msg("Failed to decode waveform response body")
		return nil, fmt.Errorf("decode waveform response body: %w", err)
	}

	return &waveform, nil
}
