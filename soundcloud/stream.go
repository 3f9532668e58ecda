package soundcloud

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/xeptore/scdl/soundcloud/api"
	"github.com/xeptore/scdl/soundcloud/query"
	"github.com/xeptore/scdl/soundcloud/types"
)

var errEmptyStreamURL = errors.New("resolved stream location has no url")

// Stream is a resolved, signed media location together with the variant it
// was resolved from.
type Stream struct {
	URL         string
	Transcoding types.Transcoding
}

// ResolveStreamURL exchanges a transcoding endpoint for the signed media URL.
func (c *Client) ResolveStreamURL(
	ctx context.Context,
	logger zerolog.Logger,
	t types.Transcoding,
	trackAuthorization string,
) (string, error) {
	logger = logger.With().Str("preset", t.Preset).Str("protocol", string(t.Format.Protocol)).Logger()

	loc, err := api.Get[types.StreamLocation](ctx, logger, c.api, t.URL, query.TrackAuthorization(trackAuthorization))
	if nil != err {
		return "", fmt.Errorf("resolve transcoding: %w", err)
	}

	if loc.URL == "" {
		logger.Error().Msg("Transcoding resolved to an empty url")
		return "", fmt.Errorf("%w: %w", api.ErrDecode, errEmptyStreamURL)
	}

	return loc.URL, nil
}

// TrackStream selects the transcoding of track matching protocol and
// resolves it.
func (c *Client) TrackStream(ctx context.Context, logger zerolog.Logger, track *types.Track, protocol types.Protocol) (*Stream, error) {
	t, err := track.Media.Select(protocol)
	if nil != err {
		return nil, err
	}

	u, err := c.ResolveStreamURL(ctx, logger, *t, track.TrackAuthorization)
	if nil != err {
		return nil, err
	}

	return &Stream{URL: u, Transcoding: *t}, nil
}

// StreamURL fetches the track and resolves its stream URL. An invalid
// protocol selects progressive.
func (c *Client) StreamURL(ctx context.Context, logger zerolog.Logger, id types.Identifier, protocol types.Protocol) (string, error) {
	track, err := c.Track(ctx, logger, id)
	if nil != err {
		return "", fmt.Errorf("get track: %w", err)
	}

	s, err := c.TrackStream(ctx, logger, track, protocol)
	if nil != err {
		return "", err
	}

	return s.URL, nil
}
