package soundcloud

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/xeptore/scdl/soundcloud/api"
	"github.com/xeptore/scdl/soundcloud/query"
	"github.com/xeptore/scdl/soundcloud/types"
)

func (c *Client) SearchTracks(ctx context.Context, logger zerolog.Logger, q *query.TracksQuery) (*types.Tracks, error) {
	return api.Get[types.Tracks](ctx, logger, c.api, "search/tracks", q)
}

func (c *Client) Track(ctx context.Context, logger zerolog.Logger, id types.Identifier) (*types.Track, error) {
	return get[types.Track](ctx, logger, c, "tracks", id, nil)
}

func (c *Client) TrackRelated(ctx context.Context, logger zerolog.Logger, id types.Identifier, p *query.Paging) (*types.Tracks, error) {
	return get[types.Tracks](ctx, logger, c, "tracks", id, p, "related")
}
