package soundcloud

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/xeptore/scdl/soundcloud/api"
	"github.com/xeptore/scdl/soundcloud/query"
	"github.com/xeptore/scdl/soundcloud/types"
)

// SearchAlbums returns playlists flagged as albums.
func (c *Client) SearchAlbums(ctx context.Context, logger zerolog.Logger, q *query.SearchQuery) (*types.Playlists, error) {
	return api.Get[types.Playlists](ctx, logger, c.api, "search/albums", q)
}
