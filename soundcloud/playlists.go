package soundcloud

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/xeptore/scdl/soundcloud/api"
	"github.com/xeptore/scdl/soundcloud/query"
	"github.com/xeptore/scdl/soundcloud/types"
)

func (c *Client) SearchPlaylists(ctx context.Context, logger zerolog.Logger, q *query.PlaylistsQuery) (*types.Playlists, error) {
	return api.Get[types.Playlists](ctx, logger, c.api, "search/playlists", q)
}

func (c *Client) Playlist(ctx context.Context, logger zerolog.Logger, id types.Identifier) (*types.Playlist, error) {
	return get[types.Playlist](ctx, logger, c, "playlists", id, nil)
}

func (c *Client) PlaylistReposters(ctx context.Context, logger zerolog.Logger, id types.Identifier, p *query.Paging) (*types.Users, error) {
	return get[types.Users](ctx, logger, c, "playlists", id, p, "reposters")
}
