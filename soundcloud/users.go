package soundcloud

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/xeptore/scdl/soundcloud/api"
	"github.com/xeptore/scdl/soundcloud/query"
	"github.com/xeptore/scdl/soundcloud/types"
)

func (c *Client) SearchUsers(ctx context.Context, logger zerolog.Logger, q *query.UsersQuery) (*types.Users, error) {
	return api.Get[types.Users](ctx, logger, c.api, "search/users", q)
}

func (c *Client) User(ctx context.Context, logger zerolog.Logger, id types.Identifier) (*types.User, error) {
	return get[types.User](ctx, logger, c, "users", id, nil)
}

func (c *Client) UserFollowers(ctx context.Context, logger zerolog.Logger, id types.Identifier, p *query.Paging) (*types.Users, error) {
	return get[types.Users](ctx, logger, c, "users", id, p, "followers")
}

func (c *Client) UserFollowings(ctx context.Context, logger zerolog.Logger, id types.Identifier, p *query.Paging) (*types.Users, error) {
	return get[types.Users](ctx, logger, c, "users", id, p, "followings")
}

func (c *Client) UserPlaylists(ctx context.Context, logger zerolog.Logger, id types.Identifier, p *query.Paging) (*types.Playlists, error) {
	return get[types.Playlists](ctx, logger, c, "users", id, p, "playlists")
}

func (c *Client) UserTracks(ctx context.Context, logger zerolog.Logger, id types.Identifier, p *query.Paging) (*types.Tracks, error) {
	return get[types.Tracks](ctx, logger, c, "users", id, p, "tracks")
}

// UserReposts lists reposts from the user's stream. The endpoint only
// accepts numeric ids, so URNs are reduced to their last segment.
func (c *Client) UserReposts(ctx context.Context, logger zerolog.Logger, id types.Identifier, p *query.Paging) (*types.Reposts, error) {
	if id.IsZero() {
		return nil, ErrEmptyIdentifier
	}

	numeric, err := id.NumericID()
	if nil != err {
		return nil, err
	}

	path := "stream/users/" + strconv.FormatInt(numeric, 10) + "/reposts"

	return api.Get[types.Reposts](ctx, logger, c.api, path, p)
}
