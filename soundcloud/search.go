package soundcloud

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/xeptore/scdl/soundcloud/api"
	"github.com/xeptore/scdl/soundcloud/query"
	"github.com/xeptore/scdl/soundcloud/types"
)

// SearchResults returns query suggestions for q.
func (c *Client) SearchResults(ctx context.Context, logger zerolog.Logger, q *query.SearchQuery) (*types.SearchSuggestions, error) {
	return api.Get[types.SearchSuggestions](ctx, logger, c.api, "search/queries", q)
}

// SearchAll searches tracks, users and playlists at once.
func (c *Client) SearchAll(ctx context.Context, logger zerolog.Logger, q *query.SearchQuery) (*types.SearchAll, error) {
	return api.Get[types.SearchAll](ctx, logger, c.api, "search", q)
}
