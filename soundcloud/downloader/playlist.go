package downloader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/xeptore/scdl/result"
	"github.com/xeptore/scdl/soundcloud/fs"
	"github.com/xeptore/scdl/soundcloud/types"
)

// PlaylistResult lists the outcome of each playlist track, in order.
type PlaylistResult struct {
	Dir    string
	Tracks []TrackResult
}

type TrackResult struct {
	Track *types.Track
	Path  result.Of[string]
}

// Failed returns the number of tracks that could not be downloaded.
func (r PlaylistResult) Failed() int {
	n := 0
	for _, t := range r.Tracks {
		if nil != t.Path.Err() {
			n++
		}
	}

	return n
}

// Playlist downloads every track of a playlist sequentially into a
// directory named dirName, or after the playlist title when empty. A track
// that fails is logged and skipped; the failures are joined in the returned
// error.
func (d *Downloader) Playlist(
	ctx context.Context,
	logger zerolog.Logger,
	id types.Identifier,
	protocol types.Protocol,
	dirName string,
) (*PlaylistResult, error) {
	logger = logger.With().Str("playlist_id", id.String()).Logger()

	playlist, err := d.playlistMeta(ctx, logger, id)
	if nil != err {
		return nil, fmt.Errorf("get playlist: %w", err)
	}

	if dirName == "" {
		dirName = playlist.Title
	}
	dir := d.dir.Playlist(dirName)
	if err := dir.Ensure(); nil != err {
		return nil, err
	}

	if err := dir.PlaylistInfo().Write(*playlist); nil != err {
		logger.Error().Err(err).Msg("Failed to write playlist info file")
		return nil, fmt.Errorf("write playlist info file: %v", err)
	}

	res := &PlaylistResult{
		Dir:    dir.Path(),
		Tracks: make([]TrackResult, 0, len(playlist.Tracks)),
	}

	var errs []error
	for i, entry := range playlist.Tracks {
		if i > 0 {
			if err := sleep(ctx, d.trackPause()); nil != err {
				return res, errors.Join(append(errs, err)...)
			}
		}

		logger := logger.With().Int("index", i).Str("track_id", entry.Identifier().String()).Logger()

		track, path, err := d.playlistTrack(ctx, logger, entry, protocol, dir)
		if nil != err {
			logger.Error().Err(err).Msg("Failed to download playlist track")
			errs = append(errs, fmt.Errorf("track %s: %w", entry.Identifier(), err))
			res.Tracks = append(res.Tracks, TrackResult{Track: track, Path: result.Err[string](err)})

			continue
		}

		res.Tracks = append(res.Tracks, TrackResult{Track: track, Path: result.Ok(&path)})
	}

	logger.Info().
		Int("tracks", len(res.Tracks)).
		Int("failed", res.Failed()).
		Str("dir", res.Dir).
		Msg("Playlist download finished")

	return res, errors.Join(errs...)
}

func (d *Downloader) playlistTrack(
	ctx context.Context,
	logger zerolog.Logger,
	entry types.Track,
	protocol types.Protocol,
	dir fs.DownloadDir,
) (*types.Track, string, error) {
	track := &entry
	if entry.IsStub() {
		full, err := d.TrackMeta(ctx, logger, entry.Identifier())
		if nil != err {
			return track, "", fmt.Errorf("get track: %w", err)
		}
		track = full
	}

	t, err := track.Media.Select(protocol)
	if nil != err {
		return track, "", fmt.Errorf("%w: %w", ErrTrackNotDownloadable, err)
	}

	path, err := d.download(ctx, logger, dir, track, *t)

	return track, path, err
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
