package downloader

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/xeptore/scdl/cache"
	"github.com/xeptore/scdl/config"
	"github.com/xeptore/scdl/ratelimit"
	"github.com/xeptore/scdl/soundcloud/fs"
	"github.com/xeptore/scdl/soundcloud/types"
	"github.com/xeptore/scdl/unit"
)

const (
	maxChunkSegments = 10
	maxSegmentSize   = 32 * unit.Mebibyte
)

var (
	ErrTooManyRequests      = errors.New("too many requests")
	ErrUnsupportedProtocol  = errors.New("unsupported transcoding protocol")
	ErrEncryptedPlaylist    = errors.New("encrypted hls playlists are not supported")
	ErrEmptyPlaylist        = errors.New("hls playlist has no segments")
	ErrTrackNotDownloadable = errors.New("track has no playable transcoding")
)

type Client interface {
	Track(ctx context.Context, logger zerolog.Logger, id types.Identifier) (*types.Track, error)
	Playlist(ctx context.Context, logger zerolog.Logger, id types.Identifier) (*types.Playlist, error)
	ResolveStreamURL(ctx context.Context, logger zerolog.Logger, t types.Transcoding, trackAuthorization string) (string, error)
}

type Downloader struct {
	client     Client
	dir        fs.DownloadDir
	conf       config.Downloader
	timeouts   config.SoundCloudTimeouts
	cache      *cache.Cache
	trackPause func() time.Duration
}

type Option func(*Downloader)

// WithTrackPause overrides the pause taken between playlist tracks.
func WithTrackPause(f func() time.Duration) Option {
	return func(d *Downloader) { d.trackPause = f }
}

func New(
	client Client,
	conf config.Downloader,
	timeouts config.SoundCloudTimeouts,
	c *cache.Cache,
	opts ...Option,
) *Downloader {
	if nil == c {
		c = cache.New()
	}

	d := &Downloader{
		client:     client,
		dir:        fs.DownloadDirFrom(conf.Dir),
		conf:       conf,
		timeouts:   timeouts,
		cache:      c,
		trackPause: ratelimit.TrackDownloadSleep,
	}
	for _, opt := range opts {
		opt(d)
	}

	return d
}

// TrackMeta fetches track metadata through the cache.
func (d *Downloader) TrackMeta(ctx context.Context, logger zerolog.Logger, id types.Identifier) (*types.Track, error) {
	return d.cache.Tracks.Fetch(id.String(), cache.DefaultTrackTTL, func() (*types.Track, error) {
		return d.client.Track(ctx, logger, id)
	})
}

func (d *Downloader) playlistMeta(ctx context.Context, logger zerolog.Logger, id types.Identifier) (*types.Playlist, error) {
	return d.cache.Playlists.Fetch(id.String(), cache.DefaultPlaylistTTL, func() (*types.Playlist, error) {
		return d.client.Playlist(ctx, logger, id)
	})
}

// Track downloads a single track into the download directory and returns
// the written file path.
func (d *Downloader) Track(ctx context.Context, logger zerolog.Logger, id types.Identifier, protocol types.Protocol) (string, error) {
	logger = logger.With().Str("track_id", id.String()).Logger()

	track, err := d.TrackMeta(ctx, logger, id)
	if nil != err {
		return "", fmt.Errorf("get track: %w", err)
	}

	t, err := track.Media.Select(protocol)
	if nil != err {
		return "", fmt.Errorf("%w: %w", ErrTrackNotDownloadable, err)
	}

	return d.download(ctx, logger, d.dir, track, *t)
}

// Transcoding downloads the given variant of track.
func (d *Downloader) Transcoding(ctx context.Context, logger zerolog.Logger, track *types.Track, t types.Transcoding) (string, error) {
	logger = logger.With().Str("track_id", track.Identifier().String()).Logger()
	return d.download(ctx, logger, d.dir, track, t)
}

func (d *Downloader) download(
	ctx context.Context,
	logger zerolog.Logger,
	dir fs.DownloadDir,
	track *types.Track,
	t types.Transcoding,
) (string, error) {
	logger = logger.With().
		Str("protocol", string(t.Format.Protocol)).
		Str("mime_type", t.Format.MimeType).
		Logger()

	if err := dir.Ensure(); nil != err {
		return "", err
	}

	file := dir.Track(track.Artist(), track.Title)
	if existing, err := file.Existing(); nil != err {
		return "", err
	} else if existing != "" {
		logger.Info().Str("path", existing).Msg("Track already downloaded, skipping")
		return existing, nil
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeouts.DownloadTrackDuration())
	defer cancel()

	streamURL, err := d.client.ResolveStreamURL(ctx, logger, t, track.TrackAuthorization)
	if nil != err {
		return "", fmt.Errorf("resolve stream url: %w", err)
	}

	var path string
	switch p := t.Format.Protocol; {
	case p == types.ProtocolProgressive:
		path, err = d.progressive(ctx, logger, streamURL, t.Format, file)
	case p == types.ProtocolHLS && t.Format.IsMPEG():
		path, err = d.hls(ctx, logger, streamURL, file)
	case p == types.ProtocolHLS:
		path, err = d.remux(ctx, logger, streamURL, t.Format, file)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedProtocol, p)
	}
	if nil != err {
		if removeErr := file.RemoveTemp(); nil != removeErr {
			logger.Error().Err(removeErr).Msg("Failed to remove incomplete track file")
			err = errors.Join(err, removeErr)
		}

		return "", err
	}

	if err := file.InfoFile.Write(*track); nil != err {
		logger.Error().Err(err).Msg("Failed to write track info file")
		return "", fmt.Errorf("write track info file: %v", err)
	}

	logger.Info().Str("path", path).Msg("Track downloaded")

	return path, nil
}

// container maps a transcoding mime type to a file extension and the
// matching ffmpeg muxer.
func container(mimeType string) (ext, muxer string) {
	switch {
	case strings.HasPrefix(mimeType, "audio/mpeg"):
		return "mp3", "mp3"
	case strings.HasPrefix(mimeType, "audio/mp4"):
		return "m4a", "mp4"
	case strings.HasPrefix(mimeType, "audio/ogg"):
		return "ogg", "ogg"
	default:
		return "mka", "matroska"
	}
}
