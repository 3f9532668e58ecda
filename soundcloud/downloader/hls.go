package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/grafov/m3u8"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/xeptore/scdl/httputil"
	"github.com/xeptore/scdl/mathutil"
	"github.com/xeptore/scdl/progress"
	"github.com/xeptore/scdl/soundcloud/fs"
)

// hls downloads an MPEG audio HLS stream by fetching its segments in
// chunks concurrently and concatenating them in playlist order.
func (d *Downloader) hls(ctx context.Context, logger zerolog.Logger, playlistURL string, file fs.TrackFile) (string, error) {
	segments, err := d.hlsSegments(ctx, logger, playlistURL, true)
	if nil != err {
		return "", err
	}
	logger = logger.With().Int("segments", len(segments)).Logger()
	logger.Debug().Msg("Downloading hls segments")

	fileName := file.TempPath()

	var (
		numChunks = mathutil.DivCeil(len(segments), maxChunkSegments)
		wg, wgctx = errgroup.WithContext(ctx)
		counter   = progress.NewCounter(len(segments))
	)

	wg.SetLimit(max(d.conf.SegmentConcurrency, 1))
	for i := range numChunks {
		wg.Go(func() error {
			select {
			case <-wgctx.Done():
				return nil
			default:
			}

			logger := logger.With().Int("chunk_index", i).Logger()

			start := i * maxChunkSegments
			end := min(len(segments), start+maxChunkSegments)
			if err := d.downloadChunk(wgctx, logger, segments[start:end], chunkFileName(fileName, i)); nil != err {
				return fmt.Errorf("download track chunk: %w", err)
			}
			logger.Debug().Int("percent", counter.Add(end-start)).Msg("Track chunk downloaded")

			return nil
		})
	}

	if err := wg.Wait(); nil != err {
		removeChunks(logger, fileName, numChunks)
		return "", fmt.Errorf("wait for segment download workers: %w", err)
	}

	if err := ctx.Err(); nil != err {
		removeChunks(logger, fileName, numChunks)
		return "", err
	}

	if err := concatChunks(logger, fileName, numChunks); nil != err {
		removeChunks(logger, fileName, numChunks)
		return "", err
	}

	ext, _ := container("audio/mpeg")

	return file.Commit(ext)
}

func chunkFileName(fileName string, idx int) string {
	return fileName + ".chunk." + strconv.Itoa(idx)
}

func removeChunks(logger zerolog.Logger, fileName string, numChunks int) {
	for i := range numChunks {
		if err := os.Remove(chunkFileName(fileName, i)); nil != err && !errors.Is(err, os.ErrNotExist) {
			logger.Error().Err(err).Int("chunk_index", i).Msg("Failed to remove track chunk file")
		}
	}
}

func concatChunks(logger zerolog.Logger, fileName string, numChunks int) (err error) {
	f, err := os.OpenFile(fileName, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o0600)
	if nil != err {
		logger.Error().Err(err).Msg("Failed to create track file")
		return fmt.Errorf("create track file: %v", err)
	}
	defer func() {
		if closeErr := f.Close(); nil != closeErr {
			logger.Error().Err(closeErr).Msg("Failed to close track file")
			err = errors.Join(err, fmt.Errorf("close track file: %v", closeErr))
		}
	}()

	for i := range numChunks {
		if err := writeChunkToTrackFile(f, logger, chunkFileName(fileName, i)); nil != err {
			return fmt.Errorf("write track chunk to file: %v", err)
		}
	}

	if err := f.Sync(); nil != err {
		logger.Error().Err(err).Msg("Failed to sync track file")
		return fmt.Errorf("sync track file: %v", err)
	}

	return nil
}

func writeChunkToTrackFile(f *os.File, logger zerolog.Logger, chunkFileName string) (err error) {
	fp, err := os.OpenFile(chunkFileName, os.O_RDONLY, 0o0600)
	if nil != err {
		logger.Error().Err(err).Msg("Failed to open track chunk file")
		return fmt.Errorf("open track chunk file: %v", err)
	}
	defer func() {
		if closeErr := fp.Close(); nil != closeErr {
			logger.Error().Err(closeErr).Msg("Failed to close track chunk file")
			err = errors.Join(err, fmt.Errorf("close track chunk file: %v", closeErr))
		}
	}()

	if _, err := io.Copy(f, fp); nil != err {
		logger.Error().Err(err).Msg("Failed to copy track chunk to track file")
		return fmt.Errorf("copy track chunk to track file: %v", err)
	}

	if err := os.Remove(chunkFileName); nil != err {
		logger.Error().Err(err).Msg("Failed to remove track chunk file")
		return fmt.Errorf("remove track chunk file: %v", err)
	}

	return nil
}

func (d *Downloader) downloadChunk(ctx context.Context, logger zerolog.Logger, segments []string, fileName string) (err error) {
	f, err := os.OpenFile(fileName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if nil != err {
		logger.Error().Err(err).Msg("Failed to create track chunk file")
		return fmt.Errorf("create track chunk file: %v", err)
	}
	defer func() {
		if closeErr := f.Close(); nil != closeErr {
			logger.Error().Err(closeErr).Msg("Failed to close track chunk file")
			err = errors.Join(err, fmt.Errorf("close track chunk file: %v", closeErr))
		}
	}()

	for i, link := range segments {
		logger := logger.With().Int("segment_index", i).Logger()

		b, err := d.retrySegment(ctx, logger, link)
		if nil != err {
			return fmt.Errorf("download track segment: %w", err)
		}

		if _, err := f.Write(b); nil != err {
			logger.Error().Err(err).Msg("Failed to write track segment to chunk file")
			return fmt.Errorf("write track segment to chunk file: %v", err)
		}
	}

	return nil
}

func (d *Downloader) segmentBackOff(ctx context.Context) backoff.BackOff {
	return backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewExponentialBackOff(
				backoff.WithInitialInterval(200*time.Millisecond),
				backoff.WithMaxInterval(5*time.Second),
			),
			uint64(max(d.conf.SegmentRetries, 0)), //nolint:gosec
		),
		ctx,
	)
}

func (d *Downloader) retrySegment(ctx context.Context, logger zerolog.Logger, link string) ([]byte, error) {
	var out []byte
	operation := func() error {
		b, err := d.downloadSegment(ctx, logger, link)
		if nil != err {
			return err
		}
		out = b

		return nil
	}
	notify := func(err error, next time.Duration) {
		logger.Warn().Err(err).Dur("retry_in", next).Msg("Failed to download segment, retrying")
	}

	if err := backoff.RetryNotify(operation, d.segmentBackOff(ctx), notify); nil != err {
		return nil, err
	}

	return out, nil
}

func (d *Downloader) downloadSegment(ctx context.Context, logger zerolog.Logger, link string) (b []byte, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if nil != err {
		logger.Error().Err(err).Msg("Failed to create get track segment request")
		return nil, backoff.Permanent(fmt.Errorf("create get track segment request: %w", err))
	}

	client := http.Client{Timeout: d.timeouts.HLSSegmentDuration()} //nolint:exhaustruct
	resp, err := client.Do(req)
	if nil != err {
		return nil, fmt.Errorf("send track segment download request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); nil != closeErr {
			logger.Error().Err(closeErr).Msg("Failed to close get track segment response body")
			err = errors.Join(err, fmt.Errorf("close get track segment response body: %v", closeErr))
		}
	}()

	switch code := resp.StatusCode; {
	case code == http.StatusOK:
	case code == http.StatusTooManyRequests || code >= http.StatusInternalServerError:
		return nil, fmt.Errorf("unexpected response code %d", code)
	default:
		logger.Error().Int("status_code", code).Msg("Unexpected segment response status code")
		return nil, backoff.Permanent(fmt.Errorf("unexpected response code %d", code))
	}

	b, err = io.ReadAll(io.LimitReader(resp.Body, maxSegmentSize+1))
	if nil != err {
		return nil, fmt.Errorf("read track segment: %w", err)
	}

	switch {
	case len(b) == 0:
		return nil, errors.New("empty track segment")
	case len(b) > maxSegmentSize:
		return nil, backoff.Permanent(errors.New("track segment exceeds size limit"))
	}

	return b, nil
}

// hlsSegments returns the absolute segment URLs of a media playlist. A
// master playlist is followed to its highest bandwidth variant once.
func (d *Downloader) hlsSegments(ctx context.Context, logger zerolog.Logger, playlistURL string, followMaster bool) (segments []string, err error) {
	base, err := url.Parse(playlistURL)
	if nil != err {
		return nil, fmt.Errorf("parse playlist url: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, playlistURL, nil)
	if nil != err {
		logger.Error().Err(err).Msg("Failed to create playlist request")
		return nil, fmt.Errorf("create playlist request: %w", err)
	}

	client := http.Client{Timeout: d.timeouts.HLSSegmentDuration()} //nolint:exhaustruct
	resp, err := client.Do(req)
	if nil != err {
		logger.Error().Err(err).Msg("Failed to send playlist request")
		return nil, fmt.Errorf("send playlist request: %w", err)
	}
	defer httputil.Close(resp.Body, &err)

	if code := resp.StatusCode; !httputil.IsSuccessStatus(code) {
		logger.Error().Int("status_code", code).Msg("Unexpected playlist response status code")
		return nil, fmt.Errorf("unexpected playlist response code %d", code)
	}

	playlist, listType, err := m3u8.DecodeFrom(resp.Body, false)
	if nil != err {
		logger.Error().Err(err).Msg("Failed to decode hls playlist")
		return nil, fmt.Errorf("decode hls playlist: %v", err)
	}

	switch listType {
	case m3u8.MEDIA:
		media, ok := playlist.(*m3u8.MediaPlaylist)
		if !ok {
			return nil, errors.New("unexpected media playlist type")
		}

		return mediaSegments(base, media)
	case m3u8.MASTER:
		master, ok := playlist.(*m3u8.MasterPlaylist)
		if !ok {
			return nil, errors.New("unexpected master playlist type")
		}
		if !followMaster {
			return nil, errors.New("nested master playlists are not supported")
		}

		var best *m3u8.Variant
		for _, v := range master.Variants {
			if nil != v && (nil == best || v.Bandwidth > best.Bandwidth) {
				best = v
			}
		}
		if nil == best {
			return nil, ErrEmptyPlaylist
		}

		variantURL, err := base.Parse(best.URI)
		if nil != err {
			return nil, fmt.Errorf("parse variant uri: %v", err)
		}

		return d.hlsSegments(ctx, logger, variantURL.String(), false)
	default:
		return nil, fmt.Errorf("unexpected playlist type %d", listType)
	}
}

func mediaSegments(base *url.URL, media *m3u8.MediaPlaylist) ([]string, error) {
	if encrypted(media.Key) {
		return nil, ErrEncryptedPlaylist
	}

	segments := make([]string, 0, media.Count())
	for _, s := range media.Segments {
		if nil == s {
			break
		}

		if encrypted(s.Key) {
			return nil, ErrEncryptedPlaylist
		}

		u, err := base.Parse(s.URI)
		if nil != err {
			return nil, fmt.Errorf("parse segment uri: %v", err)
		}
		segments = append(segments, u.String())
	}

	if len(segments) == 0 {
		return nil, ErrEmptyPlaylist
	}

	return segments, nil
}

func encrypted(k *m3u8.Key) bool {
	return nil != k && k.Method != "" && !strings.EqualFold(k.Method, "NONE")
}
