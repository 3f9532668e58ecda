package downloader

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/xeptore/scdl/soundcloud/fs"
	"github.com/xeptore/scdl/soundcloud/types"
)

// remux hands HLS streams of codecs that cannot be concatenated byte-wise
// to ffmpeg, copying the audio stream into a matching container.
func (d *Downloader) remux(
	ctx context.Context,
	logger zerolog.Logger,
	playlistURL string,
	format types.Format,
	file fs.TrackFile,
) (string, error) {
	ext, muxer := container(format.MimeType)

	args := []string{
		"-hide_banner",
		"-loglevel",
		"error",
		"-y",
		"-i",
		playlistURL,
		"-c",
		"copy",
		"-f",
		muxer,
		file.TempPath(),
	}

	cmd := exec.CommandContext(ctx, d.conf.FFmpegPath, args...)
	logger.Debug().Str("ffmpeg", d.conf.FFmpegPath).Str("muxer", muxer).Msg("Starting ffmpeg command")

	if out, err := cmd.CombinedOutput(); nil != err {
		logger.Error().Err(err).Str("output", strings.TrimSpace(string(out))).Msg("Failed to remux hls stream")
		return "", fmt.Errorf("remux hls stream: %v", err)
	}

	return file.Commit(ext)
}
