package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/xeptore/scdl/httputil"
	"github.com/xeptore/scdl/soundcloud/fs"
	"github.com/xeptore/scdl/soundcloud/types"
)

func (d *Downloader) progressive(
	ctx context.Context,
	logger zerolog.Logger,
	streamURL string,
	format types.Format,
	file fs.TrackFile,
) (string, error) {
	if err := d.saveTo(ctx, logger, streamURL, file.TempPath()); nil != err {
		return "", err
	}

	ext := detectExt(logger, file.TempPath(), format)

	return file.Commit(ext)
}

func (d *Downloader) saveTo(ctx context.Context, logger zerolog.Logger, streamURL, fileName string) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if nil != err {
		logger.Error().Err(err).Msg("Failed to create track download request")
		return fmt.Errorf("create track download request: %w", err)
	}

	client := http.Client{Timeout: d.timeouts.DownloadTrackDuration()} //nolint:exhaustruct
	resp, err := client.Do(req)
	if nil != err {
		logger.Error().Err(err).Msg("Failed to send track download request")
		return fmt.Errorf("send track download request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); nil != closeErr {
			logger.Error().Err(closeErr).Msg("Failed to close track download response body")
			err = errors.Join(err, fmt.Errorf("close track download response body: %v", closeErr))
		}
	}()

	switch code := resp.StatusCode; code {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return ErrTooManyRequests
	default:
		respBytes, err := httputil.ReadResponseBody(resp)
		if nil != err {
			logger.Error().Err(err).Int("status_code", code).Msg("Failed to read response body")
			return err
		}

		logger.Error().Int("status_code", code).Bytes("response_body", respBytes).Msg("Unexpected response status code")

		return fmt.Errorf("unexpected response code %d with body: %s", code, string(respBytes))
	}

	f, err := os.OpenFile(fileName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o0600)
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

	if n, err := io.Copy(f, resp.Body); nil != err {
		logger.Error().Err(err).Msg("Failed to write track file")
		return fmt.Errorf("write track file: %w", err)
	} else if n == 0 {
		return errors.New("empty track response body")
	}

	if err := f.Sync(); nil != err {
		logger.Error().Err(err).Msg("Failed to sync track file")
		return fmt.Errorf("sync track file: %v", err)
	}

	return nil
}

// detectExt sniffs the downloaded content and falls back to the advertised
// mime type when the content is not recognized.
func detectExt(logger zerolog.Logger, fileName string, format types.Format) string {
	mt, err := mimetype.DetectFile(fileName)
	if nil != err {
		logger.Warn().Err(err).Msg("Failed to detect track file type")
	} else if ext := strings.TrimPrefix(mt.Extension(), "."); ext != "" && strings.HasPrefix(mt.String(), "audio/") {
		return ext
	}

	ext, _ := container(format.MimeType)

	return ext
}
