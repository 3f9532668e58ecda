package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/goccy/go-json"

	"github.com/xeptore/scdl/soundcloud/types"
)

const maxNameLen = 200

type DownloadDir string

func DownloadDirFrom(d string) DownloadDir {
	return DownloadDir(d)
}

func (dir DownloadDir) Path() string {
	return string(dir)
}

func (dir DownloadDir) Ensure() error {
	if err := os.MkdirAll(dir.Path(), 0o755); nil != err { //nolint:gosec
		return fmt.Errorf("failed to create download dir: %v", err)
	}

	return nil
}

// Playlist returns the directory a playlist's tracks are stored in.
func (dir DownloadDir) Playlist(title string) DownloadDir {
	return DownloadDir(filepath.Join(dir.Path(), SanitizeName(title)))
}

func (dir DownloadDir) PlaylistInfo() InfoFile[types.Playlist] {
	return InfoFile[types.Playlist]{Path: filepath.Join(dir.Path(), ".playlist.json")}
}

// Track names the files of a track as "<artist> - <title>".
func (dir DownloadDir) Track(artist, title string) TrackFile {
	name := title
	if artist != "" {
		name = artist + " - " + title
	}
	base := filepath.Join(dir.Path(), SanitizeName(name))

	return TrackFile{
		Base:     base,
		InfoFile: InfoFile[types.Track]{Path: base + ".json"},
	}
}

// TrackFile is a track whose extension is only known once its content has
// been downloaded.
type TrackFile struct {
	Base     string
	InfoFile InfoFile[types.Track]
}

func (t TrackFile) WithExt(ext string) string {
	return t.Base + "." + strings.TrimPrefix(ext, ".")
}

// TempPath is where the content is written before being renamed into place.
func (t TrackFile) TempPath() string {
	return filepath.Join(filepath.Dir(t.Base), "."+filepath.Base(t.Base)+".part")
}

// Existing returns the path of an already downloaded copy, or an empty string.
func (t TrackFile) Existing() (string, error) {
	matches, err := filepath.Glob(globEscape(t.Base) + ".*")
	if nil != err {
		return "", fmt.Errorf("failed to look up existing track files: %v", err)
	}

	for _, m := range matches {
		if m == t.InfoFile.Path {
			continue
		}

		return m, nil
	}

	return "", nil
}

func (t TrackFile) RemoveTemp() error {
	if err := os.Remove(t.TempPath()); nil != err && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove incomplete track file: %v", err)
	}

	return nil
}

// Commit moves the temp file to its final path with the given extension.
func (t TrackFile) Commit(ext string) (string, error) {
	dst := t.WithExt(ext)
	if err := os.Rename(t.TempPath(), dst); nil != err {
		return "", fmt.Errorf("failed to rename track file: %v", err)
	}

	return dst, nil
}

func globEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}

	return b.String()
}

// SanitizeName makes s usable as a single path element.
func SanitizeName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			return '_'
		case unicode.IsControl(r):
			return -1
		default:
			return r
		}
	}, s)
	s = strings.Trim(strings.TrimSpace(s), ".")

	if len(s) > maxNameLen {
		cut := maxNameLen
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = strings.TrimSpace(s[:cut])
	}

	if s == "" {
		return "untitled"
	}

	return s
}

type InfoFile[T any] struct {
	Path string
}

func (p InfoFile[T]) Read() (t *T, err error) {
	f, err := os.OpenFile(p.Path, os.O_RDONLY, 0o0600)
	if nil != err {
		return nil, fmt.Errorf("failed to open info file for read: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); nil != closeErr {
			err = errors.Join(err, fmt.Errorf("failed to close info file: %v", closeErr))
		}
	}()

	var out T
	if err := json.NewDecoder(f).Decode(&out); nil != err {
		return nil, fmt.Errorf("failed to decode info file contents: %v", err)
	}

	return &out, nil
}

func (p InfoFile[T]) Write(v T) (err error) {
	f, err := os.OpenFile(p.Path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o0600)
	if nil != err {
		return fmt.Errorf("failed to open info file for write: %v", err)
	}
	defer func() {
		if nil != err {
			if closeErr := f.Close(); nil != closeErr {
				err = errors.Join(err, fmt.Errorf("failed to close info file: %v", closeErr))
			}
			if removeErr := os.Remove(p.Path); nil != removeErr && !errors.Is(removeErr, os.ErrNotExist) {
				err = errors.Join(err, fmt.Errorf("failed to remove incomplete info file: %v", removeErr))
			}
		} else if closeErr := f.Close(); nil != closeErr {
			err = fmt.Errorf("failed to close info file: %v", closeErr)
		}
	}()

	if err := json.NewEncoder(f).Encode(v); nil != err {
		return fmt.Errorf("failed to write info content: %v", err)
	}

	if err := f.Sync(); nil != err {
		return fmt.Errorf("failed to sync info file: %v", err)
	}

	return nil
}
