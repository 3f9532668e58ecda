package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"

	"github.com/xeptore/scdl/soundcloud/downloader"
	"github.com/xeptore/scdl/soundcloud/types"
)

const maxTitleWidth = 60

func newTable(w io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)

	return t
}

func formatDuration(ms int64) string {
	d := (time.Duration(ms) * time.Millisecond).Round(time.Second)
	m := int(d / time.Minute)
	s := int((d % time.Minute) / time.Second)

	return fmt.Sprintf("%d:%02d", m, s)
}

func userName(u *types.User) string {
	if nil == u {
		return ""
	}

	return u.Username
}

func renderTracks(w io.Writer, tracks []types.Track) {
	t := newTable(w, table.Row{"ID", "Title", "Artist", "Duration", "Plays", "Streamable"})
	for _, track := range tracks {
		t.AppendRow(table.Row{
			track.ID,
			text.Trim(track.Title, maxTitleWidth),
			track.Artist(),
			formatDuration(track.Duration),
			track.PlaybackCount,
			lo.Ternary(track.Streamable, text.FgGreen.Sprint("yes"), text.FgRed.Sprint("no")),
		})
	}
	t.Render()
}

func renderTrack(w io.Writer, track *types.Track) {
	renderTracks(w, []types.Track{*track})

	t := newTable(w, table.Row{"Protocol", "Mime type", "Quality", "Preview"})
	for _, tc := range track.Media.Transcodings {
		t.AppendRow(table.Row{tc.Format.Protocol, tc.Format.MimeType, tc.Quality, tc.Snipped})
	}
	t.Render()
}

func renderUsers(w io.Writer, users []types.User) {
	t := newTable(w, table.Row{"ID", "Username", "Full name", "Followers", "Tracks", "Verified"})
	for _, u := range users {
		t.AppendRow(table.Row{u.ID, u.Username, u.FullName, u.FollowersCount, u.TrackCount, u.Verified})
	}
	t.Render()
}

func renderPlaylists(w io.Writer, playlists []types.Playlist) {
	t := newTable(w, table.Row{"ID", "Title", "Owner", "Tracks", "Album", "Duration"})
	for _, p := range playlists {
		t.AppendRow(table.Row{
			p.ID,
			text.Trim(p.Title, maxTitleWidth),
			userName(p.User),
			p.TrackCount,
			p.IsAlbum,
			formatDuration(p.Duration),
		})
	}
	t.Render()
}

func renderSuggestions(w io.Writer, suggestions []types.SearchSuggestion) {
	t := newTable(w, table.Row{"Query", "Output"})
	for _, s := range suggestions {
		t.AppendRow(table.Row{s.Query, s.Output})
	}
	t.Render()
}

func renderSearchItems(w io.Writer, items []types.SearchItem) {
	t := newTable(w, table.Row{"Kind", "ID", "Name"})
	for _, item := range items {
		switch {
		case nil != item.Track:
			t.AppendRow(table.Row{item.Kind, item.Track.ID, text.Trim(item.Track.Title, maxTitleWidth)})
		case nil != item.User:
			t.AppendRow(table.Row{item.Kind, item.User.ID, item.User.Username})
		case nil != item.Playlist:
			t.AppendRow(table.Row{item.Kind, item.Playlist.ID, text.Trim(item.Playlist.Title, maxTitleWidth)})
		}
	}
	t.Render()
}

func renderWaveform(w io.Writer, wf *types.Waveform) {
	peak := lo.Max(wf.Samples)
	fmt.Fprintf(w, "width=%d height=%d samples=%d peak=%d\n", wf.Width, wf.Height, len(wf.Samples), peak)
}

func transcodingLabel(t types.Transcoding) string {
	parts := []string{string(t.Format.Protocol), t.Format.MimeType}
	if t.Quality != "" {
		parts = append(parts, t.Quality)
	}
	if t.Snipped {
		parts = append(parts, "preview")
	}

	return strings.Join(parts, " | ")
}

func renderPlaylistResult(w io.Writer, res *downloader.PlaylistResult) {
	t := newTable(w, table.Row{"#", "Track", "Result"})
	for i, tr := range res.Tracks {
		title := strconv.FormatInt(tr.Track.ID, 10)
		if tr.Track.Title != "" {
			title = text.Trim(tr.Track.Title, maxTitleWidth)
		}

		var status string
		if path, err := tr.Path.Get(); nil != err {
			status = text.FgRed.Sprint(err.Error())
		} else {
			status = text.FgGreen.Sprint(*path)
		}
		t.AppendRow(table.Row{i + 1, title, status})
	}
	t.AppendFooter(table.Row{"", res.Dir, fmt.Sprintf("%d/%d failed", res.Failed(), len(res.Tracks))})
	t.Render()
}
