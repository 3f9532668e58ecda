package types

import (
	"strings"
)

type Track struct {
	ID                 int64    `json:"id"`
	URN                string   `json:"urn"`
	Kind               string   `json:"kind"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Duration           int64    `json:"duration"`
	FullDuration       int64    `json:"full_duration"`
	Genre              string   `json:"genre"`
	TagList            string   `json:"tag_list"`
	Permalink          string   `json:"permalink"`
	PermalinkURL       string   `json:"permalink_url"`
	ArtworkURL         string   `json:"artwork_url"`
	WaveformURL        string   `json:"waveform_url"`
	StreamURL          string   `json:"stream_url"`
	DownloadURL        string   `json:"download_url"`
	PurchaseURL        string   `json:"purchase_url"`
	PurchaseTitle      string   `json:"purchase_title"`
	Access             string   `json:"access"`
	Sharing            string   `json:"sharing"`
	EmbeddableBy       string   `json:"embeddable_by"`
	License            string   `json:"license"`
	LabelName          string   `json:"label_name"`
	ISRC               string   `json:"isrc"`
	Release            string   `json:"release"`
	ReleaseDate        string   `json:"release_date"`
	BPM                *float64 `json:"bpm"`
	Streamable         bool     `json:"streamable"`
	Downloadable       bool     `json:"downloadable"`
	Policy             string   `json:"policy"`
	PlaybackCount      int64    `json:"playback_count"`
	CommentCount       int64    `json:"comment_count"`
	LikesCount         int64    `json:"likes_count"`
	RepostsCount       int64    `json:"reposts_count"`
	CreatedAt          string   `json:"created_at"`
	LastModified       string   `json:"last_modified"`
	Media              Media    `json:"media"`
	TrackAuthorization string   `json:"track_authorization"`
	User               *User    `json:"user"`
}

func (t Track) Identifier() Identifier {
	if t.URN != "" {
		return URN(t.URN)
	}

	return ID(t.ID)
}

// IsStub reports a track returned inside a playlist with only its ID filled.
func (t Track) IsStub() bool {
	return t.Title == "" || len(t.Media.Transcodings) == 0
}

// Artist is the uploader's username, or an empty string.
func (t Track) Artist() string {
	if nil == t.User {
		return ""
	}

	return t.User.Username
}

// JSONWaveformURL converts the png waveform location to its json variant.
func (t Track) JSONWaveformURL() string {
	if strings.HasSuffix(t.WaveformURL, ".png") {
		return strings.TrimSuffix(t.WaveformURL, ".png") + ".json"
	}

	return t.WaveformURL
}

type Tracks = Paging[Track]

type Waveform struct {
	Width   int   `json:"width"`
	Height  int   `json:"height"`
	Samples []int `json:"samples"`
}
