package types

import (
	"errors"
	"strings"
)

var ErrNoTranscoding = errors.New("no usable transcoding")

type Protocol string

const (
	ProtocolHLS         Protocol = "hls"
	ProtocolProgressive Protocol = "progressive"
)

func (p Protocol) Valid() bool {
	return p == ProtocolHLS || p == ProtocolProgressive
}

type Format struct {
	Protocol Protocol `json:"protocol"`
	MimeType string   `json:"mime_type"`
}

// IsMPEG reports plain MP3 payloads, whose HLS segments can be concatenated
// byte by byte.
func (f Format) IsMPEG() bool {
	return strings.HasPrefix(f.MimeType, "audio/mpeg")
}

// Transcoding is a server-side encoded variant of a track. URL is the
// signed-URL resolution endpoint, not the audio itself.
type Transcoding struct {
	URL      string `json:"url"`
	Preset   string `json:"preset"`
	Duration int64  `json:"duration"`
	Snipped  bool   `json:"snipped"`
	Format   Format `json:"format"`
	Quality  string `json:"quality"`
}

type Media struct {
	Transcodings []Transcoding `json:"transcodings"`
}

// Select picks the transcoding to stream for the preferred protocol. Full
// length variants win over previews and MPEG wins over other HLS codecs.
// When nothing matches the preferred protocol the other one is tried.
func (m Media) Select(preferred Protocol) (*Transcoding, error) {
	if !preferred.Valid() {
		preferred = ProtocolProgressive
	}

	fallback := ProtocolHLS
	if preferred == ProtocolHLS {
		fallback = ProtocolProgressive
	}

	for _, snipped := range []bool{false, true} {
		for _, p := range []Protocol{preferred, fallback} {
			if t := m.find(p, snipped); nil != t {
				return t, nil
			}
		}
	}

	return nil, ErrNoTranscoding
}

func (m Media) find(p Protocol, snipped bool) *Transcoding {
	var candidate *Transcoding
	for i := range m.Transcodings {
		t := &m.Transcodings[i]
		if t.URL == "" || t.Format.Protocol != p || t.Snipped != snipped {
			continue
		}

		if t.Format.IsMPEG() {
			return t
		}

		if nil == candidate {
			candidate = t
		}
	}

	return candidate
}

// StreamLocation is the body of a resolved transcoding endpoint.
type StreamLocation struct {
	URL string `json:"url"`
}
