package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/scdl/soundcloud/types"
)

func transcoding(url string, p types.Protocol, mime string, snipped bool) types.Transcoding {
	return types.Transcoding{
		URL:      url,
		Preset:   "",
		Duration: 0,
		Snipped:  snipped,
		Format:   types.Format{Protocol: p, MimeType: mime},
		Quality:  "sq",
	}
}

func TestMediaSelect(t *testing.T) {
	t.Parallel()

	media := types.Media{
		Transcodings: []types.Transcoding{
			transcoding("https://x.test/hls-opus", types.ProtocolHLS, `audio/ogg; codecs="opus"`, false),
			transcoding("https://x.test/hls-mp3", types.ProtocolHLS, "audio/mpeg", false),
			transcoding("https://x.test/prog-mp3", types.ProtocolProgressive, "audio/mpeg", false),
		},
	}

	got, err := media.Select(types.ProtocolProgressive)
	require.NoError(t, err)
	assert.Equal(t, "https://x.test/prog-mp3", got.URL)

	got, err = media.Select(types.ProtocolHLS)
	require.NoError(t, err)
	assert.Equal(t, "https://x.test/hls-mp3", got.URL)

	got, err = media.Select("")
	require.NoError(t, err)
	assert.Equal(t, types.ProtocolProgressive, got.Format.Protocol)
}

func TestMediaSelectFallbacks(t *testing.T) {
	t.Parallel()

	hlsOnly := types.Media{
		Transcodings: []types.Transcoding{
			transcoding("https://x.test/hls-aac", types.ProtocolHLS, "audio/mp4", false),
		},
	}
	got, err := hlsOnly.Select(types.ProtocolProgressive)
	require.NoError(t, err)
	assert.Equal(t, "https://x.test/hls-aac", got.URL)

	snippedFirst := types.Media{
		Transcodings: []types.Transcoding{
			transcoding("https://x.test/preview", types.ProtocolProgressive, "audio/mpeg", true),
			transcoding("https://x.test/full", types.ProtocolHLS, "audio/mpeg", false),
		},
	}
	got, err = snippedFirst.Select(types.ProtocolProgressive)
	require.NoError(t, err)
	assert.Equal(t, "https://x.test/full", got.URL)

	_, err = types.Media{Transcodings: nil}.Select(types.ProtocolHLS)
	require.ErrorIs(t, err, types.ErrNoTranscoding)

	encrypted := types.Media{
		Transcodings: []types.Transcoding{
			transcoding("https://x.test/enc", "ctr-encrypted-hls", "audio/mp4", false),
		},
	}
	_, err = encrypted.Select(types.ProtocolHLS)
	require.ErrorIs(t, err, types.ErrNoTranscoding)
}

func TestTrackJSONWaveformURL(t *testing.T) {
	t.Parallel()

	track := types.Track{WaveformURL: "https://wave.sndcdn.com/abc_m.png"} //nolint:exhaustruct
	assert.Equal(t, "https://wave.sndcdn.com/abc_m.json", track.JSONWaveformURL())
}
