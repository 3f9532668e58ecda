package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/scdl/soundcloud/api"
)

func TestExecutorURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		base string
		req  api.Request
		want string
	}{
		{
			name: "relative path",
			base: "https://api.example.test",
			req:  api.Request{Path: "tracks/1", Query: nil, ClientID: "cid"},
			want: "https://api.example.test/tracks/1?client_id=cid",
		},
		{
			name: "single slash boundary",
			base: "https://api.example.test/",
			req:  api.Request{Path: "/tracks/1", Query: nil, ClientID: "cid"},
			want: "https://api.example.test/tracks/1?client_id=cid",
		},
		{
			name: "query before client id",
			base: "https://api.example.test",
			req:  api.Request{Path: "search/tracks", Query: map[string][]string{"q": {"a b"}, "limit": {"5"}}, ClientID: "cid"},
			want: "https://api.example.test/search/tracks?limit=5&q=a+b&client_id=cid",
		},
		{
			name: "absolute path kept",
			base: "https://api.example.test",
			req: api.Request{
				Path:     "https://api.example.test/media/soundcloud:tracks:1/abc/stream/progressive",
				Query:    map[string][]string{"track_authorization": {"xyz"}},
				ClientID: "cid",
			},
			want: "https://api.example.test/media/soundcloud:tracks:1/abc/stream/progressive?track_authorization=xyz&client_id=cid",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := api.NewHTTPExecutor(tc.base, time.Second, nil).URL(tc.req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExecutorClassifiesResponses(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "cid", r.URL.Query().Get("client_id"))
		_, _ = w.Write([]byte(`{"value":"ok"}`))
	})
	mux.HandleFunc("/unauthorized", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"gone"}`))
	})
	mux.HandleFunc("/garbage", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	exec := api.NewHTTPExecutor(srv.URL, 5*time.Second, nil)
	execute := func(path string, dst any) api.Outcome {
		return exec.Execute(t.Context(), zerolog.Nop(), api.Request{Path: path, Query: nil, ClientID: "cid"}, dst)
	}

	var p payload
	o := execute("ok", &p)
	assert.Equal(t, api.OutcomeSuccess, o.Kind)
	assert.Equal(t, "ok", p.Value)

	o = execute("unauthorized", &p)
	assert.Equal(t, api.OutcomeAuthFailure, o.Kind)
	assert.Equal(t, http.StatusUnauthorized, o.StatusCode)

	o = execute("missing", &p)
	assert.Equal(t, api.OutcomeHTTPFailure, o.Kind)
	assert.Equal(t, http.StatusNotFound, o.StatusCode)
	assert.JSONEq(t, `{"error":"gone"}`, string(o.Body))
	require.ErrorContains(t, o.AsError(), "gone")

	o = execute("garbage", &p)
	assert.Equal(t, api.OutcomeDecodeFailure, o.Kind)
	require.ErrorIs(t, o.AsError(), api.ErrDecode)
}

func TestExecutorTransportFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	o := api.NewHTTPExecutor(srv.URL, time.Second, nil).
		Execute(t.Context(), zerolog.Nop(), api.Request{Path: "tracks/1", Query: nil, ClientID: "cid"}, nil)
	assert.Equal(t, api.OutcomeTransportFailure, o.Kind)
	require.ErrorIs(t, o.AsError(), api.ErrTransport)
}
