package soundcloud_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/xeptore/scdl/config"
)

// fakeSoundCloud serves a landing page, one script carrying the current
// client id and canned API responses under /api/ that require a valid id.
type fakeSoundCloud struct {
	srv          *httptest.Server
	landingHits  atomic.Int32
	apiHits      atomic.Int32
	holdScript   atomic.Int32
	mu           sync.Mutex
	validID      string
	scriptID     string
	responses    map[string]string
	lastPath     string
	lastQuery    url.Values
	unauthorized int
}

func newFakeSoundCloud(t *testing.T, clientID string) *fakeSoundCloud {
	t.Helper()

	f := &fakeSoundCloud{ //nolint:exhaustruct
		validID:   clientID,
		scriptID:  clientID,
		responses: make(map[string]string),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		f.landingHits.Add(1)
		fmt.Fprintf(w, `<html><script crossorigin src="%s/assets/app.js"></script></html>`, f.srv.URL)
	})
	mux.HandleFunc("/assets/app.js", func(w http.ResponseWriter, r *http.Request) {
		// Hold the script until n API calls arrived so they join one refresh.
		if n := f.holdScript.Load(); n > 0 {
			for f.apiHits.Load() < n {
				select {
				case <-r.Context().Done():
					return
				case <-time.After(5 * time.Millisecond):
				}
			}
			time.Sleep(100 * time.Millisecond)
		}

		f.mu.Lock()
		id := f.scriptID
		f.mu.Unlock()
		fmt.Fprintf(w, `(function(){var e={client_id:"%s",env:"production"}})()`, id)
	})
	mux.HandleFunc("/waveforms/", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ".json") || r.URL.Query().Has("client_id") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"width":3,"height":140,"samples":[1,2,3]}`))
	})
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		f.apiHits.Add(1)
		path := strings.TrimPrefix(r.URL.Path, "/api/")

		f.mu.Lock()
		defer f.mu.Unlock()

		f.lastPath = path
		f.lastQuery = r.URL.Query()

		if r.URL.Query().Get("client_id") != f.validID || f.unauthorized > 0 {
			if f.unauthorized > 0 {
				f.unauthorized--
			}
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		body, ok := f.responses[path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[{"error_message":"404 - Not Found"}]}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)

	return f
}

func (f *fakeSoundCloud) config() config.SoundCloud {
	conf := config.Default().SoundCloud
	conf.LandingURL = f.srv.URL
	conf.APIURL = f.srv.URL + "/api"
	conf.ClientID = ""

	return conf
}

func (f *fakeSoundCloud) respond(path, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[path] = strings.ReplaceAll(body, "{{server}}", f.srv.URL)
}

// rotate invalidates the current client id and publishes next.
func (f *fakeSoundCloud) rotate(next string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validID = next
	f.scriptID = next
}

func (f *fakeSoundCloud) last() (string, url.Values) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.lastPath, f.lastQuery
}
