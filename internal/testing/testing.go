// package testing contains shared testing utilities
package testing

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/geo-martino/musify-cli/internal/models"
)

// StubAPI serves canned JSON bodies keyed by path. Paths match exactly;
// unknown paths return 404.
func StubAPI(t *testing.T, bodies map[string]string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := bodies[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

// EmptyPage is a paginated response with no items.
const EmptyPage = `{"items":[],"next":null}`

// Page builds a single-page paginated response from the given items.
func Page(t *testing.T, items any) string {
	t.Helper()
	data, err := json.Marshal(items)
	if err != nil {
		t.Fatalf("failed to encode page items: %v", err)
	}
	return `{"items":` + string(data) + `,"next":null}`
}

// WriteTrackFile writes a track as a library JSON file and returns its path.
func WriteTrackFile(t *testing.T, dir, name string, track models.Track) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if track.Path == "" {
		track.Path = path
	}
	data, err := json.Marshal(track)
	if err != nil {
		t.Fatalf("failed to encode track: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create track dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write track: %v", err)
	}
	return path
}

// WritePlaylistFile writes an m3u playlist listing the given track paths.
func WritePlaylistFile(t *testing.T, dir, name string, paths ...string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	content := strings.Join(paths, "\n") + "\n"
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create playlist dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write playlist: %v", err)
	}
	return path
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

// NewLimitedWriter creates a writer that fails after maxWrites writes.
func NewLimitedWriter(target io.Writer, maxWrites int) *LimitedWriter {
	return &LimitedWriter{maxWrites: maxWrites, target: target}
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}
