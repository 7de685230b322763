// Package testutil provides a fake Brewfather upstream and credential
// fixtures shared by package tests.
package testutil

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/starford/brewstock/internal/credentials"
)

// Fixture credentials accepted by the fake upstream.
const (
	UserID = "test-user"
	APIKey = "test-key"
)

// Credentials returns the fixture credential pair.
func Credentials() credentials.Credentials {
	return credentials.Credentials{UserID: UserID, APIKey: APIKey}
}

// CredentialStore creates a file store in a temp dir. When seed is true the
// fixture credentials are saved into it.
func CredentialStore(t *testing.T, seed bool) *credentials.FileStore {
	t.Helper()
	store, err := credentials.NewFileStore(filepath.Join(t.TempDir(), "credentials.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if seed {
		if err := store.Save(context.Background(), Credentials()); err != nil {
			t.Fatal(err)
		}
	}
	return store
}

// Upstream is a fake Brewfather API serving JSON fixtures.
type Upstream struct {
	*httptest.Server

	mu       sync.Mutex
	bodies   map[string]string
	failWith int

	requests atomic.Int64
}

// FakeBrewfather starts a fake upstream with the default fixtures. It is
// closed when the test ends.
func FakeBrewfather(t *testing.T) *Upstream {
	t.Helper()
	u := &Upstream{bodies: map[string]string{
		"/inventory/fermentables": FermentablesJSON,
		"/inventory/hops":         HopsJSON,
		"/batches":                BatchesJSON,
		"/batches/b-12":           BatchDetailJSON,
	}}
	u.Server = httptest.NewServer(http.HandlerFunc(u.serve))
	t.Cleanup(u.Close)
	return u
}

// Set replaces the body served for path.
func (u *Upstream) Set(path, body string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.bodies[path] = body
}

// Fail makes every request answer with status until Fail(0) is called.
func (u *Upstream) Fail(status int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.failWith = status
}

// Requests returns how many requests were served.
func (u *Upstream) Requests() int64 {
	return u.requests.Load()
}

func (u *Upstream) serve(w http.ResponseWriter, r *http.Request) {
	u.requests.Add(1)

	user, key, ok := r.BasicAuth()
	if !ok || user != UserID || key != APIKey {
		http.Error(w, `{"message":"Unauthorized"}`, http.StatusUnauthorized)
		return
	}

	u.mu.Lock()
	fail := u.failWith
	body, found := u.bodies[strings.TrimSuffix(r.URL.Path, "/")]
	u.mu.Unlock()

	if fail != 0 {
		http.Error(w, `{"message":"unavailable"}`, fail)
		return
	}
	if !found {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

// Logger returns a logger that only reports errors.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}
