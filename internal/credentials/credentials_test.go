package credentials

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/starford/brewstock/internal/apperr"
)

func tempFileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "conf", "credentials.yaml"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return s
}

func tempSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "brewstock.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStores_SaveAndLoad(t *testing.T) {
	stores := map[string]Store{
		"file":   tempFileStore(t),
		"sqlite": tempSQLiteStore(t),
	}
	ctx := context.Background()
	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Load(ctx); !errors.Is(err, apperr.ErrNoCredentials) {
				t.Fatalf("empty load err = %v, want ErrNoCredentials", err)
			}
			want := Credentials{UserID: "user-1", APIKey: "key-abcdef"}
			if err := s.Save(ctx, want); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := s.Load(ctx)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got != want {
				t.Errorf("got %+v, want %+v", got, want)
			}

			next := Credentials{UserID: "user-2", APIKey: "key-2"}
			if err := s.Save(ctx, next); err != nil {
				t.Fatalf("Save overwrite: %v", err)
			}
			got, _ = s.Load(ctx)
			if got != next {
				t.Errorf("after overwrite got %+v", got)
			}
		})
	}
}

func TestStores_SaveRejectsIncompletePair(t *testing.T) {
	ctx := context.Background()
	for name, s := range map[string]Store{"file": tempFileStore(t), "sqlite": tempSQLiteStore(t)} {
		t.Run(name, func(t *testing.T) {
			if err := s.Save(ctx, Credentials{UserID: "only-user"}); err == nil {
				t.Fatal("expected validation error")
			}
			if _, err := s.Load(ctx); !errors.Is(err, apperr.ErrNoCredentials) {
				t.Errorf("nothing should have been written, got %v", err)
			}
		})
	}
}

func TestFileStore_PartialFileIsNotConfigured(t *testing.T) {
	s := tempFileStore(t)
	if err := os.MkdirAll(filepath.Dir(s.Path()), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.Path(), []byte("user_id: abc\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(context.Background()); !errors.Is(err, apperr.ErrNoCredentials) {
		t.Errorf("err = %v, want ErrNoCredentials", err)
	}
}

func TestFileStore_PermissionsAndNoLeftovers(t *testing.T) {
	s := tempFileStore(t)
	if err := s.Save(context.Background(), Credentials{UserID: "u", APIKey: "k"}); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, want 600", perm)
	}
	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(s.Path()), ".brewstock-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFileStore_DirectoryRejected(t *testing.T) {
	if _, err := NewFileStore(t.TempDir()); err == nil {
		t.Error("expected error when path is a directory")
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := Open("redis", "x"); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestMasked(t *testing.T) {
	if got := (Credentials{APIKey: "abcdefgh"}).Masked(); got != "****efgh" {
		t.Errorf("Masked = %q", got)
	}
	if got := (Credentials{APIKey: "abc"}).Masked(); got != "***" {
		t.Errorf("Masked short = %q", got)
	}
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatch_DetectsSave(t *testing.T) {
	s := tempFileStore(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Watch(ctx, s.Path(), logger, func() { calls.Add(1) })
	}()
	time.Sleep(100 * time.Millisecond)

	// Writing an unrelated file in the same directory is ignored.
	_ = os.WriteFile(filepath.Join(filepath.Dir(s.Path()), "other.txt"), []byte("x"), 0o600)
	if err := s.Save(ctx, Credentials{UserID: "u", APIKey: "k"}); err != nil {
		t.Fatal(err)
	}

	eventually(t, 2*time.Second, 20*time.Millisecond, func() bool {
		return calls.Load() >= 1
	}, "watcher did not report the credentials change")

	cancel()
	<-done
	if n := calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1 (debounced)", n)
	}
}
