package kv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/redis/go-redis/v9"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "nexus_user"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get on empty store: err = %v, want ErrNotFound", err)
	}

	if err := s.Set(ctx, "nexus_user", `{"id":"1"}`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "nexus_user", `{"id":"2"}`); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, err := s.Get(ctx, "nexus_user")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != `{"id":"2"}` {
		t.Errorf("Get = %q", got)
	}

	if err := s.Delete(ctx, "nexus_user"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "nexus_user"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete: err = %v", err)
	}
	if err := s.Delete(ctx, "nexus_user"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "session")
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	exerciseStore(t, s)

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat dir: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0700 {
		t.Errorf("dir perm = %o, want 700", perm)
	}
}

func TestFileStoreFilePermissions(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := s.Set(context.Background(), "k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	info, err := os.Stat(s.path("k"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file perm = %o, want 600", perm)
	}

	entries, _ := os.ReadDir(s.dir)
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}

func TestFileStoreCancelledContext(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Set(ctx, "k", "v"); !errors.Is(err, context.Canceled) {
		t.Errorf("Set with cancelled ctx: %v", err)
	}
}

// Runs only against a live server, e.g. REDIS_TEST_ADDR=localhost:6379.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}

	exerciseStore(t, NewRedisStore(client, "nexus-hvac-test:"))
}
