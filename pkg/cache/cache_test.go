package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/graphscape/pkg/httputil"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set() error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get() = %q, %v, %v, want a miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete() error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}

	if _, hit, _ := c.Get(ctx, "missing"); hit {
		t.Error("Get(missing) hit")
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Errorf("Get(k) = %q, %v, %v, want v, true, nil", data, hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete() error: %v", err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete() twice error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get() after Delete hit")
	}
}

func TestFileCache_Expired(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get() of expired entry hit")
	}
}

func TestFileCache_Clear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for _, k := range []string{"a", "b", "c"} {
		_ = c.Set(ctx, k, []byte(k), 0)
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear() = %d, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("Get() after Clear hit")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("len(Hash()) = %d, want 64", len(h1))
	}
}

func TestHashJSON_MapOrder(t *testing.T) {
	a, err := HashJSON(map[string]int{"x": 1, "y": 2})
	if err != nil {
		t.Fatalf("HashJSON() error: %v", err)
	}
	b, _ := HashJSON(map[string]int{"y": 2, "x": 1})
	if a != b {
		t.Errorf("HashJSON() differs for equal maps: %s != %s", a, b)
	}
	if _, err := HashJSON(func() {}); err == nil {
		t.Error("HashJSON(func) should fail")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	lk1 := k.LayoutKey("hash123", LayoutKeyOpts{Type: "circular2d"})
	lk2 := k.LayoutKey("hash123", LayoutKeyOpts{Type: "forceDirected2d"})
	lk3 := k.LayoutKey("hash123", LayoutKeyOpts{Type: "circular2d", Collapsed: []string{"a"}})
	if lk1 == lk2 || lk1 == lk3 {
		t.Error("Different LayoutKeyOpts should produce different keys")
	}
	if lk1 != k.LayoutKey("hash123", LayoutKeyOpts{Type: "circular2d"}) {
		t.Error("LayoutKey should be deterministic")
	}
	if !strings.HasPrefix(lk1, "layout:") {
		t.Errorf("LayoutKey() = %s, want layout: prefix", lk1)
	}

	ak1 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg"})
	ak2 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "png"})
	if ak1 == ak2 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "session:123:")
	key := scoped.LayoutKey("h", LayoutKeyOpts{})
	if !strings.HasPrefix(key, "session:123:layout:") {
		t.Errorf("LayoutKey() = %s, want session prefix", key)
	}

	nilInner := NewScopedKeyer(nil, "p:")
	if got, want := nilInner.ArtifactKey("h", ArtifactKeyOpts{}), "p:"+NewDefaultKeyer().ArtifactKey("h", ArtifactKeyOpts{}); got != want {
		t.Errorf("ArtifactKey() = %s, want %s", got, want)
	}
}

func TestNewRedisCache_BadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), RedisOptions{URL: "http://localhost"}); err == nil {
		t.Error("NewRedisCache() with http scheme should fail")
	}
}

func TestNewMongoCache_BadURI(t *testing.T) {
	if _, err := NewMongoCache(context.Background(), MongoOptions{URI: "http://localhost"}); err == nil {
		t.Error("NewMongoCache() with http scheme should fail")
	}
}

func TestUnavailable(t *testing.T) {
	err := unavailable(errors.New("connection refused"))
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("unavailable() = %v, want ErrBackendUnavailable in chain", err)
	}
	var re *httputil.RetryableError
	if !errors.As(err, &re) {
		t.Errorf("unavailable() = %T, want *httputil.RetryableError", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("unavailable() = %q, want the cause in the message", err)
	}
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	old := connectPolicy
	connectPolicy.Delay = time.Millisecond
	defer func() { connectPolicy = old }()

	_, err := NewRedisCache(context.Background(), RedisOptions{
		URL:            "redis://127.0.0.1:1",
		ConnectTimeout: 50 * time.Millisecond,
	})
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("NewRedisCache() error = %v, want ErrBackendUnavailable", err)
	}
}
