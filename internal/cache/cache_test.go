package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ppiankov/kmbfeed/internal/config"
)

func TestOpen_Disabled(t *testing.T) {
	c, err := Open(context.Background(), config.Cache{Enabled: false, Backend: "redis"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(Nop); !ok {
		t.Fatalf("got %T, want Nop", c)
	}
	ctx := context.Background()
	if err := c.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("Nop should never hit")
	}
}

func TestOpen_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "request.db")
	c, err := Open(context.Background(), config.Cache{Enabled: true, Backend: "sqlite", Path: path})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if _, ok := c.(*SQLite); !ok {
		t.Fatalf("got %T, want *SQLite", c)
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, err := Open(context.Background(), config.Cache{Enabled: true, Backend: "memcached"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestSQLite_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "request.db")
	c, err := OpenSQLite(ctx, path, 0)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok, err := c.Get(ctx, "20160620_poi"); err != nil || ok {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}
	if err := c.Set(ctx, "20160620_poi", []byte("<plist>v1</plist>")); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "20160620_poi", []byte("<plist>v2</plist>")); err != nil {
		t.Fatal(err)
	}
	got, ok, err := c.Get(ctx, "20160620_poi")
	if err != nil || !ok || string(got) != "<plist>v2</plist>" {
		t.Fatalf("Get = %q, %v, %v", got, ok, err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	// survives reopen
	c, err = OpenSQLite(ctx, path, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if _, ok, _ := c.Get(ctx, "20160620_poi"); !ok {
		t.Error("entry lost after reopen")
	}

	if err := c.Delete(ctx, "20160620_poi"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Get(ctx, "20160620_poi"); ok {
		t.Error("entry present after Delete")
	}
}

func TestSQLite_Clear(t *testing.T) {
	ctx := context.Background()
	c, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "request.db"), 0)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k)); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if _, ok, _ := c.Get(ctx, k); ok {
			t.Errorf("%s present after Clear", k)
		}
	}
}

func TestSQLite_TTL(t *testing.T) {
	ctx := context.Background()
	c, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "request.db"), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	now := time.Date(2016, 6, 20, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	if err := c.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatal(err)
	}

	now = now.Add(59 * time.Minute)
	if _, ok, _ := c.Get(ctx, "k"); !ok {
		t.Error("entry expired early")
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("entry served after expiry")
	}
}
