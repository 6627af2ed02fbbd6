package cli

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/modstack/modstack/pkg/cache"
	apperrors "github.com/modstack/modstack/pkg/errors"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	want := []string{"scan", "order", "params", "validate", "graph", "serve", "cache", "completion"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command missing subcommand %q", name)
		}
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)

	c.Logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Error("debug message should be filtered at info level")
	}

	c.SetLogLevel(LogDebug)
	c.Logger.Debug("visible")
	if buf.Len() == 0 {
		t.Error("debug message should appear at debug level")
	}
}

func TestNewCacheBackends(t *testing.T) {
	ctx := context.Background()

	c, err := newCache(ctx, CacheConfig{Backend: "none"})
	if err != nil {
		t.Fatalf("none backend error: %v", err)
	}
	if _, ok := c.(cache.NullCache); !ok {
		t.Errorf("backend none should yield a NullCache, got %T", c)
	}

	c, err = newCache(ctx, CacheConfig{Backend: "file", Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("file backend error: %v", err)
	}
	if _, ok := c.(*cache.FileCache); !ok {
		t.Errorf("backend file should yield a FileCache, got %T", c)
	}
}

func TestNewCacheRedisUnavailable(t *testing.T) {
	ctx := context.Background()

	// Port 1 is never a redis server, so the connect ping fails fast.
	_, err := newCache(ctx, CacheConfig{Backend: "redis", RedisAddr: "127.0.0.1:1"})
	if err == nil {
		t.Fatal("unreachable redis should fail cache construction")
	}
	if !apperrors.Is(err, apperrors.ErrCodeCacheFailure) {
		t.Errorf("error code = %v, want %v", apperrors.GetCode(err), apperrors.ErrCodeCacheFailure)
	}
}
