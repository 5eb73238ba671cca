package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fpang/story-viewer/internal/collections"
	"github.com/fpang/story-viewer/internal/config"
)

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("STORY_TEST_FROM_DOTENV=yes\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("STORY_TEST_FROM_DOTENV", "")
	os.Unsetenv("STORY_TEST_FROM_DOTENV")

	loadEnvFile(path)
	if got := os.Getenv("STORY_TEST_FROM_DOTENV"); got != "yes" {
		t.Errorf("expected yes, got %q", got)
	}

	// Missing files are ignored.
	loadEnvFile(filepath.Join(dir, "missing.env"))
}

func TestOpenCache_MemoryFallback(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tests := []struct {
		name  string
		redis string
	}{
		{"not configured", ""},
		{"unreachable", "redis://127.0.0.1:1/0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache, closeCache := openCache(ctx, &config.Config{RedisURL: tt.redis})
			defer closeCache()
			if _, ok := cache.(*collections.MemoryCache); !ok {
				t.Errorf("expected memory cache, got %T", cache)
			}
		})
	}
}

func TestCheckAppToken(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		token   string
		wantErr bool
	}{
		{"production with token", "production", "t", false},
		{"production without token", "production", "", true},
		{"development without token", "development", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkAppToken(&config.Config{Environment: tt.env, AppToken: tt.token})
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}
