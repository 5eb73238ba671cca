package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fpang/story-viewer/internal/story"
)

const listBody = `{"success": true, "data": [
  {"collectionId": "col-1", "name": "Trip", "cover": "c.jpg", "stories": [
    {"background": "v/1.mp4", "backgroundType": "VIDEO", "thumbnail": "t/1.jpg"},
    {"background": "#00ff00", "backgroundType": "GRADIENT", "duration": 5}
  ]}
]}`

func newAPI(t *testing.T) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(listBody))
	}))
	t.Cleanup(server.Close)

	t.Setenv("STORY_API_BASE", server.URL)
	t.Setenv("STORY_MEDIA_BASE", "https://media.example")
	t.Setenv("STORY_BASE_URL", "https://stories.example")
	t.Setenv("APP_TOKEN", "token")
	t.Setenv("STORY_UPSTREAM_RETRIES", "0")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		pagesJSONFlag = false
		outputFlag = ""
		baseURLFlag = ""
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestPagesJSON(t *testing.T) {
	newAPI(t)
	out, err := run(t, "pages", "--collection-id", "col-1", "--slug", "travel", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var pages []story.PageDescriptor
	if err := json.Unmarshal([]byte(out), &pages); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if pages[0].BackgroundURL != "https://media.example/v/1.mp4" || !pages[0].MediaDriven() {
		t.Errorf("unexpected video page: %+v", pages[0])
	}
	if pages[1].Color != "#00ff00" || pages[1].DurationSeconds != 5 {
		t.Errorf("unexpected color page: %+v", pages[1])
	}
}

func TestPagesTable(t *testing.T) {
	newAPI(t)
	out, err := run(t, "pages", "--collection-id", "col-1", "--slug", "travel")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "Trip (col-1)") || !strings.Contains(out, "2 pages") {
		t.Errorf("unexpected table output:\n%s", out)
	}
}

func TestRenderToFile(t *testing.T) {
	newAPI(t)
	path := filepath.Join(t.TempDir(), "story.html")
	if _, err := run(t, "render", "--collection-id", "col-1", "--slug", "travel", "-o", path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	html := string(b)
	if !strings.Contains(html, `id="page-1"`) {
		t.Error("expected both pages in the document")
	}
	if !strings.Contains(html, `href="https://stories.example/story"`) {
		t.Error("expected canonical from STORY_BASE_URL")
	}
}

func TestRender_NotFound(t *testing.T) {
	newAPI(t)
	out, err := run(t, "render", "--collection-id", "missing", "--slug", "travel")
	if err == nil {
		t.Fatal("expected an error for a missing collection")
	}
	if !strings.Contains(out, "Collection not found") {
		t.Error("expected the error document on stdout")
	}
}

func TestPublish_RequiresBucket(t *testing.T) {
	newAPI(t)
	t.Setenv("STORY_PUBLISH_BUCKET", "")
	_, err := run(t, "publish", "--collection-id", "col-1", "--slug", "travel")
	if err == nil || !strings.Contains(err.Error(), "no bucket") {
		t.Errorf("expected missing bucket error, got %v", err)
	}
}
