package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	if w := writer(&buf, "json"); w != &buf {
		t.Error("expected json format to write raw output")
	}
	if _, ok := writer(&buf, "").(zerolog.ConsoleWriter); !ok {
		t.Error("expected console writer by default")
	}
}

func TestStartupLogger_Event(t *testing.T) {
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "")

	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	s := NewStartupLogger("story-web").
		CommitHash("abc123").
		S3Bucket("publish", "stories-bucket").
		S3Bucket("unused", "").
		SSMParam("appToken", "/story-viewer/prod/app-token").
		Feature("redisCache", true).
		Config("apiBase", "https://api.example").
		InitDuration(150 * time.Millisecond)
	s.Event(logger.Info()).Msg("startup")

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	proc := got["process"].(map[string]any)
	if proc["name"] != "story-web" || proc["commitHash"] != "abc123" {
		t.Errorf("unexpected process: %v", proc)
	}
	if _, ok := proc["functionName"]; ok {
		t.Error("expected no Lambda identity outside Lambda")
	}

	resources := got["resources"].(map[string]any)
	buckets := resources["s3Buckets"].(map[string]any)
	if len(buckets) != 1 || buckets["publish"] != "stories-bucket" {
		t.Errorf("unexpected buckets: %v", buckets)
	}
	if strings.Contains(buf.String(), "unused") {
		t.Error("empty resources must be skipped")
	}

	features := got["features"].(map[string]any)
	if features["redisCache"] != true {
		t.Errorf("unexpected features: %v", features)
	}
}
