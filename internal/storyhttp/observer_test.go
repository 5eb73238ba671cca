package storyhttp

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := NewPrometheusObserver(reg)

	o.ObserveRender("ok", 3, 20*time.Millisecond)
	o.ObserveRender("ok", 5, 30*time.Millisecond)
	o.ObserveRender("not_found", 0, 5*time.Millisecond)

	if got := testutil.ToFloat64(o.renders.WithLabelValues("ok")); got != 2 {
		t.Errorf("expected 2 ok renders, got %v", got)
	}
	if got := testutil.ToFloat64(o.renders.WithLabelValues("not_found")); got != 1 {
		t.Errorf("expected 1 not_found render, got %v", got)
	}

	o.PlayerSessionStarted()
	o.PlayerSessionStarted()
	o.PlayerSessionEnded("closed", time.Second)

	if got := testutil.ToFloat64(o.activeSessions); got != 1 {
		t.Errorf("expected 1 active session, got %v", got)
	}
	if got := testutil.ToFloat64(o.sessions.WithLabelValues("closed")); got != 1 {
		t.Errorf("expected 1 closed session, got %v", got)
	}

	n, err := testutil.GatherAndCount(reg, "story_pages_per_document")
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected one pages histogram, got %d", n)
	}
}
