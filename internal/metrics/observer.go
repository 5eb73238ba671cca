package metrics

import (
	"io"
	"os"
	"time"
)

// Namespace is the CloudWatch namespace of story viewer metrics.
const Namespace = "StoryViewer"

// RenderObserver reports story renders and player sessions as EMF lines.
// It satisfies the storyhttp Observer interface.
type RenderObserver struct {
	out io.Writer
}

// NewRenderObserver returns an observer writing to stdout.
func NewRenderObserver() *RenderObserver {
	return &RenderObserver{out: os.Stdout}
}

func (o *RenderObserver) ObserveRender(outcome string, pages int, elapsed time.Duration) {
	r := NewWithWriter(Namespace, o.out).
		Dimension("Operation", "render").
		Dimension("Outcome", outcome).
		Count("RenderCount").
		Metric("RenderLatencyMs", float64(elapsed.Milliseconds()), UnitMilliseconds)
	if outcome == "ok" {
		r.Metric("PageCount", float64(pages), UnitCount)
	}
	r.Flush()
}

func (o *RenderObserver) PlayerSessionStarted() {
	NewWithWriter(Namespace, o.out).
		Dimension("Operation", "player").
		Count("PlayerSessionStarted").
		Flush()
}

func (o *RenderObserver) PlayerSessionEnded(reason string, elapsed time.Duration) {
	NewWithWriter(Namespace, o.out).
		Dimension("Operation", "player").
		Property("reason", reason).
		Count("PlayerSessionEnded").
		Metric("PlayerSessionSeconds", elapsed.Seconds(), UnitSeconds).
		Flush()
}
