// Package player drives interactive story playback.
//
// Playback is a finite state machine: State is a plain value and Reduce is a
// pure transition function. Timing comes from outside as Tick events, so the
// same reducer serves the WebSocket session runtime and the tests.
package player

import (
	"math"
	"time"

	"github.com/fpang/story-viewer/internal/story"
)

// Track is the playback-relevant part of one page.
type Track struct {
	Kind story.Kind
	// Duration is the timed length of the page. Ignored when MediaDriven.
	Duration time.Duration
	// MediaDriven pages progress with the media element and advance on its
	// end-of-playback signal.
	MediaDriven bool
}

// Timed reports whether the track advances on elapsed time.
func (t Track) Timed() bool {
	return !t.MediaDriven && t.Duration > 0
}

// Playlist is the ordered sequence of tracks of one collection.
type Playlist []Track

// PlaylistFromPages derives a playlist from composed pages.
func PlaylistFromPages(pages []story.PageDescriptor) Playlist {
	pl := make(Playlist, len(pages))
	for i, p := range pages {
		pl[i] = Track{
			Kind:        p.Kind,
			Duration:    secondsToDuration(p.DurationSeconds),
			MediaDriven: p.MediaDriven(),
		}
	}
	return pl
}

// secondsToDuration converts without overflowing: values beyond the
// Duration range saturate at the maximum.
func secondsToDuration(sec float64) time.Duration {
	if sec <= 0 {
		return 0
	}
	if sec >= float64(math.MaxInt64)/float64(time.Second) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(sec * float64(time.Second))
}

func (pl Playlist) clamp(i int) int {
	if i >= len(pl) {
		i = len(pl) - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func (pl Playlist) track(i int) (Track, bool) {
	if i < 0 || i >= len(pl) {
		return Track{}, false
	}
	return pl[i], true
}

// State is the playback state of one open player.
type State struct {
	ActiveIndex int
	Elapsed     time.Duration
	Playing     bool
	Muted       bool

	// MediaProgress is the last reported currentTime/duration ratio of a
	// media-driven page.
	MediaProgress float64
	// LastTick is the timestamp of the previous accepted tick; zero right
	// after a reset, a pause, or a resume.
	LastTick time.Time
	// Epoch changes on every reset. Ticks scheduled under an older epoch
	// are ignored.
	Epoch uint64
}

// Open returns the initial state of a player starting at index initial,
// clamped into the playlist. Players autoplay muted.
func Open(pl Playlist, initial int) State {
	return State{
		ActiveIndex: pl.clamp(initial),
		Playing:     true,
		Muted:       true,
	}
}

// Effect is a side effect the caller must carry out after a transition.
type Effect int

const (
	EffectNone Effect = iota
	// EffectClose asks the owner of the player to close it.
	EffectClose
)

// --- Events ---

// Event is an input to Reduce.
type Event interface{ event() }

type (
	// GoTo jumps to Index, clamped into the playlist.
	GoTo struct{ Index int }
	// Next advances one page, or closes the player from the last page.
	Next struct{}
	// Prev goes back one page, stopping at the first.
	Prev struct{}
	// TogglePlay pauses or resumes without losing elapsed time.
	TogglePlay struct{}
	// ToggleMute flips the mute state on video pages.
	ToggleMute struct{}
	// Close asks the player to close.
	Close struct{}
	// Tick is a scheduler tick at wall time At, scheduled under Epoch.
	Tick struct {
		At    time.Time
		Epoch uint64
	}
	// MediaProgress reports the media element position on page Index.
	MediaProgress struct {
		Index       int
		CurrentTime float64
		Duration    float64
	}
	// MediaEnded reports that the media element on page Index finished.
	MediaEnded struct{ Index int }
)

func (GoTo) event()          {}
func (Next) event()          {}
func (Prev) event()          {}
func (TogglePlay) event()    {}
func (ToggleMute) event()    {}
func (Close) event()         {}
func (Tick) event()          {}
func (MediaProgress) event() {}
func (MediaEnded) event()    {}

// Reduce applies ev to s and returns the next state plus any effect.
func Reduce(pl Playlist, s State, ev Event) (State, Effect) {
	switch e := ev.(type) {
	case GoTo:
		return reset(s, pl.clamp(e.Index)), EffectNone
	case Next:
		return next(pl, s)
	case Prev:
		return reset(s, pl.clamp(s.ActiveIndex-1)), EffectNone
	case TogglePlay:
		s.Playing = !s.Playing
		s.LastTick = time.Time{}
		return s, EffectNone
	case ToggleMute:
		if t, ok := pl.track(s.ActiveIndex); ok && t.Kind == story.KindVideo {
			s.Muted = !s.Muted
		}
		return s, EffectNone
	case Close:
		return s, EffectClose
	case Tick:
		return tick(pl, s, e)
	case MediaProgress:
		t, ok := pl.track(s.ActiveIndex)
		if !ok || !t.MediaDriven || e.Index != s.ActiveIndex || e.Duration <= 0 {
			return s, EffectNone
		}
		s.MediaProgress = clamp01(e.CurrentTime / e.Duration)
		return s, EffectNone
	case MediaEnded:
		t, ok := pl.track(s.ActiveIndex)
		if !ok || !t.MediaDriven || e.Index != s.ActiveIndex {
			return s, EffectNone
		}
		return next(pl, s)
	}
	return s, EffectNone
}

func next(pl Playlist, s State) (State, Effect) {
	if s.ActiveIndex >= len(pl)-1 {
		return s, EffectClose
	}
	return reset(s, s.ActiveIndex+1), EffectNone
}

func tick(pl Playlist, s State, e Tick) (State, Effect) {
	if e.Epoch != s.Epoch || !s.Playing {
		return s, EffectNone
	}
	if s.LastTick.IsZero() {
		s.LastTick = e.At
		return s, EffectNone
	}
	if d := e.At.Sub(s.LastTick); d > 0 {
		s.Elapsed += d
	}
	s.LastTick = e.At

	if t, ok := pl.track(s.ActiveIndex); ok && t.Timed() && s.Elapsed >= t.Duration {
		return next(pl, s)
	}
	return s, EffectNone
}

func reset(s State, index int) State {
	s.ActiveIndex = index
	s.Elapsed = 0
	s.MediaProgress = 0
	s.LastTick = time.Time{}
	s.Epoch++
	return s
}

// Progress returns how far through the active page playback is, in [0, 1].
func Progress(pl Playlist, s State) float64 {
	t, ok := pl.track(s.ActiveIndex)
	switch {
	case !ok:
		return 0
	case t.MediaDriven:
		return s.MediaProgress
	case t.Duration <= 0:
		return 0
	}
	return clamp01(float64(s.Elapsed) / float64(t.Duration))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// KeyEvent maps a keyboard key name (as reported by KeyboardEvent.key) to
// its playback event.
func KeyEvent(key string) (Event, bool) {
	switch key {
	case "Escape", "Esc":
		return Close{}, true
	case "ArrowRight", "Right":
		return Next{}, true
	case "ArrowLeft", "Left":
		return Prev{}, true
	case " ", "Space", "Spacebar":
		return TogglePlay{}, true
	}
	return nil, false
}
