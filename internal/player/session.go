package player

import (
	"context"
	"errors"
	"time"
)

// DefaultTickInterval approximates an animation frame budget for progress
// updates without flooding the client.
const DefaultTickInterval = 100 * time.Millisecond

// ErrSessionClosed is returned by Send once the session has stopped.
var ErrSessionClosed = errors.New("player session closed")

// StateView is the client-facing projection of State.
type StateView struct {
	ActiveIndex int   `json:"activeIndex"`
	ElapsedMs   int64 `json:"elapsedMs"`
	Playing     bool  `json:"playing"`
	Muted       bool  `json:"muted"`
}

// View projects s for clients.
func (s State) View() StateView {
	return StateView{
		ActiveIndex: s.ActiveIndex,
		ElapsedMs:   s.Elapsed.Milliseconds(),
		Playing:     s.Playing,
		Muted:       s.Muted,
	}
}

// Update is emitted by a running session.
type Update struct {
	Type     string     `json:"type"` // "state" or "close"
	State    *StateView `json:"state,omitempty"`
	Progress float64    `json:"progress"`
}

// Session owns the state of one open player and drives it with a ticker.
// State is only touched by the goroutine running Run.
type Session struct {
	playlist Playlist
	state    State
	interval time.Duration
	events   chan Event
	done     chan struct{}
}

// NewSession returns a session positioned at initial. A non-positive
// interval selects DefaultTickInterval.
func NewSession(pl Playlist, initial int, interval time.Duration) *Session {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Session{
		playlist: pl,
		state:    Open(pl, initial),
		interval: interval,
		events:   make(chan Event, 16),
		done:     make(chan struct{}),
	}
}

// Send delivers ev to the running session. It blocks until the session
// accepts it, stops, or ctx is done. A stopped session always yields
// ErrSessionClosed.
func (s *Session) Send(ctx context.Context, ev Event) error {
	// The buffer may still have room after Run returns.
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}
	select {
	case s.events <- ev:
		return nil
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when Run returns.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Run processes events and ticks until the player closes (nil), ctx ends
// (ctx.Err()), or emit fails. The ticker only runs while playing and is
// replaced whenever playback resets, so a tick scheduled for a page that
// is no longer active never reaches the reducer.
func (s *Session) Run(ctx context.Context, emit func(Update) error) error {
	defer close(s.done)

	var (
		ticker    *time.Ticker
		tickC     <-chan time.Time
		tickEpoch uint64
	)
	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker, tickC = nil, nil
		}
	}
	syncTicker := func() {
		if !s.state.Playing {
			stopTicker()
			return
		}
		if ticker != nil && tickEpoch == s.state.Epoch {
			return
		}
		stopTicker()
		ticker = time.NewTicker(s.interval)
		tickC = ticker.C
		tickEpoch = s.state.Epoch
	}
	defer stopTicker()

	syncTicker()
	if err := emit(s.snapshot()); err != nil {
		return err
	}

	for {
		var ev Event
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev = <-s.events:
		case at := <-tickC:
			ev = Tick{At: at, Epoch: tickEpoch}
		}

		next, effect := Reduce(s.playlist, s.state, ev)
		s.state = next
		if effect == EffectClose {
			stopTicker()
			return emit(Update{Type: "close"})
		}
		syncTicker()
		if err := emit(s.snapshot()); err != nil {
			return err
		}
	}
}

func (s *Session) snapshot() Update {
	v := s.state.View()
	return Update{Type: "state", State: &v, Progress: Progress(s.playlist, s.state)}
}
