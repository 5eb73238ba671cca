package player

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fpang/story-viewer/internal/story"
)

type recorder struct {
	mu      sync.Mutex
	updates []Update
}

func (r *recorder) emit(u Update) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
	return nil
}

func (r *recorder) last() Update {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updates[len(r.updates)-1]
}

func runSession(t *testing.T, s *Session, rec *recorder) <-chan error {
	t.Helper()
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(context.Background(), rec.emit) }()
	return errCh
}

func waitErr(t *testing.T, errCh <-chan error) error {
	t.Helper()
	select {
	case err := <-errCh:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("session did not stop")
		return nil
	}
}

func TestSession_AutoAdvancesAndCloses(t *testing.T) {
	pl := Playlist{
		{Kind: story.KindImage, Duration: 20 * time.Millisecond},
		{Kind: story.KindImage, Duration: 20 * time.Millisecond},
	}
	s := NewSession(pl, 0, 2*time.Millisecond)
	rec := &recorder{}

	if err := waitErr(t, runSession(t, s, rec)); err != nil {
		t.Fatalf("expected clean close, got %v", err)
	}
	if got := rec.last(); got.Type != "close" {
		t.Errorf("expected final close update, got %+v", got)
	}

	sawSecond := false
	for _, u := range rec.updates {
		if u.State != nil && u.State.ActiveIndex == 1 {
			sawSecond = true
		}
	}
	if !sawSecond {
		t.Error("expected session to reach the second page before closing")
	}
}

func TestSession_KeyboardClose(t *testing.T) {
	pl := Playlist{{Kind: story.KindImage, Duration: time.Hour}}
	s := NewSession(pl, 0, time.Hour)
	rec := &recorder{}
	errCh := runSession(t, s, rec)

	ev, _ := KeyEvent("Escape")
	if err := s.Send(context.Background(), ev); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := waitErr(t, errCh); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := s.Send(context.Background(), Next{}); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("expected ErrSessionClosed after close, got %v", err)
	}
}

func TestSession_InitialIndexAndPause(t *testing.T) {
	pl := Playlist{
		{Kind: story.KindImage, Duration: time.Hour},
		{Kind: story.KindVideo, MediaDriven: true},
	}
	s := NewSession(pl, 9, time.Hour)
	rec := &recorder{}
	errCh := runSession(t, s, rec)

	ctx := context.Background()
	for _, ev := range []Event{TogglePlay{}, ToggleMute{}, Close{}} {
		if err := s.Send(ctx, ev); err != nil {
			t.Fatalf("send %T: %v", ev, err)
		}
	}
	if err := waitErr(t, errCh); err != nil {
		t.Fatal(err)
	}

	first := rec.updates[0]
	if first.State == nil || first.State.ActiveIndex != 1 {
		t.Fatalf("expected initial index clamped to 1, got %+v", first)
	}
	final := rec.updates[len(rec.updates)-2]
	if final.State.Playing || final.State.Muted {
		t.Errorf("expected paused and unmuted before close, got %+v", final.State)
	}
}

func TestSession_ContextCancel(t *testing.T) {
	s := NewSession(Playlist{{Kind: story.KindImage, Duration: time.Hour}}, 0, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx, func(Update) error { return nil }) }()
	cancel()

	if err := waitErr(t, errCh); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	<-s.Done()
}

func TestSession_EmitErrorStops(t *testing.T) {
	boom := errors.New("write failed")
	s := NewSession(Playlist{{Kind: story.KindImage, Duration: time.Hour}}, 0, time.Hour)
	if err := s.Run(context.Background(), func(Update) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("expected emit error, got %v", err)
	}
}

func TestSession_SendAfterStopAlwaysFails(t *testing.T) {
	s := NewSession(Playlist{{Kind: story.KindImage, Duration: time.Hour}}, 0, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = s.Run(ctx, func(Update) error { return nil })

	for i := 0; i < 100; i++ {
		if err := s.Send(context.Background(), TogglePlay{}); !errors.Is(err, ErrSessionClosed) {
			t.Fatalf("send %d: expected ErrSessionClosed, got %v", i, err)
		}
	}
}
