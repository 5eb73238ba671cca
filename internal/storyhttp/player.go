package storyhttp

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fpang/story-viewer/internal/player"
	"github.com/fpang/story-viewer/internal/render"
	"github.com/fpang/story-viewer/internal/story"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// clientMessage is a player command sent by the browser.
type clientMessage struct {
	Type        string  `json:"type"`
	Key         string  `json:"key,omitempty"`
	Index       int     `json:"index,omitempty"`
	Event       string  `json:"event,omitempty"`
	CurrentTime float64 `json:"currentTime,omitempty"`
	Duration    float64 `json:"duration,omitempty"`
}

// event translates m into a playback event.
func (m clientMessage) event() (player.Event, bool) {
	switch m.Type {
	case "key":
		return player.KeyEvent(m.Key)
	case "goto":
		return player.GoTo{Index: m.Index}, true
	case "next":
		return player.Next{}, true
	case "prev":
		return player.Prev{}, true
	case "togglePlay":
		return player.TogglePlay{}, true
	case "toggleMute":
		return player.ToggleMute{}, true
	case "close":
		return player.Close{}, true
	case "media":
		switch m.Event {
		case "timeupdate":
			return player.MediaProgress{Index: m.Index, CurrentTime: m.CurrentTime, Duration: m.Duration}, true
		case "ended":
			return player.MediaEnded{Index: m.Index}, true
		}
	}
	return nil, false
}

type pagesMessage struct {
	Type       string                 `json:"type"`
	SessionID  string                 `json:"sessionId"`
	Collection string                 `json:"collection"`
	Pages      []story.PageDescriptor `json:"pages"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// handlePlayer upgrades to a WebSocket and runs one player session over it.
func (h *Handler) handlePlayer(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	sessionID := uuid.NewString()
	logger := log.With().Str("sessionId", sessionID).Str("requestId", RequestID(r.Context())).Logger()

	q := r.URL.Query()
	c, pages, err := h.renderer.Load(r.Context(), q.Get("collectionId"), q.Get("slug"))
	if err != nil {
		_, msg := render.Classify(err)
		logger.Warn().Err(err).Msg("Player could not load collection")
		writeJSON(conn, errorMessage{Type: "error", Message: msg})
		closeConn(conn, websocket.CloseNormalClosure, msg)
		return
	}

	initial, _ := strconv.Atoi(q.Get("storyIndex"))
	if err := writeJSON(conn, pagesMessage{Type: "pages", SessionID: sessionID, Collection: c.Name, Pages: pages}); err != nil {
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	session := player.NewSession(player.PlaylistFromPages(pages), initial, h.playerTick)
	h.observer.PlayerSessionStarted()
	started := time.Now()
	logger.Info().Str("collectionId", c.CollectionID).Int("pages", len(pages)).Int("storyIndex", initial).Msg("Player session opened")

	go readPump(ctx, cancel, conn, session, logger)
	go pingPump(ctx, conn)

	err = session.Run(ctx, func(u player.Update) error { return writeJSON(conn, u) })
	reason := "closed"
	switch {
	case err == nil:
		closeConn(conn, websocket.CloseNormalClosure, "closed")
	case errors.Is(err, context.Canceled):
		reason = "disconnected"
	default:
		reason = "error"
		logger.Warn().Err(err).Msg("Player session failed")
	}
	h.observer.PlayerSessionEnded(reason, time.Since(started))
	logger.Info().Str("reason", reason).Dur("duration", time.Since(started)).Msg("Player session ended")
}

// readPump feeds client commands into the session until the connection
// drops, then cancels the session.
func readPump(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, s *player.Session, logger zerolog.Logger) {
	defer cancel()
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var m clientMessage
		if err := conn.ReadJSON(&m); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug().Err(err).Msg("Player connection closed unexpectedly")
			}
			return
		}
		ev, ok := m.event()
		if !ok {
			logger.Debug().Str("type", m.Type).Str("key", m.Key).Msg("Ignoring player message")
			continue
		}
		if err := s.Send(ctx, ev); err != nil {
			return
		}
	}
}

// pingPump keeps the connection alive. WriteControl is safe to call
// alongside the session's writes.
func pingPump(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}

func closeConn(conn *websocket.Conn, code int, text string) {
	conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(writeWait))
}
