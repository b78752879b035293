package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/llehouerou/quartz/internal/logger"
	"github.com/llehouerou/quartz/internal/playback"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
)

// Engine is the slice of the playback engine the websocket surface needs.
type Engine interface {
	Controls() playback.Controls
	State() *playback.State
	Subscribe() *playback.Subscription
}

// Server exposes the playback engine to browsers: a static shell page on /
// and a websocket on /ws that streams events and accepts commands, both
// using the JSON wire format of the playback package.
type Server struct {
	engine Engine
	httpd  *http.Server
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(_ *http.Request) bool { return true },
}

// NewServer builds a server bound to addr (host:port).
func NewServer(addr string, engine Engine) *Server {
	s := &Server{engine: engine}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/ws", s.handleWS)

	s.httpd = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpd.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpd.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", logger.Err(err))
		return
	}

	c := &client{
		conn:   conn,
		engine: s.engine,
		sub:    s.engine.Subscribe(),
		done:   make(chan struct{}),
	}
	go c.writeLoop()
	go c.readLoop()
}

// client is one websocket connection. The write loop owns the connection
// for writes; gorilla connections allow a single concurrent writer. done
// closes when the write loop exits, releasing the read loop from any
// command it is still trying to enqueue.
type client struct {
	conn   *websocket.Conn
	engine Engine
	sub    *playback.Subscription
	done   chan struct{}
}

func (c *client) writeLoop() {
	defer func() {
		close(c.done)
		c.sub.Close()
		_ = c.conn.Close()
	}()

	if err := c.sendSnapshot(); err != nil {
		return
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-c.sub.Events():
			if !ok {
				_ = c.write(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "player shut down"))
				return
			}
			data, err := playback.MarshalEvent(ev)
			if err != nil {
				logger.Warn("event marshal failed", logger.Err(err))
				continue
			}
			if err := c.write(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// sendSnapshot pushes the current player state to a fresh connection, so a
// late joiner does not wait for the next event to draw something.
func (c *client) sendSnapshot() error {
	state := c.engine.State()

	events := []playback.Event{
		state.TrackList(),
		playback.StatusEvent{Status: state.Status()},
		playback.PositionEvent{Clock: state.Position()},
		playback.DurationEvent{Clock: state.Duration()},
	}
	if track, ok := state.CurrentTrack(); ok {
		events = append(events, playback.CurrentTrackEvent{Track: track})
	}

	for _, ev := range events {
		data, err := playback.MarshalEvent(ev)
		if err != nil {
			return err
		}
		if err := c.write(websocket.TextMessage, data); err != nil {
			return err
		}
	}
	return nil
}

func (c *client) write(messageType int, data []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(messageType, data)
}

func (c *client) readLoop() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("websocket read failed", logger.Err(err))
			}
			_ = c.conn.Close()
			return
		}

		cmd, err := playback.UnmarshalCommand(data)
		if err != nil {
			logger.Debug("bad websocket command", logger.Err(err))
			continue
		}
		// After engine shutdown nothing drains the control channel; give
		// up once the write side has seen the bus close.
		if !c.engine.Controls().SendUntil(c.done, cmd) {
			return
		}
	}
}
