package bridge

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/gorilla/websocket"

	"github.com/routekit-dev/routekit/pkg/history"
	"github.com/routekit-dev/routekit/pkg/link"
	"github.com/routekit-dev/routekit/pkg/router"
)

// Session is one connected browser tab: a websocket, the mirrored history
// entry, and a router instance driving it. All frames are processed
// sequentially on the session's read loop, which keeps the router's
// single-threaded contract.
type Session struct {
	ID string

	conn   *websocket.Conn
	srv    *Server
	logger *slog.Logger
	clk    clock.Clock

	hist   *sessionHistory
	router *router.Router

	writeMu sync.Mutex

	closeOnce sync.Once
	done      chan struct{}
}

func newSession(id string, conn *websocket.Conn, srv *Server) *Session {
	return &Session{
		ID:     id,
		conn:   conn,
		srv:    srv,
		logger: srv.cfg.Logger.With("session", id),
		clk:    srv.cfg.Clock,
		done:   make(chan struct{}),
	}
}

// run performs the handshake and processes frames until the connection
// drops or the server shuts the session down.
func (s *Session) run() {
	defer s.Close()

	s.conn.SetReadLimit(MaxFrameSize)
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(s.clk.Now().Add(s.srv.cfg.ReadTimeout))
	})

	if err := s.handshake(); err != nil {
		s.logger.Warn("handshake failed", "error", err)
		return
	}

	go s.pingLoop()

	for {
		if err := s.conn.SetReadDeadline(s.clk.Now().Add(s.srv.cfg.ReadTimeout)); err != nil {
			return
		}
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("connection error", "error", err)
			}
			return
		}

		frame, err := DecodeFrame(data)
		if err != nil {
			s.logger.Warn("bad frame", "error", err)
			return
		}
		s.handleFrame(frame)
	}
}

// handshake reads the hello frame, builds the router around the reported
// URL, and pushes the initial state to the client.
func (s *Session) handshake() error {
	if err := s.conn.SetReadDeadline(s.clk.Now().Add(s.srv.cfg.HandshakeTimeout)); err != nil {
		return err
	}
	_, data, err := s.conn.ReadMessage()
	if err != nil {
		return err
	}
	frame, err := DecodeFrame(data)
	if err != nil {
		return err
	}
	if frame.Type != FrameHello {
		return errors.New("expected hello frame")
	}

	loc, err := history.Parse(frame.URL)
	if err != nil {
		return err
	}

	s.hist = newSessionHistory(s, history.Entry{Location: loc, State: decodeState(frame.State)})

	r, err := router.New(router.Config{
		History:        s.hist,
		Routes:         s.srv.cfg.Routes,
		BeforeNavigate: s.srv.cfg.BeforeNavigate,
		Reporter:       s.srv.cfg.Reporter,
		Logger:         s.logger,
		StrictTrailing: s.srv.cfg.StrictTrailing,
	})
	if err != nil {
		return err
	}
	s.router = r

	r.Subscribe(func(st *router.State) {
		s.sendState(st)
	})

	if err := r.Start(); err != nil {
		return err
	}
	s.sendState(r.CurrentState())
	return nil
}

func (s *Session) handleFrame(frame *Frame) {
	switch frame.Type {
	case FramePopState:
		loc, err := history.Parse(frame.URL)
		if err != nil {
			s.logger.Warn("bad popstate url", "url", frame.URL, "error", err)
			return
		}
		s.hist.deliverExternal(history.Entry{Location: loc, State: decodeState(frame.State)})

	case FrameLink:
		act := link.Activation{
			Href:             frame.Href,
			Button:           frame.Button,
			MetaKey:          frame.MetaKey,
			CtrlKey:          frame.CtrlKey,
			ShiftKey:         frame.ShiftKey,
			AltKey:           frame.AltKey,
			DefaultPrevented: frame.DefaultPrevented,
			SameOrigin:       frame.SameOrigin,
			Target:           frame.Target,
			Download:         frame.Download,
		}
		intercepted, err := link.Activate(s.router, act)
		if err != nil {
			s.logger.Warn("navigation failed", "href", frame.Href, "error", err)
			s.sendError(err)
			return
		}
		if !intercepted {
			s.logger.Debug("link passed through", "href", frame.Href)
		}

	case FrameHello:
		s.logger.Warn("duplicate hello frame")
	}
}

// sendState pushes the router state to the client for rendering.
func (s *Session) sendState(st *router.State) {
	if st == nil {
		return
	}
	frame := &Frame{Type: FrameState, URL: st.Location.String()}
	if st.Match != nil {
		frame.Component = st.Match.Route.Component
		frame.Params = st.Match.Params
	} else {
		frame.NoMatch = true
	}
	if err := s.sendFrame(frame); err != nil {
		s.logger.Warn("state send failed", "error", err)
	}
}

func (s *Session) sendError(err error) {
	if ferr := s.sendFrame(&Frame{Type: FrameError, Message: err.Error()}); ferr != nil {
		s.logger.Warn("error send failed", "error", ferr)
	}
}

// sendFrame writes one frame under the write lock with a deadline.
func (s *Session) sendFrame(frame *Frame) error {
	select {
	case <-s.done:
		return errors.New("session closed")
	default:
	}

	data, err := EncodeFrame(frame)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.SetWriteDeadline(s.clk.Now().Add(s.srv.cfg.WriteTimeout)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *Session) pingLoop() {
	ticker := s.clk.Ticker(s.srv.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.writeMu.Lock()
			err := s.conn.WriteControl(websocket.PingMessage, nil, s.clk.Now().Add(s.srv.cfg.WriteTimeout))
			s.writeMu.Unlock()
			if err != nil {
				s.Close()
				return
			}
		}
	}
}

// Close tears the session down. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.router != nil {
			if err := s.router.Stop(); err != nil && !errors.Is(err, router.ErrNotRunning) {
				s.logger.Warn("router stop failed", "error", err)
			}
		}
		_ = s.conn.Close()
		s.srv.sessions.remove(s.ID)
		s.logger.Debug("session closed")
	})
}

// Router exposes the session's router, for server-initiated navigation.
func (s *Session) Router() *router.Router {
	return s.router
}

func decodeState(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}
