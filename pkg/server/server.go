package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lattice-dev/lattice/pkg/protocol"
	"github.com/lattice-dev/lattice/pkg/runtime"
	"github.com/lattice-dev/lattice/pkg/vdom"
)

// Server serves a Lattice application: HTML on first load, live
// updates over WebSocket afterwards.
type Server struct {
	cfg       *Config
	root      *runtime.Component
	rootProps vdom.Props

	sessions *SessionManager
	upgrader websocket.Upgrader
	metrics  *Metrics
	logger   *slog.Logger
	router   chi.Router
	http     *http.Server

	pruneStop chan struct{}
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="lattice-session" content="{{.SessionID}}">
<title>{{.Title}}</title>
</head>
<body>
<div id="app">{{.Body}}</div>
<script src="/client.js" defer></script>
</body>
</html>
`))

// New builds a server hosting root as its application. cfg may be nil.
func New(root *runtime.Component, props vdom.Props, cfg *Config) *Server {
	cfg = cfg.withDefaults()
	metrics := NewMetrics(cfg.Registry)
	s := &Server{
		cfg:       cfg,
		root:      root,
		rootProps: props,
		sessions:  NewSessionManager(cfg.Session, cfg.MaxSessions, cfg.Logger, metrics),
		metrics:   metrics,
		logger:    cfg.Logger,
		pruneStop: make(chan struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     cfg.CheckOrigin,
	}
	if s.upgrader.CheckOrigin == nil {
		s.upgrader.CheckOrigin = func(*http.Request) bool { return true }
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/", s.handleIndex)
	r.Get("/ws", s.handleWS)
	r.Get("/healthz", s.handleHealth)
	if gatherer, ok := cfg.Registry.(prometheus.Gatherer); ok {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	s.router = r
	return s
}

// Handler returns the server's HTTP handler, useful for tests and for
// mounting under an outer router.
func (s *Server) Handler() http.Handler { return s.router }

// Sessions returns the session manager.
func (s *Server) Sessions() *SessionManager { return s.sessions }

// Start listens on the configured address and blocks until the
// listener fails or Shutdown is called.
func (s *Server) Start() error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	s.http = &http.Server{
		Addr:    s.cfg.Address,
		Handler: s.router,
	}
	go s.pruneLoop()
	s.logger.Info("server listening", "addr", s.cfg.Address)
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections, persists session snapshots,
// and closes every session.
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.pruneStop)
	s.persistAll(ctx)
	s.sessions.CloseAll()
	if s.http == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()
	return s.http.Shutdown(ctx)
}

func (s *Server) persistAll(ctx context.Context) {
	s.sessions.mu.RLock()
	all := make([]*Session, 0, len(s.sessions.sessions))
	for _, sess := range s.sessions.sessions {
		all = append(all, sess)
	}
	s.sessions.mu.RUnlock()
	for _, sess := range all {
		data := EncodeSnapshot(sess.Snapshot())
		if err := s.cfg.Snapshots.Save(ctx, sess.ID(), data); err != nil {
			s.logger.Warn("snapshot save failed", "session", sess.ID(), "err", err)
		}
	}
}

func (s *Server) pruneLoop() {
	ticker := time.NewTicker(s.cfg.PruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := s.sessions.Prune(s.cfg.Session.IdleTimeout); n > 0 {
				s.logger.Debug("pruned idle sessions", "count", n)
			}
		case <-s.pruneStop:
			return
		}
	}
}

// handleIndex serves the server-rendered page. The session created
// here is the one the client resumes over /ws via the meta tag.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create(s.root, s.rootProps)
	if err != nil {
		s.metrics.ErrorsTotal.WithLabelValues("mount").Inc()
		s.logger.Error("session create failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = pageTemplate.Execute(w, struct {
		SessionID string
		Title     string
		Body      template.HTML
	}{
		SessionID: sess.ID(),
		Title:     s.cfg.Title,
		Body:      template.HTML(sess.HTML()),
	})
	if err != nil {
		s.logger.Debug("page write failed", "err", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "ok %d\n", s.sessions.Count())
}

// handleWS upgrades the connection, performs the protocol handshake,
// and attaches the connection to its session.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.metrics.ErrorsTotal.WithLabelValues("upgrade").Inc()
		s.logger.Debug("websocket upgrade failed", "err", err)
		return
	}

	sess, resumed, err := s.handshake(conn)
	if err != nil {
		s.logger.Debug("handshake failed", "err", err)
		conn.Close()
		return
	}
	s.logger.Info("session attached", "session", sess.ID(), "resumed", resumed)
	if err := sess.Attach(conn); err != nil {
		s.logger.Debug("session attach failed", "session", sess.ID(), "err", err)
		sess.Close()
	}
}

func (s *Server) handshake(conn *websocket.Conn) (*Session, bool, error) {
	deadline := time.Now().Add(s.cfg.Session.HandshakeTimeout)
	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, false, err
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, false, fmt.Errorf("read handshake: %w", err)
	}
	frame, _, err := protocol.DecodeFrame(data)
	if err != nil {
		return nil, false, fmt.Errorf("decode handshake frame: %w", err)
	}
	if frame.Type != protocol.FrameHandshake {
		return nil, false, fmt.Errorf("expected handshake, got %s", frame.Type)
	}
	hs, err := protocol.DecodeHandshake(frame.Payload)
	if err != nil {
		writeHandshakeError(conn, deadline, protocol.ErrCodeUnsupported, err.Error())
		return nil, false, err
	}

	sess := s.sessions.Get(hs.SessionID)
	resumed := sess != nil
	if sess == nil {
		// Unknown or expired ID; start fresh rather than turn the
		// client away.
		sess, err = s.sessions.Create(s.root, s.rootProps)
		if err != nil {
			writeHandshakeError(conn, deadline, protocol.ErrCodeSessionGone, "cannot create session")
			return nil, false, err
		}
	}

	enc := protocol.NewEncoder()
	protocol.EncodeHandshakeAck(enc, &protocol.HandshakeAck{SessionID: sess.ID(), Resumed: resumed})
	ack := &protocol.Frame{Type: protocol.FrameHandshake, Flags: protocol.FlagFinal, Payload: enc.Bytes()}
	ackData, err := ack.Encode()
	if err != nil {
		return nil, false, err
	}
	if err := conn.SetWriteDeadline(deadline); err != nil {
		return nil, false, err
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, ackData); err != nil {
		return nil, false, fmt.Errorf("write handshake ack: %w", err)
	}
	return sess, resumed, nil
}

func writeHandshakeError(conn *websocket.Conn, deadline time.Time, code uint64, msg string) {
	enc := protocol.NewEncoder()
	protocol.EncodeErrorFrame(enc, &protocol.ErrorFrame{Code: code, Message: msg})
	frame := &protocol.Frame{Type: protocol.FrameError, Payload: enc.Bytes()}
	data, err := frame.Encode()
	if err != nil {
		return
	}
	conn.SetWriteDeadline(deadline)
	conn.WriteMessage(websocket.BinaryMessage, data)
}
