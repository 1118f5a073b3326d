package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lattice-dev/lattice/pkg/protocol"
	"github.com/lattice-dev/lattice/pkg/runtime"
	"github.com/lattice-dev/lattice/pkg/vdom"
)

// Session owns one mounted application on behalf of one client. All
// application work happens on the session's event loop; the read loop
// only decodes frames and forwards them.
type Session struct {
	id      string
	cfg     *SessionConfig
	app     *runtime.App
	backend *WireBackend
	logger  *slog.Logger
	metrics *Metrics

	seq      uint64
	lastSeen atomic.Int64

	writeMu sync.Mutex
	conn    *websocket.Conn

	events    chan *protocol.Event
	done      chan struct{}
	closeOnce sync.Once
	onClose   func(*Session)
}

// NewSession mounts a fresh application instance for one client. The
// mount's patches stay queued in the backend until the first drain, so
// a connecting client can be brought up to date with InitialBatch.
func NewSession(id string, root *runtime.Component, props vdom.Props, cfg *SessionConfig, logger *slog.Logger, metrics *Metrics) (*Session, error) {
	if cfg == nil {
		cfg = DefaultSessionConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	backend := NewWireBackend()
	app := runtime.NewRenderer(backend).CreateApp(root, props, runtime.WithLogger(logger))
	if _, err := app.Mount(backend.Root()); err != nil {
		return nil, fmt.Errorf("mount session %s: %w", id, err)
	}
	s := &Session{
		id:      id,
		cfg:     cfg,
		app:     app,
		backend: backend,
		logger:  logger.With("session", id),
		metrics: metrics,
		events:  make(chan *protocol.Event, cfg.MaxEventQueue),
		done:    make(chan struct{}),
	}
	s.Touch()
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// App returns the session's application.
func (s *Session) App() *runtime.App { return s.app }

// Backend returns the session's wire backend.
func (s *Session) Backend() *WireBackend { return s.backend }

// HTML renders the session's current tree, used for the initial page.
func (s *Session) HTML() string { return s.backend.Doc().HTML() }

// Touch marks the session as recently active.
func (s *Session) Touch() { s.lastSeen.Store(time.Now().UnixNano()) }

// IdleFor reports how long the session has been inactive.
func (s *Session) IdleFor() time.Duration {
	return time.Since(time.Unix(0, s.lastSeen.Load()))
}

// InitialBatch drains the patches recorded by the initial mount.
func (s *Session) InitialBatch() *protocol.PatchBatch {
	return s.nextBatch()
}

// nextBatch flushes pending renderer work and wraps the drained
// patches in a sequenced batch. Returns nil when nothing changed.
func (s *Session) nextBatch() *protocol.PatchBatch {
	s.app.Flush()
	patches := s.backend.Drain()
	if len(patches) == 0 {
		return nil
	}
	s.seq++
	return &protocol.PatchBatch{Seq: s.seq, Patches: patches}
}

// HandleEvent dispatches one client event and returns the resulting
// patch batch, or nil when the event produced no visible change.
func (s *Session) HandleEvent(ctx context.Context, ev *protocol.Event) (batch *protocol.PatchBatch, err error) {
	ctx, span := startEventSpan(ctx, s.id, ev)
	defer span.End()

	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.EventsTotal.WithLabelValues(ev.Name).Inc()
			s.metrics.EventDuration.Observe(time.Since(start).Seconds())
		}
	}()

	s.Touch()
	handler := s.backend.HandlerFor(ev.Node, ev.Name)
	if handler == nil {
		// The client can race a batch that removed the listener.
		s.logger.Debug("event for unknown listener", "node", ev.Node, "event", ev.Name)
		return s.nextBatch(), nil
	}
	if err := invokeEventHandler(handler, ev.Payload); err != nil {
		span.RecordError(err)
		if s.metrics != nil {
			s.metrics.ErrorsTotal.WithLabelValues("handler").Inc()
		}
		s.logger.Error("event handler failed", "event", ev.Name, "err", err)
		// State may have partially changed; still ship what rendered.
		return s.nextBatch(), err
	}
	return s.nextBatch(), nil
}

// invokeEventHandler calls a registered element handler with the
// decoded event payload. Panics are converted to errors so one bad
// handler cannot take the session down.
func invokeEventHandler(handler any, payload []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("handler panic: %w", e)
			} else {
				err = fmt.Errorf("handler panic: %v", r)
			}
		}
	}()

	var arg any
	if len(payload) > 0 {
		if jsonErr := json.Unmarshal(payload, &arg); jsonErr != nil {
			return fmt.Errorf("decode event payload: %w", jsonErr)
		}
	}

	switch h := handler.(type) {
	case func():
		h()
	case func() error:
		return h()
	case func(any):
		h(arg)
	case func(any) error:
		return h(arg)
	case func(...any):
		if arg != nil {
			h(arg)
		} else {
			h()
		}
	case func(...any) error:
		if arg != nil {
			return h(arg)
		}
		return h()
	default:
		return fmt.Errorf("unsupported handler type %T", handler)
	}
	return nil
}

// Attach binds a WebSocket connection and starts the session's read
// and event loops. The initial (or catch-up) batch is written first.
func (s *Session) Attach(conn *websocket.Conn) error {
	s.conn = conn
	conn.SetReadLimit(s.cfg.MaxMessageSize)
	conn.SetPongHandler(func(string) error {
		s.Touch()
		return conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	})

	if batch := s.nextBatch(); batch != nil {
		if err := s.writePatches(batch); err != nil {
			return err
		}
	}

	go s.readLoop()
	go s.eventLoop()
	return nil
}

func (s *Session) readLoop() {
	defer s.Close()
	for {
		if err := s.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout)); err != nil {
			return
		}
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("connection closed unexpectedly", "err", err)
			}
			return
		}
		s.Touch()
		frame, _, err := protocol.DecodeFrame(data)
		if err != nil {
			s.writeError(protocol.ErrCodeBadFrame, "malformed frame")
			continue
		}
		switch frame.Type {
		case protocol.FrameEvent:
			ev, err := protocol.DecodeEvent(frame.Payload)
			if err != nil {
				s.writeError(protocol.ErrCodeBadEvent, "malformed event")
				continue
			}
			select {
			case s.events <- ev:
			case <-s.done:
				return
			default:
				s.writeError(protocol.ErrCodeRateLimited, "event queue full")
			}
		case protocol.FrameControl:
			// Client-side heartbeat; the read deadline reset above is
			// all that is needed.
		default:
			s.writeError(protocol.ErrCodeUnsupported, "unexpected frame type")
		}
	}
}

func (s *Session) eventLoop() {
	ticker := time.NewTicker(s.cfg.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case ev := <-s.events:
			batch, err := s.HandleEvent(context.Background(), ev)
			if err != nil {
				s.writeError(protocol.ErrCodeInternal, "event dispatch failed")
			}
			if batch != nil {
				if werr := s.writePatches(batch); werr != nil {
					s.logger.Debug("patch write failed", "err", werr)
					s.Close()
					return
				}
			}
		case <-ticker.C:
			s.writeMu.Lock()
			s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			err := s.conn.WriteMessage(websocket.PingMessage, nil)
			s.writeMu.Unlock()
			if err != nil {
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *Session) writePatches(batch *protocol.PatchBatch) error {
	enc := protocol.NewEncoder()
	if err := protocol.EncodePatchBatch(enc, batch); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.PatchesTotal.Add(float64(len(batch.Patches)))
		s.metrics.PatchBytes.Add(float64(enc.Len()))
	}
	return s.writeFrame(&protocol.Frame{Type: protocol.FramePatches, Flags: protocol.FlagFinal, Payload: enc.Bytes()})
}

func (s *Session) writeError(code uint64, msg string) {
	enc := protocol.NewEncoder()
	protocol.EncodeErrorFrame(enc, &protocol.ErrorFrame{Code: code, Message: msg})
	if err := s.writeFrame(&protocol.Frame{Type: protocol.FrameError, Payload: enc.Bytes()}); err != nil {
		s.logger.Debug("error frame write failed", "err", err)
	}
}

func (s *Session) writeFrame(f *protocol.Frame) error {
	data, err := f.Encode()
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.conn == nil {
		return nil
	}
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.BinaryMessage, data)
}

// Close tears the session down. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.conn != nil {
			s.conn.Close()
		}
		s.app.Unmount()
		s.backend.Drain()
		if s.onClose != nil {
			s.onClose(s)
		}
	})
}
