package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SessionConfig holds configuration for individual sessions.
type SessionConfig struct {
	// ReadTimeout is the maximum time to wait for a message from the client.
	// Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait when sending a message.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// IdleTimeout is the time after which an inactive session is pruned.
	// Default: 5 minutes.
	IdleTimeout time.Duration

	// HandshakeTimeout is the maximum time for the initial handshake frame.
	// Default: 10 seconds.
	HandshakeTimeout time.Duration

	// HeartbeatInterval is the time between heartbeat pings.
	// Default: 30 seconds.
	HeartbeatInterval time.Duration

	// MaxMessageSize is the maximum size of an incoming WebSocket message.
	// Default: 64KB.
	MaxMessageSize int64

	// MaxEventQueue is the size of the event channel buffer.
	// Default: 256.
	MaxEventQueue int
}

// DefaultSessionConfig returns a SessionConfig with sensible defaults.
func DefaultSessionConfig() *SessionConfig {
	return &SessionConfig{
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       5 * time.Minute,
		HandshakeTimeout:  10 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		MaxMessageSize:    64 * 1024,
		MaxEventQueue:     256,
	}
}

// Clone returns a copy of the SessionConfig.
func (c *SessionConfig) Clone() *SessionConfig {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// Config holds configuration for the HTTP/WebSocket server.
type Config struct {
	// Address is the address to listen on (e.g., ":8080").
	// Default: ":8080".
	Address string

	// Title is the document title for server-rendered pages.
	// Default: "Lattice".
	Title string

	// ReadBufferSize is the WebSocket read buffer size.
	// Default: 4096.
	ReadBufferSize int

	// WriteBufferSize is the WebSocket write buffer size.
	// Default: 4096.
	WriteBufferSize int

	// CheckOrigin is called to validate the request origin.
	// Default: allows all origins (not recommended for production).
	CheckOrigin func(r *http.Request) bool

	// Session is the configuration for individual sessions.
	// Default: DefaultSessionConfig().
	Session *SessionConfig

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// Default: 30 seconds.
	ShutdownTimeout time.Duration

	// MaxSessions is the maximum number of concurrent sessions.
	// 0 means no limit. Default: 0.
	MaxSessions int

	// PruneInterval is how often idle sessions are collected.
	// Default: 1 minute.
	PruneInterval time.Duration

	// Logger receives structured server logs.
	// Default: slog.Default().
	Logger *slog.Logger

	// Registry receives the server's Prometheus metrics.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer

	// Snapshots persists session snapshots for resume across restarts.
	// Default: in-memory store.
	Snapshots SnapshotStore
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Address:         ":8080",
		Title:           "Lattice",
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		Session:         DefaultSessionConfig(),
		ShutdownTimeout: 30 * time.Second,
		PruneInterval:   time.Minute,
	}
}

// Validate reports configuration errors that defaults cannot repair.
func (c *Config) Validate() error {
	if c.MaxSessions < 0 {
		return errors.New("server: MaxSessions must not be negative")
	}
	if c.Session != nil && c.Session.MaxMessageSize < 0 {
		return errors.New("server: MaxMessageSize must not be negative")
	}
	if c.Session != nil && c.Session.MaxEventQueue < 0 {
		return errors.New("server: MaxEventQueue must not be negative")
	}
	return nil
}

// Clone returns a deep copy of the Config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Session = c.Session.Clone()
	return &clone
}

func (c *Config) withDefaults() *Config {
	out := c.Clone()
	if out == nil {
		out = DefaultConfig()
	}
	def := DefaultConfig()
	if out.Address == "" {
		out.Address = def.Address
	}
	if out.Title == "" {
		out.Title = def.Title
	}
	if out.ReadBufferSize == 0 {
		out.ReadBufferSize = def.ReadBufferSize
	}
	if out.WriteBufferSize == 0 {
		out.WriteBufferSize = def.WriteBufferSize
	}
	if out.Session == nil {
		out.Session = DefaultSessionConfig()
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = def.ShutdownTimeout
	}
	if out.PruneInterval == 0 {
		out.PruneInterval = def.PruneInterval
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	if out.Registry == nil {
		out.Registry = prometheus.DefaultRegisterer
	}
	if out.Snapshots == nil {
		out.Snapshots = NewMemoryStore()
	}
	return out
}
