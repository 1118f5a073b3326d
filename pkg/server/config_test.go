package server_test

import (
	"testing"
	"time"

	"github.com/lattice-dev/lattice/pkg/server"
)

func TestDefaultConfig(t *testing.T) {
	cfg := server.DefaultConfig()
	if cfg.Address != ":8080" {
		t.Errorf("got address %q, want :8080", cfg.Address)
	}
	if cfg.Session == nil {
		t.Fatal("default config has no session config")
	}
	if cfg.Session.ReadTimeout != 60*time.Second {
		t.Errorf("got read timeout %v, want 60s", cfg.Session.ReadTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestConfigCloneIsIndependent(t *testing.T) {
	cfg := server.DefaultConfig()
	clone := cfg.Clone()
	clone.Address = ":9090"
	clone.Session.ReadTimeout = time.Second

	if cfg.Address != ":8080" {
		t.Errorf("clone mutated the original address: %q", cfg.Address)
	}
	if cfg.Session.ReadTimeout != 60*time.Second {
		t.Errorf("clone shares the session config")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := server.DefaultConfig()
	cfg.MaxSessions = -1
	if err := cfg.Validate(); err == nil {
		t.Error("negative MaxSessions passed validation")
	}

	cfg = server.DefaultConfig()
	cfg.Session.MaxEventQueue = -1
	if err := cfg.Validate(); err == nil {
		t.Error("negative MaxEventQueue passed validation")
	}
}
