package server

import (
	"context"
	"errors"
	"sync"

	"github.com/lattice-dev/lattice/pkg/protocol"
)

// ErrSnapshotNotFound is returned when a snapshot does not exist.
var ErrSnapshotNotFound = errors.New("server: snapshot not found")

// SnapshotStore persists session snapshots so a client reconnecting
// after a server restart can be served its last rendered page.
type SnapshotStore interface {
	Save(ctx context.Context, id string, data []byte) error
	Load(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
}

// Snapshot captures what survives a session across restarts: the patch
// sequence reached and the rendered HTML for first paint.
type Snapshot struct {
	Seq  uint64
	HTML string
}

// EncodeSnapshot serializes a snapshot with the protocol codec.
func EncodeSnapshot(snap *Snapshot) []byte {
	enc := protocol.NewEncoder()
	enc.WriteUvarint(snap.Seq)
	enc.WriteString(snap.HTML)
	return enc.Bytes()
}

// DecodeSnapshot parses a snapshot produced by EncodeSnapshot.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	d := protocol.NewDecoder(data)
	snap := &Snapshot{}
	var err error
	if snap.Seq, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	if snap.HTML, err = d.ReadString(); err != nil {
		return nil, err
	}
	return snap, nil
}

// Snapshot captures the session's current persistable state.
func (s *Session) Snapshot() *Snapshot {
	return &Snapshot{Seq: s.seq, HTML: s.HTML()}
}

// MemoryStore is an in-process SnapshotStore, the default when no
// external store is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Save(_ context.Context, id string, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	m.mu.Lock()
	m.data[id] = cp
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Load(_ context.Context, id string) ([]byte, error) {
	m.mu.RLock()
	data, ok := m.data[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.data, id)
	m.mu.Unlock()
	return nil
}
