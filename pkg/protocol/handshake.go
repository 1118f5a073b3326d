package protocol

import "fmt"

// Version is the current protocol version. Servers reject handshakes
// from clients speaking a different major version.
const Version = 1

// Handshake opens a connection. A non-empty SessionID asks the server
// to resume that session; the server answers with a HandshakeAck.
type Handshake struct {
	Version   uint64
	SessionID string
}

// HandshakeAck is the server's reply. Resumed is false when the server
// started a fresh session (unknown or expired ID); the client must then
// discard its mirror and wait for the full initial patch batch.
type HandshakeAck struct {
	SessionID string
	Resumed   bool
}

// EncodeHandshake appends the handshake to e.
func EncodeHandshake(e *Encoder, h *Handshake) {
	e.WriteUvarint(h.Version)
	e.WriteString(h.SessionID)
}

// DecodeHandshake parses a handshake and validates the version.
func DecodeHandshake(data []byte) (*Handshake, error) {
	d := NewDecoder(data)
	h := &Handshake{}
	var err error
	if h.Version, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	if h.Version != Version {
		return nil, fmt.Errorf("protocol: unsupported version %d", h.Version)
	}
	if h.SessionID, err = d.ReadString(); err != nil {
		return nil, err
	}
	return h, nil
}

// EncodeHandshakeAck appends the ack to e.
func EncodeHandshakeAck(e *Encoder, a *HandshakeAck) {
	e.WriteString(a.SessionID)
	e.WriteBool(a.Resumed)
}

// DecodeHandshakeAck parses a handshake ack.
func DecodeHandshakeAck(data []byte) (*HandshakeAck, error) {
	d := NewDecoder(data)
	a := &HandshakeAck{}
	var err error
	if a.SessionID, err = d.ReadString(); err != nil {
		return nil, err
	}
	if a.Resumed, err = d.ReadBool(); err != nil {
		return nil, err
	}
	return a, nil
}

// ErrorFrame reports a fatal session error before the server closes the
// connection.
type ErrorFrame struct {
	Code    uint64
	Message string
}

// Error codes.
const (
	ErrCodeBadFrame    = 1
	ErrCodeBadEvent    = 2
	ErrCodeSessionGone = 3
	ErrCodeInternal    = 4
	ErrCodeRateLimited = 5
	ErrCodeUnsupported = 6
)

// EncodeErrorFrame appends the error frame to e.
func EncodeErrorFrame(e *Encoder, ef *ErrorFrame) {
	e.WriteUvarint(ef.Code)
	e.WriteString(ef.Message)
}

// DecodeErrorFrame parses an error frame.
func DecodeErrorFrame(data []byte) (*ErrorFrame, error) {
	d := NewDecoder(data)
	ef := &ErrorFrame{}
	var err error
	if ef.Code, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	if ef.Message, err = d.ReadString(); err != nil {
		return nil, err
	}
	return ef, nil
}
