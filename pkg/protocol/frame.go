package protocol

import (
	"errors"
	"io"
)

const (
	// FrameHeaderSize is the fixed header length in bytes.
	FrameHeaderSize = 4

	// MaxPayloadSize is the largest encodable payload (2^16 - 1).
	MaxPayloadSize = 65535
)

// FrameType identifies what the payload carries.
type FrameType uint8

const (
	FrameHandshake FrameType = 0x00 // connection setup
	FrameEvent     FrameType = 0x01 // client to server events
	FramePatches   FrameType = 0x02 // server to client node operations
	FrameControl   FrameType = 0x03 // ping/pong
	FrameError     FrameType = 0x04 // fatal session error
)

func (ft FrameType) String() string {
	switch ft {
	case FrameHandshake:
		return "Handshake"
	case FrameEvent:
		return "Event"
	case FramePatches:
		return "Patches"
	case FrameControl:
		return "Control"
	case FrameError:
		return "Error"
	default:
		return "Unknown"
	}
}

// FrameFlags carry per-frame processing hints.
type FrameFlags uint8

const (
	FlagFinal    FrameFlags = 0x01 // last frame of a batch
	FlagPriority FrameFlags = 0x02 // bypass ordinary queueing
)

// Has reports whether flag is set.
func (ff FrameFlags) Has(flag FrameFlags) bool {
	return ff&flag != 0
}

var (
	ErrFrameTooLarge    = errors.New("protocol: frame payload too large")
	ErrInvalidFrameType = errors.New("protocol: invalid frame type")
)

// Frame is one protocol frame.
//
// Wire format: type (1 byte), flags (1 byte), payload length (2 bytes
// big-endian), payload.
type Frame struct {
	Type    FrameType
	Flags   FrameFlags
	Payload []byte
}

// Encode returns the frame's wire bytes, header included.
func (f *Frame) Encode() ([]byte, error) {
	if len(f.Payload) > MaxPayloadSize {
		return nil, ErrFrameTooLarge
	}
	buf := make([]byte, FrameHeaderSize+len(f.Payload))
	buf[0] = byte(f.Type)
	buf[1] = byte(f.Flags)
	buf[2] = byte(len(f.Payload) >> 8)
	buf[3] = byte(len(f.Payload))
	copy(buf[FrameHeaderSize:], f.Payload)
	return buf, nil
}

// DecodeFrame parses one frame from data and returns it with the number
// of bytes consumed.
func DecodeFrame(data []byte) (*Frame, int, error) {
	if len(data) < FrameHeaderSize {
		return nil, 0, io.ErrUnexpectedEOF
	}
	ft := FrameType(data[0])
	if ft > FrameError {
		return nil, 0, ErrInvalidFrameType
	}
	length := int(data[2])<<8 | int(data[3])
	total := FrameHeaderSize + length
	if len(data) < total {
		return nil, 0, io.ErrUnexpectedEOF
	}
	return &Frame{
		Type:    ft,
		Flags:   FrameFlags(data[1]),
		Payload: data[FrameHeaderSize:total],
	}, total, nil
}
