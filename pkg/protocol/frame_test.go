package protocol

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	f := &Frame{Type: FramePatches, Flags: FlagFinal, Payload: []byte{1, 2, 3}}
	encoded, err := f.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, n, err := DecodeFrame(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if n != len(encoded) {
		t.Errorf("consumed %d bytes, want %d", n, len(encoded))
	}
	if got.Type != FramePatches || !got.Flags.Has(FlagFinal) {
		t.Errorf("header mismatch: %+v", got)
	}
	if !bytes.Equal(got.Payload, f.Payload) {
		t.Errorf("payload mismatch")
	}
}

func TestFrameRejectsOversizedPayload(t *testing.T) {
	f := &Frame{Type: FrameEvent, Payload: make([]byte, MaxPayloadSize+1)}
	if _, err := f.Encode(); !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("got %v, want ErrFrameTooLarge", err)
	}
}

func TestDecodeFrameShortHeader(t *testing.T) {
	if _, _, err := DecodeFrame([]byte{0x01, 0x00}); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("got %v, want ErrUnexpectedEOF", err)
	}
}

func TestDecodeFrameShortPayload(t *testing.T) {
	// Header claims 5 payload bytes; only 2 present.
	data := []byte{byte(FrameEvent), 0, 0, 5, 1, 2}
	if _, _, err := DecodeFrame(data); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("got %v, want ErrUnexpectedEOF", err)
	}
}

func TestDecodeFrameInvalidType(t *testing.T) {
	data := []byte{0x7F, 0, 0, 0}
	if _, _, err := DecodeFrame(data); !errors.Is(err, ErrInvalidFrameType) {
		t.Errorf("got %v, want ErrInvalidFrameType", err)
	}
}

func TestFrameTypeString(t *testing.T) {
	if FramePatches.String() != "Patches" || FrameType(0x99).String() != "Unknown" {
		t.Errorf("unexpected String() output")
	}
}
