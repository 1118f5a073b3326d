package protocol

import (
	"errors"
	"fmt"
)

// Op is a node operation replayed by the client against its mirror of
// the document. Created nodes carry the server-assigned ID so later
// operations can address them.
type Op uint8

const (
	OpCreateElement  Op = 0x01 // node, tag
	OpCreateText     Op = 0x02 // node, text
	OpCreateComment  Op = 0x03 // node, text
	OpSetText        Op = 0x04 // node, text
	OpSetElementText Op = 0x05 // node, text
	OpSetAttr        Op = 0x06 // node, key, value
	OpRemoveAttr     Op = 0x07 // node, key
	OpListen         Op = 0x08 // node, key (event name)
	OpUnlisten       Op = 0x09 // node, key
	OpInsert         Op = 0x0A // node, parent, anchor (0 = append)
	OpRemove         Op = 0x0B // node
)

func (op Op) String() string {
	switch op {
	case OpCreateElement:
		return "CreateElement"
	case OpCreateText:
		return "CreateText"
	case OpCreateComment:
		return "CreateComment"
	case OpSetText:
		return "SetText"
	case OpSetElementText:
		return "SetElementText"
	case OpSetAttr:
		return "SetAttr"
	case OpRemoveAttr:
		return "RemoveAttr"
	case OpListen:
		return "Listen"
	case OpUnlisten:
		return "Unlisten"
	case OpInsert:
		return "Insert"
	case OpRemove:
		return "Remove"
	default:
		return "Unknown"
	}
}

// Patch is one node operation. Field use depends on Op; unused fields
// are zero and not encoded.
type Patch struct {
	Op     Op
	Node   uint64
	Parent uint64
	Anchor uint64 // 0 means append
	Tag    string
	Key    string
	Value  string
}

// PatchBatch is the ordered operation list produced by one renderer
// flush, tagged with a session sequence number.
type PatchBatch struct {
	Seq     uint64
	Patches []Patch
}

var ErrUnknownOp = errors.New("protocol: unknown patch op")

// EncodePatchBatch appends the batch to e.
func EncodePatchBatch(e *Encoder, b *PatchBatch) error {
	e.WriteUvarint(b.Seq)
	e.WriteUvarint(uint64(len(b.Patches)))
	for i := range b.Patches {
		if err := encodePatch(e, &b.Patches[i]); err != nil {
			return err
		}
	}
	return nil
}

func encodePatch(e *Encoder, p *Patch) error {
	e.WriteByte(byte(p.Op))
	e.WriteUvarint(p.Node)

	switch p.Op {
	case OpCreateElement:
		e.WriteString(p.Tag)
	case OpCreateText, OpCreateComment, OpSetText, OpSetElementText:
		e.WriteString(p.Value)
	case OpSetAttr:
		e.WriteString(p.Key)
		e.WriteString(p.Value)
	case OpRemoveAttr, OpListen, OpUnlisten:
		e.WriteString(p.Key)
	case OpInsert:
		e.WriteUvarint(p.Parent)
		e.WriteUvarint(p.Anchor)
	case OpRemove:
	default:
		return fmt.Errorf("%w: 0x%02x", ErrUnknownOp, byte(p.Op))
	}
	return nil
}

// DecodePatchBatch parses a batch from data.
func DecodePatchBatch(data []byte) (*PatchBatch, error) {
	d := NewDecoder(data)
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	count, err := d.ReadCount()
	if err != nil {
		return nil, err
	}
	b := &PatchBatch{Seq: seq, Patches: make([]Patch, 0, count)}
	for i := 0; i < count; i++ {
		p, err := decodePatch(d)
		if err != nil {
			return nil, fmt.Errorf("patch %d: %w", i, err)
		}
		b.Patches = append(b.Patches, p)
	}
	return b, nil
}

func decodePatch(d *Decoder) (Patch, error) {
	var p Patch
	op, err := d.ReadByte()
	if err != nil {
		return p, err
	}
	p.Op = Op(op)
	if p.Node, err = d.ReadUvarint(); err != nil {
		return p, err
	}

	switch p.Op {
	case OpCreateElement:
		p.Tag, err = d.ReadString()
	case OpCreateText, OpCreateComment, OpSetText, OpSetElementText:
		p.Value, err = d.ReadString()
	case OpSetAttr:
		if p.Key, err = d.ReadString(); err != nil {
			return p, err
		}
		p.Value, err = d.ReadString()
	case OpRemoveAttr, OpListen, OpUnlisten:
		p.Key, err = d.ReadString()
	case OpInsert:
		if p.Parent, err = d.ReadUvarint(); err != nil {
			return p, err
		}
		p.Anchor, err = d.ReadUvarint()
	case OpRemove:
	default:
		return p, fmt.Errorf("%w: 0x%02x", ErrUnknownOp, op)
	}
	return p, err
}
