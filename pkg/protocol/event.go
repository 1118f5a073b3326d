package protocol

// Event is a client interaction addressed to a listening node. Payload
// is event-specific JSON produced by the client (input values,
// coordinates); empty for simple events like click.
type Event struct {
	Seq     uint64
	Node    uint64
	Name    string
	Payload []byte
}

// EncodeEvent appends the event to e.
func EncodeEvent(e *Encoder, ev *Event) {
	e.WriteUvarint(ev.Seq)
	e.WriteUvarint(ev.Node)
	e.WriteString(ev.Name)
	e.WriteLenBytes(ev.Payload)
}

// DecodeEvent parses an event from data.
func DecodeEvent(data []byte) (*Event, error) {
	d := NewDecoder(data)
	ev := &Event{}
	var err error
	if ev.Seq, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	if ev.Node, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	if ev.Name, err = d.ReadString(); err != nil {
		return nil, err
	}
	if ev.Payload, err = d.ReadLenBytes(); err != nil {
		return nil, err
	}
	return ev, nil
}
