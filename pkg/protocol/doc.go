// Package protocol defines the binary wire format between a Lattice
// session server and its thin clients.
//
// The server holds the component tree and the authoritative document;
// clients hold a mirror keyed by numeric node IDs. After each event the
// server sends the batch of node operations its renderer produced, and
// the client replays them against its mirror.
//
// Framing is a fixed 4-byte header (type, flags, big-endian payload
// length) followed by the payload. Payloads use varints and
// length-prefixed strings throughout; decoders enforce allocation
// limits so a malicious peer cannot force large allocations with a
// forged length prefix.
package protocol
