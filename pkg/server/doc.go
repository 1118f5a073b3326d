// Package server hosts Lattice applications over HTTP and WebSocket.
//
// Each connected client gets a Session owning one runtime.App mounted
// on a WireBackend. The backend mirrors the rendered tree in memory,
// assigns wire IDs to nodes, and records every mutation as a
// protocol.Patch. Client events arrive as protocol frames, are
// dispatched to the registered handler, and the resulting patch batch
// is written back on the same connection.
//
// The initial page load is served as plain HTML rendered from a
// freshly mounted app, so clients see content before the WebSocket
// upgrade completes.
package server
