package server

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lattice-dev/lattice/pkg/protocol"
)

const tracerName = "github.com/lattice-dev/lattice/pkg/server"

func tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// startEventSpan opens a span covering one client event dispatch.
func startEventSpan(ctx context.Context, sessionID string, ev *protocol.Event) (context.Context, trace.Span) {
	return tracer().Start(ctx, "session.dispatch",
		trace.WithAttributes(
			attribute.String("lattice.session_id", sessionID),
			attribute.String("lattice.event", ev.Name),
			attribute.Int64("lattice.node", int64(ev.Node)),
			attribute.Int64("lattice.seq", int64(ev.Seq)),
		))
}
