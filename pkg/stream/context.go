package stream

import (
	"context"
)

// Event is one record of a turn's output stream.
type Event struct {
	Name string
	Data interface{}
}

// Event names, in the order a successful turn produces them.
const (
	EventMeta    = "meta"
	EventStep    = "step"
	EventDelta   = "delta"
	EventSources = "sources"
	EventFinal   = "final"
	EventError   = "error"
	EventDone    = "done"
)

// Sink receives events for exactly one turn. Implementations are
// called synchronously from the emitting goroutine.
type Sink func(Event)

type ctxKey struct{}

type channel struct {
	sink    Sink
	traceID string
}

// NewContext scopes a sink and trace id to one workflow invocation.
// The returned context must not outlive the turn; nothing is shared
// between concurrent turns.
func NewContext(parent context.Context, sink Sink, traceID string) context.Context {
	return context.WithValue(parent, ctxKey{}, &channel{sink: sink, traceID: traceID})
}

// Emit forwards an event to the turn's sink. It is a no-op when no
// channel is established (nodes stay callable outside a streaming
// request) or when the turn has been canceled.
func Emit(ctx context.Context, name string, data interface{}) {
	ch, ok := ctx.Value(ctxKey{}).(*channel)
	if !ok || ch.sink == nil {
		return
	}
	if ctx.Err() != nil {
		return
	}
	ch.sink(Event{Name: name, Data: data})
}

// TraceID returns the turn's trace id, or "" outside a streaming
// request.
func TraceID(ctx context.Context) string {
	ch, ok := ctx.Value(ctxKey{}).(*channel)
	if !ok {
		return ""
	}
	return ch.traceID
}
