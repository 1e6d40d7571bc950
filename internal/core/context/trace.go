// Package context carries request correlation data through ledger
// operations so log lines and audit rows of one request can be joined.
package context

import (
	"context"

	"github.com/google/uuid"
)

// Origin names the surface that started an operation.
type Origin string

const (
	OriginHTTP Origin = "http"
	OriginCLI  Origin = "ledgerctl"
)

type TraceContext struct {
	TraceID   string
	RequestID string
	Origin    Origin
}

type traceContextKey struct{}

func WithTrace(ctx context.Context, trace *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, trace)
}

// GetTrace returns the TraceContext of ctx, or nil.
func GetTrace(ctx context.Context) *TraceContext {
	if v, ok := ctx.Value(traceContextKey{}).(*TraceContext); ok {
		return v
	}
	return nil
}

// GetRequestID returns the request ID of ctx, or "".
func GetRequestID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.RequestID
	}
	return ""
}

// NewTraceContext starts a trace for one operation of origin. Command-line
// request IDs carry the origin as a prefix so audit rows show where a
// posting came from.
func NewTraceContext(origin Origin) *TraceContext {
	requestID := uuid.NewString()
	if origin != OriginHTTP {
		requestID = string(origin) + "-" + requestID
	}
	return &TraceContext{
		TraceID:   uuid.NewString(),
		RequestID: requestID,
		Origin:    origin,
	}
}
