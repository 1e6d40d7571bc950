package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	appctx "pgcledger/internal/core/context"
	"pgcledger/internal/core/id"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"
)

var tracer = otel.Tracer("pgcledger/http")

// Trace opens a server span per request and stores the correlation IDs in
// the request context. A client X-Request-ID is kept; the trace ID is the
// span's when a tracer provider is installed, else the client's X-Trace-ID.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := appctx.NewTraceContext(appctx.OriginHTTP)
		if v := c.GetHeader(HeaderRequestID); v != "" {
			tc.RequestID = v
		}
		if v := c.GetHeader(HeaderTraceID); v != "" {
			tc.TraceID = v
		}

		ctx, span := tracer.Start(c.Request.Context(), c.Request.Method+" "+c.FullPath(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request_id", tc.RequestID),
				attribute.String("http.method", c.Request.Method),
			),
		)
		defer span.End()

		if sc := span.SpanContext(); sc.HasTraceID() {
			tc.TraceID = sc.TraceID().String()
		}

		c.Request = c.Request.WithContext(appctx.WithTrace(ctx, tc))
		c.Set("request_id", tc.RequestID)
		c.Header(HeaderRequestID, tc.RequestID)
		c.Header(HeaderTraceID, tc.TraceID)

		c.Next()

		span.SetAttributes(attribute.Int("http.status_code", c.Writer.Status()))
		if tenantID := TenantID(c); !id.IsNil(tenantID) {
			span.SetAttributes(attribute.String("ledger.tenant_id", tenantID.String()))
		}
	}
}
