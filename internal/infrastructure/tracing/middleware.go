package tracing

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	// HeaderTraceID carries the trace across hops and is echoed on every response
	HeaderTraceID = "X-Trace-ID"
	// HeaderSpanID identifies the span that served the request
	HeaderSpanID = "X-Span-ID"
)

// HTTPMiddleware starts a span per request and echoes the trace headers
func HTTPMiddleware(tracer *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if traceID := c.GetHeader(HeaderTraceID); traceID != "" {
			ctx = WithTraceID(ctx, TraceID(traceID))
		}

		name := c.FullPath()
		if name == "" {
			name = "unmatched"
		}
		span, ctx := tracer.StartSpan(ctx, c.Request.Method+" "+name)
		c.Request = c.Request.WithContext(ctx)

		c.Header(HeaderTraceID, string(span.TraceID))
		c.Header(HeaderSpanID, string(span.SpanID))

		c.Next()

		span.Finish()
		span.StatusCode = c.Writer.Status()
		span.SetTag("http.path", c.Request.URL.Path)
		span.SetTag("http.status", strconv.Itoa(span.StatusCode))
		if user := c.GetString(UserKey); user != "" {
			span.SetTag("user_id", user)
		}
		if len(c.Errors) > 0 {
			span.Error = c.Errors.Last()
		}
		tracer.Submit(span)
	}
}

// UserKey is the gin context key under which the authenticated user id is stored
const UserKey = "user_id"
