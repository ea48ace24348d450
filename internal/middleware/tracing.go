package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"
)

// Tracing starts a server span per request and adds the trace ID to the request logger.
// Install it after StructuredLoggingMiddleware.
func Tracing(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}

// TraceLogger enriches the request logger with the active trace and span IDs.
func TraceLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		spanCtx := trace.SpanContextFromContext(ctx)
		if spanCtx.IsValid() {
			logger := GetLoggerFromCtx(ctx).With(
				slog.String("trace_id", spanCtx.TraceID().String()),
				slog.String("span_id", spanCtx.SpanID().String()),
			)
			c.Request = c.Request.WithContext(WithLogger(ctx, logger))
		}
		c.Next()
	}
}
