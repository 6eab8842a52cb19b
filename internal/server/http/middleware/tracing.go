package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/HannahHaeusler/labor/internal/telemetry"
)

// Tracing continues the caller's W3C trace context and wraps each request in a server
// span named after its route. Downstream handlers see the span through the request context.
func Tracing() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := routeOf(c)
		ctx := telemetry.ExtractHTTP(c.Request.Context(), c.Request.Header)
		ctx, span := telemetry.StartSpanWithKind(ctx, c.Request.Method+" "+route, trace.SpanKindServer,
			semconv.HTTPRequestMethodKey.String(c.Request.Method),
			semconv.HTTPRoute(route),
			semconv.URLPath(c.Request.URL.Path),
		)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(semconv.HTTPResponseStatusCode(status))
		if status >= http.StatusInternalServerError {
			err := fmt.Errorf("http status %d", status)
			if last := c.Errors.Last(); last != nil {
				err = last.Err
			}
			telemetry.RecordSpanError(span, err)
		}
	}
}
