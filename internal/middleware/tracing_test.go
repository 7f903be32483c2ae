package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"socialhub/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTracingMiddleware(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := observability.Tracer
	observability.Tracer = tp.Tracer("test")
	t.Cleanup(func() { observability.Tracer = prev })

	var ctxTraceID string
	app := fiber.New()
	app.Use(TracingMiddleware())
	app.Get("/posts/:id", func(c *fiber.Ctx) error {
		ctxTraceID, _ = c.UserContext().Value(TraceIDKey).(string)
		c.Locals("userID", uint(42))
		if c.Params("id") == "0" {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/posts/7", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "GET /posts/:id", span.Name())
	assert.Equal(t, span.SpanContext().TraceID().String(), resp.Header.Get("X-Trace-ID"))
	assert.Equal(t, resp.Header.Get("X-Trace-ID"), ctxTraceID)
	assert.Contains(t, span.Attributes(), attribute.Int("http.status_code", http.StatusOK))
	assert.Contains(t, span.Attributes(), attribute.String("user.id", "42"))
	assert.Equal(t, codes.Unset, span.Status().Code)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/posts/0", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()

	spans = recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}
