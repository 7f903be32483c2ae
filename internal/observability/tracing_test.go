package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracing_Stdout(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{
		Enabled:      true,
		Exporter:     "stdout",
		SamplerRatio: 1,
		Environment:  "test",
	})
	require.NoError(t, err)
	defer func() { _ = shutdown(context.Background()) }()

	ctx, end := StartServiceSpan(context.Background(), "FriendService", "AddFriendRequest")
	assert.True(t, trace.SpanFromContext(ctx).SpanContext().IsValid())
	end(errors.New("boom"))
}

func TestRecordEvent(t *testing.T) {
	before := testutil.ToFloat64(DomainEvents.WithLabelValues("test_event"))
	RecordEvent("test_event")
	assert.Equal(t, before+1, testutil.ToFloat64(DomainEvents.WithLabelValues("test_event")))
}
