package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	perrors "github.com/example/payment-portal/pkg/errors"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func tracedContext(t *testing.T) context.Context {
	t.Helper()
	otel.SetTextMapPropagator(propagation.TraceContext{})

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func TestPublishCarriesTraceparent(t *testing.T) {
	w := &fakeWriter{}
	bus := NewWithWriter(w, "payment.completed")

	err := bus.Publish(tracedContext(t), []byte("sess-1"), []byte(`{"status":"success"}`))

	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "sess-1", string(msg.Key))
	assert.JSONEq(t, `{"status":"success"}`, string(msg.Value))

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", headers["traceparent"])
}

func TestPublishWrapsWriterError(t *testing.T) {
	bus := NewWithWriter(&fakeWriter{err: errors.New("broker down")}, "payment.completed")

	err := bus.Publish(context.Background(), []byte("k"), []byte("v"))

	assert.Equal(t, perrors.CodePublishFailed, perrors.Code(err))
}

func TestClose(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, NewWithWriter(w, "t").Close())
	assert.True(t, w.closed)
}
