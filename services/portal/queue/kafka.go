// services/portal/queue/kafka.go
package queue

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	perrors "github.com/example/payment-portal/pkg/errors"
)

type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Bus publishes to a single topic through one long-lived writer.
type Bus struct {
	w     Writer
	topic string
}

func New(brokers []string, topic string) *Bus {
	return NewWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
	}, topic)
}

func NewWithWriter(w Writer, topic string) *Bus {
	return &Bus{w: w, topic: topic}
}

func (b *Bus) Topic() string { return b.topic }

func (b *Bus) Publish(ctx context.Context, key, payload []byte) error {
	msg := kafka.Message{
		Key:     key,
		Value:   payload,
		Headers: InjectHeaders(ctx, nil),
		Time:    time.Now().UTC(),
	}
	if err := b.w.WriteMessages(ctx, msg); err != nil {
		return perrors.Wrap(perrors.CodePublishFailed, "topic "+b.topic, err)
	}
	return nil
}

func (b *Bus) Close() error {
	return b.w.Close()
}

// InjectHeaders appends the trace context of ctx as Kafka headers.
func InjectHeaders(ctx context.Context, headers []kafka.Header) []kafka.Header {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	for k, v := range carrier {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return headers
}

// ExtractHeaders is the consumer side of InjectHeaders.
func ExtractHeaders(ctx context.Context, headers []kafka.Header) context.Context {
	carrier := propagation.MapCarrier{}
	for _, h := range headers {
		carrier[h.Key] = string(h.Value)
	}
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}
