// Package events publishes telemetry about forward lookups, reverse
// estimates, and shift-store chunk failures. Publication is fire-and-forget
// from the caller's perspective: a lookup or estimate response is never
// delayed or failed by a telemetry error.
package events

import (
	"context"

	"github.com/nmrhose/nmrhose/internal/infrastructure/messaging/kafka"
	"github.com/nmrhose/nmrhose/internal/infrastructure/monitoring/logging"
)

// Publisher emits the telemetry events produced by the forward-lookup (C5)
// and reverse-estimator (C6) operations, plus shift-store chunk load
// failures (C4).
type Publisher interface {
	LookupPerformed(ctx context.Context, payload kafka.LookupPerformedPayload)
	EstimatePerformed(ctx context.Context, payload kafka.EstimatePerformedPayload)
	ChunkLoadFailed(ctx context.Context, payload kafka.ChunkLoadFailedPayload)
}

// NopPublisher discards every event. It is the default Publisher for
// deployments that run without Kafka (single-binary CLI usage, tests).
type NopPublisher struct{}

func (NopPublisher) LookupPerformed(context.Context, kafka.LookupPerformedPayload)     {}
func (NopPublisher) EstimatePerformed(context.Context, kafka.EstimatePerformedPayload) {}
func (NopPublisher) ChunkLoadFailed(context.Context, kafka.ChunkLoadFailedPayload)     {}

// KafkaPublisher publishes events through a kafka.Producer, one topic per
// event type. Publish errors are logged, never returned, since a telemetry
// failure must never surface as a lookup or estimate failure.
type KafkaPublisher struct {
	producer *kafka.Producer
	source   string
	logger   logging.Logger
}

// NewKafkaPublisher constructs a Publisher backed by producer. source
// identifies this service in the emitted EventEnvelope (e.g. "nmrhosed").
func NewKafkaPublisher(producer *kafka.Producer, source string, logger logging.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, source: source, logger: logger}
}

func (p *KafkaPublisher) LookupPerformed(ctx context.Context, payload kafka.LookupPerformedPayload) {
	p.publish(ctx, kafka.TopicLookupPerformed, "lookup.performed", payload)
}

func (p *KafkaPublisher) EstimatePerformed(ctx context.Context, payload kafka.EstimatePerformedPayload) {
	p.publish(ctx, kafka.TopicEstimatePerformed, "estimate.performed", payload)
}

func (p *KafkaPublisher) ChunkLoadFailed(ctx context.Context, payload kafka.ChunkLoadFailedPayload) {
	p.publish(ctx, kafka.TopicChunkLoadFailed, "store.chunk_load_failed", payload)
}

func (p *KafkaPublisher) publish(ctx context.Context, topic, eventType string, payload interface{}) {
	envelope, err := kafka.NewEventEnvelope(eventType, p.source, payload)
	if err != nil {
		p.logger.Warn("failed to build event envelope", logging.String("topic", topic), logging.Err(err))
		return
	}
	msg, err := envelope.ToMessage(topic)
	if err != nil {
		p.logger.Warn("failed to build producer message", logging.String("topic", topic), logging.Err(err))
		return
	}
	p.producer.PublishAsync(ctx, msg)
}
