package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
	"github.com/sicua/backend/internal/domain/shared"
	"github.com/sicua/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	headerEventType = "event_type"
	headerEventID   = "event_id"
)

// messageWriter is the part of *kafka.Writer the publisher needs
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher forwards domain events to a Kafka topic. Messages are keyed
// by aggregate so every change to one product or sale lands on the same
// partition in order.
type KafkaPublisher struct {
	writer     messageWriter
	serializer *EventSerializer
	logger     *zap.Logger
}

// NewKafkaPublisher creates a publisher writing to cfg.Topic
func NewKafkaPublisher(cfg config.KafkaConfig, logger *zap.Logger) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka: no topic configured")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("kafka")

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return newKafkaPublisher(writer, logger), nil
}

func newKafkaPublisher(writer messageWriter, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer:     writer,
		serializer: NewEventSerializer(),
		logger:     logger,
	}
}

// Publish writes all events in one batch
func (p *KafkaPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		msg, err := p.toMessage(event)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka: failed to write %d events: %w", len(msgs), err)
	}
	p.logger.Debug("Events forwarded", zap.Int("count", len(msgs)))
	return nil
}

// Handle lets the publisher subscribe to the in-memory bus
func (p *KafkaPublisher) Handle(ctx context.Context, event shared.DomainEvent) error {
	return p.Publish(ctx, event)
}

// EventTypes returns nil; the stream receives every event
func (p *KafkaPublisher) EventTypes() []string {
	return nil
}

// Close flushes pending batches and closes the writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func (p *KafkaPublisher) toMessage(event shared.DomainEvent) (kafka.Message, error) {
	value, err := p.serializer.Serialize(event)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(event.AggregateType() + ":" + event.AggregateID()),
		Value: value,
		Time:  event.OccurredAt(),
		Headers: []kafka.Header{
			{Key: headerEventType, Value: []byte(event.EventType())},
			{Key: headerEventID, Value: []byte(event.EventID().String())},
		},
	}, nil
}

var (
	_ shared.EventPublisher = (*KafkaPublisher)(nil)
	_ shared.EventHandler   = (*KafkaPublisher)(nil)
)
