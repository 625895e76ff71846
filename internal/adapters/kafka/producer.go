package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bidding-service/internal/domain/notification"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of kafka.Writer the producer uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes notification intents to a Kafka topic keyed by bidding
// id, so every intent of one bidding lands on the same partition in order.
type Producer struct {
	writer messageWriter
	topic  string
	logger zerolog.Logger
}

type ProducerParams struct {
	Brokers []string
	Topic   string
	Logger  zerolog.Logger
}

// NewProducer creates a new intent producer
func NewProducer(params ProducerParams) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(params.Brokers...),
			Topic:        params.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 10 * time.Millisecond,
		},
		topic:  params.Topic,
		logger: params.Logger.With().Str("component", "kafka_producer").Logger(),
	}
}

// PublishIntent writes one intent and waits for the broker acknowledgement
func (p *Producer) PublishIntent(ctx context.Context, intent notification.Intent) error {
	msg, err := intentMessage(intent)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error().
			Err(err).
			Str("topic", p.topic).
			Str("intent_id", intent.ID.String()).
			Msg("Failed to publish intent to Kafka")
		return fmt.Errorf("failed to publish intent: %w", err)
	}

	p.logger.Debug().
		Str("topic", p.topic).
		Str("intent_id", intent.ID.String()).
		Str("type", string(intent.Type)).
		Msg("Intent published to Kafka")
	return nil
}

// Close flushes pending writes and closes the writer
func (p *Producer) Close() error {
	return p.writer.Close()
}

func intentMessage(intent notification.Intent) (kafka.Message, error) {
	body, err := json.Marshal(intent)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal intent: %w", err)
	}

	return kafka.Message{
		Key:   []byte(intent.BiddingID.String()),
		Value: body,
		Time:  intent.CreatedAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(intent.Type)},
			{Key: "priority", Value: []byte(intent.Priority)},
		},
	}, nil
}
