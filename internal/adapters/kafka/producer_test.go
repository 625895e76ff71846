package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"bidding-service/internal/domain/notification"

	"github.com/google/uuid"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func sampleIntent() notification.Intent {
	return notification.Intent{
		ID:        uuid.New(),
		Type:      notification.TypeWinnerSelected,
		Title:     "Winner selected",
		Recipient: notification.Member(uuid.New()),
		Priority:  notification.PriorityHigh,
		BiddingID: uuid.New(),
		EntityID:  uuid.New(),
		CreatedAt: time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC),
	}
}

func TestPublishIntent_KeyedByBidding(t *testing.T) {
	writer := &fakeWriter{}
	producer := &Producer{writer: writer, topic: "bidding.notifications", logger: zerolog.Nop()}
	intent := sampleIntent()

	assert.NoError(t, producer.PublishIntent(context.Background(), intent))
	assert.Equal(t, 1, len(writer.messages))

	msg := writer.messages[0]
	check.Equal(t, intent.BiddingID.String(), string(msg.Key))
	check.Equal(t, "winner_selected", string(msg.Headers[0].Value))

	var decoded notification.Intent
	assert.NoError(t, json.Unmarshal(msg.Value, &decoded))
	check.Equal(t, intent.ID, decoded.ID)
	check.Equal(t, intent.Recipient, decoded.Recipient)
}

func TestPublishIntent_WrapsWriterError(t *testing.T) {
	writer := &fakeWriter{err: errors.New("broker unavailable")}
	producer := &Producer{writer: writer, topic: "bidding.notifications", logger: zerolog.Nop()}

	err := producer.PublishIntent(context.Background(), sampleIntent())
	check.Error(t, err)
	check.Equal(t, 0, len(writer.messages))
}
