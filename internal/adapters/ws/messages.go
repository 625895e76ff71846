package ws

import (
	"encoding/json"
	"fmt"
	"time"

	"bidding-service/internal/domain/shared"

	"github.com/google/uuid"
)

type MessageType string

const (
	// Client to Server message types
	MessageTypeSubscribe           MessageType = "subscribe"
	MessageTypeUnsubscribe         MessageType = "unsubscribe"
	MessageTypeGetBidding          MessageType = "get_bidding"
	MessageTypeListBiddings        MessageType = "list_biddings"
	MessageTypeSubmitParticipation MessageType = "submit_participation"
	MessageTypePing                MessageType = "ping"

	// Server to Client message types
	MessageTypeSubscription          MessageType = "subscription"
	MessageTypeNotification          MessageType = "notification"
	MessageTypeBidding               MessageType = "bidding"
	MessageTypeBiddings              MessageType = "biddings"
	MessageTypeParticipationAccepted MessageType = "participation_accepted"
	MessageTypeError                 MessageType = "error"
	MessageTypePong                  MessageType = "pong"
)

var (
	ErrMessageTypeRequired = shared.Validation("message type is required")
	ErrUnknownMessageType  = shared.Validation("unknown message type")
	ErrBiddingIDRequired   = shared.Validation("bidding_id is required")
	ErrInvalidUnitPrice    = shared.Validation("unit_price must be a decimal string or number")
	ErrInvalidQuantity     = shared.Validation("quantity must be a whole number")
)

type ClientMessage struct {
	Type      MessageType            `json:"type"`
	BiddingID *uuid.UUID             `json:"bidding_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp int64                  `json:"timestamp"`
}

// ServerMessage represents a message sent from server to client
type ServerMessage struct {
	Type      MessageType            `json:"type"`
	BiddingID *uuid.UUID             `json:"bidding_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Error     *string                `json:"error,omitempty"`
	Code      string                 `json:"code,omitempty"`
	Timestamp int64                  `json:"timestamp"`
}

func NewServerMessage(msgType MessageType) *ServerMessage {
	return &ServerMessage{
		Type:      msgType,
		Data:      make(map[string]interface{}),
		Timestamp: time.Now().Unix(),
	}
}

// NewErrorMessage reports err to the client, with the domain error code when
// there is one
func NewErrorMessage(err error, biddingID *uuid.UUID) *ServerMessage {
	text := err.Error()
	msg := &ServerMessage{
		Type:      MessageTypeError,
		BiddingID: biddingID,
		Error:     &text,
		Timestamp: time.Now().Unix(),
	}
	if kind := shared.KindOf(err); kind != shared.KindInternal {
		msg.Code = string(kind)
	}
	return msg
}

func (m *ClientMessage) validateBiddingID() error {
	if m.BiddingID == nil || *m.BiddingID == uuid.Nil {
		return ErrBiddingIDRequired
	}
	return nil
}

// ParseClientMessage parses a JSON message from client
func ParseClientMessage(data []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse client message: %w", err)
	}

	if msg.Type == "" {
		return nil, ErrMessageTypeRequired
	}

	return &msg, nil
}

// Validate validates a client message
func (m *ClientMessage) Validate() error {
	switch m.Type {
	case MessageTypeGetBidding, MessageTypeSubmitParticipation:
		return m.validateBiddingID()

	case MessageTypeSubscribe, MessageTypeUnsubscribe, MessageTypeListBiddings, MessageTypePing:

	default:
		return ErrUnknownMessageType
	}

	return nil
}
