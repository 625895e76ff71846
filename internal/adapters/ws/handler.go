package ws

import (
	"context"
	"net/http"
	"sync"

	"bidding-service/internal/domain/bidding"
	"bidding-service/internal/domain/shared"
	"bidding-service/internal/ports/inbound"
	"bidding-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// WsHandler manages WebSocket connections and message routing. Each client
// is subscribed to its member notification topic.
type WsHandler struct {
	clients              map[string]*WsClient // clientID -> Client
	clientsMu            sync.RWMutex
	eventChannels        map[string]chan outbound.Event // clientID -> local event channel
	channelsMu           sync.Mutex
	upgrader             websocket.Upgrader
	members              outbound.MemberRepository
	biddingService       inbound.BiddingService
	participationService inbound.ParticipationService
	broadcaster          outbound.Broadcaster
	logger               zerolog.Logger
}
type WsHandlerParams struct {
	Upgrader             websocket.Upgrader
	MemberRepo           outbound.MemberRepository
	BiddingService       inbound.BiddingService
	ParticipationService inbound.ParticipationService
	Broadcaster          outbound.Broadcaster
	Logger               zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(params WsHandlerParams) *WsHandler {
	return &WsHandler{
		clients:              make(map[string]*WsClient),
		eventChannels:        make(map[string]chan outbound.Event),
		upgrader:             params.Upgrader,
		members:              params.MemberRepo,
		biddingService:       params.BiddingService,
		participationService: params.ParticipationService,
		broadcaster:          params.Broadcaster,
		logger:               params.Logger.With().Str("component", "ws_handler").Logger(),
	}
}

// HandleWebSocket authenticates the member and upgrades the connection
func (handler *WsHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	memberIDStr := r.URL.Query().Get("member_id")
	if memberIDStr == "" {
		memberIDStr = r.Header.Get("X-Member-ID")
	}
	if memberIDStr == "" {
		http.Error(w, "member_id is required", http.StatusBadRequest)
		return
	}

	memberID, err := uuid.Parse(memberIDStr)
	if err != nil {
		http.Error(w, "invalid member_id format", http.StatusBadRequest)
		return
	}

	member, err := handler.members.GetByID(r.Context(), memberID)
	if err != nil {
		http.Error(w, "unknown member", http.StatusUnauthorized)
		return
	}

	conn, err := handler.upgrader.Upgrade(w, r, nil)
	if err != nil {
		handler.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	client := NewClient(WsClientParams{
		Actor:   shared.ActorFromMember(member),
		Conn:    conn,
		Handler: handler,
		Logger:  handler.logger,
	})

	handler.registerClient(client)
	client.Start()

	if err := handler.subscribe(client); err != nil {
		client.Send(NewErrorMessage(err, nil))
	}

	// Wait for client to disconnect
	go func() {
		<-client.ctx.Done()
		handler.unregisterClient(client)
	}()

	handler.logger.Info().Str("client_id", client.id).Str("member_id", client.actor.ID.String()).Msg("WebSocket client connected")
}

func (handler *WsHandler) registerClient(client *WsClient) {
	handler.clientsMu.Lock()
	defer handler.clientsMu.Unlock()
	handler.clients[client.id] = client
	handler.logger.Debug().Str("client_id", client.id).Int("total_clients", len(handler.clients)).Msg("Client registered")
}

func (handler *WsHandler) unregisterClient(client *WsClient) {
	handler.clientsMu.Lock()
	delete(handler.clients, client.id)
	total := len(handler.clients)
	handler.clientsMu.Unlock()

	if err := handler.unsubscribe(client); err != nil {
		handler.logger.Error().Err(err).Str("client_id", client.id).Msg("Failed to unsubscribe disconnected client")
	}

	client.Stop()

	handler.logger.Info().Str("client_id", client.id).Str("member_id", client.actor.ID.String()).Int("total_clients", total).Msg("WebSocket client disconnected")
}

// subscribe attaches the client to its member topic. The event channel is
// created here and closed by the broadcaster once the client has no topic left.
func (handler *WsHandler) subscribe(client *WsClient) error {
	handler.channelsMu.Lock()
	defer handler.channelsMu.Unlock()

	eventChan, exists := handler.eventChannels[client.id]
	if !exists {
		eventChan = make(chan outbound.Event, 100)
		handler.eventChannels[client.id] = eventChan
		go handler.listenForClientEvents(client, eventChan)
	}

	topic := outbound.MemberTopic(client.actor.ID)
	if err := handler.broadcaster.Subscribe(client.ctx, topic, client.id, eventChan); err != nil {
		handler.logger.Error().Err(err).Str("client_id", client.id).Str("topic", topic).Msg("Failed to subscribe client")
		delete(handler.eventChannels, client.id)
		return err
	}
	return nil
}

func (handler *WsHandler) unsubscribe(client *WsClient) error {
	handler.channelsMu.Lock()
	defer handler.channelsMu.Unlock()

	if _, exists := handler.eventChannels[client.id]; !exists {
		return nil
	}
	delete(handler.eventChannels, client.id)

	return handler.broadcaster.Unsubscribe(context.Background(), outbound.MemberTopic(client.actor.ID), client.id)
}

// listenForClientEvents forwards broadcast events until the channel closes
func (handler *WsHandler) listenForClientEvents(client *WsClient, eventChan chan outbound.Event) {
	handler.logger.Debug().Str("client_id", client.id).Msg("Event listener started for client")

	for event := range eventChan {
		if err := client.Send(convertEventToMessage(event)); err != nil {
			handler.logger.Error().
				Err(err).Str("client_id", client.id).Msg("Failed to send event to WebSocket client")
		}
	}

	handler.logger.Debug().Str("client_id", client.id).Msg("Event listener stopped for client")
}

func (handler *WsHandler) HandleClientMessage(client *WsClient, msg *ClientMessage) error {
	switch msg.Type {
	case MessageTypeSubscribe:
		if err := handler.subscribe(client); err != nil {
			return err
		}
		return client.Send(subscriptionMessage("subscribed"))

	case MessageTypeUnsubscribe:
		if err := handler.unsubscribe(client); err != nil {
			return err
		}
		return client.Send(subscriptionMessage("unsubscribed"))

	case MessageTypeGetBidding:
		return handler.handleGetBidding(client, msg)

	case MessageTypeListBiddings:
		return handler.handleListBiddings(client, msg)

	case MessageTypeSubmitParticipation:
		return handler.handleSubmitParticipation(client, msg)

	default:
		handler.logger.Warn().Str("client_id", client.id).Str("message_type", string(msg.Type)).Msg("Unknown message type from client")
		return ErrUnknownMessageType
	}
}

// GetConnectedClients returns the number of connected clients
func (handler *WsHandler) GetConnectedClients() int {
	handler.clientsMu.RLock()
	defer handler.clientsMu.RUnlock()
	return len(handler.clients)
}

func (handler *WsHandler) handleGetBidding(client *WsClient, msg *ClientMessage) error {
	b, err := handler.biddingService.GetBidding(client.ctx, *msg.BiddingID)
	if err != nil {
		return client.Send(NewErrorMessage(err, msg.BiddingID))
	}

	response := NewServerMessage(MessageTypeBidding)
	response.BiddingID = msg.BiddingID
	response.Data["bidding"] = b
	return client.Send(response)
}

func (handler *WsHandler) handleListBiddings(client *WsClient, msg *ClientMessage) error {
	req := inbound.ListBiddingsRequest{Page: 1, PageSize: 10}
	if page, ok := msg.Data["page"].(float64); ok {
		req.Page = int(page)
	}
	if size, ok := msg.Data["page_size"].(float64); ok {
		req.PageSize = int(size)
	}
	if status, ok := msg.Data["status"].(string); ok && status != "" {
		req.Statuses = []bidding.Status{bidding.Status(status)}
	}

	biddings, err := handler.biddingService.ListBiddings(client.ctx, req)
	if err != nil {
		return client.Send(NewErrorMessage(err, nil))
	}

	response := NewServerMessage(MessageTypeBiddings)
	response.Data["biddings"] = biddings
	response.Data["count"] = len(biddings)
	return client.Send(response)
}

// handleSubmitParticipation lets a connected supplier bid on its own behalf
func (handler *WsHandler) handleSubmitParticipation(client *WsClient, msg *ClientMessage) error {
	req := inbound.SubmitParticipationRequest{
		BiddingID:  *msg.BiddingID,
		SupplierID: client.actor.ID,
	}

	if raw, ok := msg.Data["unit_price"]; ok && raw != nil {
		unitPrice, err := parseDecimal(raw)
		if err != nil {
			return client.Send(NewErrorMessage(err, msg.BiddingID))
		}
		req.UnitPrice = &unitPrice
	}
	if raw, ok := msg.Data["quantity"]; ok && raw != nil {
		quantity, ok := raw.(float64)
		if !ok || quantity != float64(int64(quantity)) {
			return client.Send(NewErrorMessage(ErrInvalidQuantity, msg.BiddingID))
		}
		req.Quantity = int64(quantity)
	}
	if comment, ok := msg.Data["comment"].(string); ok {
		req.Comment = comment
	}

	p, _, err := handler.participationService.SubmitParticipation(client.ctx, req, client.actor)
	if err != nil {
		return client.Send(NewErrorMessage(err, msg.BiddingID))
	}

	handler.logger.Info().
		Str("participation_id", p.ID.String()).
		Str("bidding_id", p.BiddingID.String()).
		Str("supplier_id", p.SupplierID.String()).
		Str("total", p.Amounts.Total.String()).
		Msg("Participation submitted over WebSocket")

	response := NewServerMessage(MessageTypeParticipationAccepted)
	response.BiddingID = msg.BiddingID
	response.Data["participation"] = p
	return client.Send(response)
}

func parseDecimal(raw interface{}) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Decimal{}, ErrInvalidUnitPrice
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	default:
		return decimal.Decimal{}, ErrInvalidUnitPrice
	}
}

func subscriptionMessage(status string) *ServerMessage {
	response := NewServerMessage(MessageTypeSubscription)
	response.Data["status"] = status
	return response
}

func convertEventToMessage(event outbound.Event) *ServerMessage {
	msgType := MessageTypeNotification
	if event.Type == outbound.EventTypeError {
		msgType = MessageTypeError
	}

	msg := &ServerMessage{
		Type:      msgType,
		Data:      event.Data,
		Timestamp: event.Timestamp,
	}
	if event.BiddingID != uuid.Nil {
		biddingID := event.BiddingID
		msg.BiddingID = &biddingID
	}
	return msg
}
