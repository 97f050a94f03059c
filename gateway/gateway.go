// Package gateway terminates client websockets and bridges them to the
// shared presence directory and the delivery relay. Each process runs one
// Gateway; clients-list broadcasts are local to the process, while message
// delivery crosses processes through the relay.
package gateway

import (
	"context"
	"encoding/json"
	"fintrack/auth"
	"fintrack/domain"
	"fintrack/presence"
	"fintrack/relay"
	"fintrack/repositories"
	"fintrack/services"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type Gateway struct {
	directory     presence.Directory
	relay         relay.Relay
	conversations services.IConversationService
	users         repositories.IUserRepository
	tokens        *auth.TokenManager
	log           *slog.Logger

	upgrader websocket.Upgrader

	mu           sync.RWMutex
	clients      map[string]*client // keyed by connection id
	subscription relay.Subscription
}

func New(
	directory presence.Directory,
	deliveryRelay relay.Relay,
	conversations services.IConversationService,
	users repositories.IUserRepository,
	tokens *auth.TokenManager,
	log *slog.Logger,
) *Gateway {
	return &Gateway{
		directory:     directory,
		relay:         deliveryRelay,
		conversations: conversations,
		users:         users,
		tokens:        tokens,
		log:           log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: map[string]*client{},
	}
}

// Start subscribes to the delivery subject. It must complete before the
// websocket endpoint is exposed, otherwise a message published between
// accept and subscribe would be lost for this process.
func (g *Gateway) Start(_ context.Context) error {
	sub, err := g.relay.Subscribe(relay.DeliverSubject, g.onDelivery)
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", relay.DeliverSubject, err)
	}
	g.subscription = sub
	return nil
}

// Close unsubscribes from the relay and drops every live connection. Each
// connection is also evicted from the shared directory: a clean shutdown
// must not leave this process's entries behind for other processes to
// resolve.
func (g *Gateway) Close() {
	if g.subscription != nil {
		_ = g.subscription.Unsubscribe()
	}
	g.mu.Lock()
	clients := make([]*client, 0, len(g.clients))
	for _, c := range g.clients {
		clients = append(clients, c)
	}
	g.clients = map[string]*client{}
	g.mu.Unlock()
	for _, c := range clients {
		if _, err := g.directory.Remove(context.Background(), c.connID); err != nil {
			g.log.Warn("Presence removal failed during shutdown, entry may linger",
				"conn", c.connID, "error", err)
		}
		c.close()
	}
}

// ServeWS authenticates the request and upgrades it. A bad credential is a
// 401 before any websocket traffic; the connection id is minted here and
// identifies the socket everywhere (directory, delivery events).
func (g *Gateway) ServeWS(w http.ResponseWriter, r *http.Request) {
	claims, err := g.tokens.Verify(bearerToken(r))
	if err != nil {
		http.Error(w, "invalid or missing credential", http.StatusUnauthorized)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warn("Websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		gateway: g,
		conn:    conn,
		connID:  uuid.New().String(),
		userID:  claims.UserID,
		email:   claims.Email,
		name:    claims.Username,
		send:    make(chan []byte, 64),
	}
	g.mu.Lock()
	g.clients[c.connID] = c
	g.mu.Unlock()
	g.log.Info("Connection active", "user", c.userID, "conn", c.connID)

	go c.writePump()
	go c.readPump()
}

// bearerToken accepts the credential either as a query parameter (browser
// websocket clients cannot set headers) or as a standard bearer header.
func bearerToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func (g *Gateway) handleEvent(c *client, raw []byte) {
	var ev envelope
	if err := json.Unmarshal(raw, &ev); err != nil {
		g.log.Warn("Discarding malformed frame", "conn", c.connID, "error", err)
		return
	}
	switch ev.Event {
	case EventAnnounce, EventInit:
		var payload initPayload
		_ = json.Unmarshal(ev.Data, &payload)
		g.handleAnnounce(c, payload.DisplayName)
	case EventMessage:
		var payload broadcastPayload
		if err := json.Unmarshal(ev.Data, &payload); err != nil {
			return
		}
		g.handleBroadcast(c, payload.Message)
	case EventPrivateMessage:
		var payload privateMessagePayload
		if err := json.Unmarshal(ev.Data, &payload); err != nil {
			return
		}
		g.handlePrivateMessage(c, payload)
	default:
		g.log.Debug("Ignoring unknown event", "event", ev.Event, "conn", c.connID)
	}
}

// handleAnnounce registers the connection in the shared directory and pushes
// the refreshed clients-list to every local connection. A directory outage
// degrades the connection to local-only operation instead of dropping it.
func (g *Gateway) handleAnnounce(c *client, displayName string) {
	if displayName != "" {
		c.name = displayName
	}
	entry := domain.PresenceEntry{UserID: c.userID, Name: c.name, ConnID: c.connID}
	if err := g.directory.Register(context.Background(), entry); err != nil {
		g.log.Warn("Presence unavailable, connection degraded to local delivery",
			"user", c.userID, "error", err)
	}
	g.broadcastClientsList()
}

// handleBroadcast relays a legacy broadcast message to every local socket.
func (g *Gateway) handleBroadcast(c *client, body string) {
	frame, err := encodeEvent(EventMessage, receivePayload{
		From:    namedParty{ID: c.userID, Name: c.name},
		Message: body,
		ConnID:  c.connID,
	})
	if err != nil {
		return
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, peer := range g.clients {
		peer.enqueue(frame)
	}
}

// handlePrivateMessage persists the message and publishes a delivery event.
// Persistence is the source of truth: a relay failure after a successful
// append is reported to the sender as a warning, never rolled back.
func (g *Gateway) handlePrivateMessage(c *client, payload privateMessagePayload) {
	var replyTo *uuid.UUID
	var replyCtx *domain.ReplyContext
	if payload.Reply != "" {
		id, err := uuid.Parse(payload.Reply)
		if err == nil {
			replyTo = &id
			replyCtx = g.conversations.ResolveReply(context.Background(), id)
		}
	}

	message, err := g.conversations.Append(context.Background(), c.userID, payload.To, payload.Message, replyTo)
	if err != nil {
		g.log.Warn("Message append rejected", "from", c.userID, "to", payload.To, "error", err)
		g.warn(c, "message could not be stored")
		return
	}

	event := domain.DeliveryEvent{
		MessageID: message.ID.String(),
		From:      message.From,
		To:        message.To,
		ConnID:    c.connID,
		Body:      message.Body,
		Reply:     replyCtx,
	}
	data, err := json.Marshal(event)
	if err != nil {
		g.warn(c, "message stored but not deliverable")
		return
	}
	if err := g.relay.Publish(relay.DeliverSubject, data); err != nil {
		g.log.Warn("Delivery publish failed, message remains stored",
			"id", event.MessageID, "error", err)
		g.warn(c, "message stored but delivery is delayed")
	}
}

// dropClient removes the connection locally and from the shared directory,
// then rebroadcasts the clients-list. Removal matches the connection id so a
// reconnected user's fresh entry survives the old socket's teardown.
func (g *Gateway) dropClient(c *client) {
	g.mu.Lock()
	_, known := g.clients[c.connID]
	delete(g.clients, c.connID)
	g.mu.Unlock()
	if !known {
		return
	}
	c.close()

	if _, err := g.directory.Remove(context.Background(), c.connID); err != nil {
		g.log.Warn("Presence removal failed, entry may linger", "conn", c.connID, "error", err)
	}
	g.log.Info("Connection closed", "user", c.userID, "conn", c.connID)
	g.broadcastClientsList()
}

// broadcastClientsList pushes the directory state to every local socket.
// When the shared directory is unreachable the local connections are used
// instead, so local clients keep a coherent (if partial) view.
func (g *Gateway) broadcastClientsList() {
	entries, err := g.directory.ListAll(context.Background())
	if err != nil {
		g.log.Warn("Directory listing failed, falling back to local view", "error", err)
		entries = g.localEntries()
	}
	frame, err := encodeEvent(EventClientsList, entries)
	if err != nil {
		return
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, peer := range g.clients {
		peer.enqueue(frame)
	}
}

func (g *Gateway) localEntries() []domain.PresenceEntry {
	g.mu.RLock()
	defer g.mu.RUnlock()
	entries := make([]domain.PresenceEntry, 0, len(g.clients))
	for _, c := range g.clients {
		entries = append(entries, domain.PresenceEntry{UserID: c.userID, Name: c.name, ConnID: c.connID})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].UserID < entries[j].UserID })
	return entries
}

// onDelivery handles one delivery event from the relay. Sender echo and
// recipient delivery are independent lookups: each side receives the message
// only if the directory resolves it to a socket live on this process.
func (g *Gateway) onDelivery(payload []byte) {
	var event domain.DeliveryEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		g.log.Warn("Discarding malformed delivery event", "error", err)
		return
	}

	push := receivePayload{
		ID:      event.MessageID,
		From:    namedParty{ID: event.From, Name: g.displayName(event.From)},
		To:      namedParty{ID: event.To, Name: g.displayName(event.To)},
		Message: event.Body,
		ConnID:  event.ConnID,
	}
	if event.Reply != nil {
		push.Reply = event.Reply
	}
	frame, err := encodeEvent(EventReceiveMessage, push)
	if err != nil {
		return
	}

	for _, userID := range []string{event.From, event.To} {
		entry, found, err := g.directory.Lookup(context.Background(), userID)
		if err != nil || !found {
			continue
		}
		g.mu.RLock()
		local, ok := g.clients[entry.ConnID]
		g.mu.RUnlock()
		if ok {
			local.enqueue(frame)
		}
	}
}

// displayName prefers the live directory entry, then the user store.
func (g *Gateway) displayName(userID string) string {
	if entry, found, err := g.directory.Lookup(context.Background(), userID); err == nil && found {
		return entry.Name
	}
	if user, err := g.users.GetUserByID(userID); err == nil {
		return user.Username
	}
	return ""
}

func (g *Gateway) warn(c *client, text string) {
	frame, err := encodeEvent(EventDeliveryWarning, warningPayload{Message: text})
	if err != nil {
		return
	}
	c.enqueue(frame)
}
