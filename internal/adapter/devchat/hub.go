// Package devchat is a local websocket chat gateway. It implements the same
// delivery and inbound contracts as the telegram adapter so the bots can be
// exercised end to end without Bot API credentials.
package devchat

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Erdaulet0341/taxi-bots/internal/domain/models"
	"github.com/Erdaulet0341/taxi-bots/internal/menu"
)

type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte

	// closed is guarded by the hub mutex; Send is closed exactly once,
	// always with the flag set in the same critical section.
	closed bool
}

type Hub struct {
	mu         sync.Mutex
	Clients    map[string]*Client // chat_id -> Client
	Register   chan *Client
	Unregister chan *Client

	handler  InboundHandler
	upgrader websocket.Upgrader
}

// InboundHandler consumes inbound chat messages, mirroring the telegram
// poller's contract.
type InboundHandler interface {
	HandleInbound(ctx context.Context, msg models.InboundMessage)
}

type wsOutbound struct {
	Type      string       `json:"type"`
	Text      string       `json:"text"`
	Menu      *menu.Layout `json:"menu,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

type wsInbound struct {
	Text     string           `json:"text"`
	Location *models.Location `json:"location,omitempty"`
}

func NewHub(handler InboundHandler) *Hub {
	return &Hub{
		Clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		handler:    handler,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.Register:
			h.mu.Lock()
			if old, ok := h.Clients[client.ID]; ok && old != client {
				h.closeClient(old)
			}
			h.Clients[client.ID] = client
			h.mu.Unlock()
			log.Printf("Devchat client registered: %s", client.ID)

		case client := <-h.Unregister:
			h.mu.Lock()
			// A reconnect may have replaced this client already; only the
			// instance still in the map is ours to drop.
			if h.Clients[client.ID] == client {
				delete(h.Clients, client.ID)
				log.Printf("Devchat client unregistered: %s", client.ID)
			}
			h.closeClient(client)
			h.mu.Unlock()
		}
	}
}

// closeClient closes the client's Send channel exactly once. Callers must
// hold h.mu.
func (h *Hub) closeClient(client *Client) {
	if !client.closed {
		client.closed = true
		close(client.Send)
	}
}

// SendMessage implements the chat-delivery contract. An unconnected or
// disconnecting chat is a delivery failure, same as an unreachable Telegram
// chat; it is never a panic. The enqueue happens under the hub mutex, the
// only place Send channels are closed, so a concurrent disconnect surfaces
// as an error here.
func (h *Hub) SendMessage(ctx context.Context, chatID, text string, layout *menu.Layout) error {
	data, err := json.Marshal(wsOutbound{
		Type:      "message",
		Text:      text,
		Menu:      layout,
		Timestamp: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal outbound message: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.Clients[chatID]
	if !ok || client.closed {
		return fmt.Errorf("devchat client %s not connected", chatID)
	}

	select {
	case client.Send <- data:
		return nil
	default:
		// A client that cannot drain its buffer is dropped; the write pump
		// exits when Send closes.
		delete(h.Clients, chatID)
		h.closeClient(client)
		return fmt.Errorf("devchat client %s send buffer full", chatID)
	}
}

// ServeWS upgrades one connection; the chat_id query parameter is the
// client's identity for the whole connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	chatID := r.URL.Query().Get("chat_id")
	if chatID == "" {
		http.Error(w, "chat_id query parameter required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Devchat upgrade failed: %v", err)
		return
	}

	client := &Client{ID: chatID, Conn: conn, Send: make(chan []byte, 16)}
	h.Register <- client

	go h.writePump(client)
	// The upgrade hijacks the connection, so the request context dies as
	// soon as this handler returns. The pump runs on its own context.
	go h.readPump(context.Background(), client)
}

func (h *Hub) readPump(ctx context.Context, client *Client) {
	defer func() {
		h.Unregister <- client
		client.Conn.Close()
	}()

	for {
		_, data, err := client.Conn.ReadMessage()
		if err != nil {
			return
		}
		var in wsInbound
		if err := json.Unmarshal(data, &in); err != nil {
			log.Printf("Devchat client %s sent malformed frame: %v", client.ID, err)
			continue
		}
		go h.handler.HandleInbound(ctx, models.InboundMessage{
			ChatID:   client.ID,
			Text:     in.Text,
			Location: in.Location,
		})
	}
}

func (h *Hub) writePump(client *Client) {
	for data := range client.Send {
		if err := client.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
