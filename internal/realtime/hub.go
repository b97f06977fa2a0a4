package realtime

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Windi-Fikriyansyah/studio_be/internal/metrics"
)

type Client struct {
	ID     string
	UserID string
	Conn   *WebSocketConn
	Send   chan []byte
}

// Hub fans notification payloads out to every connected admin screen.
type Hub struct {
	clients    map[string]*Client
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	log        zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

func (h *Hub) RegisterClient(client *Client) {
	h.register <- client
}

func (h *Hub) UnregisterClient(client *Client) {
	h.unregister <- client
}

func (h *Hub) Broadcast(payload []byte) {
	h.broadcast <- payload
}

func (h *Hub) BroadcastJSON(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		h.log.Error().Err(err).Msg("marshal broadcast payload")
		return
	}
	h.Broadcast(b)
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Run owns the client map; stop by closing done.
func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			h.mu.Lock()
			for id, c := range h.clients {
				close(c.Send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			metrics.WebsocketClients.Set(0)
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			n := len(h.clients)
			h.mu.Unlock()
			metrics.WebsocketClients.Set(float64(n))
			h.log.Debug().Str("client_id", client.ID).Str("user_id", client.UserID).Msg("ws client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			if old, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(old.Send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			metrics.WebsocketClients.Set(float64(n))

		case message := <-h.broadcast:
			h.mu.Lock()
			for id, client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// klien lambat, putuskan
					close(client.Send)
					delete(h.clients, id)
				}
			}
			h.mu.Unlock()
		}
	}
}
