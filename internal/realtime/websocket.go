package realtime

import (
	"fmt"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WebSocketConn wraps websocket.Conn so hub.go stays free of the websocket import.
type WebSocketConn struct {
	Conn *websocket.Conn
}

// ServeWS registers an authenticated connection with the hub. The JWT middleware
// runs before the upgrade and leaves userId in locals.
func ServeWS(hub *Hub, log zerolog.Logger) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		userID := fmt.Sprint(c.Locals("userId"))

		client := &Client{
			ID:     uuid.NewString(),
			UserID: userID,
			Conn:   &WebSocketConn{Conn: c},
			Send:   make(chan []byte, 64),
		}
		hub.RegisterClient(client)
		defer hub.UnregisterClient(client)

		go func() {
			for msg := range client.Send {
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					log.Debug().Err(err).Str("user_id", userID).Msg("ws write")
					return
				}
			}
		}()

		// klien hanya mengirim ping; baca sampai koneksi putus
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}
}
