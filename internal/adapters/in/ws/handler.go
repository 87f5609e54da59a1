package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	// writeWait bounds a single frame write.
	writeWait = 10 * time.Second

	// pongWait is how long a connection may stay silent before it is
	// considered dead.
	pongWait = 60 * time.Second

	// pingPeriod must be shorter than pongWait so pings keep healthy
	// connections alive.
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Handler returns the echo handler upgrading tracking connections.
// The delivery ID path parameter selects which delivery to watch; the
// connection then receives every tracking update for it as a JSON message.
func Handler(hub *Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		deliveryID := c.Param("deliveryID")
		if deliveryID == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "delivery ID is required")
		}

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			return err
		}

		s := hub.subscribe(deliveryID)

		go writePump(hub, s, conn)
		go readPump(hub, s, conn)

		return nil
	}
}

// writePump forwards tracking updates to the connection and keeps it alive
// with periodic pings. It exits when the subscriber is dropped or a write
// fails.
func writePump(hub *Hub, s *subscriber, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		hub.unsubscribe(s)
		_ = conn.Close()
	}()

	for {
		select {
		case update, ok := <-s.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			payload, err := json.Marshal(update)
			if err != nil {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains inbound frames so close and pong control messages are
// processed. Subscribers do not send application data; anything received is
// discarded.
func readPump(hub *Hub, s *subscriber, conn *websocket.Conn) {
	defer func() {
		hub.unsubscribe(s)
		_ = conn.Close()
	}()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
