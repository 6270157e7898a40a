package ws

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vogiaan1904/playgram-matchroom/internal/events"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 32 * 1024
)

// client is one player's live channel. Dropping the connection never forfeits
// a match; it only stops event delivery until the player reconnects.
type client struct {
	bridge   *Bridge
	conn     *websocket.Conn
	playerID string
	send     chan []byte
	sub      events.Subscriber
}

func (c *client) readPump(ctx context.Context) {
	defer c.bridge.disconnect(ctx, c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		if err := c.bridge.presence.Refresh(ctx, c.playerID); err != nil {
			c.bridge.l.Warnf(ctx, "delivery.ws.client.readPump: presence refresh failed for %s: %v", c.playerID, err)
		}
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.bridge.l.Warnf(ctx, "delivery.ws.client.readPump: %v", err)
			}
			return
		}

		c.bridge.handleMessage(ctx, c, raw)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
