package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs attaches an upgraded connection to the hub and blocks until the
// peer goes away.
func ServeWs(hub *Hub, conn *websocket.Conn, ownerId uuid.UUID) {
	client := &Client{Hub: hub, Conn: conn, OwnerId: ownerId, Send: make(chan []byte, sendBuffer)}
	if !hub.join(client) {
		conn.Close()
		return
	}

	go client.writePump()
	client.readPump()
}
