package events

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the API is local-only and already sends permissive CORS headers
	CheckOrigin: func(r *http.Request) bool { return true },
}

// welcome is the first frame every listener receives
type welcome struct {
	Type    string `json:"type"`
	Clients int    `json:"clients"`
}

// WSHandler upgrades the request and keeps the listener registered until it hangs up
func WSHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			hub.log.Debug("websocket upgrade failed", zap.Error(err))
			return
		}

		// written before registering so it never races a broadcast
		_ = ws.WriteJSON(welcome{Type: "welcome", Clients: hub.Stats().Clients + 1})

		hub.Add(ws)
		hub.log.Info("listener connected", zap.String("remote", c.ClientIP()))

		// incoming frames are ignored; reading only detects the hang-up
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		hub.Remove(ws)
		hub.log.Info("listener disconnected", zap.String("remote", c.ClientIP()))
	}
}
