package dashboard

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleWebSocket upgrades the connection and streams hub events as JSON.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("loginsight: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	events := s.hub.Subscribe()
	defer s.hub.Unsubscribe(events)

	// Read pump detects client disconnect.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				conn.Close()
				return
			}
		}
	}()

	for ev := range events {
		if err := conn.WriteJSON(ev); err != nil {
			return
		}
	}
}
