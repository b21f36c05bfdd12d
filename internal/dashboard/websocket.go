package dashboard

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler serves GET /ws/dashboard, upgrading the connection and
// streaming the Bus's retained and live messages to the client.
func Handler(bus *Bus) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("dashboard websocket upgrade error: %v", err)
			return
		}
		defer conn.Close()

		messages, id := bus.Subscribe(64)
		defer bus.Unsubscribe(id)

		ConnectedClients.Inc()
		defer ConnectedClients.Dec()
		started := time.Now()
		defer func() { SubscribeDuration.Observe(time.Since(started).Seconds()) }()

		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case msg, ok := <-messages:
				if !ok {
					return
				}
				if err := conn.WriteJSON(msg); err != nil {
					return
				}
			case <-closed:
				return
			}
		}
	}
}
