package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// any origin; the route is behind JWT auth and the monitor permission
		return true
	},
}

// LiveHandler upgrades a supervisor connection. Repeat ?site_id= to narrow the feed.
func LiveHandler(hub *LiveHub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			hub.logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		client := newLiveClient(hub, conn, c.QueryArray("site_id"))
		select {
		case hub.register <- client:
		case <-hub.done:
			conn.Close()
			return
		}

		hub.logger.Info("live dashboard connected",
			zap.String("guard_id", c.GetString("guard_id")),
			zap.Strings("sites", c.QueryArray("site_id")),
		)

		go client.writePump()
		client.readPump()
	}
}
