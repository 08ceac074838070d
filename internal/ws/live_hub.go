package ws

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"go-patrol/internal/events"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 256
)

type liveMessage struct {
	siteID  string
	payload []byte
}

// LiveHub fans attendance transitions out to connected supervisor dashboards.
type LiveHub struct {
	register   chan *liveClient
	unregister chan *liveClient
	broadcast  chan liveMessage
	clients    map[*liveClient]struct{}
	done       chan struct{}
	connected  atomic.Int64
	logger     *zap.Logger
}

func NewLiveHub(logger *zap.Logger) *LiveHub {
	return &LiveHub{
		register:   make(chan *liveClient),
		unregister: make(chan *liveClient),
		broadcast:  make(chan liveMessage, 256),
		clients:    make(map[*liveClient]struct{}),
		done:       make(chan struct{}),
		logger:     logger.Named("ws.live"),
	}
}

func (h *LiveHub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return
		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.connected.Add(1)
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
			}
		case msg := <-h.broadcast:
			for client := range h.clients {
				if !client.wants(msg.siteID) {
					continue
				}
				select {
				case client.send <- msg.payload:
				default:
					// slow consumer
					h.drop(client)
				}
			}
		}
	}
}

func (h *LiveHub) drop(client *liveClient) {
	delete(h.clients, client)
	close(client.send)
	client.conn.Close()
	h.connected.Add(-1)
}

// Connected is the number of registered dashboards.
func (h *LiveHub) Connected() int {
	return int(h.connected.Load())
}

// Broadcast never blocks the caller; when the queue is full the event is dropped.
func (h *LiveHub) Broadcast(event events.SiteAttendanceEvent) {
	if h == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("marshal live event failed", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- liveMessage{siteID: event.SiteID, payload: data}:
	default:
		h.logger.Warn("live feed queue full, event dropped", zap.String("record_id", event.RecordID))
	}
}

type liveClient struct {
	hub   *LiveHub
	conn  *websocket.Conn
	send  chan []byte
	sites map[string]struct{} // empty means every site
}

func newLiveClient(hub *LiveHub, conn *websocket.Conn, sites []string) *liveClient {
	c := &liveClient{
		hub:   hub,
		conn:  conn,
		send:  make(chan []byte, sendBufferSize),
		sites: make(map[string]struct{}, len(sites)),
	}
	for _, s := range sites {
		if s != "" {
			c.sites[s] = struct{}{}
		}
	}
	return c
}

func (c *liveClient) wants(siteID string) bool {
	if len(c.sites) == 0 {
		return true
	}
	_, ok := c.sites[siteID]
	return ok
}

func (c *liveClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *liveClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
