package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeTimeout  = 15 * time.Second
	sendQueueSize = 256
)

// envelope is the wire format for both directions on the socket channel:
// {"event": "...", "data": ...}.
type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// inbound is what a client may send; only start-automation carries data.
type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// wsClient is one connected subscriber. It implements events.Emitter: the
// relay and every site flow push through it concurrently, so delivery goes
// over a buffered channel drained by a single write pump. A full queue
// drops the event rather than blocking automation.
type wsClient struct {
	id   string
	conn *websocket.Conn
	log  *zap.Logger

	send      chan envelope
	closeOnce sync.Once
	done      chan struct{}
}

func newWSClient(id string, conn *websocket.Conn, log *zap.Logger) *wsClient {
	return &wsClient{
		id:   id,
		conn: conn,
		log:  log.With(zap.String("client", id)),
		send: make(chan envelope, sendQueueSize),
		done: make(chan struct{}),
	}
}

// Emit queues one event for delivery. Safe for concurrent use.
func (c *wsClient) Emit(event string, data any) {
	select {
	case c.send <- envelope{Event: event, Data: data}:
	case <-c.done:
	default:
		c.log.Warn("send queue full, dropping event", zap.String("event", event))
	}
}

func (c *wsClient) writePump() {
	for {
		select {
		case <-c.done:
			return
		case e := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(e); err != nil {
				c.log.Warn("write failed", zap.Error(err))
				c.close()
				return
			}
		}
	}
}

func (c *wsClient) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}
