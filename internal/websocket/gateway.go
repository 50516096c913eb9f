package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/geotrack/asset-tracker/internal/bus"
	"github.com/geotrack/asset-tracker/internal/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// BaseTopics is the default subscription set when a client names no topics.
var BaseTopics = []string{
	domain.TopicAssetCreated,
	domain.TopicAssetUpdated,
	domain.TopicAssetLocationUpdated,
	domain.TopicAssetDeleted,
}

// Gateway turns websocket connections into bus subscriptions. Each accepted
// connection subscribes to its requested topics and receives every matching
// event as a JSON text frame until either side closes. Disconnection cancels
// the subscriptions immediately; nothing is queued for a client that is
// offline.
type Gateway struct {
	bus     *bus.Bus
	logger  *slog.Logger
	mu      sync.RWMutex
	clients map[*client]struct{}
}

type client struct {
	gateway *Gateway
	conn    *websocket.Conn
	send    chan []byte
	subs    []*bus.Subscription
	done    chan struct{}
	once    sync.Once
}

func NewGateway(b *bus.Bus, logger *slog.Logger) *Gateway {
	return &Gateway{
		bus:     b,
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// HandleWebSocket upgrades the connection and subscribes it to the topics
// named by repeated ?topic= query parameters. Topic names are exact strings,
// so a client can follow a single asset with topic=AssetLocationUpdated_<id>.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	topics := r.URL.Query()["topic"]
	if len(topics) == 0 {
		topics = BaseTopics
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		gateway: g,
		conn:    conn,
		send:    make(chan []byte, 256),
		done:    make(chan struct{}),
	}
	for _, topic := range topics {
		c.subs = append(c.subs, g.bus.Subscribe(topic))
	}

	g.mu.Lock()
	g.clients[c] = struct{}{}
	total := len(g.clients)
	g.mu.Unlock()
	g.logger.Debug("websocket client connected", "topics", topics, "total_clients", total)

	for _, sub := range c.subs {
		go c.forward(sub)
	}
	go c.writePump()
	go c.readPump()
}

// ClientCount returns the number of connected clients.
func (g *Gateway) ClientCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.clients)
}

// teardown releases everything the connection holds: bus subscriptions
// first, so no further events are routed here, then the connection itself.
// Idempotent, called from whichever pump fails first.
func (c *client) teardown() {
	c.once.Do(func() {
		for _, sub := range c.subs {
			sub.Cancel()
		}
		close(c.done)
		c.conn.Close()

		g := c.gateway
		g.mu.Lock()
		delete(g.clients, c)
		total := len(g.clients)
		g.mu.Unlock()
		g.logger.Debug("websocket client disconnected", "total_clients", total)
	})
}

// forward copies one subscription's events into the connection's send
// buffer. A full buffer drops the event for this client rather than
// blocking the bus.
func (c *client) forward(sub *bus.Subscription) {
	for evt := range sub.Events() {
		data, err := json.Marshal(evt)
		if err != nil {
			c.gateway.logger.Error("failed to marshal event", "error", err, "topic", sub.Topic())
			continue
		}

		select {
		case c.send <- data:
		case <-c.done:
			return
		default:
			c.gateway.logger.Warn("client send buffer full, dropping event", "topic", sub.Topic())
		}
	}
}

// readPump consumes the connection (pings, close frames) and tears the
// client down on any read error.
func (c *client) readPump() {
	defer c.teardown()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump pushes frames and keepalive pings until teardown.
func (c *client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.teardown()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
