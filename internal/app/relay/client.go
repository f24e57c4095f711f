package relay

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"relayhub/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum size of an inbound frame. Documents travel whole, so this is generous.
	maxMessageSize = 64 << 10

	// sendQueueSize is the per-client outbound buffer.
	sendQueueSize = 256
)

var (
	// ErrSendQueueFull is returned by Send when the client is not draining its queue.
	ErrSendQueueFull = errors.New("client send queue full")

	// ErrClientClosed is returned by Send after Close.
	ErrClientClosed = errors.New("client closed")
)

// Client is a Connection backed by a gorilla/websocket conn.
type Client struct {
	hub *Hub

	conn *websocket.Conn

	id   string
	name string

	// send queues outbound frames for WritePump.
	send chan []byte

	// mu guards closed and the close of send.
	mu     sync.Mutex
	closed bool

	logger zerolog.Logger
}

// NewClient wraps wsConn for hub. name is the handshake-declared display name.
func NewClient(hub *Hub, wsConn *websocket.Conn, id, name string) *Client {
	return &Client{
		hub:  hub,
		conn: wsConn,
		id:   id,
		name: name,
		send: make(chan []byte, sendQueueSize),
		logger: logx.Component("client").With().
			Str("connection_id", id).
			Str("hub", string(hub.Kind())).
			Logger(),
	}
}

// ID implements Connection.
func (c *Client) ID() string { return c.id }

// Name implements Connection.
func (c *Client) Name() string { return c.name }

// Send implements Connection. It never blocks.
func (c *Client) Send(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}

	select {
	case c.send <- frame:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// Close implements Connection. It closes the send queue; WritePump then
// flushes what is queued, sends a Close frame and drops the socket.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}

	return nil
}

// ReadPump reads frames until the connection fails, handing each to the hub.
// On exit the client is disconnected from the hub and the socket is closed.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Connection closed unexpectedly")
			}
			return
		}

		if msgType != websocket.TextMessage {
			c.logger.Warn().Int("message_type", msgType).Msg("Ignoring non-text frame")
			continue
		}

		if err := c.hub.Receive(c, frame); err != nil {
			c.logger.Info().Err(err).Msg("Hub no longer accepts events")
			return
		}
	}
}

func (c *Client) cleanupOnDisconnect() {
	if err := c.hub.Disconnect(c); err != nil {
		c.logger.Debug().Err(err).Msg("Hub already stopped during disconnect")
	}

	_ = c.Close()

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Socket close error")
	}
}

// WritePump writes queued frames and periodic pings until the queue is closed
// or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Socket close error in WritePump")
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !c.writeQueued(frame, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePing() {
				return
			}
		}
	}
}

// writeQueued writes one frame, or the Close frame when the queue is closed.
// It returns false when WritePump should stop.
func (c *Client) writeQueued(frame []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.logger.Warn().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

func (c *Client) writePing() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Warn().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}
