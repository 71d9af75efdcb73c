package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Connection wraps a websocket and coordinates outbound writes via a
// buffered channel. One user may hold several connections (one per tab or
// device); each is identified by its own ID.
type Connection struct {
	ID     string
	UserID int64

	ws         *websocket.Conn
	send       chan []byte
	once       sync.Once
	closed     chan struct{}
	pingPeriod time.Duration
}

func NewConnection(userID int64, ws *websocket.Conn, sendBuffer int, pingPeriod time.Duration) *Connection {
	if sendBuffer <= 0 {
		sendBuffer = 128
	}
	if pingPeriod <= 0 {
		pingPeriod = 30 * time.Second
	}

	return &Connection{
		ID:         uuid.NewString(),
		UserID:     userID,
		ws:         ws,
		send:       make(chan []byte, sendBuffer),
		closed:     make(chan struct{}),
		pingPeriod: pingPeriod,
	}
}

// Start launches the write loop. It must be called exactly once per
// connection.
func (c *Connection) Start() {
	if c.ws == nil {
		return
	}
	go c.writeLoop()
}

// Send enqueues payload for delivery. Best effort: a full buffer means the
// client is too slow and the connection is closed rather than letting it
// stall fan-out to other recipients.
func (c *Connection) Send(payload []byte) error {
	select {
	case <-c.closed:
		return errors.New("connection closed")
	case c.send <- payload:
		return nil
	default:
		c.Close(websocket.CloseGoingAway, "send buffer full")
		return errors.New("connection buffer exceeded")
	}
}

// Close terminates the connection and stops the write loop.
func (c *Connection) Close(code int, reason string) {
	c.once.Do(func() {
		close(c.closed)
		if c.ws != nil {
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
			_ = c.ws.Close()
		}
	})
}

func (c *Connection) writeLoop() {
	ticker := time.NewTicker(c.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.closed:
			return
		case msg := <-c.send:
			if err := c.writeMessage(msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.writePing(); err != nil {
				return
			}
		}
	}
}

func (c *Connection) writeMessage(payload []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, payload)
}

func (c *Connection) writePing() error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.PingMessage, nil)
}
