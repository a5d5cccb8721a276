// Package transport owns the single live full-duplex stream connection to
// a node, decoding frames into typed messages for consumption by the node
// manager.
package transport

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Deivu/Anchorage/model"
)

// StreamResult is one item published on a Connection's message channel:
// either a successfully decoded Message, or a terminal Err observed by
// the producer (a close frame yields model.ErrConnectionClosed; any other
// transport failure is passed through as-is).
type StreamResult struct {
	Message model.Message
	Err     error
}

const disconnectPollInterval = time.Millisecond

// Connection wraps at most one live *websocket.Conn at a time. It is
// constructed once per node manager lifetime; its message channel is
// handed to the manager so that stream messages and commands can be
// merged in a single receive loop.
type Connection struct {
	mu       sync.Mutex
	conn     *websocket.Conn
	messages chan StreamResult
	finished atomic.Bool
	torndown atomic.Bool
}

// NewConnection constructs an idle connection and returns it along with
// the receive end of its message channel. Call exactly once per node
// manager.
func NewConnection() (*Connection, <-chan StreamResult) {
	c := &Connection{
		messages: make(chan StreamResult, 64),
	}
	c.finished.Store(true)
	return c, c.messages
}

// Available reports whether a producer task is currently alive.
func (c *Connection) Available() bool {
	return !c.finished.Load()
}

// Connect disconnects any existing producer, then dials url with header
// and, on success, spawns a new producer reading frames into the message
// channel. It returns a *model.TransportError if the handshake fails.
func (c *Connection) Connect(ctx context.Context, url string, header http.Header) error {
	c.Disconnect()

	dialer := websocket.Dialer{HandshakeTimeout: 30 * time.Second}
	conn, resp, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return &model.TransportError{Err: fmt.Errorf("handshake status %d: %w", resp.StatusCode, err)}
		}
		return &model.TransportError{Err: err}
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	c.torndown.Store(false)
	c.finished.Store(false)

	go c.produce(conn)
	return nil
}

// produce reads frames until the socket errs or closes. A close caused by
// our own Disconnect is swallowed here: the caller that tore the
// connection down already knows, and surfacing it as a stream error would
// make the manager mistake an intentional disconnect for a dropped
// connection and auto-reconnect.
func (c *Connection) produce(conn *websocket.Conn) {
	defer c.finished.Store(true)
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if !c.torndown.Load() {
				if _, isClose := err.(*websocket.CloseError); isClose {
					c.send(StreamResult{Err: model.ErrConnectionClosed})
				} else {
					c.send(StreamResult{Err: err})
				}
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		msg, err := model.DecodeMessage(data)
		if err != nil || msg == nil {
			continue
		}
		c.send(StreamResult{Message: msg})
	}
}

func (c *Connection) send(res StreamResult) {
	c.messages <- res
}

// Disconnect aborts any live producer and waits (polling) for it to
// observe the abort. Idempotent.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn == nil {
		return
	}
	c.torndown.Store(true)
	conn.Close()
	for !c.finished.Load() {
		time.Sleep(disconnectPollInterval)
	}
}
