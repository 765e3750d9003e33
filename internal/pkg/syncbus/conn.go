package syncbus

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Conn is a Bus backed by a websocket connection to the relay. Every message
// published by any peer on the channel, including this one, is delivered to
// subscribers; stores drop their own messages by Origin.
type Conn struct {
	conn   *websocket.Conn
	send   chan []byte
	logger zerolog.Logger

	mu       sync.RWMutex
	handlers map[int]Handler
	next     int

	closeOnce sync.Once
	done      chan struct{}
}

// Dial connects to the relay at the given websocket URL
// (e.g. ws://host:8090/ws/data-sync).
func Dial(ctx context.Context, url string, logger zerolog.Logger) (*Conn, error) {
	wsConn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	c := &Conn{
		conn:     wsConn,
		send:     make(chan []byte, 16),
		logger:   logger,
		handlers: make(map[int]Handler),
		done:     make(chan struct{}),
	}

	go c.writePump()
	go c.readPump()

	logger.Info().Str("url", url).Msg("Connected to sync relay")
	return c, nil
}

// Publish sends the message to the relay for fan-out
func (c *Conn) Publish(ctx context.Context, msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return websocket.ErrCloseSent
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers a handler and returns a function that removes it
func (c *Conn) Subscribe(handler Handler) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.next
	c.next++
	c.handlers[id] = handler

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.handlers, id)
	}
}

// Close tears down the connection
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
	return nil
}

func (c *Conn) dispatch(msg *Message) {
	c.mu.RLock()
	handlers := make([]Handler, 0, len(c.handlers))
	for _, h := range c.handlers {
		handlers = append(handlers, h)
	}
	c.mu.RUnlock()

	for _, h := range handlers {
		h(msg)
	}
}

func (c *Conn) readPump() {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPingHandler(func(appData string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		return c.conn.WriteMessage(websocket.PongMessage, []byte(appData))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug().Err(err).Msg("Relay read error")
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn().Err(err).
				Str("message", string(data)).
				Msg("Failed to unmarshal sync message")
			continue
		}

		c.dispatch(&msg)
	}
}

func (c *Conn) writePump() {
	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Debug().Err(err).Msg("Relay write error")
				c.Close()
				return
			}
		case <-c.done:
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
