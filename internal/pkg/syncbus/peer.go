package syncbus

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Sync messages are tiny; anything
	// bigger is a misbehaving client.
	maxMessageSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The relay is same-origin infrastructure; deployments front it with
	// their own origin policy.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// relayPeer is a middleman between one websocket connection and the hub
type relayPeer struct {
	hub *Hub

	// The websocket connection
	conn *websocket.Conn

	// Buffered channel of outbound messages
	send chan []byte

	// Channel name this peer subscribed to
	channel string

	logger zerolog.Logger
}

// ServeChannel upgrades a gin request to a websocket connection and attaches
// it to the named channel.
func (h *Hub) ServeChannel(c *gin.Context, channel string) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).
			Str("channel", channel).
			Msg("Failed to upgrade connection")
		return
	}

	peer := &relayPeer{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, 16),
		channel: channel,
		logger:  h.logger,
	}

	h.register <- peer

	go peer.writePump()
	go peer.readPump()
}

// readPump pumps messages from the websocket connection to the hub
func (p *relayPeer) readPump() {
	defer func() {
		p.hub.unregister <- p
		p.conn.Close()
	}()

	p.conn.SetReadLimit(maxMessageSize)
	p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error { p.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				p.logger.Info().
					Str("channel", p.channel).
					Msg("Peer closed normally")
			} else if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				p.logger.Warn().Err(err).
					Str("channel", p.channel).
					Msg("Unexpected peer close")
			} else {
				p.logger.Debug().Err(err).
					Str("channel", p.channel).
					Msg("Peer read error")
			}
			break
		}

		p.hub.broadcast <- &relayEnvelope{channel: p.channel, data: data}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (p *relayPeer) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		p.conn.Close()
	}()

	for {
		select {
		case data, ok := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				p.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
