package syncbus

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

// Hub is the relay side of the data-sync protocol. It maintains the set of
// connected peers per channel and fans every message out to all of them.
// The relay does not interpret payloads; origin filtering happens in the
// receiving stores.
type Hub struct {
	// Registered peers organized by channel name
	peers map[string]map[*relayPeer]bool

	// Channel for inbound messages from peers
	broadcast chan *relayEnvelope

	// Register requests from peers
	register chan *relayPeer

	// Unregister requests from peers
	unregister chan *relayPeer

	mu sync.RWMutex

	logger zerolog.Logger
}

// relayEnvelope pairs a raw message with the channel it was published on
type relayEnvelope struct {
	channel string
	data    []byte
}

// NewHub creates a new relay hub
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		peers:      make(map[string]map[*relayPeer]bool),
		broadcast:  make(chan *relayEnvelope),
		register:   make(chan *relayPeer),
		unregister: make(chan *relayPeer),
		logger:     logger,
	}
}

// Run starts the hub loop, handling registrations and broadcasts
func (h *Hub) Run() {
	for {
		select {
		case peer := <-h.register:
			h.registerPeer(peer)

		case peer := <-h.unregister:
			h.unregisterPeer(peer)

		case envelope := <-h.broadcast:
			h.broadcastEnvelope(envelope)
		}
	}
}

func (h *Hub) registerPeer(peer *relayPeer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.peers[peer.channel]; !ok {
		h.peers[peer.channel] = make(map[*relayPeer]bool)
	}
	h.peers[peer.channel][peer] = true

	h.logger.Info().
		Str("channel", peer.channel).
		Str("addr", peer.conn.RemoteAddr().String()).
		Msg("Peer registered")
}

func (h *Hub) unregisterPeer(peer *relayPeer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if peers, ok := h.peers[peer.channel]; ok {
		if _, ok := peers[peer]; ok {
			delete(peers, peer)
			close(peer.send)

			if len(peers) == 0 {
				delete(h.peers, peer.channel)
			}

			h.logger.Info().
				Str("channel", peer.channel).
				Str("addr", peer.conn.RemoteAddr().String()).
				Msg("Peer unregistered")
		}
	}
}

func (h *Hub) broadcastEnvelope(envelope *relayEnvelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	peers, ok := h.peers[envelope.channel]
	if !ok {
		h.logger.Debug().
			Str("channel", envelope.channel).
			Msg("No peers on channel for broadcast")
		return
	}

	// Validate that the payload is at least JSON before relaying it
	if !json.Valid(envelope.data) {
		h.logger.Warn().
			Str("channel", envelope.channel).
			Msg("Dropping non-JSON message")
		return
	}

	for peer := range peers {
		select {
		case peer.send <- envelope.data:
		default:
			// Peer's send buffer is full; they are slow or gone. Skip them,
			// their read pump will unregister them when the connection dies.
			h.logger.Warn().
				Str("channel", envelope.channel).
				Msg("Skipped slow peer")
		}
	}

	h.logger.Debug().
		Str("channel", envelope.channel).
		Int("peerCount", len(peers)).
		Msg("Message relayed to channel")
}

// PeerCount returns the number of connected peers on a channel
func (h *Hub) PeerCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if peers, ok := h.peers[channel]; ok {
		return len(peers)
	}
	return 0
}
