package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/bluehood-core/internal/infrastructure/config"
	"github.com/nerrad567/bluehood-core/internal/infrastructure/logging"
)

// Message types on the WebSocket wire. Clients send subscribe,
// unsubscribe, and ping; the server answers with response, pong, or
// error, and pushes event frames for subscribed channels.
const (
	wsTypeSubscribe   = "subscribe"
	wsTypeUnsubscribe = "unsubscribe"
	wsTypePing        = "ping"
	wsTypePong        = "pong"
	wsTypeEvent       = "event"
	wsTypeResponse    = "response"
	wsTypeError       = "error"
)

// wsOutboundBuffer is how many frames may queue per session before
// broadcasts start dropping for that client.
const wsOutboundBuffer = 256

// wsFrame is the JSON envelope for every WebSocket message in either
// direction.
type wsFrame struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// wsChannelList is the payload of subscribe and unsubscribe frames.
type wsChannelList struct {
	Channels []string `json:"channels"`
}

// Hub tracks live WebSocket sessions and fans events out to them.
type Hub struct {
	cfg    config.WebSocketConfig
	logger *logging.Logger

	mu       sync.RWMutex
	sessions map[*wsSession]struct{}
}

// wsSession is one connected WebSocket client. The out channel feeds
// the write pump; closed guards against sends after teardown.
type wsSession struct {
	hub  *Hub
	conn *websocket.Conn
	out  chan []byte

	mu       sync.Mutex
	channels map[string]struct{}
	closed   bool
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API listener binds loopback only, so cross-origin browser
	// pages cannot reach it anyway.
	CheckOrigin: func(*http.Request) bool { return true },
}

// NewHub creates an empty hub. Sessions attach via the /ws handler.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger) *Hub {
	return &Hub{
		cfg:      cfg,
		logger:   logger,
		sessions: make(map[*wsSession]struct{}),
	}
}

// Run blocks until ctx is cancelled, then tears down every session.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	sessions := make([]*wsSession, 0, len(h.sessions))
	for s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.sessions = make(map[*wsSession]struct{})
	h.mu.Unlock()

	for _, s := range sessions {
		s.shutdown()
	}
}

// ClientCount returns the number of attached sessions.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Broadcast pushes an event frame to every session subscribed to the
// channel. Slow clients drop frames rather than stalling the caller.
func (h *Hub) Broadcast(channel string, payload any) {
	frame := wsFrame{
		Type:      wsTypeEvent,
		EventType: channel,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	}
	data, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error("marshal websocket event", "channel", channel, "error", err)
		return
	}

	h.mu.RLock()
	sessions := make([]*wsSession, 0, len(h.sessions))
	for s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, s := range sessions {
		if s.subscribed(channel) && s.enqueue(data) {
			delivered++
		}
	}
	if delivered > 0 {
		h.logger.Debug("event broadcast", "channel", channel, "recipients", delivered)
	}
}

func (h *Hub) attach(s *wsSession) {
	h.mu.Lock()
	h.sessions[s] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "clients", h.ClientCount())
}

func (h *Hub) detach(s *wsSession) {
	h.mu.Lock()
	delete(h.sessions, s)
	h.mu.Unlock()

	s.shutdown()
	h.logger.Debug("websocket client disconnected", "clients", h.ClientCount())
}

// handleWebSocket upgrades the request and starts the session pumps.
// There is no per-connection auth; the listener is loopback only.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	sess := &wsSession{
		hub:      s.hub,
		conn:     conn,
		out:      make(chan []byte, wsOutboundBuffer),
		channels: make(map[string]struct{}),
	}
	s.hub.attach(sess)

	go sess.writePump(s.wsCfg)
	go sess.readPump(s.wsCfg)
}

func (s *wsSession) readPump(cfg config.WebSocketConfig) {
	defer s.hub.detach(s)

	pingInterval := time.Duration(cfg.PingInterval) * time.Second
	deadline := pingInterval + time.Duration(cfg.PongTimeout)*time.Second

	s.conn.SetReadLimit(int64(cfg.MaxMessageSize))
	//nolint:errcheck
	s.conn.SetReadDeadline(time.Now().Add(deadline))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(deadline))
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.hub.logger.Warn("websocket read error", "error", err)
			} else {
				s.hub.logger.Debug("websocket closed", "error", err)
			}
			return
		}
		// Any inbound traffic counts as liveness, not just pongs.
		//nolint:errcheck
		s.conn.SetReadDeadline(time.Now().Add(deadline))
		s.dispatch(raw)
	}
}

func (s *wsSession) writePump(cfg config.WebSocketConfig) {
	pingInterval := time.Duration(cfg.PingInterval) * time.Second
	writeWait := time.Duration(cfg.PongTimeout) * time.Second

	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-s.out:
			if !ok {
				//nolint:errcheck
				s.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			//nolint:errcheck
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			//nolint:errcheck
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// dispatch routes one inbound frame by type.
func (s *wsSession) dispatch(raw []byte) {
	var frame wsFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		s.reply(wsFrame{Type: wsTypeError, Payload: map[string]string{"message": "invalid JSON message"}})
		return
	}

	switch frame.Type {
	case wsTypeSubscribe:
		s.updateChannels(frame, true)
	case wsTypeUnsubscribe:
		s.updateChannels(frame, false)
	case wsTypePing:
		s.reply(wsFrame{Type: wsTypePong, ID: frame.ID})
	default:
		s.reply(wsFrame{
			Type:    wsTypeError,
			ID:      frame.ID,
			Payload: map[string]string{"message": "unknown message type: " + frame.Type},
		})
	}
}

// updateChannels applies a subscribe or unsubscribe frame. The payload
// round-trips through JSON because it arrives as map[string]any.
func (s *wsSession) updateChannels(frame wsFrame, add bool) {
	raw, err := json.Marshal(frame.Payload)
	if err != nil {
		s.reply(wsFrame{Type: wsTypeError, ID: frame.ID, Payload: map[string]string{"message": "invalid payload"}})
		return
	}
	var list wsChannelList
	if err := json.Unmarshal(raw, &list); err != nil {
		s.reply(wsFrame{Type: wsTypeError, ID: frame.ID, Payload: map[string]string{"message": "invalid payload"}})
		return
	}

	s.mu.Lock()
	for _, ch := range list.Channels {
		if add {
			s.channels[ch] = struct{}{}
		} else {
			delete(s.channels, ch)
		}
	}
	s.mu.Unlock()

	key := "unsubscribed"
	if add {
		key = "subscribed"
		s.hub.logger.Info("websocket client subscribed", "channels", list.Channels)
	}
	s.reply(wsFrame{
		Type:    wsTypeResponse,
		ID:      frame.ID,
		Payload: map[string]any{key: list.Channels},
	})
}

func (s *wsSession) subscribed(channel string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.channels[channel]
	return ok
}

// enqueue queues a pre-marshalled frame for the write pump. It returns
// false when the session is closed or its buffer is full.
func (s *wsSession) enqueue(data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.out <- data:
		return true
	default:
		return false
	}
}

func (s *wsSession) reply(frame wsFrame) {
	frame.Timestamp = time.Now().UTC().Format(time.RFC3339)
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}
	s.enqueue(data)
}

// shutdown closes the outbound channel exactly once and drops the
// connection, letting writePump exit.
func (s *wsSession) shutdown() {
	s.mu.Lock()
	alreadyClosed := s.closed
	s.closed = true
	s.mu.Unlock()

	if alreadyClosed {
		return
	}
	close(s.out)
	if s.conn != nil {
		s.conn.Close()
	}
}
