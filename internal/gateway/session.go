package gateway

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	eventPresenceUpdate = "PRESENCE_UPDATE"
	eventReactionAdd    = "REACTION_ADD"
	eventMessageCreate  = "MESSAGE_CREATE"
)

// frame is one event envelope off the gateway socket.
type frame struct {
	Type string          `json:"t"`
	Data json.RawMessage `json:"d"`
}

// Handlers receives decoded gateway events. A nil handler drops the
// event. Handlers run on the session's read goroutine; they are expected
// to hand work off to the orchestrator loop and return quickly.
type Handlers struct {
	PresenceUpdate func(context.Context, PresenceUpdate)
	ReactionAdd    func(context.Context, ReactionAdd)
	MessageCreate  func(context.Context, MessageCreate)
}

// Session maintains the event-stream connection and dispatches events.
// It reconnects with a flat delay until its context is canceled.
type Session struct {
	url      string
	token    string
	handlers Handlers

	pingPeriod     time.Duration
	reconnectDelay time.Duration
}

func NewSession(url, token string, handlers Handlers) *Session {
	return &Session{
		url:            url,
		token:          token,
		handlers:       handlers,
		pingPeriod:     54 * time.Second,
		reconnectDelay: 5 * time.Second,
	}
}

// Run blocks until ctx is done.
func (s *Session) Run(ctx context.Context) {
	for {
		if err := s.connectOnce(ctx); err != nil {
			log.Error().Err(err).Str("module", "gateway.session").Msg("gateway connection lost")
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.reconnectDelay):
		}
	}
}

func (s *Session) connectOnce(ctx context.Context) error {
	header := map[string][]string{"Authorization": {"Bot " + s.token}}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, header)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Info().Str("module", "gateway.session").Str("url", s.url).Msg("gateway connected")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.writePump(ctx, conn)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var fr frame
		if err := json.Unmarshal(raw, &fr); err != nil {
			log.Warn().Err(err).Str("module", "gateway.session").Msg("malformed gateway frame")
			continue
		}
		s.dispatch(ctx, fr)
	}
}

func (s *Session) writePump(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(s.pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// dispatch decodes and delivers one frame. Handler panics are recovered
// so a single bad event can never take the session down.
func (s *Session) dispatch(ctx context.Context, fr frame) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("module", "gateway.session").Str("event", fr.Type).Any("panic", r).Msg("event handler panicked")
		}
	}()

	switch fr.Type {
	case eventPresenceUpdate:
		if s.handlers.PresenceUpdate == nil {
			return
		}
		var ev PresenceUpdate
		if err := json.Unmarshal(fr.Data, &ev); err != nil {
			log.Warn().Err(err).Str("module", "gateway.session").Msg("bad presence payload")
			return
		}
		s.handlers.PresenceUpdate(ctx, ev)
	case eventReactionAdd:
		if s.handlers.ReactionAdd == nil {
			return
		}
		var ev ReactionAdd
		if err := json.Unmarshal(fr.Data, &ev); err != nil {
			log.Warn().Err(err).Str("module", "gateway.session").Msg("bad reaction payload")
			return
		}
		s.handlers.ReactionAdd(ctx, ev)
	case eventMessageCreate:
		if s.handlers.MessageCreate == nil {
			return
		}
		var ev MessageCreate
		if err := json.Unmarshal(fr.Data, &ev); err != nil {
			log.Warn().Err(err).Str("module", "gateway.session").Msg("bad message payload")
			return
		}
		s.handlers.MessageCreate(ctx, ev)
	default:
		// other gateway events are not ours to handle
	}
}
