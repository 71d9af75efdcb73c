package realtime

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	authsvc "github.com/AnkurSaini200/Cupid/internal/services/auth"
)

const (
	pongWait      = 60 * time.Second
	maxFrameSize  = 16 * 1024
	callTypeVoice = "voice"
	callTypeVideo = "video"
)

type HandlerConfig struct {
	SendBuffer int
	PingPeriod time.Duration
}

// Handler upgrades HTTP requests to websocket connections and runs the read
// loop that dispatches the client event vocabulary onto the hub.
type Handler struct {
	hub      *Hub
	verifier *authsvc.Verifier
	logger   *zap.Logger
	cfg      HandlerConfig
	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, verifier *authsvc.Verifier, cfg HandlerConfig, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Handler{
		hub:      hub,
		verifier: verifier,
		logger:   logger,
		cfg:      cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The browser websocket API cannot set headers; auth rides in
			// the query string instead, so origin checks stay permissive.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identify(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	conn := NewConnection(identity.UserID, ws, h.cfg.SendBuffer, h.cfg.PingPeriod)
	h.hub.Attach(conn)
	h.logger.Info("websocket connected", zap.Int64("user_id", identity.UserID), zap.String("conn_id", conn.ID))

	h.readLoop(conn, ws)

	h.hub.Detach(conn)
	conn.Close(websocket.CloseNormalClosure, "bye")
	h.logger.Info("websocket disconnected", zap.Int64("user_id", identity.UserID), zap.String("conn_id", conn.ID))
}

func (h *Handler) identify(r *http.Request) (authsvc.Identity, bool) {
	if identity, ok := authsvc.IdentityFromContext(r.Context()); ok {
		return identity, true
	}
	if h.verifier == nil {
		return authsvc.Identity{}, false
	}

	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		return authsvc.Identity{}, false
	}

	identity, err := h.verifier.Verify(token)
	if err != nil {
		return authsvc.Identity{}, false
	}
	return identity, true
}

func (h *Handler) readLoop(conn *Connection, ws *websocket.Conn) {
	ws.SetReadLimit(maxFrameSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			return
		}

		var envelope Envelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			h.logger.Debug("malformed client frame", zap.Int64("user_id", conn.UserID), zap.Error(err))
			continue
		}

		h.dispatch(conn, envelope)
	}
}

type typingPayload struct {
	RecipientID int64 `json:"recipient_id"`
}

type callOfferPayload struct {
	RecipientID int64           `json:"recipient_id"`
	CallType    string          `json:"call_type"`
	Offer       json.RawMessage `json:"offer"`
}

type callAnswerPayload struct {
	CallerID int64           `json:"caller_id"`
	Answer   json.RawMessage `json:"answer"`
}

type iceCandidatePayload struct {
	RecipientID int64           `json:"recipient_id"`
	Candidate   json.RawMessage `json:"candidate"`
}

type roomJoinPayload struct {
	CommunityID int64 `json:"community_id"`
	PostID      int64 `json:"post_id"`
}

// dispatch routes one client event. Signaling events are pure passthrough:
// delivered to the target's latest connection or dropped, no persistence and
// no acknowledgement.
func (h *Handler) dispatch(conn *Connection, envelope Envelope) {
	switch envelope.Event {
	case EventUserOnline:
		// Presence is bound at attach time from the verified identity; the
		// legacy client still sends this, accept it as a no-op.

	case EventTyping:
		var p typingPayload
		if json.Unmarshal(envelope.Data, &p) != nil || p.RecipientID <= 0 {
			return
		}
		h.hub.SendToLatest(p.RecipientID, EventUserTyping, map[string]int64{"user_id": conn.UserID})

	case EventCallUser:
		var p callOfferPayload
		if json.Unmarshal(envelope.Data, &p) != nil || p.RecipientID <= 0 {
			return
		}
		if p.CallType != callTypeVoice && p.CallType != callTypeVideo {
			return
		}
		h.hub.SendToLatest(p.RecipientID, EventIncomingCall, map[string]any{
			"caller_id": conn.UserID,
			"call_type": p.CallType,
			"offer":     p.Offer,
		})

	case EventAnswerCall:
		var p callAnswerPayload
		if json.Unmarshal(envelope.Data, &p) != nil || p.CallerID <= 0 {
			return
		}
		h.hub.SendToLatest(p.CallerID, EventCallAnswered, map[string]any{
			"answer": p.Answer,
		})

	case EventICECandidate:
		var p iceCandidatePayload
		if json.Unmarshal(envelope.Data, &p) != nil || p.RecipientID <= 0 {
			return
		}
		h.hub.SendToLatest(p.RecipientID, EventICECandidate, map[string]any{
			"candidate": p.Candidate,
		})

	case EventJoinCommunity:
		var p roomJoinPayload
		if json.Unmarshal(envelope.Data, &p) != nil || p.CommunityID <= 0 {
			return
		}
		h.hub.Join(CommunityRoom(p.CommunityID), conn)

	case EventLeaveCommunity:
		var p roomJoinPayload
		if json.Unmarshal(envelope.Data, &p) != nil || p.CommunityID <= 0 {
			return
		}
		h.hub.Leave(CommunityRoom(p.CommunityID), conn)

	case EventJoinHMU:
		var p roomJoinPayload
		if json.Unmarshal(envelope.Data, &p) != nil || p.PostID <= 0 {
			return
		}
		h.hub.Join(ActivityRoom(p.PostID), conn)

	case EventLeaveHMU:
		var p roomJoinPayload
		if json.Unmarshal(envelope.Data, &p) != nil || p.PostID <= 0 {
			return
		}
		h.hub.Leave(ActivityRoom(p.PostID), conn)

	default:
		h.logger.Debug("unknown client event", zap.String("event", envelope.Event), zap.Int64("user_id", conn.UserID))
	}
}
