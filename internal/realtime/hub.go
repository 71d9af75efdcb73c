package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// LastSeenWriter persists the moment a user's final connection closed.
type LastSeenWriter interface {
	SetLastSeen(ctx context.Context, userID int64, at time.Time) error
}

// Hub is the process-wide presence registry and broadcaster. All state is
// guarded by one RWMutex; fan-out takes a snapshot of the target connections
// under the read lock and delivers outside it, so a slow socket never holds
// the registry.
type Hub struct {
	mu        sync.RWMutex
	conns     map[string]*Connection
	userConns map[int64]map[string]*Connection
	rooms     map[string]map[string]*Connection
	connRooms map[string]map[string]struct{}
	attachSeq map[string]uint64
	seq       uint64

	lastSeen LastSeenWriter
	logger   *zap.Logger
	now      func() time.Time
}

func NewHub(lastSeen LastSeenWriter, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Hub{
		conns:     make(map[string]*Connection),
		userConns: make(map[int64]map[string]*Connection),
		rooms:     make(map[string]map[string]*Connection),
		connRooms: make(map[string]map[string]struct{}),
		attachSeq: make(map[string]uint64),
		lastSeen:  lastSeen,
		logger:    logger,
		now:       time.Now,
	}
}

// Attach registers an open connection under its user. When this is the
// user's first live connection, an online status change is broadcast to all
// other connections. Exactly one such event fires per zero crossing no
// matter how many connections the user stacks up.
func (h *Hub) Attach(conn *Connection) {
	if conn == nil || conn.UserID <= 0 {
		return
	}

	h.mu.Lock()
	h.conns[conn.ID] = conn
	h.seq++
	h.attachSeq[conn.ID] = h.seq

	userSet := h.userConns[conn.UserID]
	if userSet == nil {
		userSet = make(map[string]*Connection)
		h.userConns[conn.UserID] = userSet
	}
	wasOffline := len(userSet) == 0
	userSet[conn.ID] = conn

	h.connRooms[conn.ID] = make(map[string]struct{})
	h.mu.Unlock()

	conn.Start()

	if wasOffline {
		h.broadcastStatus(conn.UserID, "online", conn.ID)
	}
}

// Detach unregisters a connection. When it was the user's last one, an
// offline status change is broadcast and the last-seen timestamp persisted.
func (h *Hub) Detach(conn *Connection) {
	if conn == nil {
		return
	}

	h.mu.Lock()
	_, known := h.conns[conn.ID]
	if !known {
		h.mu.Unlock()
		return
	}
	delete(h.conns, conn.ID)
	delete(h.attachSeq, conn.ID)

	for roomKey := range h.connRooms[conn.ID] {
		if members := h.rooms[roomKey]; members != nil {
			delete(members, conn.ID)
			if len(members) == 0 {
				delete(h.rooms, roomKey)
			}
		}
	}
	delete(h.connRooms, conn.ID)

	nowOffline := false
	if userSet := h.userConns[conn.UserID]; userSet != nil {
		delete(userSet, conn.ID)
		if len(userSet) == 0 {
			delete(h.userConns, conn.UserID)
			nowOffline = true
		}
	}
	h.mu.Unlock()

	if nowOffline {
		h.broadcastStatus(conn.UserID, "offline", conn.ID)
		h.persistLastSeen(conn.UserID)
	}
}

// Join adds the connection to a room. Joining twice is a no-op.
func (h *Hub) Join(room Room, conn *Connection) {
	if room.IsZero() || conn == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[conn.ID]; !ok {
		return
	}

	members := h.rooms[room.Key()]
	if members == nil {
		members = make(map[string]*Connection)
		h.rooms[room.Key()] = members
	}
	members[conn.ID] = conn
	h.connRooms[conn.ID][room.Key()] = struct{}{}
}

// Leave removes the connection from a room. Leaving a room the connection
// never joined is a no-op.
func (h *Hub) Leave(room Room, conn *Connection) {
	if room.IsZero() || conn == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if members := h.rooms[room.Key()]; members != nil {
		delete(members, conn.ID)
		if len(members) == 0 {
			delete(h.rooms, room.Key())
		}
	}
	if memberships := h.connRooms[conn.ID]; memberships != nil {
		delete(memberships, room.Key())
	}
}

// PushToUser delivers to every live connection of the user. Returns the
// number of connections reached; zero is normal, never an error.
func (h *Hub) PushToUser(userID int64, event string, payload any) int {
	frame, err := encodeEvent(event, payload)
	if err != nil {
		h.logger.Error("encode push event", zap.String("event", event), zap.Error(err))
		return 0
	}

	h.mu.RLock()
	targets := make([]*Connection, 0, len(h.userConns[userID]))
	for _, conn := range h.userConns[userID] {
		targets = append(targets, conn)
	}
	h.mu.RUnlock()

	return deliver(targets, frame)
}

// PushToRoom delivers to every member of the room. A user room routes
// through the per-user registry so personal pushes and room pushes agree.
func (h *Hub) PushToRoom(room Room, event string, payload any) int {
	if room.IsZero() {
		return 0
	}
	if room.kind == roomUser {
		return h.PushToUser(room.id, event, payload)
	}

	frame, err := encodeEvent(event, payload)
	if err != nil {
		h.logger.Error("encode room event", zap.String("event", event), zap.Error(err))
		return 0
	}

	h.mu.RLock()
	members := h.rooms[room.Key()]
	targets := make([]*Connection, 0, len(members))
	for _, conn := range members {
		targets = append(targets, conn)
	}
	h.mu.RUnlock()

	return deliver(targets, frame)
}

// SendToLatest delivers to the user's most recently attached connection
// only. Used for typing and call signaling passthrough; when the user has no
// connection the event is dropped silently and false is returned.
func (h *Hub) SendToLatest(userID int64, event string, payload any) bool {
	h.mu.RLock()
	var target *Connection
	var best uint64
	for id, conn := range h.userConns[userID] {
		if seq := h.attachSeq[id]; target == nil || seq > best {
			target = conn
			best = seq
		}
	}
	h.mu.RUnlock()

	if target == nil {
		return false
	}

	frame, err := encodeEvent(event, payload)
	if err != nil {
		h.logger.Error("encode signaling event", zap.String("event", event), zap.Error(err))
		return false
	}

	return target.Send(frame) == nil
}

// IsOnline reports whether the user has at least one live connection.
func (h *Hub) IsOnline(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userConns[userID]) > 0
}

type statusChangePayload struct {
	UserID int64  `json:"user_id"`
	Status string `json:"status"`
}

// broadcastStatus fans a presence transition out to every connection except
// the one that caused it. Intentionally coarse: every client tracks the full
// online set.
func (h *Hub) broadcastStatus(userID int64, status, excludeConnID string) {
	frame, err := encodeEvent(EventUserStatusChange, statusChangePayload{UserID: userID, Status: status})
	if err != nil {
		h.logger.Error("encode status change", zap.Error(err))
		return
	}

	h.mu.RLock()
	targets := make([]*Connection, 0, len(h.conns))
	for id, conn := range h.conns {
		if id == excludeConnID {
			continue
		}
		targets = append(targets, conn)
	}
	h.mu.RUnlock()

	deliver(targets, frame)
}

// CloseAll closes every live connection. Used on shutdown; no status
// changes are broadcast since every peer is going away too.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	targets := make([]*Connection, 0, len(h.conns))
	for _, conn := range h.conns {
		targets = append(targets, conn)
	}
	h.conns = make(map[string]*Connection)
	h.userConns = make(map[int64]map[string]*Connection)
	h.rooms = make(map[string]map[string]*Connection)
	h.connRooms = make(map[string]map[string]struct{})
	h.attachSeq = make(map[string]uint64)
	h.mu.Unlock()

	for _, conn := range targets {
		conn.Close(websocket.CloseGoingAway, "server shutting down")
	}
}

func (h *Hub) persistLastSeen(userID int64) {
	if h.lastSeen == nil {
		return
	}

	at := h.now().UTC()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.lastSeen.SetLastSeen(ctx, userID, at); err != nil {
			h.logger.Warn("persist last seen", zap.Int64("user_id", userID), zap.Error(err))
		}
	}()
}

// deliver writes the frame to each target independently. A failed or slow
// connection only affects itself.
func deliver(targets []*Connection, frame []byte) int {
	sent := 0
	for _, conn := range targets {
		if conn.Send(frame) == nil {
			sent++
		}
	}
	return sent
}
