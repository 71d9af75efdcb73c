// Package chat owns conversations and messages: ordering, read state and
// the broadcast-after-commit push to recipients.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AnkurSaini200/Cupid/internal/realtime"
	pgrepo "github.com/AnkurSaini200/Cupid/internal/repo/postgres"
)

var (
	ErrValidation  = errors.New("validation error")
	ErrEmptyText   = errors.New("message text is empty")
	ErrTextTooLong = errors.New("message text is too long")
	ErrNotFound    = errors.New("conversation not found")
	ErrNotMember   = errors.New("not a conversation participant")
)

// RateLimitError reports how long the sender has to wait.
type RateLimitError struct {
	RetryAfterSec int64
}

func (e RateLimitError) Error() string {
	return fmt.Sprintf("message rate limit exceeded, retry after %ds", e.RetryAfterSec)
}

type ConversationStore interface {
	FindOrCreate(ctx context.Context, tx pgx.Tx, userID, otherID int64, now time.Time) (pgrepo.ConversationRecord, error)
	GetByID(ctx context.Context, conversationID int64) (pgrepo.ConversationRecord, error)
	TouchLastMessage(ctx context.Context, tx pgx.Tx, conversationID, messageID int64, now time.Time) error
	ListForUser(ctx context.Context, userID int64, limit int) ([]pgrepo.ConversationListRecord, error)
}

type MessageStore interface {
	Create(ctx context.Context, tx pgx.Tx, conversationID, senderID, recipientID int64, text string, now time.Time) (pgrepo.MessageRecord, error)
	CreateCommunity(ctx context.Context, tx pgx.Tx, communityID, senderID int64, text string, now time.Time) (pgrepo.MessageRecord, error)
	ListByConversation(ctx context.Context, conversationID int64, limit int) ([]pgrepo.MessageRecord, error)
	ListByCommunity(ctx context.Context, communityID int64, limit int) ([]pgrepo.MessageRecord, error)
	MarkRead(ctx context.Context, messageIDs []int64, now time.Time) (int64, error)
	MarkDelivered(ctx context.Context, messageID int64, now time.Time) error
}

type Broadcaster interface {
	PushToUser(userID int64, event string, payload any) int
	PushToRoom(room realtime.Room, event string, payload any) int
	IsOnline(userID int64) bool
}

type RateLimiter interface {
	AllowSend(ctx context.Context, userID int64) (int64, bool, error)
}

type Config struct {
	MaxMessageLen int
}

type Message struct {
	ID             int64      `json:"id"`
	ConversationID int64      `json:"conversation_id"`
	SenderID       int64      `json:"sender_id"`
	RecipientID    int64      `json:"recipient_id,omitempty"`
	Text           string     `json:"text"`
	Read           bool       `json:"read"`
	Delivered      bool       `json:"delivered"`
	CreatedAt      time.Time  `json:"created_at"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
}

type CommunityMessage struct {
	ID          int64     `json:"id"`
	CommunityID int64     `json:"community_id"`
	SenderID    int64     `json:"sender_id"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
}

type ConversationItem struct {
	ID              int64
	OtherUserID     int64
	OtherName       string
	OtherAvatar     string
	OtherOnline     bool
	LastMessageText string
	LastSenderID    int64
	LastMessageAt   time.Time
	UnreadCount     int
	UpdatedAt       time.Time
}

type Service struct {
	pool          *pgxpool.Pool
	conversations ConversationStore
	messages      MessageStore
	broadcaster   Broadcaster
	rateLimiter   RateLimiter
	cfg           Config
	withTx        func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
	now           func() time.Time
}

type Dependencies struct {
	Pool          *pgxpool.Pool
	Conversations ConversationStore
	Messages      MessageStore
	Broadcaster   Broadcaster
	RateLimiter   RateLimiter
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.MaxMessageLen <= 0 {
		cfg.MaxMessageLen = 2000
	}

	s := &Service{
		pool:          deps.Pool,
		conversations: deps.Conversations,
		messages:      deps.Messages,
		broadcaster:   deps.Broadcaster,
		rateLimiter:   deps.RateLimiter,
		cfg:           cfg,
		now:           time.Now,
	}
	s.withTx = func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
		return pgrepo.WithTx(ctx, s.pool, fn)
	}
	return s
}

// SendMessage persists the message and bumps the conversation in one
// transaction, then pushes to the recipient best effort. Persistence is the
// sole success criterion; an offline recipient is normal and the message is
// picked up on the next history pull.
func (s *Service) SendMessage(ctx context.Context, senderID, recipientID int64, text string, conversationID int64) (Message, error) {
	if senderID <= 0 || recipientID <= 0 || senderID == recipientID {
		return Message{}, ErrValidation
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Message{}, ErrEmptyText
	}
	if len(trimmed) > s.cfg.MaxMessageLen {
		return Message{}, ErrTextTooLong
	}

	if s.conversations == nil || s.messages == nil {
		return Message{}, fmt.Errorf("chat dependencies are not configured")
	}

	if s.rateLimiter != nil {
		retryAfter, allowed, err := s.rateLimiter.AllowSend(ctx, senderID)
		if err != nil {
			return Message{}, fmt.Errorf("apply send rate limiter: %w", err)
		}
		if !allowed {
			return Message{}, RateLimitError{RetryAfterSec: retryAfter}
		}
	}

	now := s.now().UTC()

	var created pgrepo.MessageRecord
	if err := s.withTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		targetConversation := conversationID
		if targetConversation <= 0 {
			conversation, err := s.conversations.FindOrCreate(txCtx, tx, senderID, recipientID, now)
			if err != nil {
				return err
			}
			targetConversation = conversation.ID
		}

		rec, err := s.messages.Create(txCtx, tx, targetConversation, senderID, recipientID, trimmed, now)
		if err != nil {
			return err
		}
		created = rec

		return s.conversations.TouchLastMessage(txCtx, tx, targetConversation, rec.ID, now)
	}); err != nil {
		return Message{}, err
	}

	message := toMessage(created)

	if s.broadcaster != nil {
		if s.broadcaster.PushToUser(recipientID, realtime.EventNewMessage, message) > 0 {
			// Delivery state is advisory; losing this update is acceptable.
			if err := s.messages.MarkDelivered(ctx, message.ID, s.now().UTC()); err == nil {
				message.Delivered = true
			}
		}
	}

	return message, nil
}

// SendCommunityMessage persists a community-scoped message and fans it out
// to the community room. Membership is enforced upstream.
func (s *Service) SendCommunityMessage(ctx context.Context, communityID, senderID int64, text string) (CommunityMessage, error) {
	if communityID <= 0 || senderID <= 0 {
		return CommunityMessage{}, ErrValidation
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return CommunityMessage{}, ErrEmptyText
	}
	if len(trimmed) > s.cfg.MaxMessageLen {
		return CommunityMessage{}, ErrTextTooLong
	}

	if s.messages == nil {
		return CommunityMessage{}, fmt.Errorf("chat dependencies are not configured")
	}

	// The send budget is per sender, shared between direct and community
	// messages.
	if s.rateLimiter != nil {
		retryAfter, allowed, err := s.rateLimiter.AllowSend(ctx, senderID)
		if err != nil {
			return CommunityMessage{}, fmt.Errorf("apply send rate limiter: %w", err)
		}
		if !allowed {
			return CommunityMessage{}, RateLimitError{RetryAfterSec: retryAfter}
		}
	}

	now := s.now().UTC()

	var created pgrepo.MessageRecord
	if err := s.withTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		rec, err := s.messages.CreateCommunity(txCtx, tx, communityID, senderID, trimmed, now)
		if err != nil {
			return err
		}
		created = rec
		return nil
	}); err != nil {
		return CommunityMessage{}, err
	}

	message := CommunityMessage{
		ID:          created.ID,
		CommunityID: communityID,
		SenderID:    created.SenderID,
		Text:        created.Text,
		CreatedAt:   created.CreatedAt,
	}

	if s.broadcaster != nil {
		s.broadcaster.PushToRoom(realtime.CommunityRoom(communityID), realtime.EventNewCommunityMessage, message)
	}

	return message, nil
}

// ListConversations resolves each conversation to the other participant's
// projection, the last message preview and the unread count, newest activity
// first.
func (s *Service) ListConversations(ctx context.Context, userID int64, limit int) ([]ConversationItem, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.conversations == nil {
		return nil, fmt.Errorf("conversation store is nil")
	}

	rows, err := s.conversations.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	items := make([]ConversationItem, 0, len(rows))
	for _, row := range rows {
		online := false
		if s.broadcaster != nil {
			online = s.broadcaster.IsOnline(row.OtherUserID)
		}
		items = append(items, ConversationItem{
			ID:              row.ID,
			OtherUserID:     row.OtherUserID,
			OtherName:       row.OtherName,
			OtherAvatar:     row.OtherAvatar,
			OtherOnline:     online,
			LastMessageText: row.LastMessageText,
			LastSenderID:    row.LastSenderID,
			LastMessageAt:   row.LastMessageAt,
			UnreadCount:     row.UnreadCount,
			UpdatedAt:       row.UpdatedAt,
		})
	}
	return items, nil
}

// ListMessages returns messages oldest first up to limit: conversational
// reading order, not a latest page.
func (s *Service) ListMessages(ctx context.Context, userID, conversationID int64, limit int) ([]Message, error) {
	if userID <= 0 || conversationID <= 0 {
		return nil, ErrValidation
	}
	if s.conversations == nil || s.messages == nil {
		return nil, fmt.Errorf("chat dependencies are not configured")
	}

	conversation, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrConversationNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if conversation.UserAID != userID && conversation.UserBID != userID {
		return nil, ErrNotMember
	}

	rows, err := s.messages.ListByConversation(ctx, conversationID, limit)
	if err != nil {
		return nil, err
	}

	items := make([]Message, 0, len(rows))
	for _, row := range rows {
		items = append(items, toMessage(row))
	}
	return items, nil
}

func (s *Service) ListCommunityMessages(ctx context.Context, communityID int64, limit int) ([]CommunityMessage, error) {
	if communityID <= 0 {
		return nil, ErrValidation
	}
	if s.messages == nil {
		return nil, fmt.Errorf("message store is nil")
	}

	rows, err := s.messages.ListByCommunity(ctx, communityID, limit)
	if err != nil {
		return nil, err
	}

	items := make([]CommunityMessage, 0, len(rows))
	for _, row := range rows {
		communityID := int64(0)
		if row.CommunityID != nil {
			communityID = *row.CommunityID
		}
		items = append(items, CommunityMessage{
			ID:          row.ID,
			CommunityID: communityID,
			SenderID:    row.SenderID,
			Text:        row.Text,
			CreatedAt:   row.CreatedAt,
		})
	}
	return items, nil
}

// MarkRead flips read state for the given ids. Unknown ids are ignored,
// empty input is a no-op, and repeat calls do not move read_at. No read
// receipt is pushed to the sender; this only persists state.
func (s *Service) MarkRead(ctx context.Context, userID int64, messageIDs []int64) error {
	if userID <= 0 {
		return ErrValidation
	}
	if len(messageIDs) == 0 {
		return nil
	}
	if s.messages == nil {
		return fmt.Errorf("message store is nil")
	}

	if _, err := s.messages.MarkRead(ctx, messageIDs, s.now().UTC()); err != nil {
		return err
	}
	return nil
}

func toMessage(rec pgrepo.MessageRecord) Message {
	conversationID := int64(0)
	if rec.ConversationID != nil {
		conversationID = *rec.ConversationID
	}
	return Message{
		ID:             rec.ID,
		ConversationID: conversationID,
		SenderID:       rec.SenderID,
		RecipientID:    rec.RecipientID,
		Text:           rec.Text,
		Read:           rec.Read,
		Delivered:      rec.Delivered,
		CreatedAt:      rec.CreatedAt,
		ReadAt:         rec.ReadAt,
	}
}
