package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrConversationNotFound = errors.New("conversation not found")

type ConversationRepo struct {
	pool *pgxpool.Pool
}

func NewConversationRepo(pool *pgxpool.Pool) *ConversationRepo {
	return &ConversationRepo{pool: pool}
}

type ConversationRecord struct {
	ID            int64
	UserAID       int64
	UserBID       int64
	LastMessageID *int64
	UpdatedAt     time.Time
}

type ConversationListRecord struct {
	ID              int64
	OtherUserID     int64
	OtherName       string
	OtherAvatar     string
	LastMessageText string
	LastSenderID    int64
	LastMessageAt   time.Time
	UnreadCount     int
	UpdatedAt       time.Time
}

// FindOrCreate returns the single conversation for the unordered pair,
// creating it when absent. The unique index on the normalized pair plus the
// no-op DO UPDATE makes concurrent first contact from both sides converge on
// one row.
func (r *ConversationRepo) FindOrCreate(ctx context.Context, tx pgx.Tx, userID, otherID int64, now time.Time) (ConversationRecord, error) {
	if userID <= 0 || otherID <= 0 || userID == otherID {
		return ConversationRecord{}, fmt.Errorf("invalid conversation pair")
	}
	if tx == nil {
		return ConversationRecord{}, fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	userA, userB := normalizePair(userID, otherID)

	var rec ConversationRecord
	err := tx.QueryRow(ctx, `
INSERT INTO conversations (
	user_a_id,
	user_b_id,
	updated_at
) VALUES ($1, $2, $3)
ON CONFLICT (user_a_id, user_b_id) DO UPDATE SET user_a_id = EXCLUDED.user_a_id
RETURNING id, user_a_id, user_b_id, last_message_id, updated_at
`, userA, userB, now.UTC()).Scan(
		&rec.ID,
		&rec.UserAID,
		&rec.UserBID,
		&rec.LastMessageID,
		&rec.UpdatedAt,
	)
	if err != nil {
		return ConversationRecord{}, fmt.Errorf("find or create conversation: %w", err)
	}

	return rec, nil
}

func (r *ConversationRepo) GetByID(ctx context.Context, conversationID int64) (ConversationRecord, error) {
	if conversationID <= 0 {
		return ConversationRecord{}, fmt.Errorf("invalid conversation id")
	}
	if r.pool == nil {
		return ConversationRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var rec ConversationRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, user_a_id, user_b_id, last_message_id, updated_at
FROM conversations
WHERE id = $1
`, conversationID).Scan(
		&rec.ID,
		&rec.UserAID,
		&rec.UserBID,
		&rec.LastMessageID,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ConversationRecord{}, ErrConversationNotFound
		}
		return ConversationRecord{}, fmt.Errorf("get conversation: %w", err)
	}

	return rec, nil
}

// TouchLastMessage is last-write-wins: every write goes through sendMessage,
// so no ordering check is needed here.
func (r *ConversationRepo) TouchLastMessage(ctx context.Context, tx pgx.Tx, conversationID, messageID int64, now time.Time) error {
	if conversationID <= 0 || messageID <= 0 {
		return fmt.Errorf("invalid last message payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	if _, err := tx.Exec(ctx, `
UPDATE conversations
SET last_message_id = $2, updated_at = $3
WHERE id = $1
`, conversationID, messageID, now.UTC()); err != nil {
		return fmt.Errorf("touch conversation last message: %w", err)
	}

	return nil
}

// ListForUser returns the user's conversations newest-activity first, each
// with the other participant's projection, the last message preview and the
// count of unread messages addressed to the user.
func (r *ConversationRepo) ListForUser(ctx context.Context, userID int64, limit int) ([]ConversationListRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []ConversationListRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	c.id,
	CASE WHEN c.user_a_id = $1 THEN c.user_b_id ELSE c.user_a_id END AS other_user_id,
	COALESCE(u.name, ''),
	COALESCE(u.avatar, ''),
	COALESCE(m.text, ''),
	COALESCE(m.sender_id, 0),
	COALESCE(m.created_at, c.updated_at),
	(
		SELECT COUNT(*)
		FROM messages unread
		WHERE unread.conversation_id = c.id
			AND unread.recipient_id = $1
			AND unread.read = FALSE
	),
	c.updated_at
FROM conversations c
JOIN users u ON u.id = CASE WHEN c.user_a_id = $1 THEN c.user_b_id ELSE c.user_a_id END
LEFT JOIN messages m ON m.id = c.last_message_id
WHERE c.user_a_id = $1 OR c.user_b_id = $1
ORDER BY c.updated_at DESC, c.id DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	items := make([]ConversationListRecord, 0, limit)
	for rows.Next() {
		var item ConversationListRecord
		if err := rows.Scan(
			&item.ID,
			&item.OtherUserID,
			&item.OtherName,
			&item.OtherAvatar,
			&item.LastMessageText,
			&item.LastSenderID,
			&item.LastMessageAt,
			&item.UnreadCount,
			&item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate conversations: %w", rows.Err())
	}

	return items, nil
}
