package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

type MessageRecord struct {
	ID             int64
	ConversationID *int64
	CommunityID    *int64
	SenderID       int64
	RecipientID    int64
	Text           string
	Read           bool
	ReadAt         *time.Time
	Delivered      bool
	DeliveredAt    *time.Time
	CreatedAt      time.Time
}

func (r *MessageRepo) Create(ctx context.Context, tx pgx.Tx, conversationID, senderID, recipientID int64, text string, now time.Time) (MessageRecord, error) {
	if conversationID <= 0 || senderID <= 0 || recipientID <= 0 || text == "" {
		return MessageRecord{}, fmt.Errorf("invalid message payload")
	}
	if tx == nil {
		return MessageRecord{}, fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var rec MessageRecord
	err := tx.QueryRow(ctx, `
INSERT INTO messages (
	conversation_id,
	sender_id,
	recipient_id,
	text,
	read,
	delivered,
	created_at
) VALUES ($1, $2, $3, $4, FALSE, FALSE, $5)
RETURNING id, conversation_id, community_id, sender_id, recipient_id, text, read, read_at, delivered, delivered_at, created_at
`, conversationID, senderID, recipientID, text, now.UTC()).Scan(
		&rec.ID,
		&rec.ConversationID,
		&rec.CommunityID,
		&rec.SenderID,
		&rec.RecipientID,
		&rec.Text,
		&rec.Read,
		&rec.ReadAt,
		&rec.Delivered,
		&rec.DeliveredAt,
		&rec.CreatedAt,
	)
	if err != nil {
		return MessageRecord{}, fmt.Errorf("create message: %w", err)
	}

	return rec, nil
}

func (r *MessageRepo) CreateCommunity(ctx context.Context, tx pgx.Tx, communityID, senderID int64, text string, now time.Time) (MessageRecord, error) {
	if communityID <= 0 || senderID <= 0 || text == "" {
		return MessageRecord{}, fmt.Errorf("invalid community message payload")
	}
	if tx == nil {
		return MessageRecord{}, fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var rec MessageRecord
	err := tx.QueryRow(ctx, `
INSERT INTO messages (
	community_id,
	sender_id,
	recipient_id,
	text,
	read,
	delivered,
	created_at
) VALUES ($1, $2, 0, $3, FALSE, FALSE, $4)
RETURNING id, conversation_id, community_id, sender_id, recipient_id, text, read, read_at, delivered, delivered_at, created_at
`, communityID, senderID, text, now.UTC()).Scan(
		&rec.ID,
		&rec.ConversationID,
		&rec.CommunityID,
		&rec.SenderID,
		&rec.RecipientID,
		&rec.Text,
		&rec.Read,
		&rec.ReadAt,
		&rec.Delivered,
		&rec.DeliveredAt,
		&rec.CreatedAt,
	)
	if err != nil {
		return MessageRecord{}, fmt.Errorf("create community message: %w", err)
	}

	return rec, nil
}

// ListByConversation returns messages oldest first. Chat history renders top
// to bottom, so the ascending order is deliberate. Ties on created_at break
// by id, which is insertion order.
func (r *MessageRepo) ListByConversation(ctx context.Context, conversationID int64, limit int) ([]MessageRecord, error) {
	if conversationID <= 0 {
		return nil, fmt.Errorf("invalid conversation id")
	}
	if limit <= 0 {
		limit = 50
	}
	if r.pool == nil {
		return []MessageRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, conversation_id, community_id, sender_id, recipient_id, text, read, read_at, delivered, delivered_at, created_at
FROM messages
WHERE conversation_id = $1
ORDER BY created_at ASC, id ASC
LIMIT $2
`, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows, limit)
}

func (r *MessageRepo) ListByCommunity(ctx context.Context, communityID int64, limit int) ([]MessageRecord, error) {
	if communityID <= 0 {
		return nil, fmt.Errorf("invalid community id")
	}
	if limit <= 0 {
		limit = 50
	}
	if r.pool == nil {
		return []MessageRecord{}, nil
	}

	// Community rooms are unbounded, so the window is the newest N messages
	// rather than the oldest. Fetch newest first, then flip back into
	// reading order.
	rows, err := r.pool.Query(ctx, `
SELECT id, conversation_id, community_id, sender_id, recipient_id, text, read, read_at, delivered, delivered_at, created_at
FROM messages
WHERE community_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2
`, communityID, limit)
	if err != nil {
		return nil, fmt.Errorf("list community messages: %w", err)
	}
	defer rows.Close()

	records, err := scanMessages(rows, limit)
	if err != nil {
		return nil, err
	}
	reverseMessages(records)
	return records, nil
}

func reverseMessages(records []MessageRecord) {
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
}

// MarkRead bulk-sets read state. Only unread rows are touched, so read_at is
// fixed at the first call and repeat calls are no-ops. Unknown ids are
// ignored.
func (r *MessageRepo) MarkRead(ctx context.Context, messageIDs []int64, now time.Time) (int64, error) {
	if len(messageIDs) == 0 {
		return 0, nil
	}
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	result, err := r.pool.Exec(ctx, `
UPDATE messages
SET read = TRUE, read_at = $2
WHERE id = ANY($1) AND read = FALSE
`, messageIDs, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}

	return result.RowsAffected(), nil
}

func (r *MessageRepo) MarkDelivered(ctx context.Context, messageID int64, now time.Time) error {
	if messageID <= 0 {
		return fmt.Errorf("invalid message id")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE messages
SET delivered = TRUE, delivered_at = $2
WHERE id = $1 AND delivered = FALSE
`, messageID, now.UTC()); err != nil {
		return fmt.Errorf("mark message delivered: %w", err)
	}

	return nil
}

func scanMessages(rows pgx.Rows, capacity int) ([]MessageRecord, error) {
	items := make([]MessageRecord, 0, capacity)
	for rows.Next() {
		var item MessageRecord
		if err := rows.Scan(
			&item.ID,
			&item.ConversationID,
			&item.CommunityID,
			&item.SenderID,
			&item.RecipientID,
			&item.Text,
			&item.Read,
			&item.ReadAt,
			&item.Delivered,
			&item.DeliveredAt,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate messages: %w", rows.Err())
	}

	return items, nil
}
