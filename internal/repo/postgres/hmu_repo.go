package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrPostNotFound = errors.New("hmu post not found")

type HMURepo struct {
	pool *pgxpool.Pool
}

func NewHMURepo(pool *pgxpool.Pool) *HMURepo {
	return &HMURepo{pool: pool}
}

type HMUPostRecord struct {
	ID            int64
	AuthorID      int64
	AuthorName    string
	AuthorAvatar  string
	Activity      string
	Text          string
	Location      string
	ResponseCount int
	CreatedAt     time.Time
}

type HMUResponseRecord struct {
	ID          int64
	PostID      int64
	ResponderID int64
	Message     string
	CreatedAt   time.Time
}

func (r *HMURepo) CreatePost(ctx context.Context, authorID int64, activity, text, location string, now time.Time) (HMUPostRecord, error) {
	if authorID <= 0 || activity == "" || text == "" {
		return HMUPostRecord{}, fmt.Errorf("invalid hmu post payload")
	}
	if r.pool == nil {
		return HMUPostRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var rec HMUPostRecord
	err := r.pool.QueryRow(ctx, `
INSERT INTO hmu_posts (
	author_id,
	activity,
	text,
	location,
	created_at
) VALUES ($1, $2, $3, $4, $5)
RETURNING id, author_id, activity, text, location, created_at
`, authorID, activity, text, location, now.UTC()).Scan(
		&rec.ID,
		&rec.AuthorID,
		&rec.Activity,
		&rec.Text,
		&rec.Location,
		&rec.CreatedAt,
	)
	if err != nil {
		return HMUPostRecord{}, fmt.Errorf("create hmu post: %w", err)
	}

	return rec, nil
}

func (r *HMURepo) GetPost(ctx context.Context, postID int64) (HMUPostRecord, error) {
	if postID <= 0 {
		return HMUPostRecord{}, fmt.Errorf("invalid post id")
	}
	if r.pool == nil {
		return HMUPostRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var rec HMUPostRecord
	err := r.pool.QueryRow(ctx, `
SELECT
	p.id,
	p.author_id,
	p.activity,
	p.text,
	COALESCE(p.location, ''),
	(SELECT COUNT(*) FROM hmu_responses resp WHERE resp.post_id = p.id),
	p.created_at
FROM hmu_posts p
WHERE p.id = $1
`, postID).Scan(
		&rec.ID,
		&rec.AuthorID,
		&rec.Activity,
		&rec.Text,
		&rec.Location,
		&rec.ResponseCount,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return HMUPostRecord{}, ErrPostNotFound
		}
		return HMUPostRecord{}, fmt.Errorf("get hmu post: %w", err)
	}

	return rec, nil
}

func (r *HMURepo) ListFeed(ctx context.Context, limit int) ([]HMUPostRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	if r.pool == nil {
		return []HMUPostRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	p.id,
	p.author_id,
	COALESCE(u.name, ''),
	COALESCE(u.avatar, ''),
	p.activity,
	p.text,
	COALESCE(p.location, ''),
	(SELECT COUNT(*) FROM hmu_responses resp WHERE resp.post_id = p.id),
	p.created_at
FROM hmu_posts p
JOIN users u ON u.id = p.author_id
ORDER BY p.created_at DESC, p.id DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list hmu feed: %w", err)
	}
	defer rows.Close()

	return scanHMUPosts(rows, limit)
}

func (r *HMURepo) ListByAuthor(ctx context.Context, authorID int64, limit int) ([]HMUPostRecord, error) {
	if authorID <= 0 {
		return nil, fmt.Errorf("invalid author id")
	}
	if limit <= 0 {
		limit = 20
	}
	if r.pool == nil {
		return []HMUPostRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	p.id,
	p.author_id,
	COALESCE(u.name, ''),
	COALESCE(u.avatar, ''),
	p.activity,
	p.text,
	COALESCE(p.location, ''),
	(SELECT COUNT(*) FROM hmu_responses resp WHERE resp.post_id = p.id),
	p.created_at
FROM hmu_posts p
JOIN users u ON u.id = p.author_id
WHERE p.author_id = $1
ORDER BY p.created_at DESC, p.id DESC
LIMIT $2
`, authorID, limit)
	if err != nil {
		return nil, fmt.Errorf("list hmu posts by author: %w", err)
	}
	defer rows.Close()

	return scanHMUPosts(rows, limit)
}

// AppendResponse adds one response row. Responses are append-only; nothing
// ever edits or removes them short of the post itself being deleted.
func (r *HMURepo) AppendResponse(ctx context.Context, postID, responderID int64, message string, now time.Time) (HMUResponseRecord, error) {
	if postID <= 0 || responderID <= 0 || message == "" {
		return HMUResponseRecord{}, fmt.Errorf("invalid hmu response payload")
	}
	if r.pool == nil {
		return HMUResponseRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var rec HMUResponseRecord
	err := r.pool.QueryRow(ctx, `
INSERT INTO hmu_responses (
	post_id,
	responder_id,
	message,
	created_at
) VALUES ($1, $2, $3, $4)
RETURNING id, post_id, responder_id, message, created_at
`, postID, responderID, message, now.UTC()).Scan(
		&rec.ID,
		&rec.PostID,
		&rec.ResponderID,
		&rec.Message,
		&rec.CreatedAt,
	)
	if err != nil {
		return HMUResponseRecord{}, fmt.Errorf("append hmu response: %w", err)
	}

	return rec, nil
}

func (r *HMURepo) ListResponses(ctx context.Context, postID int64) ([]HMUResponseRecord, error) {
	if postID <= 0 {
		return nil, fmt.Errorf("invalid post id")
	}
	if r.pool == nil {
		return []HMUResponseRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, post_id, responder_id, message, created_at
FROM hmu_responses
WHERE post_id = $1
ORDER BY created_at ASC, id ASC
`, postID)
	if err != nil {
		return nil, fmt.Errorf("list hmu responses: %w", err)
	}
	defer rows.Close()

	items := make([]HMUResponseRecord, 0, 16)
	for rows.Next() {
		var item HMUResponseRecord
		if err := rows.Scan(&item.ID, &item.PostID, &item.ResponderID, &item.Message, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan hmu response: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate hmu responses: %w", rows.Err())
	}

	return items, nil
}

func (r *HMURepo) DeletePost(ctx context.Context, postID int64) (bool, error) {
	if postID <= 0 {
		return false, fmt.Errorf("invalid post id")
	}
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	result, err := r.pool.Exec(ctx, `
DELETE FROM hmu_posts
WHERE id = $1
`, postID)
	if err != nil {
		return false, fmt.Errorf("delete hmu post: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// DeleteOlderThan removes posts past the retention window together with
// their responses. Used only by the cleanup job.
func (r *HMURepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if cutoff.IsZero() {
		return 0, fmt.Errorf("cutoff is required")
	}
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	result, err := r.pool.Exec(ctx, `
DELETE FROM hmu_posts
WHERE created_at < $1
`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired hmu posts: %w", err)
	}

	return result.RowsAffected(), nil
}

func scanHMUPosts(rows pgx.Rows, capacity int) ([]HMUPostRecord, error) {
	items := make([]HMUPostRecord, 0, capacity)
	for rows.Next() {
		var item HMUPostRecord
		if err := rows.Scan(
			&item.ID,
			&item.AuthorID,
			&item.AuthorName,
			&item.AuthorAvatar,
			&item.Activity,
			&item.Text,
			&item.Location,
			&item.ResponseCount,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan hmu post: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate hmu posts: %w", rows.Err())
	}

	return items, nil
}
