package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const lastSeenPrefix = "presence:last_seen:"

// PresenceRepo persists the last-seen timestamp written when a user's final
// connection closes. Live online state stays in the process-local hub; this
// survives restarts for "last active" display only.
type PresenceRepo struct {
	client *goredis.Client
}

func NewPresenceRepo(client *goredis.Client) *PresenceRepo {
	return &PresenceRepo{client: client}
}

func (r *PresenceRepo) SetLastSeen(ctx context.Context, userID int64, at time.Time) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if userID <= 0 || at.IsZero() {
		return fmt.Errorf("invalid last seen payload")
	}

	if err := r.client.Set(ctx, lastSeenKey(userID), at.UTC().Unix(), 0).Err(); err != nil {
		return fmt.Errorf("set last seen: %w", err)
	}

	return nil
}

// LastSeen returns the zero time when the user has never been seen.
func (r *PresenceRepo) LastSeen(ctx context.Context, userID int64) (time.Time, error) {
	if r.client == nil {
		return time.Time{}, fmt.Errorf("redis client is nil")
	}
	if userID <= 0 {
		return time.Time{}, fmt.Errorf("invalid user id")
	}

	value, err := r.client.Get(ctx, lastSeenKey(userID)).Result()
	if err != nil {
		if err == goredis.Nil {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("get last seen: %w", err)
	}

	unix, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse last seen value: %w", err)
	}

	return time.Unix(unix, 0).UTC(), nil
}

func lastSeenKey(userID int64) string {
	return lastSeenPrefix + strconv.FormatInt(userID, 10)
}
