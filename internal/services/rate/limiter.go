package rate

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

const sendWindow = 10 * time.Second

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// Limiter caps message sends per user inside a fixed 10 second window.
type Limiter struct {
	store    WindowStore
	per10Sec int
}

func NewLimiter(store WindowStore, per10Sec int) *Limiter {
	if per10Sec < 0 {
		per10Sec = 0
	}

	return &Limiter{
		store:    store,
		per10Sec: per10Sec,
	}
}

// AllowSend returns (retryAfterSec, allowed, err). A zero limit disables the
// check entirely.
func (l *Limiter) AllowSend(ctx context.Context, userID int64) (int64, bool, error) {
	if userID <= 0 {
		return 0, false, fmt.Errorf("invalid user id")
	}
	if l.per10Sec == 0 {
		return 0, true, nil
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}

	count, ttl, err := l.store.IncrementWindow(ctx, sendKey(userID), sendWindow)
	if err != nil {
		return 0, false, err
	}
	if count > int64(l.per10Sec) {
		return ceilSeconds(ttl), false, nil
	}

	return 0, true, nil
}

func sendKey(userID int64) string {
	return "rate:msg_send_10s:" + strconv.FormatInt(userID, 10)
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 1
	}
	secs := int64(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	if secs <= 0 {
		secs = 1
	}
	return secs
}
