package model

import (
	"time"

	"github.com/AnkurSaini200/Cupid/internal/domain/enums"
)

// Match holds the normalized member pair: UserAID is always the smaller id.
type Match struct {
	ID        int64             `json:"id"`
	UserAID   int64             `json:"user_a_id"`
	UserBID   int64             `json:"user_b_id"`
	Status    enums.MatchStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}
