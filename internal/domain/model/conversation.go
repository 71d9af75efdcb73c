package model

import "time"

// Conversation holds the normalized participant pair: UserAID is always the
// smaller id. At most one conversation exists per pair.
type Conversation struct {
	ID            int64     `json:"id"`
	UserAID       int64     `json:"user_a_id"`
	UserBID       int64     `json:"user_b_id"`
	LastMessageID *int64    `json:"last_message_id,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}
