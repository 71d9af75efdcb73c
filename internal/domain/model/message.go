package model

import "time"

// Message text is immutable once written; only the read/delivered state
// mutates afterwards. Exactly one of ConversationID or CommunityID is set.
type Message struct {
	ID             int64      `json:"id"`
	ConversationID *int64     `json:"conversation_id,omitempty"`
	CommunityID    *int64     `json:"community_id,omitempty"`
	SenderID       int64      `json:"sender_id"`
	RecipientID    int64      `json:"recipient_id,omitempty"`
	Text           string     `json:"text"`
	Read           bool       `json:"read"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	Delivered      bool       `json:"delivered"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
