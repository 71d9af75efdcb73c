package dto

import "time"

type SendMessageRequest struct {
	RecipientID    int64  `json:"recipient_id"`
	Text           string `json:"text"`
	ConversationID int64  `json:"conversation_id,omitempty"`
}

type MessageItem struct {
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

type MessageListResponse struct {
	Items []MessageItem `json:"items"`
}

type ConversationItem struct {
	ID              int64     `json:"id"`
	OtherUserID     int64     `json:"other_user_id"`
	OtherName       string    `json:"other_name"`
	OtherAvatar     string    `json:"other_avatar,omitempty"`
	OtherOnline     bool      `json:"other_online"`
	LastMessageText string    `json:"last_message_text,omitempty"`
	LastSenderID    int64     `json:"last_sender_id,omitempty"`
	LastMessageAt   time.Time `json:"last_message_at"`
	UnreadCount     int       `json:"unread_count"`
}

type ConversationListResponse struct {
	Items []ConversationItem `json:"items"`
}

type MarkReadRequest struct {
	MessageIDs []int64 `json:"message_ids"`
}

type MarkReadResponse struct {
	OK bool `json:"ok"`
}
