package dto

import "time"

type SendCommunityMessageRequest struct {
	Text string `json:"text"`
}

type CommunityMessageItem struct {
	ID          int64     `json:"id"`
	CommunityID int64     `json:"community_id"`
	SenderID    int64     `json:"sender_id"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
}

type CommunityMessageListResponse struct {
	Items []CommunityMessageItem `json:"items"`
}
