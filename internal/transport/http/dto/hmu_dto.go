package dto

import "time"

type CreateHMUPostRequest struct {
	Activity string `json:"activity"`
	Text     string `json:"text"`
	Location string `json:"location,omitempty"`
}

type HMUPostItem struct {
	ID            int64     `json:"id"`
	AuthorID      int64     `json:"author_id"`
	AuthorName    string    `json:"author_name"`
	AuthorAvatar  string    `json:"author_avatar,omitempty"`
	Activity      string    `json:"activity"`
	Text          string    `json:"text"`
	Location      string    `json:"location,omitempty"`
	ResponseCount int       `json:"response_count"`
	CreatedAt     time.Time `json:"created_at"`
}

type HMUFeedResponse struct {
	Items []HMUPostItem `json:"items"`
}

type RespondHMURequest struct {
	Message string `json:"message,omitempty"`
}

type HMUResponseItem struct {
	ID          int64     `json:"id"`
	PostID      int64     `json:"post_id"`
	ResponderID int64     `json:"responder_id"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}

type HMUResponseListResponse struct {
	Items []HMUResponseItem `json:"items"`
}
