package model

import "time"

// HMUPost is a short-lived "hit me up" activity post. ExpiresAt is reserved;
// no read path filters on it yet, the cleanup job enforces retention instead.
type HMUPost struct {
	ID        int64      `json:"id"`
	AuthorID  int64      `json:"author_id"`
	Activity  string     `json:"activity"`
	Text      string     `json:"text"`
	Location  string     `json:"location,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// HMUResponse rows are append-only.
type HMUResponse struct {
	ID          int64     `json:"id"`
	PostID      int64     `json:"post_id"`
	ResponderID int64     `json:"responder_id"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}
