package dto

import "time"

type MatchItem struct {
	MatchID      int64     `json:"match_id"`
	TargetUserID int64     `json:"target_user_id"`
	Name         string    `json:"name"`
	Avatar       string    `json:"avatar,omitempty"`
	Online       bool      `json:"online"`
	MatchedAt    time.Time `json:"matched_at"`
}

type MatchListResponse struct {
	Items []MatchItem `json:"items"`
}

type UnmatchRequest struct {
	TargetID int64 `json:"target_id"`
}

type UnmatchResponse struct {
	OK bool `json:"ok"`
}
