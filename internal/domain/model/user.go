package model

// UserProjection is the minimal display slice of the externally owned user
// entity: everything this engine needs to render the other side of a match,
// conversation or post.
type UserProjection struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Online bool   `json:"online"`
}
