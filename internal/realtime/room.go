package realtime

import "strconv"

type roomKind string

const (
	roomUser      roomKind = "user"
	roomCommunity roomKind = "community"
	roomActivity  roomKind = "activity"
)

// Room is a logical multicast group. The tagged type replaces ad hoc string
// concatenation so callers cannot construct a malformed key.
type Room struct {
	kind roomKind
	id   int64
}

func UserRoom(userID int64) Room {
	return Room{kind: roomUser, id: userID}
}

func CommunityRoom(communityID int64) Room {
	return Room{kind: roomCommunity, id: communityID}
}

func ActivityRoom(postID int64) Room {
	return Room{kind: roomActivity, id: postID}
}

func (r Room) Key() string {
	return string(r.kind) + ":" + strconv.FormatInt(r.id, 10)
}

func (r Room) IsZero() bool {
	return r.kind == "" || r.id <= 0
}
