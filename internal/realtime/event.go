package realtime

import (
	"encoding/json"
	"fmt"
)

// Wire event names. These are a fixed contract with the client.
const (
	EventUserOnline          = "user-online"
	EventNewMessage          = "new-message"
	EventNewMatch            = "new-match"
	EventUserStatusChange    = "user-status-change"
	EventTyping              = "typing"
	EventUserTyping          = "user-typing"
	EventCallUser            = "call-user"
	EventIncomingCall        = "incoming-call"
	EventAnswerCall          = "answer-call"
	EventCallAnswered        = "call-answered"
	EventICECandidate        = "ice-candidate"
	EventJoinCommunity       = "join-community"
	EventLeaveCommunity      = "leave-community"
	EventNewCommunityMessage = "new-community-message"
	EventJoinHMU             = "join-hmu"
	EventLeaveHMU            = "leave-hmu"
	EventHMUNewResponse      = "hmu-new-response"
)

// Envelope frames every socket message in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func encodeEvent(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", event, err)
	}
	frame, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", event, err)
	}
	return frame, nil
}
