package room

import (
	"time"

	"github.com/google/uuid"
)

// Event type tags understood by the engine.
const (
	EventTypeMessage    = "m.room.message"
	EventTypeFeedback   = "m.room.feedback"
	EventTypeMember     = "m.room.member"
	EventTypeTopic      = "m.room.topic"
	EventTypeInviteJoin = "fedroom.invite_join"
)

// Event is the transient envelope for a room mutation. It is constructed,
// enriched (destinations, timestamp), persisted, forwarded, then discarded;
// the durable copy lives in storage.
type Event struct {
	ID             string         `json:"eventId"`
	Type           string         `json:"type"`
	RoomID         string         `json:"roomId"`
	UserID         string         `json:"userId"`
	TargetUserID   string         `json:"targetUserId,omitempty"`
	Content        map[string]any `json:"content"`
	Destinations   []string       `json:"destinations,omitempty"`
	OriginServerTS int64          `json:"originServerTs,omitempty"`
}

// NewEvent creates an event envelope with a fresh id and empty content.
func NewEvent(eventType, roomID, userID string) *Event {
	return &Event{
		ID:      uuid.NewString(),
		Type:    eventType,
		RoomID:  roomID,
		UserID:  userID,
		Content: map[string]any{},
	}
}

// NewMessageEvent creates an m.room.message event.
func NewMessageEvent(roomID, userID string, content map[string]any) *Event {
	ev := NewEvent(EventTypeMessage, roomID, userID)
	if content != nil {
		ev.Content = content
	}
	return ev
}

// NewMemberEvent creates an m.room.member event targeting a user.
func NewMemberEvent(roomID, userID, targetUserID string, membership Membership, content map[string]any) *Event {
	ev := NewEvent(EventTypeMember, roomID, userID)
	ev.TargetUserID = targetUserID
	if content == nil {
		content = map[string]any{}
	}
	content["membership"] = string(membership)
	ev.Content = content
	return ev
}

// Membership extracts the membership value carried in a member event's
// content. Returns MembershipNone when absent.
func (e *Event) Membership() Membership {
	raw, ok := e.Content["membership"].(string)
	if !ok {
		return MembershipNone
	}
	return Membership(raw)
}

// Stamp overwrites the event's server timestamp with the current wall clock
// in milliseconds. Every write path stamps before persisting.
func Stamp(e *Event) {
	e.OriginServerTS = time.Now().UTC().UnixMilli()
}
