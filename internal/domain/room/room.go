package room

import (
	"time"
)

// Membership describes a user's relationship to a room.
type Membership string

const (
	MembershipNone   Membership = "none"
	MembershipInvite Membership = "invite"
	MembershipJoin   Membership = "join"
	MembershipLeave  Membership = "leave"
)

// CanTransitionTo checks if a transition to the target membership is valid.
// Leave is reachable from any state and is terminal; join is reachable only
// from none or invite; invite only from none; none is never a target.
func (m Membership) CanTransitionTo(target Membership) bool {
	transitions := map[Membership][]Membership{
		MembershipNone:   {MembershipInvite, MembershipJoin, MembershipLeave},
		MembershipInvite: {MembershipJoin, MembershipLeave},
		MembershipJoin:   {MembershipLeave},
		MembershipLeave:  {},
	}

	allowed, ok := transitions[m]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// Valid reports whether m is a recognized membership value.
func (m Membership) Valid() bool {
	switch m {
	case MembershipNone, MembershipInvite, MembershipJoin, MembershipLeave:
		return true
	}
	return false
}

// Room is a server-spanning chat channel. Visibility is fixed at creation.
type Room struct {
	ID            string    `json:"roomId"`
	CreatorUserID string    `json:"creatorUserId"`
	IsPublic      bool      `json:"isPublic"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Member is the authoritative membership row for one (room, user) pair.
// Last write wins; no history is retained at this layer.
type Member struct {
	RoomID     string         `json:"roomId"`
	UserID     string         `json:"userId"`
	Sender     string         `json:"sender"`
	Membership Membership     `json:"membership"`
	Content    map[string]any `json:"content,omitempty"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// AsEvent converts a stored membership row back to its event shape.
func (m *Member) AsEvent() *Event {
	content := m.Content
	if content == nil {
		content = map[string]any{}
	}
	if _, ok := content["membership"]; !ok {
		content["membership"] = string(m.Membership)
	}
	return &Event{
		Type:         EventTypeMember,
		RoomID:       m.RoomID,
		UserID:       m.Sender,
		TargetUserID: m.UserID,
		Content:      content,
	}
}

// Pagination bounds a read over a room's message stream.
type Pagination struct {
	Limit  int
	Offset int
}

// Normalized clamps pagination to sane bounds.
func (p Pagination) Normalized() Pagination {
	if p.Limit <= 0 {
		p.Limit = 100
	}
	if p.Limit > 500 {
		p.Limit = 500
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Chunk is a bounded page of events. Member listings reuse it with fixed
// tokens; message reads fill tokens from the pagination window.
type Chunk struct {
	Start string   `json:"start"`
	End   string   `json:"end"`
	Chunk []*Event `json:"chunk"`
}
