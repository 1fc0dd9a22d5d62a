// Package memory provides an in-memory room.Storage for tests and local
// runs. All methods are safe for concurrent use.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fedroom/fedroom/internal/domain/room"
)

// Storage keeps rooms, members, events, and path data in maps guarded by one
// mutex. Sequence ids come from a single monotonic counter, matching the
// store-assigned stream ordering of the persistent implementation.
type Storage struct {
	mu      sync.Mutex
	seq     int64
	rooms   map[string]*room.Room
	members map[string]map[string]*room.Member
	events  []*storedEvent
	data    map[string]map[string]any
	state   map[string]map[stateKey]map[string]any
}

type stateKey struct {
	eventType string
	key       string
}

type storedEvent struct {
	seq   int64
	event *room.Event
}

func NewStorage() *Storage {
	return &Storage{
		rooms:   make(map[string]*room.Room),
		members: make(map[string]map[string]*room.Member),
		data:    make(map[string]map[string]any),
		state:   make(map[string]map[stateKey]map[string]any),
	}
}

// ApplyEvent merges a state event into the room's current state, last write
// wins. Non-state events are ignored, matching the persistent resolver.
func (s *Storage) ApplyEvent(_ context.Context, event *room.Event) error {
	var key stateKey
	switch event.Type {
	case room.EventTypeMember:
		key = stateKey{eventType: event.Type, key: event.TargetUserID}
	case room.EventTypeTopic:
		key = stateKey{eventType: event.Type}
	default:
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	byKey := s.state[event.RoomID]
	if byKey == nil {
		byKey = make(map[stateKey]map[string]any)
		s.state[event.RoomID] = byKey
	}
	content := make(map[string]any, len(event.Content))
	for k, v := range event.Content {
		content[k] = v
	}
	byKey[key] = content
	return nil
}

func (s *Storage) PersistEvent(_ context.Context, event *room.Event) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	copied := *event
	s.events = append(s.events, &storedEvent{seq: s.seq, event: &copied})
	return s.seq, nil
}

func (s *Storage) StoreRoom(_ context.Context, roomID, creatorUserID string, isPublic bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[roomID]; ok {
		return room.ErrRoomIDTaken
	}
	s.rooms[roomID] = &room.Room{
		ID:            roomID,
		CreatorUserID: creatorUserID,
		IsPublic:      isPublic,
		CreatedAt:     time.Now().UTC(),
	}
	return nil
}

func (s *Storage) Room(_ context.Context, roomID string) (*room.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[roomID]
	if !ok {
		return nil, nil
	}
	copied := *r
	return &copied, nil
}

func (s *Storage) StoreMember(_ context.Context, member *room.Member) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	byUser := s.members[member.RoomID]
	if byUser == nil {
		byUser = make(map[string]*room.Member)
		s.members[member.RoomID] = byUser
	}
	copied := *member
	copied.UpdatedAt = time.Now().UTC()
	byUser[member.UserID] = &copied
	return s.seq, nil
}

func (s *Storage) Member(_ context.Context, roomID, userID string) (*room.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[roomID][userID]
	if !ok {
		return nil, nil
	}
	copied := *m
	return &copied, nil
}

func (s *Storage) Members(_ context.Context, roomID string) ([]*room.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*room.Member, 0, len(s.members[roomID]))
	for _, m := range s.members[roomID] {
		copied := *m
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *Storage) JoinedHosts(_ context.Context, roomID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := make(map[string]struct{})
	for _, m := range s.members[roomID] {
		if m.Membership != room.MembershipJoin {
			continue
		}
		if idx := strings.IndexByte(m.UserID, ':'); idx > 0 && idx < len(m.UserID)-1 {
			set[m.UserID[idx+1:]] = struct{}{}
		}
	}
	hosts := make([]string, 0, len(set))
	for h := range set {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	return hosts, nil
}

func (s *Storage) StorePathData(_ context.Context, _, path string, content map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make(map[string]any, len(content))
	for k, v := range content {
		copied[k] = v
	}
	s.data[path] = copied
	return nil
}

func (s *Storage) PathData(_ context.Context, path string) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.data[path]
	if !ok {
		return nil, nil
	}
	copied := make(map[string]any, len(content))
	for k, v := range content {
		copied[k] = v
	}
	return copied, nil
}

func (s *Storage) Message(_ context.Context, roomID, senderID, messageID string) (*room.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, se := range s.events {
		e := se.event
		if e.Type == room.EventTypeMessage && e.RoomID == roomID && e.UserID == senderID && e.ID == messageID {
			copied := *e
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *Storage) Feedback(_ context.Context, roomID, msgSenderID, messageID, fbSenderID, fbType string) (*room.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.events) - 1; i >= 0; i-- {
		e := s.events[i].event
		if e.Type != room.EventTypeFeedback || e.RoomID != roomID || e.UserID != fbSenderID {
			continue
		}
		if str(e.Content["target_msg_id"]) == messageID &&
			str(e.Content["target_msg_sender"]) == msgSenderID &&
			str(e.Content["feedback_type"]) == fbType {
			copied := *e
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *Storage) Messages(_ context.Context, roomID string, page room.Pagination) ([]*room.Event, error) {
	page = page.Normalized()
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []*room.Event
	for _, se := range s.events {
		e := se.event
		if e.Type == room.EventTypeMessage && e.RoomID == roomID {
			copied := *e
			matched = append(matched, &copied)
		}
	}
	if page.Offset >= len(matched) {
		return nil, nil
	}
	end := page.Offset + page.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[page.Offset:end], nil
}

func str(v any) string {
	out, _ := v.(string)
	return out
}
