package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fedroom/fedroom/internal/domain/room"
)

// StateResolver implements room.StateResolver with a last-write-wins upsert
// into the room's current-state table. Richer conflict resolution lives
// outside the engine; this resolver only keeps the authoritative snapshot
// queryable.
type StateResolver struct {
	pool *pgxpool.Pool
}

func NewStateResolver(pool *pgxpool.Pool) *StateResolver {
	return &StateResolver{pool: pool}
}

// ApplyEvent merges a state event into room_state. Non-state events (plain
// messages, feedback) pass through untouched.
func (s *StateResolver) ApplyEvent(ctx context.Context, event *room.Event) error {
	stateKey, ok := stateKeyFor(event)
	if !ok {
		return nil
	}

	content, err := json.Marshal(event.Content)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO room_state (room_id, type, state_key, content, updated_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (room_id, type, state_key)
		DO UPDATE SET content=EXCLUDED.content, updated_at=EXCLUDED.updated_at
	`, event.RoomID, event.Type, stateKey, content, time.Now().UTC())
	return err
}

func stateKeyFor(event *room.Event) (string, bool) {
	switch event.Type {
	case room.EventTypeMember:
		return event.TargetUserID, true
	case room.EventTypeTopic:
		return "", true
	}
	return "", false
}
