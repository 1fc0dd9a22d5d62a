package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fedroom/fedroom/internal/domain/room"
)

// RoomRepository implements room.Storage on PostgreSQL.
type RoomRepository struct {
	pool *pgxpool.Pool
}

func NewRoomRepository(pool *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{pool: pool}
}

func (r *RoomRepository) PersistEvent(ctx context.Context, event *room.Event) (int64, error) {
	content, err := json.Marshal(event.Content)
	if err != nil {
		return 0, err
	}
	var id int64
	err = r.pool.QueryRow(ctx, `
		INSERT INTO room_events
		(event_id, type, room_id, user_id, target_user_id, content, origin_server_ts, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id
	`, event.ID, event.Type, event.RoomID, event.UserID, nullable(event.TargetUserID), content, event.OriginServerTS, time.Now().UTC()).Scan(&id)
	return id, err
}

func (r *RoomRepository) StoreRoom(ctx context.Context, roomID, creatorUserID string, isPublic bool) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO rooms (room_id, creator_user_id, is_public, created_at)
		VALUES ($1,$2,$3,$4)
	`, roomID, creatorUserID, isPublic, time.Now().UTC())
	if isUniqueViolation(err) {
		return room.ErrRoomIDTaken
	}
	return err
}

func (r *RoomRepository) Room(ctx context.Context, roomID string) (*room.Room, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT room_id, creator_user_id, is_public, created_at
		FROM rooms
		WHERE room_id=$1
	`, roomID)

	var out room.Room
	err := row.Scan(&out.ID, &out.CreatorUserID, &out.IsPublic, &out.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *RoomRepository) StoreMember(ctx context.Context, member *room.Member) (int64, error) {
	content, err := json.Marshal(member.Content)
	if err != nil {
		return 0, err
	}
	var id int64
	err = r.pool.QueryRow(ctx, `
		INSERT INTO room_members (room_id, user_id, sender, membership, content, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (room_id, user_id)
		DO UPDATE SET id=nextval('room_members_id_seq'),
		              sender=EXCLUDED.sender, membership=EXCLUDED.membership,
		              content=EXCLUDED.content, updated_at=EXCLUDED.updated_at
		RETURNING id
	`, member.RoomID, member.UserID, member.Sender, member.Membership, content, time.Now().UTC()).Scan(&id)
	return id, err
}

func (r *RoomRepository) Member(ctx context.Context, roomID, userID string) (*room.Member, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT room_id, user_id, sender, membership, content, updated_at
		FROM room_members
		WHERE room_id=$1 AND user_id=$2
	`, roomID, userID)
	member, err := scanMember(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return member, err
}

func (r *RoomRepository) Members(ctx context.Context, roomID string) ([]*room.Member, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT room_id, user_id, sender, membership, content, updated_at
		FROM room_members
		WHERE room_id=$1
		ORDER BY updated_at ASC
	`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*room.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// JoinedHosts derives the destination host set from the domains of joined
// members.
func (r *RoomRepository) JoinedHosts(ctx context.Context, roomID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT split_part(user_id, ':', 2)
		FROM room_members
		WHERE room_id=$1 AND membership=$2 AND position(':' in user_id) > 0
	`, roomID, room.MembershipJoin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hosts []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		if h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts, rows.Err()
}

func (r *RoomRepository) StorePathData(ctx context.Context, roomID, path string, content map[string]any) error {
	raw, err := json.Marshal(content)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO room_data (path, room_id, content, updated_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (path)
		DO UPDATE SET content=EXCLUDED.content, updated_at=EXCLUDED.updated_at
	`, path, roomID, raw, time.Now().UTC())
	return err
}

func (r *RoomRepository) PathData(ctx context.Context, path string) (map[string]any, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, `
		SELECT content FROM room_data WHERE path=$1
	`, path).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var content map[string]any
	if err := json.Unmarshal(raw, &content); err != nil {
		return nil, err
	}
	return content, nil
}

func (r *RoomRepository) Message(ctx context.Context, roomID, senderID, messageID string) (*room.Event, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT event_id, type, room_id, user_id, COALESCE(target_user_id, ''), content, origin_server_ts
		FROM room_events
		WHERE room_id=$1 AND user_id=$2 AND event_id=$3 AND type=$4
	`, roomID, senderID, messageID, room.EventTypeMessage)
	event, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return event, err
}

func (r *RoomRepository) Feedback(ctx context.Context, roomID, msgSenderID, messageID, fbSenderID, fbType string) (*room.Event, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT event_id, type, room_id, user_id, COALESCE(target_user_id, ''), content, origin_server_ts
		FROM room_events
		WHERE room_id=$1 AND user_id=$2 AND type=$3
		  AND content->>'target_msg_id'=$4
		  AND content->>'target_msg_sender'=$5
		  AND content->>'feedback_type'=$6
		ORDER BY id DESC
		LIMIT 1
	`, roomID, fbSenderID, room.EventTypeFeedback, messageID, msgSenderID, fbType)
	event, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return event, err
}

func (r *RoomRepository) Messages(ctx context.Context, roomID string, page room.Pagination) ([]*room.Event, error) {
	page = page.Normalized()
	rows, err := r.pool.Query(ctx, `
		SELECT event_id, type, room_id, user_id, COALESCE(target_user_id, ''), content, origin_server_ts
		FROM room_events
		WHERE room_id=$1 AND type=$2
		ORDER BY id ASC
		LIMIT $3 OFFSET $4
	`, roomID, room.EventTypeMessage, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*room.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, event)
	}
	return out, rows.Err()
}

func scanMember(row pgx.Row) (*room.Member, error) {
	var m room.Member
	var content []byte
	if err := row.Scan(&m.RoomID, &m.UserID, &m.Sender, &m.Membership, &content, &m.UpdatedAt); err != nil {
		return nil, err
	}
	if len(content) > 0 {
		if err := json.Unmarshal(content, &m.Content); err != nil {
			return nil, err
		}
	}
	return &m, nil
}

func scanEvent(row pgx.Row) (*room.Event, error) {
	var e room.Event
	var content []byte
	if err := row.Scan(&e.ID, &e.Type, &e.RoomID, &e.UserID, &e.TargetUserID, &content, &e.OriginServerTS); err != nil {
		return nil, err
	}
	if len(content) > 0 {
		if err := json.Unmarshal(content, &e.Content); err != nil {
			return nil, err
		}
	}
	return &e, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
