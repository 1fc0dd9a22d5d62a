// Package httpapi is the thin HTTP surface over the room engine: the
// client-facing room routes, the SSE subscription endpoint, and the
// federation receive endpoints consumed by peer homeservers.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	appMember "github.com/fedroom/fedroom/internal/application/member"
	appMessage "github.com/fedroom/fedroom/internal/application/message"
	appRoom "github.com/fedroom/fedroom/internal/application/room"
	"github.com/fedroom/fedroom/internal/domain/room"
	"github.com/fedroom/fedroom/internal/infrastructure/sse"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	messageSvc *appMessage.Service
	memberSvc  *appMember.Service
	roomSvc    *appRoom.Service
	store      room.Storage
	hub        *sse.Hub
}

func NewServer(
	messageSvc *appMessage.Service,
	memberSvc *appMember.Service,
	roomSvc *appRoom.Service,
	store room.Storage,
	hub *sse.Hub,
) *Server {
	return &Server{
		messageSvc: messageSvc,
		memberSvc:  memberSvc,
		roomSvc:    roomSvc,
		store:      store,
		hub:        hub,
	}
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.healthz)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/rooms", s.createRoom)
		r.Route("/rooms/{roomID}", func(r chi.Router) {
			r.Post("/send", s.sendMessage)
			r.Post("/feedback", s.sendFeedback)
			r.Get("/messages", s.getMessages)
			r.Get("/members", s.getMembers)
			r.Get("/members/{userID}", s.getMember)
			r.Post("/members/{userID}", s.changeMembership)
			r.Put("/data", s.storePathData)
			r.Get("/data", s.getPathData)
		})
		r.Get("/events", s.subscribe)

		r.Route("/federation", func(r chi.Router) {
			r.Post("/send", s.federationReceive)
			r.Get("/rooms/{roomID}/state", s.federationRoomState)
		})
	})

	return r
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type createRoomRequest struct {
	UserID     string `json:"userId"`
	RoomID     string `json:"roomId,omitempty"`
	Visibility string `json:"visibility,omitempty"`
}

func (s *Server) createRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "MISSING_PARAM", "userId is required")
		return
	}

	roomID, err := s.roomSvc.Create(r.Context(), req.UserID, req.RoomID, appRoom.Config{Visibility: req.Visibility})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"roomId": roomID})
}

type sendEventRequest struct {
	UserID  string         `json:"userId"`
	Content map[string]any `json:"content"`
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendEventRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	event := room.NewMessageEvent(chi.URLParam(r, "roomID"), req.UserID, req.Content)
	if err := s.messageSvc.SendMessage(r.Context(), event, appMessage.SendOpts{StampEvent: true}); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"eventId": event.ID})
}

func (s *Server) sendFeedback(w http.ResponseWriter, r *http.Request) {
	var req sendEventRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	event := room.NewEvent(room.EventTypeFeedback, chi.URLParam(r, "roomID"), req.UserID)
	if req.Content != nil {
		event.Content = req.Content
	}
	if err := s.messageSvc.SendFeedback(r.Context(), event, appMessage.SendOpts{StampEvent: true}); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"eventId": event.ID})
}

func (s *Server) getMessages(w http.ResponseWriter, r *http.Request) {
	requester := r.URL.Query().Get("user_id")
	limit, offset := parseLimitOffset(r, 100)

	chunk, err := s.messageSvc.Messages(r.Context(), requester, chi.URLParam(r, "roomID"), room.Pagination{Limit: limit, Offset: offset})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, chunk)
}

func (s *Server) getMembers(w http.ResponseWriter, r *http.Request) {
	chunk, err := s.memberSvc.Members(r.Context(), chi.URLParam(r, "roomID"), r.URL.Query().Get("user_id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, chunk)
}

func (s *Server) getMember(w http.ResponseWriter, r *http.Request) {
	member, err := s.memberSvc.Member(r.Context(), chi.URLParam(r, "roomID"), chi.URLParam(r, "userID"), r.URL.Query().Get("user_id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if member == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "member not found")
		return
	}
	respondJSON(w, http.StatusOK, member)
}

type changeMembershipRequest struct {
	Sender     string         `json:"sender"`
	Membership string         `json:"membership"`
	Content    map[string]any `json:"content,omitempty"`
}

func (s *Server) changeMembership(w http.ResponseWriter, r *http.Request) {
	var req changeMembershipRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}

	event := room.NewMemberEvent(
		chi.URLParam(r, "roomID"),
		req.Sender,
		chi.URLParam(r, "userID"),
		room.Membership(req.Membership),
		req.Content,
	)
	room.Stamp(event)

	result, err := s.memberSvc.ChangeMembership(r.Context(), event, appMember.ChangeOpts{
		BroadcastNotice: true,
		DoAuth:          true,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"sequenceId": result.SequenceID,
		"danced":     result.Danced,
	})
}

type storePathDataRequest struct {
	UserID    string         `json:"userId"`
	Path      string         `json:"path"`
	EventType string         `json:"eventType,omitempty"`
	Content   map[string]any `json:"content"`
}

func (s *Server) storePathData(w http.ResponseWriter, r *http.Request) {
	var req storePathDataRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	if req.Path == "" {
		respondError(w, http.StatusBadRequest, "MISSING_PARAM", "path is required")
		return
	}

	eventType := req.EventType
	if eventType == "" {
		eventType = room.EventTypeTopic
	}
	event := room.NewEvent(eventType, chi.URLParam(r, "roomID"), req.UserID)
	if req.Content != nil {
		event.Content = req.Content
	}
	if err := s.messageSvc.StoreRoomPathData(r.Context(), event, req.Path, true); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) getPathData(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	content, err := s.messageSvc.RoomPathData(
		r.Context(),
		q.Get("user_id"),
		chi.URLParam(r, "roomID"),
		q.Get("path"),
		q.Get("event_type"),
		appMessage.DefaultAccessRules(),
	)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if content == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "no data at path")
		return
	}
	respondJSON(w, http.StatusOK, content)
}

// subscribe streams committed room events to the caller as server-sent
// events until the connection drops.
func (s *Server) subscribe(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "UNSUPPORTED", "streaming unsupported")
		return
	}

	q := r.URL.Query()
	var roomIDs []string
	if raw := strings.TrimSpace(q.Get("rooms")); raw != "" {
		roomIDs = strings.Split(raw, ",")
	}
	client := sse.NewClient(q.Get("user_id"), roomIDs)
	s.hub.Register(client)
	defer s.hub.Unregister(client.ClientID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-client.MessageChan:
			if !ok {
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			if _, err := w.Write([]byte("event: room\ndata: " + string(data) + "\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// federationReceive ingests an event from a peer homeserver and replays it
// through the local pipeline. Destinations are cleared so the event is not
// forwarded onward from here.
func (s *Server) federationReceive(w http.ResponseWriter, r *http.Request) {
	var event room.Event
	if err := decodeBody(r, &event); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	event.Destinations = nil
	if event.Content == nil {
		event.Content = map[string]any{}
	}

	var err error
	switch event.Type {
	case room.EventTypeMember:
		_, err = s.memberSvc.ChangeMembership(r.Context(), &event, appMember.ChangeOpts{LocalOnly: true})
	case room.EventTypeInviteJoin:
		// A remote invitee accepted their invite: commit their join here.
		// The control event itself never enters the timeline.
		join := room.NewMemberEvent(event.RoomID, event.UserID, event.UserID, room.MembershipJoin, nil)
		room.Stamp(join)
		_, err = s.memberSvc.ChangeMembership(r.Context(), join, appMember.ChangeOpts{LocalOnly: true})
	case room.EventTypeFeedback:
		err = s.messageSvc.SendFeedback(r.Context(), &event, appMessage.SendOpts{SuppressAuth: true, LocalOnly: true})
	default:
		err = s.messageSvc.SendMessage(r.Context(), &event, appMessage.SendOpts{SuppressAuth: true, LocalOnly: true})
	}
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// federationRoomState serves the room state snapshot fetched by a joining
// server during the invite-join handshake.
func (s *Server) federationRoomState(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	rm, err := s.store.Room(r.Context(), roomID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if rm == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "room not found")
		return
	}
	members, err := s.store.Members(r.Context(), roomID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"roomId":   rm.ID,
		"isPublic": rm.IsPublic,
		"creator":  rm.CreatorUserID,
		"members":  members,
	})
}

func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, room.ErrForbidden):
		respondError(w, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, room.ErrRoomIDTaken):
		respondError(w, http.StatusConflict, "ROOM_IN_USE", err.Error())
	case errors.Is(err, room.ErrRoomIDExhausted):
		respondError(w, http.StatusInternalServerError, "ID_EXHAUSTED", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]any{
		"error":   code,
		"message": message,
	})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func parseLimitOffset(r *http.Request, defaultLimit int) (int, int) {
	limit := defaultLimit
	offset := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("offset")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			offset = parsed
		}
	}
	return limit, offset
}
