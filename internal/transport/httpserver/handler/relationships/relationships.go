package relationships

import (
	"context"
	"errors"
	"net/http"
	"time"

	leaguedomain "league-app-go/internal/domain/league"
	relationshipdomain "league-app-go/internal/domain/relationship"
	"league-app-go/internal/domain/shared"
	commonhandler "league-app-go/internal/transport/httpserver/handler/common"
)

type contractRequest struct {
	Role        *string    `json:"role"`
	ShirtNumber *int       `json:"shirt_number"`
	Notes       *string    `json:"notes"`
	ValidFrom   *time.Time `json:"valid_from"`
	ValidTo     *time.Time `json:"valid_to"`
}

type requestRelationshipRequest struct {
	Kind     string `json:"kind"`
	OwnerAID string `json:"owner_a_id"`
	OwnerBID string `json:"owner_b_id"`
	Origin   string `json:"origin"`
	contractRequest
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

type relationshipResponse struct {
	ID              string     `json:"id"`
	Kind            string     `json:"kind"`
	OwnerAID        string     `json:"owner_a_id"`
	OwnerBID        string     `json:"owner_b_id"`
	RequestedBy     string     `json:"requested_by"`
	Origin          string     `json:"origin"`
	State           string     `json:"state"`
	Active          bool       `json:"active"`
	Role            *string    `json:"role"`
	ShirtNumber     *int       `json:"shirt_number"`
	Notes           *string    `json:"notes"`
	ValidFrom       time.Time  `json:"valid_from"`
	ValidTo         *time.Time `json:"valid_to"`
	AcceptedAt      *time.Time `json:"accepted_at"`
	EndedAt         *time.Time `json:"ended_at"`
	RejectionReason *string    `json:"rejection_reason"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type eventResponse struct {
	ID       string    `json:"id"`
	Action   string    `json:"action"`
	ActorID  string    `json:"actor_id"`
	Reason   *string   `json:"reason"`
	At       time.Time `json:"at"`
	Kind     string    `json:"kind"`
	OwnerAID string    `json:"owner_a_id"`
	OwnerBID string    `json:"owner_b_id"`
}

func (c contractRequest) toDomain() leaguedomain.ContractChanges {
	return leaguedomain.ContractChanges{
		Role:        c.Role,
		ShirtNumber: c.ShirtNumber,
		Notes:       c.Notes,
		ValidFrom:   c.ValidFrom,
		ValidTo:     c.ValidTo,
	}
}

func (h *Handlers) Request(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	var req requestRelationshipRequest
	if err := decodeJSON(r, &req); err != nil {
		commonhandler.WriteInvalidJSON(w)
		return
	}

	rel, err := h.Relationships.Request(r.Context(), user.Actor(), relationshipdomain.RequestInput{
		Kind:     leaguedomain.RelationshipKind(req.Kind),
		OwnerAID: req.OwnerAID,
		OwnerBID: req.OwnerBID,
		Origin:   leaguedomain.Origin(req.Origin),
		Terms:    req.toDomain(),
	})
	if err != nil {
		writeServiceError(w, h, "relationships.request", err, "kind", req.Kind, "owner_a_id", req.OwnerAID, "owner_b_id", req.OwnerBID, "user_id", user.ID)
		return
	}
	writeJSON(w, http.StatusCreated, newRelationshipResponse(rel))
}

func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := commonhandler.Page(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	query := r.URL.Query()
	filter := leaguedomain.RelationshipFilter{
		Kind:     leaguedomain.RelationshipKind(query.Get("kind")),
		OwnerAID: query.Get("owner_a"),
		OwnerBID: query.Get("owner_b"),
		State:    leaguedomain.RelationshipState(query.Get("state")),
		Limit:    limit,
		Offset:   offset,
	}
	if filter.Kind != "" && !filter.Kind.Valid() {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid kind")
		return
	}
	for _, id := range []string{filter.OwnerAID, filter.OwnerBID} {
		if id == "" {
			continue
		}
		if err := shared.ValidateID(id); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
	}

	items, total, err := h.Relationships.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, h, "relationships.list", err)
		return
	}

	response := commonhandler.ListResponse[relationshipResponse]{
		Items:  make([]relationshipResponse, 0, len(items)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for i := range items {
		response.Items = append(response.Items, newRelationshipResponse(&items[i]))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	rel, err := h.Relationships.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h, "relationships.get", err, "relationship_id", id)
		return
	}
	writeJSON(w, http.StatusOK, newRelationshipResponse(rel))
}

func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	events, err := h.Relationships.History(r.Context(), id)
	if err != nil {
		writeServiceError(w, h, "relationships.history", err, "relationship_id", id)
		return
	}

	items := make([]eventResponse, 0, len(events))
	for _, event := range events {
		items = append(items, eventResponse{
			ID:       event.ID,
			Action:   string(event.Action),
			ActorID:  event.ActorID,
			Reason:   event.Reason,
			At:       event.At,
			Kind:     string(event.Kind),
			OwnerAID: event.OwnerAID,
			OwnerBID: event.OwnerBID,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *Handlers) Approve(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	rel, err := h.Relationships.Approve(r.Context(), user.Actor(), id)
	if err != nil {
		writeServiceError(w, h, "relationships.approve", err, "relationship_id", id, "user_id", user.ID)
		return
	}
	writeJSON(w, http.StatusOK, newRelationshipResponse(rel))
}

func (h *Handlers) Reject(w http.ResponseWriter, r *http.Request) {
	h.withReason(w, r, "relationships.reject", h.Relationships.Reject)
}

func (h *Handlers) Cancel(w http.ResponseWriter, r *http.Request) {
	h.withReason(w, r, "relationships.cancel", h.Relationships.Cancel)
}

func (h *Handlers) End(w http.ResponseWriter, r *http.Request) {
	h.withReason(w, r, "relationships.end", h.Relationships.End)
}

func (h *Handlers) Amend(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	var req contractRequest
	if err := decodeJSON(r, &req); err != nil {
		commonhandler.WriteInvalidJSON(w)
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	rel, err := h.Relationships.Amend(r.Context(), user.Actor(), id, req.toDomain())
	if err != nil {
		writeServiceError(w, h, "relationships.amend", err, "relationship_id", id, "user_id", user.ID)
		return
	}
	writeJSON(w, http.StatusOK, newRelationshipResponse(rel))
}

type reasonTransition func(ctx context.Context, actor shared.Actor, id, reason string) (*leaguedomain.Relationship, error)

func (h *Handlers) withReason(w http.ResponseWriter, r *http.Request, op string, transition reasonTransition) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	var req reasonRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		commonhandler.WriteInvalidJSON(w)
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	rel, err := transition(r.Context(), user.Actor(), id, req.Reason)
	if err != nil {
		writeServiceError(w, h, op, err, "relationship_id", id, "user_id", user.ID)
		return
	}
	writeJSON(w, http.StatusOK, newRelationshipResponse(rel))
}

// writeServiceError reports ending a relationship that is no longer accepted
// as a warning rather than a business error.
func writeServiceError(w http.ResponseWriter, h *Handlers, op string, err error, args ...any) {
	if errors.Is(err, relationshipdomain.ErrNotAccepted) {
		h.log.Warn(op+": relationship not accepted", append([]any{"error", err}, args...)...)
		writeError(w, http.StatusConflict, "invalid_state", err.Error())
		return
	}
	commonhandler.WriteServiceError(w, h.log, op, err, args...)
}

func newRelationshipResponse(rel *leaguedomain.Relationship) relationshipResponse {
	return relationshipResponse{
		ID:              rel.ID,
		Kind:            string(rel.Kind),
		OwnerAID:        rel.OwnerAID,
		OwnerBID:        rel.OwnerBID,
		RequestedBy:     rel.RequestedBy,
		Origin:          string(rel.Origin),
		State:           string(rel.State),
		Active:          rel.Active,
		Role:            rel.Role,
		ShirtNumber:     rel.ShirtNumber,
		Notes:           rel.Notes,
		ValidFrom:       rel.ValidFrom,
		ValidTo:         rel.ValidTo,
		AcceptedAt:      rel.AcceptedAt,
		EndedAt:         rel.EndedAt,
		RejectionReason: rel.RejectionReason,
		CreatedAt:       rel.CreatedAt,
		UpdatedAt:       rel.UpdatedAt,
	}
}
