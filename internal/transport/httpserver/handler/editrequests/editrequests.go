package editrequests

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	editrequestdomain "league-app-go/internal/domain/editrequest"
	"league-app-go/internal/domain/policy"
	"league-app-go/internal/domain/shared"
	commonhandler "league-app-go/internal/transport/httpserver/handler/common"
)

type createEditRequestRequest struct {
	ChangeType   string          `json:"change_type"`
	TargetID     *string         `json:"target_id"`
	ProposedData json.RawMessage `json:"proposed_data"`
}

type decisionRequest struct {
	Decision     string          `json:"decision"`
	Reason       string          `json:"reason"`
	ProposedData json.RawMessage `json:"proposed_data"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

type editRequestResponse struct {
	ID                         string          `json:"id"`
	ChangeType                 string          `json:"change_type"`
	TargetKind                 string          `json:"target_kind,omitempty"`
	TargetID                   *string         `json:"target_id"`
	ProposedData               json.RawMessage `json:"proposed_data"`
	State                      string          `json:"state"`
	ApprovedBy                 []string        `json:"approved_by"`
	RequiresDoubleConfirmation bool            `json:"requires_double_confirmation"`
	RejectionReason            *string         `json:"rejection_reason"`
	AcceptedAt                 *time.Time      `json:"accepted_at"`
	RejectedAt                 *time.Time      `json:"rejected_at"`
	CancelledAt                *time.Time      `json:"cancelled_at"`
	CreatedBy                  string          `json:"created_by"`
	FinalApprovedBy            *string         `json:"final_approved_by"`
	Version                    int             `json:"version"`
	CreatedAt                  time.Time       `json:"created_at"`
	UpdatedAt                  time.Time       `json:"updated_at"`
}

type approverSideResponse struct {
	Role      string   `json:"role"`
	Kind      string   `json:"kind"`
	EntityID  string   `json:"entity_id"`
	Users     []string `json:"users"`
	Satisfied bool     `json:"satisfied"`
}

type approversResponse struct {
	RequiresDoubleConfirmation bool                   `json:"requires_double_confirmation"`
	Eligible                   []string               `json:"eligible"`
	ApprovedBy                 []string               `json:"approved_by"`
	Sides                      []approverSideResponse `json:"sides"`
}

func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	var req createEditRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		commonhandler.WriteInvalidJSON(w)
		return
	}
	if strings.TrimSpace(req.ChangeType) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "change_type is required")
		return
	}

	created, err := h.EditRequests.Create(r.Context(), user.Actor(), editrequestdomain.CreateInput{
		ChangeType:   policy.ChangeType(req.ChangeType),
		TargetID:     req.TargetID,
		ProposedData: rawOrNil(req.ProposedData),
	})
	if err != nil {
		writeServiceError(w, h.log, "edit_requests.create", err, "change_type", req.ChangeType, "user_id", user.ID)
		return
	}
	writeJSON(w, http.StatusCreated, newEditRequestResponse(created))
}

func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := commonhandler.Page(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	query := r.URL.Query()
	if targetID := query.Get("target_id"); targetID != "" {
		if err := shared.ValidateID(targetID); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
	}
	items, total, err := h.EditRequests.List(r.Context(), editrequestdomain.ListFilter{
		State:      editrequestdomain.State(query.Get("state")),
		ChangeType: policy.ChangeType(query.Get("change_type")),
		TargetID:   query.Get("target_id"),
		CreatedBy:  query.Get("created_by"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		writeServiceError(w, h.log, "edit_requests.list", err)
		return
	}

	response := commonhandler.ListResponse[editRequestResponse]{
		Items:  make([]editRequestResponse, 0, len(items)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for i := range items {
		response.Items = append(response.Items, newEditRequestResponse(&items[i]))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	req, err := h.EditRequests.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, "edit_requests.get", err, "edit_request_id", id)
		return
	}
	writeJSON(w, http.StatusOK, newEditRequestResponse(req))
}

func (h *Handlers) Approvers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	approvers, err := h.EditRequests.Approvers(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, "edit_requests.approvers", err, "edit_request_id", id)
		return
	}

	response := approversResponse{
		RequiresDoubleConfirmation: approvers.RequiresDoubleConfirmation,
		Eligible:                   nonNil(approvers.Eligible),
		ApprovedBy:                 nonNil(approvers.ApprovedBy),
		Sides:                      make([]approverSideResponse, 0, len(approvers.Sides)),
	}
	for _, side := range approvers.Sides {
		response.Sides = append(response.Sides, approverSideResponse{
			Role:      string(side.Role),
			Kind:      string(side.Kind),
			EntityID:  side.EntityID,
			Users:     nonNil(side.Users),
			Satisfied: side.Satisfied,
		})
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) Decide(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	var req decisionRequest
	if err := decodeJSON(r, &req); err != nil {
		commonhandler.WriteInvalidJSON(w)
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	decided, err := h.EditRequests.Decide(r.Context(), user.Actor(), id, editrequestdomain.DecideInput{
		Decision:     editrequestdomain.Decision(strings.ToLower(strings.TrimSpace(req.Decision))),
		Reason:       req.Reason,
		ProposedData: rawOrNil(req.ProposedData),
	})
	if err != nil {
		writeServiceError(w, h.log, "edit_requests.decide", err, "edit_request_id", id, "decision", req.Decision, "user_id", user.ID)
		return
	}
	writeJSON(w, http.StatusOK, newEditRequestResponse(decided))
}

func (h *Handlers) Cancel(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	var req cancelRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		commonhandler.WriteInvalidJSON(w)
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	cancelled, err := h.EditRequests.Cancel(r.Context(), user.Actor(), id, req.Reason)
	if err != nil {
		writeServiceError(w, h.log, "edit_requests.cancel", err, "edit_request_id", id, "user_id", user.ID)
		return
	}
	writeJSON(w, http.StatusOK, newEditRequestResponse(cancelled))
}

func newEditRequestResponse(req *editrequestdomain.EditRequest) editRequestResponse {
	data := json.RawMessage(req.ProposedData)
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	return editRequestResponse{
		ID:                         req.ID,
		ChangeType:                 string(req.ChangeType),
		TargetKind:                 string(req.TargetKind),
		TargetID:                   req.TargetID,
		ProposedData:               data,
		State:                      string(req.State),
		ApprovedBy:                 nonNil(req.ApprovedBy),
		RequiresDoubleConfirmation: req.RequiresDoubleConfirmation,
		RejectionReason:            req.RejectionReason,
		AcceptedAt:                 req.AcceptedAt,
		RejectedAt:                 req.RejectedAt,
		CancelledAt:                req.CancelledAt,
		CreatedBy:                  req.CreatedBy,
		FinalApprovedBy:            req.FinalApprovedBy,
		Version:                    req.Version,
		CreatedAt:                  req.CreatedAt,
		UpdatedAt:                  req.UpdatedAt,
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
