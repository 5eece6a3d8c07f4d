package common

import (
	"net/http"

	"league-app-go/internal/domain/policy"
)

type policyResponse struct {
	ChangeType                    string   `json:"change_type"`
	TargetKind                    string   `json:"target_kind,omitempty"`
	RelationshipKind              string   `json:"relationship_kind,omitempty"`
	RequiresDoubleConfirmation    bool     `json:"requires_double_confirmation"`
	ApproverRoles                 []string `json:"approver_roles"`
	CriticalFields                []string `json:"critical_fields"`
	FieldsAllowedWithoutConsensus []string `json:"fields_allowed_without_consensus"`
}

func (h *Handlers) ListPolicies(w http.ResponseWriter, r *http.Request) {
	all := h.Policies.All()
	items := make([]policyResponse, 0, len(all))
	for _, p := range all {
		items = append(items, toPolicyResponse(p))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func toPolicyResponse(p policy.ApprovalPolicy) policyResponse {
	roles := make([]string, 0, len(p.ApproverRoles))
	for _, role := range p.ApproverRoles {
		roles = append(roles, string(role))
	}
	return policyResponse{
		ChangeType:                    string(p.ChangeType),
		TargetKind:                    string(p.TargetKind),
		RelationshipKind:              string(p.RelationshipKind),
		RequiresDoubleConfirmation:    p.RequiresDoubleConfirmation,
		ApproverRoles:                 roles,
		CriticalFields:                append([]string{}, p.CriticalFields...),
		FieldsAllowedWithoutConsensus: append([]string{}, p.FieldsAllowedWithoutConsensus...),
	}
}
