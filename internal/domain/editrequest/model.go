package editrequest

import (
	"time"

	"league-app-go/internal/domain/league"
	"league-app-go/internal/domain/policy"
)

type State string

const (
	StatePending   State = "pending"
	StateAccepted  State = "accepted"
	StateRejected  State = "rejected"
	StateCancelled State = "cancelled"
)

type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// EditRequest is a proposed change awaiting one- or two-sided approval.
// Once it leaves pending it is never reopened.
type EditRequest struct {
	ID                         string            `gorm:"type:uuid;primaryKey" bson:"_id"`
	ChangeType                 policy.ChangeType `gorm:"type:varchar(64);not null;index" bson:"change_type"`
	TargetKind                 league.EntityKind `gorm:"type:varchar(32)" bson:"target_kind,omitempty"`
	TargetID                   *string           `gorm:"type:uuid;index" bson:"target_id,omitempty"`
	ProposedData               Payload           `gorm:"type:text;not null" bson:"proposed_data"`
	State                      State             `gorm:"type:varchar(16);not null;index" bson:"state"`
	ApprovedBy                 league.StringList `gorm:"type:text;not null" bson:"approved_by"`
	RequiresDoubleConfirmation bool              `gorm:"not null" bson:"requires_double_confirmation"`
	RejectionReason            *string           `bson:"rejection_reason,omitempty"`
	AcceptedAt                 *time.Time        `bson:"accepted_at,omitempty"`
	RejectedAt                 *time.Time        `bson:"rejected_at,omitempty"`
	CancelledAt                *time.Time        `bson:"cancelled_at,omitempty"`
	CreatedBy                  string            `gorm:"not null;index" bson:"created_by"`
	FinalApprovedBy            *string           `bson:"final_approved_by,omitempty"`
	Version                    int               `gorm:"not null;default:1" bson:"version"`
	CreatedAt                  time.Time         `gorm:"autoCreateTime" bson:"created_at"`
	UpdatedAt                  time.Time         `gorm:"autoUpdateTime" bson:"updated_at"`
}

func (EditRequest) TableName() string {
	return "edit_requests"
}

func (r *EditRequest) HasApproved(userID string) bool {
	return r.ApprovedBy.Contains(userID)
}

type ListFilter struct {
	State      State
	ChangeType policy.ChangeType
	TargetID   string
	CreatedBy  string
	Limit      int
	Offset     int
}

// Approvers describes who may still decide a pending request.
type Approvers struct {
	RequiresDoubleConfirmation bool
	Eligible                   []string
	ApprovedBy                 []string
	Sides                      []Side
}

type Side struct {
	Role      policy.Role
	Kind      league.EntityKind
	EntityID  string
	Users     []string
	Satisfied bool
}
