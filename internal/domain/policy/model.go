package policy

import "league-app-go/internal/domain/league"

type ChangeType string

const (
	ChangeTeamPlayerContract      ChangeType = "teamPlayerContract"
	ChangeTeamCompetitionContract ChangeType = "teamCompetitionContract"
	ChangeRelationshipCreate      ChangeType = "relationshipCreate"
	ChangeRelationshipEnd         ChangeType = "relationshipEnd"
	ChangeRelationshipDelete      ChangeType = "relationshipDelete"
	ChangeMatchResult             ChangeType = "matchResult"
	ChangeSetResult               ChangeType = "setResult"
	ChangePlayerMatchStats        ChangeType = "playerMatchStats"
	ChangeTeamMatchStats          ChangeType = "teamMatchStats"
)

// KnownChangeTypes lists every change type the edit request workflow can apply.
func KnownChangeTypes() []ChangeType {
	return []ChangeType{
		ChangeTeamPlayerContract,
		ChangeTeamCompetitionContract,
		ChangeRelationshipCreate,
		ChangeRelationshipEnd,
		ChangeRelationshipDelete,
		ChangeMatchResult,
		ChangeSetResult,
		ChangePlayerMatchStats,
		ChangeTeamMatchStats,
	}
}

func (c ChangeType) Known() bool {
	for _, known := range KnownChangeTypes() {
		if c == known {
			return true
		}
	}
	return false
}

// Role names the side of a resolution an approver belongs to.
type Role string

const (
	RoleTeamAdmin        Role = "teamAdmin"
	RolePlayerAdmin      Role = "playerAdmin"
	RoleCompetitionAdmin Role = "competitionAdmin"
	RoleMatchAdmin       Role = "matchAdmin"
)

func (r Role) Known() bool {
	switch r {
	case RoleTeamAdmin, RolePlayerAdmin, RoleCompetitionAdmin, RoleMatchAdmin:
		return true
	default:
		return false
	}
}

// RoleForKind returns the role held by administrators of an owning entity kind.
func RoleForKind(kind league.EntityKind) Role {
	switch kind {
	case league.KindTeam:
		return RoleTeamAdmin
	case league.KindPlayer:
		return RolePlayerAdmin
	case league.KindCompetition:
		return RoleCompetitionAdmin
	case league.KindMatch:
		return RoleMatchAdmin
	default:
		return ""
	}
}

type ApprovalPolicy struct {
	ChangeType                    ChangeType              `yaml:"-" json:"changeType"`
	TargetKind                    league.EntityKind       `yaml:"targetKind,omitempty" json:"targetKind,omitempty"`
	RelationshipKind              league.RelationshipKind `yaml:"relationshipKind,omitempty" json:"relationshipKind,omitempty"`
	RequiresDoubleConfirmation    bool                    `yaml:"requiresDoubleConfirmation" json:"requiresDoubleConfirmation"`
	ApproverRoles                 []Role                  `yaml:"approverRoles" json:"approverRoles"`
	CriticalFields                []string                `yaml:"criticalFields,omitempty" json:"criticalFields,omitempty"`
	FieldsAllowedWithoutConsensus []string                `yaml:"fieldsAllowedWithoutConsensus,omitempty" json:"fieldsAllowedWithoutConsensus,omitempty"`
}

func (p ApprovalPolicy) HasTarget() bool {
	return p.TargetKind != ""
}

func (p ApprovalPolicy) HasRole(role Role) bool {
	for _, r := range p.ApproverRoles {
		if r == role {
			return true
		}
	}
	return false
}

func (p ApprovalPolicy) IsCritical(field string) bool {
	return contains(p.CriticalFields, field)
}

func (p ApprovalPolicy) AllowedWithoutConsensus(field string) bool {
	return contains(p.FieldsAllowedWithoutConsensus, field)
}

// ConfirmationFor decides whether a change touching fields needs double
// confirmation. Policies without field lists accept any field and keep their
// static flag. When lists exist, a field in neither list is rejected.
func (p ApprovalPolicy) ConfirmationFor(fields []string) (bool, error) {
	if len(p.CriticalFields) == 0 && len(p.FieldsAllowedWithoutConsensus) == 0 {
		return p.RequiresDoubleConfirmation, nil
	}

	double := false
	for _, field := range fields {
		switch {
		case p.IsCritical(field):
			double = true
		case p.AllowedWithoutConsensus(field):
		default:
			return false, &FieldNotAllowedError{ChangeType: p.ChangeType, Field: field}
		}
	}
	return double && p.RequiresDoubleConfirmation, nil
}

func contains(items []string, value string) bool {
	for _, item := range items {
		if item == value {
			return true
		}
	}
	return false
}
