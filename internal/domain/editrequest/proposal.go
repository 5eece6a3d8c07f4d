package editrequest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"league-app-go/internal/domain/league"
	"league-app-go/internal/domain/policy"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Proposal is the typed form of proposedData. Each change type has exactly one variant.
type Proposal interface {
	proposal()
}

// RelationshipCreateProposal opens a relationship directly in accepted state.
// teamId is ownerA; playerId or competitionId is ownerB depending on kind.
type RelationshipCreateProposal struct {
	Kind          league.RelationshipKind `json:"kind" validate:"required,oneof=team_player team_competition"`
	TeamID        string                  `json:"teamId" validate:"required"`
	PlayerID      string                  `json:"playerId,omitempty" validate:"required_if=Kind team_player"`
	CompetitionID string                  `json:"competitionId,omitempty" validate:"required_if=Kind team_competition"`
	league.ContractChanges
}

func (p RelationshipCreateProposal) OwnerBID() string {
	if p.Kind == league.RelationshipTeamCompetition {
		return p.CompetitionID
	}
	return p.PlayerID
}

type RelationshipEndProposal struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

type ContractAmendProposal struct {
	league.ContractChanges
}

type MatchResultProposal struct {
	Status       *string `json:"status,omitempty" validate:"omitempty,oneof=scheduled in_progress finished"`
	HomeScore    *int    `json:"homeScore,omitempty" validate:"omitempty,min=0"`
	AwayScore    *int    `json:"awayScore,omitempty" validate:"omitempty,min=0"`
	WinnerTeamID *string `json:"winnerTeamId,omitempty"`
}

type SetResultProposal struct {
	HomePoints *int `json:"homePoints,omitempty" validate:"omitempty,min=0"`
	AwayPoints *int `json:"awayPoints,omitempty" validate:"omitempty,min=0"`
}

type StatsProposal struct {
	Points *int `json:"points,omitempty" validate:"omitempty,min=0"`
	Aces   *int `json:"aces,omitempty" validate:"omitempty,min=0"`
	Blocks *int `json:"blocks,omitempty" validate:"omitempty,min=0"`
	Errors *int `json:"errors,omitempty" validate:"omitempty,min=0"`
}

func (RelationshipCreateProposal) proposal() {}
func (RelationshipEndProposal) proposal()    {}
func (ContractAmendProposal) proposal()      {}
func (MatchResultProposal) proposal()        {}
func (SetResultProposal) proposal()          {}
func (StatsProposal) proposal()              {}

func newProposal(changeType policy.ChangeType) (Proposal, error) {
	switch changeType {
	case policy.ChangeRelationshipCreate:
		return &RelationshipCreateProposal{}, nil
	case policy.ChangeRelationshipEnd, policy.ChangeRelationshipDelete:
		return &RelationshipEndProposal{}, nil
	case policy.ChangeTeamPlayerContract, policy.ChangeTeamCompetitionContract:
		return &ContractAmendProposal{}, nil
	case policy.ChangeMatchResult:
		return &MatchResultProposal{}, nil
	case policy.ChangeSetResult:
		return &SetResultProposal{}, nil
	case policy.ChangePlayerMatchStats, policy.ChangeTeamMatchStats:
		return &StatsProposal{}, nil
	default:
		return nil, fmt.Errorf("%q: %w", changeType, policy.ErrUnknownChangeType)
	}
}

// requiresFields reports change types whose proposal must change something.
func requiresFields(changeType policy.ChangeType) bool {
	switch changeType {
	case policy.ChangeRelationshipCreate, policy.ChangeRelationshipEnd, policy.ChangeRelationshipDelete:
		return false
	default:
		return true
	}
}

// DecodeProposal strictly decodes proposedData into the variant of
// changeType and validates it. It also returns the top-level field names,
// sorted, for policy checks.
func DecodeProposal(changeType policy.ChangeType, data []byte) (Proposal, []string, error) {
	proposal, err := newProposal(changeType)
	if err != nil {
		return nil, nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("{}")
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("%w: proposedData must be a JSON object", ErrInvalidProposal)
	}
	fields := make([]string, 0, len(raw))
	for key, value := range raw {
		if string(bytes.TrimSpace(value)) == "null" {
			continue
		}
		fields = append(fields, key)
	}
	sort.Strings(fields)

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(proposal); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidProposal, err)
	}
	if err := validate.Struct(proposal); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidProposal, validationMessage(err))
	}
	if requiresFields(changeType) && len(fields) == 0 {
		return nil, nil, fmt.Errorf("%w: no fields to change", ErrInvalidProposal)
	}
	if create, ok := proposal.(*RelationshipCreateProposal); ok && create.PlayerID != "" && create.CompetitionID != "" {
		return nil, nil, fmt.Errorf("%w: playerId and competitionId are exclusive", ErrInvalidProposal)
	}
	if amend, ok := proposal.(*ContractAmendProposal); ok {
		if amend.ValidFrom != nil && amend.ValidTo != nil && amend.ValidTo.Before(*amend.ValidFrom) {
			return nil, nil, league.ErrInvalidValidityWindow
		}
	}

	return derefProposal(proposal), fields, nil
}

func derefProposal(p Proposal) Proposal {
	switch v := p.(type) {
	case *RelationshipCreateProposal:
		return *v
	case *RelationshipEndProposal:
		return *v
	case *ContractAmendProposal:
		return *v
	case *MatchResultProposal:
		return *v
	case *SetResultProposal:
		return *v
	case *StatsProposal:
		return *v
	default:
		return p
	}
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
