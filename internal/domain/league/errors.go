package league

import (
	"fmt"

	"league-app-go/internal/domain/shared"
)

var (
	ErrTeamNotFound             = fmt.Errorf("team %w", shared.ErrNotFound)
	ErrPlayerNotFound           = fmt.Errorf("player %w", shared.ErrNotFound)
	ErrCompetitionNotFound      = fmt.Errorf("competition %w", shared.ErrNotFound)
	ErrMatchNotFound            = fmt.Errorf("match %w", shared.ErrNotFound)
	ErrMatchSetNotFound         = fmt.Errorf("set %w", shared.ErrNotFound)
	ErrPlayerMatchStatsNotFound = fmt.Errorf("player match stats %w", shared.ErrNotFound)
	ErrTeamMatchStatsNotFound   = fmt.Errorf("team match stats %w", shared.ErrNotFound)
	ErrRelationshipNotFound     = fmt.Errorf("relationship %w", shared.ErrNotFound)

	ErrNameRequired          = fmt.Errorf("name is required: %w", shared.ErrInvalidArgument)
	ErrUnknownEntityKind     = fmt.Errorf("unknown entity kind: %w", shared.ErrInvalidArgument)
	ErrSameTeams             = fmt.Errorf("home and away team must differ: %w", shared.ErrInvalidArgument)
	ErrTeamNotInMatch        = fmt.Errorf("team does not play this match: %w", shared.ErrInvalidArgument)
	ErrInvalidValidityWindow = fmt.Errorf("validTo is before validFrom: %w", shared.ErrInvalidArgument)
	ErrInvalidUserID         = fmt.Errorf("user id is required: %w", shared.ErrInvalidArgument)
	ErrTeamsRequired         = fmt.Errorf("home and away team are required: %w", shared.ErrInvalidArgument)
	ErrInvalidSetScore       = fmt.Errorf("set number must be positive and points non-negative: %w", shared.ErrInvalidArgument)

	ErrSetNumberTaken         = fmt.Errorf("set number already recorded: %w", shared.ErrConflict)
	ErrStatsAlreadyRecorded   = fmt.Errorf("stats already recorded: %w", shared.ErrConflict)
	ErrOpenRelationshipExists = fmt.Errorf("an open relationship already exists for this pair: %w", shared.ErrConflict)

	ErrNotAnApprover = fmt.Errorf("actor is not an approver of this entity: %w", shared.ErrForbidden)

	// ErrRelationshipStateChanged is returned by conditional writes that lost a race.
	ErrRelationshipStateChanged = fmt.Errorf("relationship state changed concurrently: %w", shared.ErrInvalidState)
)

// NotFoundError returns the not-found sentinel for kind.
func NotFoundError(kind EntityKind) error {
	switch kind {
	case KindTeam:
		return ErrTeamNotFound
	case KindPlayer:
		return ErrPlayerNotFound
	case KindCompetition:
		return ErrCompetitionNotFound
	case KindMatch:
		return ErrMatchNotFound
	case KindMatchSet:
		return ErrMatchSetNotFound
	case KindPlayerMatchStats:
		return ErrPlayerMatchStatsNotFound
	case KindTeamMatchStats:
		return ErrTeamMatchStatsNotFound
	case KindRelationship:
		return ErrRelationshipNotFound
	default:
		return ErrUnknownEntityKind
	}
}
