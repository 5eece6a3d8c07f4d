package league

import "context"

// Reader is the lookup side of the Entity Store. Missing records return the
// matching NotFound sentinel from errors.go.
type Reader interface {
	GetTeam(ctx context.Context, id string) (*Team, error)
	GetPlayer(ctx context.Context, id string) (*Player, error)
	GetCompetition(ctx context.Context, id string) (*Competition, error)
	GetMatch(ctx context.Context, id string) (*Match, error)
	GetMatchSet(ctx context.Context, id string) (*MatchSet, error)
	GetPlayerMatchStats(ctx context.Context, id string) (*PlayerMatchStats, error)
	GetTeamMatchStats(ctx context.Context, id string) (*TeamMatchStats, error)
	GetRelationship(ctx context.Context, id string) (*Relationship, error)
}

type Writer interface {
	CreateTeam(ctx context.Context, team *Team) error
	CreatePlayer(ctx context.Context, player *Player) error
	CreateCompetition(ctx context.Context, competition *Competition) error
	CreateMatch(ctx context.Context, match *Match) error
	CreateMatchSet(ctx context.Context, set *MatchSet) error
	CreatePlayerMatchStats(ctx context.Context, stats *PlayerMatchStats) error
	CreateTeamMatchStats(ctx context.Context, stats *TeamMatchStats) error
	UpdateMatch(ctx context.Context, match *Match) error
	UpdateMatchSet(ctx context.Context, set *MatchSet) error
	UpdatePlayerMatchStats(ctx context.Context, stats *PlayerMatchStats) error
	UpdateTeamMatchStats(ctx context.Context, stats *TeamMatchStats) error
	SetAdministrators(ctx context.Context, kind EntityKind, id string, administrators StringList) error
}

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	Reader
	Writer
}

// LoadOwnership returns createdBy and administrators of an owning entity.
func LoadOwnership(ctx context.Context, r Reader, kind EntityKind, id string) (Ownership, error) {
	switch kind {
	case KindTeam:
		team, err := r.GetTeam(ctx, id)
		if err != nil {
			return Ownership{}, err
		}
		return team.Ownership, nil
	case KindPlayer:
		player, err := r.GetPlayer(ctx, id)
		if err != nil {
			return Ownership{}, err
		}
		return player.Ownership, nil
	case KindCompetition:
		competition, err := r.GetCompetition(ctx, id)
		if err != nil {
			return Ownership{}, err
		}
		return competition.Ownership, nil
	case KindMatch:
		match, err := r.GetMatch(ctx, id)
		if err != nil {
			return Ownership{}, err
		}
		return match.Ownership, nil
	case KindRelationship:
		rel, err := r.GetRelationship(ctx, id)
		if err != nil {
			return Ownership{}, err
		}
		return rel.Ownership, nil
	default:
		return Ownership{}, ErrUnknownEntityKind
	}
}
