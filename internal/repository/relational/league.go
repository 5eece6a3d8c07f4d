package relational

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"league-app-go/internal/domain/league"
	"league-app-go/internal/domain/shared"
)

type LeagueRepository struct {
	base
}

func (r *LeagueRepository) Transaction(ctx context.Context, fn func(league.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&LeagueRepository{base{db: tx}})
	})
}

func first[T any](ctx context.Context, db *gorm.DB, id string, notFound error) (*T, error) {
	var record T
	if err := db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		if isMalformedID(err) {
			return nil, fmt.Errorf("%q: %w", id, shared.ErrMalformedID)
		}
		return nil, err
	}
	return &record, nil
}

func (b base) GetTeam(ctx context.Context, id string) (*league.Team, error) {
	return first[league.Team](ctx, b.db, id, league.ErrTeamNotFound)
}

func (b base) GetPlayer(ctx context.Context, id string) (*league.Player, error) {
	return first[league.Player](ctx, b.db, id, league.ErrPlayerNotFound)
}

func (b base) GetCompetition(ctx context.Context, id string) (*league.Competition, error) {
	return first[league.Competition](ctx, b.db, id, league.ErrCompetitionNotFound)
}

func (b base) GetMatch(ctx context.Context, id string) (*league.Match, error) {
	return first[league.Match](ctx, b.db, id, league.ErrMatchNotFound)
}

func (b base) GetMatchSet(ctx context.Context, id string) (*league.MatchSet, error) {
	return first[league.MatchSet](ctx, b.db, id, league.ErrMatchSetNotFound)
}

func (b base) GetPlayerMatchStats(ctx context.Context, id string) (*league.PlayerMatchStats, error) {
	return first[league.PlayerMatchStats](ctx, b.db, id, league.ErrPlayerMatchStatsNotFound)
}

func (b base) GetTeamMatchStats(ctx context.Context, id string) (*league.TeamMatchStats, error) {
	return first[league.TeamMatchStats](ctx, b.db, id, league.ErrTeamMatchStatsNotFound)
}

func (b base) GetRelationship(ctx context.Context, id string) (*league.Relationship, error) {
	return first[league.Relationship](ctx, b.db, id, league.ErrRelationshipNotFound)
}

func (b base) CreateTeam(ctx context.Context, team *league.Team) error {
	return b.db.WithContext(ctx).Create(team).Error
}

func (b base) CreatePlayer(ctx context.Context, player *league.Player) error {
	return b.db.WithContext(ctx).Create(player).Error
}

func (b base) CreateCompetition(ctx context.Context, competition *league.Competition) error {
	return b.db.WithContext(ctx).Create(competition).Error
}

func (b base) CreateMatch(ctx context.Context, match *league.Match) error {
	return b.db.WithContext(ctx).Create(match).Error
}

func (b base) CreateMatchSet(ctx context.Context, set *league.MatchSet) error {
	err := b.db.WithContext(ctx).Create(set).Error
	if err != nil && isUniqueViolation(err) {
		return league.ErrSetNumberTaken
	}
	return err
}

func (b base) CreatePlayerMatchStats(ctx context.Context, stats *league.PlayerMatchStats) error {
	err := b.db.WithContext(ctx).Create(stats).Error
	if err != nil && isUniqueViolation(err) {
		return league.ErrStatsAlreadyRecorded
	}
	return err
}

func (b base) CreateTeamMatchStats(ctx context.Context, stats *league.TeamMatchStats) error {
	err := b.db.WithContext(ctx).Create(stats).Error
	if err != nil && isUniqueViolation(err) {
		return league.ErrStatsAlreadyRecorded
	}
	return err
}

// save rewrites every column of an existing row.
func save(ctx context.Context, db *gorm.DB, model interface{}, notFound error) error {
	result := db.WithContext(ctx).Model(model).Select("*").Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound
	}
	return nil
}

func (b base) UpdateMatch(ctx context.Context, match *league.Match) error {
	return save(ctx, b.db, match, league.ErrMatchNotFound)
}

func (b base) UpdateMatchSet(ctx context.Context, set *league.MatchSet) error {
	err := save(ctx, b.db, set, league.ErrMatchSetNotFound)
	if err != nil && isUniqueViolation(err) {
		return league.ErrSetNumberTaken
	}
	return err
}

func (b base) UpdatePlayerMatchStats(ctx context.Context, stats *league.PlayerMatchStats) error {
	return save(ctx, b.db, stats, league.ErrPlayerMatchStatsNotFound)
}

func (b base) UpdateTeamMatchStats(ctx context.Context, stats *league.TeamMatchStats) error {
	return save(ctx, b.db, stats, league.ErrTeamMatchStatsNotFound)
}

func (b base) SetAdministrators(ctx context.Context, kind league.EntityKind, id string, administrators league.StringList) error {
	var model interface{}
	switch kind {
	case league.KindTeam:
		model = &league.Team{}
	case league.KindPlayer:
		model = &league.Player{}
	case league.KindCompetition:
		model = &league.Competition{}
	case league.KindMatch:
		model = &league.Match{}
	default:
		return league.ErrUnknownEntityKind
	}

	result := b.db.WithContext(ctx).
		Model(model).
		Where("id = ?", id).
		Update("administrators", administrators)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return league.NotFoundError(kind)
	}
	return nil
}
