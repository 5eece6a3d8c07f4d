package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"

	"league-app-go/internal/domain/league"
)

type LeagueRepository struct {
	base
}

func (r *LeagueRepository) Transaction(ctx context.Context, fn func(league.Repository) error) error {
	return r.transaction(ctx, func(tx base) error {
		return fn(&LeagueRepository{tx})
	})
}

func (b base) GetTeam(ctx context.Context, id string) (*league.Team, error) {
	return findByID[league.Team](b.ctx(ctx), b.coll(collTeams), id, league.ErrTeamNotFound)
}

func (b base) GetPlayer(ctx context.Context, id string) (*league.Player, error) {
	return findByID[league.Player](b.ctx(ctx), b.coll(collPlayers), id, league.ErrPlayerNotFound)
}

func (b base) GetCompetition(ctx context.Context, id string) (*league.Competition, error) {
	return findByID[league.Competition](b.ctx(ctx), b.coll(collCompetitions), id, league.ErrCompetitionNotFound)
}

func (b base) GetMatch(ctx context.Context, id string) (*league.Match, error) {
	return findByID[league.Match](b.ctx(ctx), b.coll(collMatches), id, league.ErrMatchNotFound)
}

func (b base) GetMatchSet(ctx context.Context, id string) (*league.MatchSet, error) {
	return findByID[league.MatchSet](b.ctx(ctx), b.coll(collMatchSets), id, league.ErrMatchSetNotFound)
}

func (b base) GetPlayerMatchStats(ctx context.Context, id string) (*league.PlayerMatchStats, error) {
	return findByID[league.PlayerMatchStats](b.ctx(ctx), b.coll(collPlayerStats), id, league.ErrPlayerMatchStatsNotFound)
}

func (b base) GetTeamMatchStats(ctx context.Context, id string) (*league.TeamMatchStats, error) {
	return findByID[league.TeamMatchStats](b.ctx(ctx), b.coll(collTeamStats), id, league.ErrTeamMatchStatsNotFound)
}

func (b base) GetRelationship(ctx context.Context, id string) (*league.Relationship, error) {
	return findByID[league.Relationship](b.ctx(ctx), b.coll(collRelationships), id, league.ErrRelationshipNotFound)
}

func (b base) insert(ctx context.Context, coll string, doc interface{}, duplicate error) error {
	_, err := b.coll(coll).InsertOne(b.ctx(ctx), doc)
	if err != nil && duplicate != nil && driver.IsDuplicateKeyError(err) {
		return duplicate
	}
	return err
}

func (b base) replace(ctx context.Context, coll, id string, doc interface{}, notFound error) error {
	result, err := b.coll(coll).ReplaceOne(b.ctx(ctx), bson.M{"_id": id}, doc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return notFound
	}
	return nil
}

func (b base) CreateTeam(ctx context.Context, team *league.Team) error {
	return b.insert(ctx, collTeams, team, nil)
}

func (b base) CreatePlayer(ctx context.Context, player *league.Player) error {
	return b.insert(ctx, collPlayers, player, nil)
}

func (b base) CreateCompetition(ctx context.Context, competition *league.Competition) error {
	return b.insert(ctx, collCompetitions, competition, nil)
}

func (b base) CreateMatch(ctx context.Context, match *league.Match) error {
	return b.insert(ctx, collMatches, match, nil)
}

func (b base) CreateMatchSet(ctx context.Context, set *league.MatchSet) error {
	return b.insert(ctx, collMatchSets, set, league.ErrSetNumberTaken)
}

func (b base) CreatePlayerMatchStats(ctx context.Context, stats *league.PlayerMatchStats) error {
	return b.insert(ctx, collPlayerStats, stats, league.ErrStatsAlreadyRecorded)
}

func (b base) CreateTeamMatchStats(ctx context.Context, stats *league.TeamMatchStats) error {
	return b.insert(ctx, collTeamStats, stats, league.ErrStatsAlreadyRecorded)
}

func (b base) UpdateMatch(ctx context.Context, match *league.Match) error {
	return b.replace(ctx, collMatches, match.ID, match, league.ErrMatchNotFound)
}

func (b base) UpdateMatchSet(ctx context.Context, set *league.MatchSet) error {
	err := b.replace(ctx, collMatchSets, set.ID, set, league.ErrMatchSetNotFound)
	if err != nil && driver.IsDuplicateKeyError(err) {
		return league.ErrSetNumberTaken
	}
	return err
}

func (b base) UpdatePlayerMatchStats(ctx context.Context, stats *league.PlayerMatchStats) error {
	return b.replace(ctx, collPlayerStats, stats.ID, stats, league.ErrPlayerMatchStatsNotFound)
}

func (b base) UpdateTeamMatchStats(ctx context.Context, stats *league.TeamMatchStats) error {
	return b.replace(ctx, collTeamStats, stats.ID, stats, league.ErrTeamMatchStatsNotFound)
}

func (b base) SetAdministrators(ctx context.Context, kind league.EntityKind, id string, administrators league.StringList) error {
	var coll string
	switch kind {
	case league.KindTeam:
		coll = collTeams
	case league.KindPlayer:
		coll = collPlayers
	case league.KindCompetition:
		coll = collCompetitions
	case league.KindMatch:
		coll = collMatches
	default:
		return league.ErrUnknownEntityKind
	}
	if administrators == nil {
		administrators = league.StringList{}
	}

	result, err := b.coll(coll).UpdateOne(b.ctx(ctx), bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"administrators": []string(administrators),
			"updated_at":     time.Now().UTC(),
		},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return league.NotFoundError(kind)
	}
	return nil
}
