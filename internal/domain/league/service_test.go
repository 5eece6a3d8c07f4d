package league_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"league-app-go/internal/domain/league"
	"league-app-go/internal/domain/shared"
	"league-app-go/internal/repository/inmemory"
)

var (
	owner    = shared.NewActor("user-owner", shared.RoleUser)
	stranger = shared.NewActor("user-stranger", shared.RoleUser)
	admin    = shared.NewActor("user-admin", shared.RoleAdmin)
)

func newService() *league.Service {
	return league.NewService(inmemory.NewStore().League())
}

func TestCreateTeamSetsOwnership(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	team, err := svc.CreateTeam(ctx, owner, "  Tigers ")
	require.NoError(t, err)
	assert.Equal(t, "Tigers", team.Name)
	assert.Equal(t, owner.ID, team.CreatedBy)
	assert.Equal(t, league.StringList{owner.ID}, team.Administrators)

	loaded, err := svc.GetTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, team.ID, loaded.ID)

	_, err = svc.CreateTeam(ctx, owner, " ")
	assert.ErrorIs(t, err, shared.ErrInvalidArgument)

	_, err = svc.GetTeam(ctx, "missing")
	assert.ErrorIs(t, err, league.ErrTeamNotFound)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateMatchInsideCompetitionRequiresCompetitionApprover(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	home, err := svc.CreateTeam(ctx, stranger, "Home")
	require.NoError(t, err)
	away, err := svc.CreateTeam(ctx, stranger, "Away")
	require.NoError(t, err)
	competition, err := svc.CreateCompetition(ctx, owner, "Cup")
	require.NoError(t, err)

	_, err = svc.CreateMatch(ctx, stranger, league.CreateMatchInput{
		CompetitionID: &competition.ID,
		HomeTeamID:    home.ID,
		AwayTeamID:    away.ID,
	})
	assert.ErrorIs(t, err, shared.ErrForbidden)

	match, err := svc.CreateMatch(ctx, owner, league.CreateMatchInput{
		CompetitionID: &competition.ID,
		HomeTeamID:    home.ID,
		AwayTeamID:    away.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, league.MatchStatusScheduled, match.Status)
	assert.False(t, match.IsStandalone())

	_, err = svc.CreateMatch(ctx, owner, league.CreateMatchInput{HomeTeamID: home.ID, AwayTeamID: home.ID})
	assert.ErrorIs(t, err, league.ErrSameTeams)

	standalone, err := svc.CreateMatch(ctx, stranger, league.CreateMatchInput{HomeTeamID: home.ID, AwayTeamID: away.ID})
	require.NoError(t, err)
	assert.True(t, standalone.IsStandalone())
}

func TestAddMatchSetRejectsDuplicateNumber(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	match := standaloneMatch(t, svc)

	_, err := svc.AddMatchSet(ctx, owner, match.ID, league.CreateMatchSetInput{Number: 1, HomePoints: 25, AwayPoints: 20})
	require.NoError(t, err)

	_, err = svc.AddMatchSet(ctx, owner, match.ID, league.CreateMatchSetInput{Number: 1, HomePoints: 10, AwayPoints: 25})
	assert.ErrorIs(t, err, league.ErrSetNumberTaken)
	assert.ErrorIs(t, err, shared.ErrConflict)

	_, err = svc.AddMatchSet(ctx, stranger, match.ID, league.CreateMatchSetInput{Number: 2})
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, err = svc.AddMatchSet(ctx, owner, match.ID, league.CreateMatchSetInput{Number: 0})
	assert.ErrorIs(t, err, league.ErrInvalidSetScore)
}

func TestAddStatsChecksTeamAndUniqueness(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	match := standaloneMatch(t, svc)
	player, err := svc.CreatePlayer(ctx, stranger, "Ana")
	require.NoError(t, err)

	_, err = svc.AddPlayerStats(ctx, owner, match.ID, league.CreatePlayerStatsInput{
		PlayerID: player.ID,
		TeamID:   match.HomeTeamID,
		StatLine: league.StatLine{Points: 12, Aces: 2},
	})
	require.NoError(t, err)

	_, err = svc.AddPlayerStats(ctx, owner, match.ID, league.CreatePlayerStatsInput{PlayerID: player.ID, TeamID: match.HomeTeamID})
	assert.ErrorIs(t, err, league.ErrStatsAlreadyRecorded)

	_, err = svc.AddTeamStats(ctx, owner, match.ID, league.CreateTeamStatsInput{TeamID: "other-team"})
	assert.ErrorIs(t, err, league.ErrTeamNotInMatch)

	stats, err := svc.AddTeamStats(ctx, admin, match.ID, league.CreateTeamStatsInput{TeamID: match.AwayTeamID, StatLine: league.StatLine{Points: 70}})
	require.NoError(t, err)
	assert.Equal(t, 70, stats.Points)
}

func TestAddAdministrator(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	team, err := svc.CreateTeam(ctx, owner, "Tigers")
	require.NoError(t, err)

	_, err = svc.AddAdministrator(ctx, stranger, league.KindTeam, team.ID, stranger.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	admins, err := svc.AddAdministrator(ctx, owner, league.KindTeam, team.ID, "user-coach")
	require.NoError(t, err)
	assert.Equal(t, league.StringList{owner.ID, "user-coach"}, admins)

	admins, err = svc.AddAdministrator(ctx, admin, league.KindTeam, team.ID, "user-coach")
	require.NoError(t, err)
	assert.Len(t, admins, 2)

	loaded, err := svc.GetTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.True(t, loaded.IsApprover("user-coach"))

	_, err = svc.AddAdministrator(ctx, owner, league.KindMatchSet, team.ID, "x")
	assert.ErrorIs(t, err, league.ErrUnknownEntityKind)
}

func standaloneMatch(t *testing.T, svc *league.Service) *league.Match {
	t.Helper()
	ctx := context.Background()
	home, err := svc.CreateTeam(ctx, stranger, "Home")
	require.NoError(t, err)
	away, err := svc.CreateTeam(ctx, stranger, "Away")
	require.NoError(t, err)
	match, err := svc.CreateMatch(ctx, owner, league.CreateMatchInput{HomeTeamID: home.ID, AwayTeamID: away.ID})
	require.NoError(t, err)
	return match
}
