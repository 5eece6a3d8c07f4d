package authz_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"league-app-go/internal/domain/authz"
	"league-app-go/internal/domain/league"
	"league-app-go/internal/domain/policy"
	"league-app-go/internal/domain/relationship"
	"league-app-go/internal/domain/shared"
	"league-app-go/internal/repository/inmemory"
)

type world struct {
	store       *inmemory.Store
	resolver    *authz.Resolver
	team        *league.Team
	player      *league.Player
	competition *league.Competition
	cupMatch    *league.Match
	friendly    *league.Match
	set         *league.MatchSet
	teamStats   *league.TeamMatchStats
}

func newWorld(t *testing.T) *world {
	t.Helper()
	ctx := context.Background()
	policies, err := policy.Default()
	require.NoError(t, err)

	store := inmemory.NewStore()
	svc := league.NewService(store.League())
	w := &world{store: store, resolver: authz.NewResolver(policies)}

	w.team, err = svc.CreateTeam(ctx, shared.NewActor("team-admin", ""), "Tigers")
	require.NoError(t, err)
	away, err := svc.CreateTeam(ctx, shared.NewActor("away-admin", ""), "Lions")
	require.NoError(t, err)
	w.player, err = svc.CreatePlayer(ctx, shared.NewActor("player-admin", ""), "Ana")
	require.NoError(t, err)
	w.competition, err = svc.CreateCompetition(ctx, shared.NewActor("comp-admin", ""), "Cup")
	require.NoError(t, err)
	_, err = svc.AddAdministrator(ctx, shared.NewActor("comp-admin", ""), league.KindCompetition, w.competition.ID, "comp-admin-2")
	require.NoError(t, err)

	w.cupMatch, err = svc.CreateMatch(ctx, shared.NewActor("comp-admin", ""), league.CreateMatchInput{
		CompetitionID: &w.competition.ID,
		HomeTeamID:    w.team.ID,
		AwayTeamID:    away.ID,
	})
	require.NoError(t, err)
	w.friendly, err = svc.CreateMatch(ctx, shared.NewActor("referee", ""), league.CreateMatchInput{
		HomeTeamID: w.team.ID,
		AwayTeamID: away.ID,
	})
	require.NoError(t, err)

	w.set, err = svc.AddMatchSet(ctx, shared.NewActor("comp-admin", ""), w.cupMatch.ID, league.CreateMatchSetInput{Number: 1, HomePoints: 25, AwayPoints: 21})
	require.NoError(t, err)
	w.teamStats, err = svc.AddTeamStats(ctx, shared.NewActor("referee", ""), w.friendly.ID, league.CreateTeamStatsInput{TeamID: w.team.ID})
	require.NoError(t, err)
	return w
}

func TestResolveWalksTheGraph(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	reader := w.store.League()

	tests := []struct {
		name  string
		kind  league.EntityKind
		id    string
		role  policy.Role
		users []string
	}{
		{"team", league.KindTeam, w.team.ID, policy.RoleTeamAdmin, []string{"team-admin"}},
		{"player", league.KindPlayer, w.player.ID, policy.RolePlayerAdmin, []string{"player-admin"}},
		{"match in competition", league.KindMatch, w.cupMatch.ID, policy.RoleCompetitionAdmin, []string{"comp-admin", "comp-admin-2"}},
		{"standalone match", league.KindMatch, w.friendly.ID, policy.RoleMatchAdmin, []string{"referee"}},
		{"set", league.KindMatchSet, w.set.ID, policy.RoleCompetitionAdmin, []string{"comp-admin", "comp-admin-2"}},
		{"team stats of standalone match", league.KindTeamMatchStats, w.teamStats.ID, policy.RoleMatchAdmin, []string{"referee"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := w.resolver.Resolve(ctx, reader, tt.kind, tt.id)
			require.NoError(t, err)
			require.Len(t, res.Sides, 1)
			assert.Equal(t, tt.role, res.Sides[0].Role)
			assert.Equal(t, tt.users, res.Sides[0].Users)
		})
	}
}

func TestResolveRelationshipHasTwoSides(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	rels := relationship.NewService(w.store.Relationships(), relationship.Deps{Resolver: w.resolver})
	rel, err := rels.Request(ctx, shared.NewActor("team-admin", ""), relationship.RequestInput{
		Kind:     league.RelationshipTeamCompetition,
		OwnerAID: w.team.ID,
		OwnerBID: w.competition.ID,
		Origin:   league.OriginOwnerA,
	})
	require.NoError(t, err)

	res, err := w.resolver.ResolveApprovers(ctx, w.store.League(), policy.ChangeTeamCompetitionContract, rel.ID)
	require.NoError(t, err)
	require.Len(t, res.Sides, 2)
	assert.Equal(t, policy.RoleTeamAdmin, res.Sides[0].Role)
	assert.Equal(t, policy.RoleCompetitionAdmin, res.Sides[1].Role)
	assert.ElementsMatch(t, []string{"team-admin", "comp-admin", "comp-admin-2"}, res.All())

	excluding, err := w.resolver.ResolveApproversExcludingRequester(ctx, w.store.League(), policy.ChangeTeamCompetitionContract, rel.ID, "team-admin")
	require.NoError(t, err)
	require.Len(t, excluding.Sides, 1)
	assert.Equal(t, league.KindCompetition, excluding.Sides[0].Kind)
}

func TestResolveApproversErrors(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	reader := w.store.League()

	_, err := w.resolver.ResolveApprovers(ctx, reader, policy.ChangeType("ghost"), w.team.ID)
	assert.ErrorIs(t, err, shared.ErrUnsupportedChangeType)

	_, err = w.resolver.ResolveApprovers(ctx, reader, policy.ChangeRelationshipCreate, w.team.ID)
	assert.ErrorIs(t, err, authz.ErrTargetRequired)

	_, err = w.resolver.ResolveApprovers(ctx, reader, policy.ChangeMatchResult, "missing")
	assert.ErrorIs(t, err, league.ErrMatchNotFound)

	_, err = w.resolver.Resolve(ctx, reader, league.EntityKind("season"), "x")
	assert.ErrorIs(t, err, authz.ErrNoResolver)
}

func TestRegisterExtendsGraphAndBoundsDepth(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	seasonKind := league.EntityKind("season")
	w.resolver.Register(seasonKind, func(ctx context.Context, walker *authz.Walker, id string) ([]authz.Side, error) {
		return walker.Resolve(ctx, league.KindCompetition, w.competition.ID)
	})
	res, err := w.resolver.Resolve(ctx, w.store.League(), seasonKind, "2026")
	require.NoError(t, err)
	assert.True(t, res.Contains("comp-admin"))

	loopKind := league.EntityKind("loop")
	w.resolver.Register(loopKind, func(ctx context.Context, walker *authz.Walker, id string) ([]authz.Side, error) {
		return walker.Resolve(ctx, loopKind, id)
	})
	_, err = w.resolver.Resolve(ctx, w.store.League(), loopKind, "x")
	assert.ErrorIs(t, err, authz.ErrResolutionTooDeep)
}

func TestAuthorize(t *testing.T) {
	res := authz.Resolution{Sides: []authz.Side{{Role: policy.RoleTeamAdmin, Users: []string{"u1"}}}}

	assert.NoError(t, authz.Authorize(res, shared.NewActor("u1", shared.RoleUser)))
	assert.NoError(t, authz.Authorize(res, shared.NewActor("root", shared.RoleAdmin)))
	assert.ErrorIs(t, authz.Authorize(res, shared.NewActor("u2", shared.RoleUser)), shared.ErrForbidden)
}
