package relational

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"league-app-go/internal/domain/authz"
	"league-app-go/internal/domain/editrequest"
	"league-app-go/internal/domain/league"
	"league-app-go/internal/domain/policy"
	"league-app-go/internal/domain/relationship"
	"league-app-go/internal/domain/shared"
	"league-app-go/internal/domain/user"
	"league-app-go/internal/lock"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(Models()...))
	return NewStore(db)
}

func newRelationship(id string, state league.RelationshipState) *league.Relationship {
	rel := &league.Relationship{
		ID:        id,
		Kind:      league.RelationshipTeamPlayer,
		OwnerAID:  "team",
		OwnerBID:  "player",
		Origin:    league.OriginOwnerA,
		State:     state,
		ValidFrom: time.Now().UTC(),
		Ownership: league.NewOwnership("u1"),
	}
	rel.SyncOpenPairKey()
	return rel
}

func TestOpenPairKeyIndex(t *testing.T) {
	repo := openStore(t).Relationships()
	ctx := context.Background()

	first := newRelationship("r1", league.StatePending)
	require.NoError(t, repo.CreateRelationship(ctx, first))

	second := newRelationship("r2", league.StatePending)
	assert.ErrorIs(t, repo.CreateRelationship(ctx, second), league.ErrOpenRelationshipExists)

	first.State = league.StateAccepted
	first.SyncOpenPairKey()
	require.NoError(t, repo.UpdateRelationship(ctx, first, league.StatePending))
	assert.ErrorIs(t, repo.UpdateRelationship(ctx, first, league.StatePending), league.ErrRelationshipStateChanged)

	first.State = league.StateEnded
	first.SyncOpenPairKey()
	require.NoError(t, repo.UpdateRelationship(ctx, first, league.StateAccepted))
	require.NoError(t, repo.CreateRelationship(ctx, second))

	third := newRelationship("r3", league.StateEnded)
	require.NoError(t, repo.CreateRelationship(ctx, third))

	assert.ErrorIs(t, repo.DeleteRelationship(ctx, "r2", league.StateAccepted), league.ErrRelationshipStateChanged)
	require.NoError(t, repo.DeleteRelationship(ctx, "r2", league.StatePending))
	assert.ErrorIs(t, repo.DeleteRelationship(ctx, "r2", league.StatePending), league.ErrRelationshipNotFound)

	exists, err := repo.ExistsRelationship(ctx, league.PairQuery{
		Kind:     league.RelationshipTeamPlayer,
		OwnerAID: "team",
		OwnerBID: "player",
		States:   []league.RelationshipState{league.StatePending, league.StateAccepted},
	})
	require.NoError(t, err)
	assert.False(t, exists)

	items, total, err := repo.ListRelationships(ctx, league.RelationshipFilter{OwnerAID: "team", State: league.StateEnded})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 2)

	stored, err := repo.GetRelationship(ctx, "r1")
	require.NoError(t, err)
	assert.Nil(t, stored.OpenPairKey)
	assert.Equal(t, league.StringList{"u1"}, stored.Administrators)
}

func TestEditRequestOptimisticVersion(t *testing.T) {
	repo := openStore(t).EditRequests()
	ctx := context.Background()
	req := &editrequest.EditRequest{
		ID:           "e1",
		ChangeType:   policy.ChangeMatchResult,
		ProposedData: editrequest.Payload(`{"homeScore":3}`),
		State:        editrequest.StatePending,
		ApprovedBy:   league.StringList{},
		CreatedBy:    "u1",
		Version:      1,
	}
	require.NoError(t, repo.CreateEditRequest(ctx, req))

	first, err := repo.GetEditRequest(ctx, "e1")
	require.NoError(t, err)
	second, err := repo.GetEditRequest(ctx, "e1")
	require.NoError(t, err)

	first.ApprovedBy = first.ApprovedBy.With("u2")
	require.NoError(t, repo.UpdateEditRequest(ctx, first, 1))
	assert.Equal(t, 2, first.Version)

	second.ApprovedBy = second.ApprovedBy.With("u3")
	assert.ErrorIs(t, repo.UpdateEditRequest(ctx, second, 1), editrequest.ErrStaleVersion)
	assert.Equal(t, 1, second.Version)

	stored, err := repo.GetEditRequest(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, league.StringList{"u2"}, stored.ApprovedBy)
	assert.JSONEq(t, `{"homeScore":3}`, string(stored.ProposedData))

	_, err = repo.GetEditRequest(ctx, "missing")
	assert.ErrorIs(t, err, editrequest.ErrEditRequestNotFound)

	items, total, err := repo.ListEditRequests(ctx, editrequest.ListFilter{CreatedBy: "u1", State: editrequest.StatePending})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, items, 1)
}

func TestEditRequestTransactionCoversRelationships(t *testing.T) {
	store := openStore(t)
	repo := store.EditRequests()
	ctx := context.Background()
	boom := errors.New("boom")

	err := repo.Transaction(ctx, func(tx editrequest.Repository) error {
		require.NoError(t, tx.Relationships().CreateRelationship(ctx, newRelationship("r1", league.StateAccepted)))
		_, err := tx.GetRelationship(ctx, "r1")
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.Relationships().GetRelationship(ctx, "r1")
	assert.ErrorIs(t, err, league.ErrRelationshipNotFound)
}

func TestLeagueUniqueRowsAndAdministrators(t *testing.T) {
	repo := openStore(t).League()
	ctx := context.Background()

	require.NoError(t, repo.CreateTeam(ctx, &league.Team{ID: "t1", Name: "Tigers", Ownership: league.NewOwnership("u1")}))
	require.NoError(t, repo.SetAdministrators(ctx, league.KindTeam, "t1", league.StringList{"u1", "u2"}))
	team, err := repo.GetTeam(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, league.StringList{"u1", "u2"}, team.Administrators)

	assert.ErrorIs(t, repo.SetAdministrators(ctx, league.KindTeam, "missing", league.StringList{"u1"}), league.ErrTeamNotFound)
	assert.ErrorIs(t, repo.SetAdministrators(ctx, league.KindMatchSet, "x", nil), league.ErrUnknownEntityKind)

	require.NoError(t, repo.CreateMatchSet(ctx, &league.MatchSet{ID: "s1", MatchID: "m1", Number: 1, CreatedBy: "u1"}))
	assert.ErrorIs(t, repo.CreateMatchSet(ctx, &league.MatchSet{ID: "s2", MatchID: "m1", Number: 1, CreatedBy: "u1"}), league.ErrSetNumberTaken)

	require.NoError(t, repo.CreateTeamMatchStats(ctx, &league.TeamMatchStats{ID: "ts1", MatchID: "m1", TeamID: "t1", CreatedBy: "u1"}))
	assert.ErrorIs(t, repo.CreateTeamMatchStats(ctx, &league.TeamMatchStats{ID: "ts2", MatchID: "m1", TeamID: "t1", CreatedBy: "u1"}), league.ErrStatsAlreadyRecorded)

	assert.ErrorIs(t, repo.UpdateMatch(ctx, &league.Match{ID: "missing"}), league.ErrMatchNotFound)
}

func TestUpsertProfileKeepsRole(t *testing.T) {
	repo := openStore(t).Users()
	ctx := context.Background()
	email := "ana@example.com"

	require.NoError(t, repo.UpsertProfile(ctx, &user.Profile{UserID: "u1", Email: &email}))
	require.NoError(t, repo.SetRole(ctx, "u1", shared.RoleAdmin))
	require.NoError(t, repo.UpsertProfile(ctx, &user.Profile{UserID: "u1", Role: shared.RoleUser}))

	profile, err := repo.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, shared.RoleAdmin, profile.Role)
	require.NotNil(t, profile.Email)
	assert.Equal(t, email, *profile.Email)

	assert.ErrorIs(t, repo.SetRole(ctx, "missing", shared.RoleAdmin), user.ErrProfileNotFound)
}

func TestRelationshipLifecycleOnSQL(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	policies, err := policy.Default()
	require.NoError(t, err)

	leagueSvc := league.NewService(store.League())
	team, err := leagueSvc.CreateTeam(ctx, shared.NewActor("u1", ""), "Tigers")
	require.NoError(t, err)
	player, err := leagueSvc.CreatePlayer(ctx, shared.NewActor("u2", ""), "Ana")
	require.NoError(t, err)

	svc := relationship.NewService(store.Relationships(), relationship.Deps{
		Resolver: authz.NewResolver(policies),
		Locker:   lock.NewLocal(),
	})
	rel, err := svc.Request(ctx, shared.NewActor("u1", ""), relationship.RequestInput{
		Kind:     league.RelationshipTeamPlayer,
		OwnerAID: team.ID,
		OwnerBID: player.ID,
		Origin:   league.OriginOwnerA,
	})
	require.NoError(t, err)

	approved, err := svc.Approve(ctx, shared.NewActor("u2", ""), rel.ID)
	require.NoError(t, err)
	assert.Equal(t, league.StateAccepted, approved.State)

	ended, err := svc.End(ctx, shared.NewActor("u1", ""), rel.ID, "season over")
	require.NoError(t, err)
	assert.Equal(t, league.StateEnded, ended.State)

	history, err := svc.History(ctx, rel.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, league.ActionEnded, history[2].Action)
}

func TestPostgresErrorClassification(t *testing.T) {
	malformed := fmt.Errorf("query: %w", &pgconn.PgError{Code: "22P02", Message: "invalid input syntax for type uuid"})
	duplicate := &pgconn.PgError{Code: "23505"}

	assert.True(t, isMalformedID(malformed))
	assert.False(t, isMalformedID(duplicate))
	assert.False(t, isMalformedID(errors.New("UNIQUE constraint failed: teams.id")))

	assert.True(t, isUniqueViolation(duplicate))
	assert.False(t, isUniqueViolation(malformed))
}
