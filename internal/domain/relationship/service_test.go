package relationship_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"league-app-go/internal/domain/authz"
	"league-app-go/internal/domain/league"
	"league-app-go/internal/domain/policy"
	"league-app-go/internal/domain/relationship"
	"league-app-go/internal/domain/shared"
	"league-app-go/internal/events"
	"league-app-go/internal/lock"
	"league-app-go/internal/repository/inmemory"
)

var (
	teamAdmin   = shared.NewActor("u1", shared.RoleUser)
	playerAdmin = shared.NewActor("u2", shared.RoleUser)
	stranger    = shared.NewActor("u9", shared.RoleUser)
	globalAdmin = shared.NewActor("root", shared.RoleAdmin)
)

type fixture struct {
	svc       *relationship.Service
	published *events.Recorder
	team      *league.Team
	player    *league.Player
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	policies, err := policy.Default()
	require.NoError(t, err)

	store := inmemory.NewStore()
	leagueSvc := league.NewService(store.League())
	team, err := leagueSvc.CreateTeam(ctx, teamAdmin, "Tigers")
	require.NoError(t, err)
	player, err := leagueSvc.CreatePlayer(ctx, playerAdmin, "Ana")
	require.NoError(t, err)

	published := &events.Recorder{}
	svc := relationship.NewService(store.Relationships(), relationship.Deps{
		Resolver:  authz.NewResolver(policies),
		Locker:    lock.NewLocal(),
		Publisher: published,
	})
	return &fixture{svc: svc, published: published, team: team, player: player}
}

func (f *fixture) request(t *testing.T, actor shared.Actor, origin league.Origin) *league.Relationship {
	t.Helper()
	rel, err := f.svc.Request(context.Background(), actor, f.input(origin))
	require.NoError(t, err)
	return rel
}

func (f *fixture) input(origin league.Origin) relationship.RequestInput {
	return relationship.RequestInput{
		Kind:     league.RelationshipTeamPlayer,
		OwnerAID: f.team.ID,
		OwnerBID: f.player.ID,
		Origin:   origin,
	}
}

func TestRequestThenCounterpartyApproves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rel := f.request(t, teamAdmin, league.OriginOwnerA)
	assert.Equal(t, league.StatePending, rel.State)
	assert.False(t, rel.Active)
	assert.Equal(t, teamAdmin.ID, rel.RequestedBy)

	_, err := f.svc.Approve(ctx, teamAdmin, rel.ID)
	assert.ErrorIs(t, err, relationship.ErrNotCounterparty)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	approved, err := f.svc.Approve(ctx, playerAdmin, rel.ID)
	require.NoError(t, err)
	assert.Equal(t, league.StateAccepted, approved.State)
	assert.True(t, approved.Active)
	assert.NotNil(t, approved.AcceptedAt)

	_, err = f.svc.Approve(ctx, playerAdmin, rel.ID)
	assert.ErrorIs(t, err, relationship.ErrNotPending)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	assert.Equal(t, []string{"relationship.requested", "relationship.approved"}, f.published.Types())
}

func TestRequestRejectsDuplicatesAndForeignOrigin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.request(t, teamAdmin, league.OriginOwnerA)

	_, err := f.svc.Request(ctx, playerAdmin, f.input(league.OriginOwnerB))
	assert.ErrorIs(t, err, league.ErrOpenRelationshipExists)
	assert.ErrorIs(t, err, shared.ErrConflict)

	_, err = f.svc.Request(ctx, stranger, f.input(league.OriginOwnerA))
	assert.ErrorIs(t, err, relationship.ErrNotOriginSide)

	_, err = f.svc.Request(ctx, teamAdmin, f.input(league.OriginOwnerB))
	assert.ErrorIs(t, err, relationship.ErrNotOriginSide)

	_, err = f.svc.Request(ctx, teamAdmin, relationship.RequestInput{Kind: "coach", OwnerAID: f.team.ID, OwnerBID: f.player.ID, Origin: league.OriginOwnerA})
	assert.ErrorIs(t, err, shared.ErrInvalidArgument)

	_, err = f.svc.Request(ctx, teamAdmin, relationship.RequestInput{Kind: league.RelationshipTeamPlayer, OwnerAID: f.team.ID, OwnerBID: "missing", Origin: league.OriginOwnerA})
	assert.ErrorIs(t, err, league.ErrPlayerNotFound)
}

func TestRejectDeletesButKeepsHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rel := f.request(t, teamAdmin, league.OriginOwnerA)

	_, err := f.svc.Reject(ctx, stranger, rel.ID, "no")
	assert.ErrorIs(t, err, relationship.ErrNotParticipant)

	rejected, err := f.svc.Reject(ctx, playerAdmin, rel.ID, " not interested ")
	require.NoError(t, err)
	assert.Equal(t, league.StateRejected, rejected.State)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "not interested", *rejected.RejectionReason)

	_, err = f.svc.Get(ctx, rel.ID)
	assert.ErrorIs(t, err, league.ErrRelationshipNotFound)

	history, err := f.svc.History(ctx, rel.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, league.ActionRequested, history[0].Action)
	assert.Equal(t, league.ActionRejected, history[1].Action)
	require.NotNil(t, history[1].Reason)
	assert.Equal(t, "not interested", *history[1].Reason)

	again := f.request(t, teamAdmin, league.OriginOwnerA)
	assert.NotEqual(t, rel.ID, again.ID)
}

func TestCancelOnlyByRequestingSide(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rel := f.request(t, teamAdmin, league.OriginOwnerA)

	_, err := f.svc.Cancel(ctx, playerAdmin, rel.ID, "")
	assert.ErrorIs(t, err, relationship.ErrNotRequester)

	cancelled, err := f.svc.Cancel(ctx, teamAdmin, rel.ID, "")
	require.NoError(t, err)
	assert.Equal(t, league.StateCancelled, cancelled.State)
	assert.Nil(t, cancelled.OpenPairKey)

	_, err = f.svc.Cancel(ctx, teamAdmin, rel.ID, "")
	assert.ErrorIs(t, err, league.ErrRelationshipNotFound)
}

func TestEndKeepsRecordAndFreesPair(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rel := f.request(t, teamAdmin, league.OriginOwnerA)

	_, err := f.svc.End(ctx, teamAdmin, rel.ID, "")
	assert.ErrorIs(t, err, relationship.ErrNotAccepted)

	_, err = f.svc.Approve(ctx, playerAdmin, rel.ID)
	require.NoError(t, err)

	_, err = f.svc.End(ctx, stranger, rel.ID, "")
	assert.ErrorIs(t, err, relationship.ErrNotParticipant)

	ended, err := f.svc.End(ctx, playerAdmin, rel.ID, "transfer")
	require.NoError(t, err)
	assert.Equal(t, league.StateEnded, ended.State)
	assert.False(t, ended.Active)
	require.NotNil(t, ended.EndedAt)
	require.NotNil(t, ended.ValidTo)
	assert.Equal(t, *ended.EndedAt, *ended.ValidTo)

	stored, err := f.svc.Get(ctx, rel.ID)
	require.NoError(t, err)
	assert.Equal(t, league.StateEnded, stored.State)

	_, err = f.svc.End(ctx, playerAdmin, rel.ID, "")
	assert.ErrorIs(t, err, relationship.ErrNotAccepted)

	f.request(t, playerAdmin, league.OriginOwnerB)
}

func TestAmendOnlyAcceptedOrEnded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rel := f.request(t, teamAdmin, league.OriginOwnerA)
	shirt := 10

	_, err := f.svc.Amend(ctx, teamAdmin, rel.ID, league.ContractChanges{ShirtNumber: &shirt})
	assert.ErrorIs(t, err, relationship.ErrNotAmendable)

	_, err = f.svc.Approve(ctx, globalAdmin, rel.ID)
	require.NoError(t, err)

	_, err = f.svc.Amend(ctx, teamAdmin, rel.ID, league.ContractChanges{})
	assert.ErrorIs(t, err, relationship.ErrNothingToAmend)

	amended, err := f.svc.Amend(ctx, teamAdmin, rel.ID, league.ContractChanges{ShirtNumber: &shirt})
	require.NoError(t, err)
	require.NotNil(t, amended.ShirtNumber)
	assert.Equal(t, 10, *amended.ShirtNumber)
	assert.Equal(t, league.StateAccepted, amended.State)

	before := amended.ValidFrom.Add(-1)
	_, err = f.svc.Amend(ctx, teamAdmin, rel.ID, league.ContractChanges{ValidTo: &before})
	assert.ErrorIs(t, err, league.ErrInvalidValidityWindow)
}

func TestListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rel := f.request(t, teamAdmin, league.OriginOwnerA)

	items, total, err := f.svc.List(ctx, league.RelationshipFilter{OwnerAID: f.team.ID, State: league.StatePending})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, rel.ID, items[0].ID)

	items, total, err = f.svc.List(ctx, league.RelationshipFilter{State: league.StateAccepted})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)

	_, _, err = f.svc.List(ctx, league.RelationshipFilter{Kind: "coach"})
	assert.ErrorIs(t, err, relationship.ErrInvalidKind)
}

func TestConcurrentApprovalsHaveOneWinner(t *testing.T) {
	f := newFixture(t)
	rel := f.request(t, teamAdmin, league.OriginOwnerA)

	const workers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		failures []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Approve(context.Background(), playerAdmin, rel.ID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				accepted++
				return
			}
			failures = append(failures, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	require.Len(t, failures, workers-1)
	for _, err := range failures {
		assert.True(t, errors.Is(err, shared.ErrInvalidState), "unexpected error %v", err)
	}
}

func TestConcurrentRequestsForOnePair(t *testing.T) {
	f := newFixture(t)

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		errs    []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Request(context.Background(), teamAdmin, f.input(league.OriginOwnerA))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				created++
				return
			}
			errs = append(errs, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	for _, err := range errs {
		assert.ErrorIs(t, err, shared.ErrConflict)
	}
}
