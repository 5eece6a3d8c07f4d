package authz

import (
	"context"
	"fmt"

	"league-app-go/internal/domain/league"
	"league-app-go/internal/domain/policy"
	"league-app-go/internal/domain/shared"
)

const defaultMaxDepth = 8

// NodeFunc resolves the approver sides of one entity kind. Parent lookups go
// through the walker so recursion stays bounded.
type NodeFunc func(ctx context.Context, w *Walker, id string) ([]Side, error)

// Resolver computes who may approve changes, by walking a graph of entity
// kinds. Every call re-reads the store; nothing is cached.
type Resolver struct {
	policies *policy.Table
	graph    map[league.EntityKind]NodeFunc
	maxDepth int
}

func NewResolver(policies *policy.Table) *Resolver {
	r := &Resolver{
		policies: policies,
		graph:    make(map[league.EntityKind]NodeFunc),
		maxDepth: defaultMaxDepth,
	}
	r.Register(league.KindTeam, ownerNode(league.KindTeam))
	r.Register(league.KindPlayer, ownerNode(league.KindPlayer))
	r.Register(league.KindCompetition, ownerNode(league.KindCompetition))
	r.Register(league.KindMatch, matchNode)
	r.Register(league.KindMatchSet, setNode)
	r.Register(league.KindPlayerMatchStats, playerStatsNode)
	r.Register(league.KindTeamMatchStats, teamStatsNode)
	r.Register(league.KindRelationship, relationshipNode)
	return r
}

// Register adds or replaces the resolver for kind.
func (r *Resolver) Register(kind league.EntityKind, fn NodeFunc) {
	r.graph[kind] = fn
}

// Resolve returns the approver sides of the entity kind/id.
func (r *Resolver) Resolve(ctx context.Context, src league.Reader, kind league.EntityKind, id string) (Resolution, error) {
	w := &Walker{resolver: r, src: src}
	sides, err := w.Resolve(ctx, kind, id)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{Sides: sides}, nil
}

// ResolveApprovers returns every side empowered to approve changeType on
// targetID, restricted to the policy's approver roles.
func (r *Resolver) ResolveApprovers(ctx context.Context, src league.Reader, changeType policy.ChangeType, targetID string) (Resolution, error) {
	p, ok := r.policies.Get(changeType)
	if !ok {
		return Resolution{}, fmt.Errorf("%q: %w", changeType, ErrUnsupportedChangeType)
	}
	if !p.HasTarget() {
		return Resolution{}, fmt.Errorf("%s: %w", changeType, ErrTargetRequired)
	}
	res, err := r.Resolve(ctx, src, p.TargetKind, targetID)
	if err != nil {
		return Resolution{}, err
	}
	return res.WithRoles(p.ApproverRoles), nil
}

// ResolveApproversExcludingRequester returns only the sides requesterID does
// not belong to.
func (r *Resolver) ResolveApproversExcludingRequester(ctx context.Context, src league.Reader, changeType policy.ChangeType, targetID, requesterID string) (Resolution, error) {
	res, err := r.ResolveApprovers(ctx, src, changeType, targetID)
	if err != nil {
		return Resolution{}, err
	}
	return res.Excluding(requesterID), nil
}

// ResolveOwners resolves the two candidate owners of a relationship that does
// not exist yet.
func (r *Resolver) ResolveOwners(ctx context.Context, src league.Reader, kind league.RelationshipKind, ownerAID, ownerBID string) (Resolution, error) {
	kindA, kindB := kind.OwnerKinds()
	if kindA == "" {
		return Resolution{}, league.ErrUnknownEntityKind
	}
	w := &Walker{resolver: r, src: src}
	sidesA, err := w.Resolve(ctx, kindA, ownerAID)
	if err != nil {
		return Resolution{}, err
	}
	sidesB, err := w.Resolve(ctx, kindB, ownerBID)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{Sides: append(sidesA, sidesB...)}, nil
}

// Authorize passes global administrators and members of res.
func Authorize(res Resolution, actor shared.Actor) error {
	if actor.IsGlobalAdmin() || res.Contains(actor.ID) {
		return nil
	}
	return ErrNotApprover
}

// Walker carries the store and depth of one resolution.
type Walker struct {
	resolver *Resolver
	src      league.Reader
	depth    int
}

func (w *Walker) Reader() league.Reader {
	return w.src
}

func (w *Walker) Resolve(ctx context.Context, kind league.EntityKind, id string) ([]Side, error) {
	fn, ok := w.resolver.graph[kind]
	if !ok {
		return nil, fmt.Errorf("%s: %w", kind, ErrNoResolver)
	}
	if w.depth >= w.resolver.maxDepth {
		return nil, ErrResolutionTooDeep
	}
	w.depth++
	defer func() { w.depth-- }()
	return fn(ctx, w, id)
}

func ownerNode(kind league.EntityKind) NodeFunc {
	return func(ctx context.Context, w *Walker, id string) ([]Side, error) {
		ownership, err := league.LoadOwnership(ctx, w.Reader(), kind, id)
		if err != nil {
			return nil, err
		}
		return []Side{{
			Role:     policy.RoleForKind(kind),
			Kind:     kind,
			EntityID: id,
			Users:    ownership.Approvers(),
		}}, nil
	}
}

// matchNode defers to the competition, or to the match itself when standalone.
func matchNode(ctx context.Context, w *Walker, id string) ([]Side, error) {
	match, err := w.Reader().GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !match.IsStandalone() {
		return w.Resolve(ctx, league.KindCompetition, *match.CompetitionID)
	}
	return []Side{{
		Role:     policy.RoleMatchAdmin,
		Kind:     league.KindMatch,
		EntityID: match.ID,
		Users:    match.Approvers(),
	}}, nil
}

func setNode(ctx context.Context, w *Walker, id string) ([]Side, error) {
	set, err := w.Reader().GetMatchSet(ctx, id)
	if err != nil {
		return nil, err
	}
	return w.Resolve(ctx, league.KindMatch, set.MatchID)
}

func playerStatsNode(ctx context.Context, w *Walker, id string) ([]Side, error) {
	stats, err := w.Reader().GetPlayerMatchStats(ctx, id)
	if err != nil {
		return nil, err
	}
	return w.Resolve(ctx, league.KindMatch, stats.MatchID)
}

func teamStatsNode(ctx context.Context, w *Walker, id string) ([]Side, error) {
	stats, err := w.Reader().GetTeamMatchStats(ctx, id)
	if err != nil {
		return nil, err
	}
	return w.Resolve(ctx, league.KindMatch, stats.MatchID)
}

func relationshipNode(ctx context.Context, w *Walker, id string) ([]Side, error) {
	rel, err := w.Reader().GetRelationship(ctx, id)
	if err != nil {
		return nil, err
	}
	sidesA, err := w.Resolve(ctx, rel.OwnerKind(league.OriginOwnerA), rel.OwnerAID)
	if err != nil {
		return nil, err
	}
	sidesB, err := w.Resolve(ctx, rel.OwnerKind(league.OriginOwnerB), rel.OwnerBID)
	if err != nil {
		return nil, err
	}
	return append(sidesA, sidesB...), nil
}
