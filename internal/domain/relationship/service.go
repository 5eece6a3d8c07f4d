package relationship

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"league-app-go/internal/domain/authz"
	"league-app-go/internal/domain/league"
	"league-app-go/internal/domain/shared"
	"league-app-go/internal/metrics"
	"league-app-go/pkg/logger"
)

type Deps struct {
	Resolver  *authz.Resolver
	Locker    shared.Locker
	Publisher shared.Publisher
	Log       logger.Logger
}

// Service is the dual-party relationship state machine:
// pending -> accepted -> ended, or pending -> rejected/cancelled (deleted).
type Service struct {
	repo      Repository
	resolver  *authz.Resolver
	locker    shared.Locker
	publisher shared.Publisher
	log       logger.Logger
	now       func() time.Time
}

func NewService(repo Repository, deps Deps) *Service {
	s := &Service{
		repo:      repo,
		resolver:  deps.Resolver,
		locker:    deps.Locker,
		publisher: deps.Publisher,
		log:       deps.Log,
		now:       time.Now,
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	return s
}

// WithRepository returns a copy of the service working on repo, typically a
// transaction opened by another workflow.
func (s *Service) WithRepository(repo Repository) *Service {
	clone := *s
	clone.repo = repo
	return &clone
}

type RequestInput struct {
	Kind     league.RelationshipKind
	OwnerAID string
	OwnerBID string
	Origin   league.Origin
	Terms    league.ContractChanges
}

func (in RequestInput) validate() error {
	if !in.Kind.Valid() {
		return ErrInvalidKind
	}
	if strings.TrimSpace(in.OwnerAID) == "" || strings.TrimSpace(in.OwnerBID) == "" {
		return ErrOwnersRequired
	}
	return nil
}

// Request opens a pending relationship on behalf of the origin side.
func (s *Service) Request(ctx context.Context, actor shared.Actor, input RequestInput) (*league.Relationship, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	if !input.Origin.Valid() {
		return nil, ErrInvalidOrigin
	}

	var rel *league.Relationship
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		res, err := s.resolver.ResolveOwners(ctx, tx, input.Kind, input.OwnerAID, input.OwnerBID)
		if err != nil {
			return err
		}
		originKind := ownerKind(input.Kind, input.Origin)
		originID := input.OwnerAID
		if input.Origin == league.OriginOwnerB {
			originID = input.OwnerBID
		}
		if !actor.IsGlobalAdmin() && !sideOf(res, originKind, originID).Contains(actor.ID) {
			return ErrNotOriginSide
		}

		if err := ensureNoOpenPair(ctx, tx, input.Kind, input.OwnerAID, input.OwnerBID, "", league.StatePending, league.StateAccepted); err != nil {
			return err
		}

		created, err := s.newRelationship(actor.ID, input, league.StatePending)
		if err != nil {
			return err
		}
		if err := tx.CreateRelationship(ctx, created); err != nil {
			return err
		}
		rel = created
		return tx.AppendRelationshipEvent(ctx, auditEntry(rel, league.ActionRequested, actor.ID, nil, rel.CreatedAt))
	})
	if err != nil {
		return nil, err
	}

	s.after(ctx, rel, league.ActionRequested, actor.ID)
	return rel, nil
}

// Approve accepts a pending relationship. Only the side opposite the origin
// (or a global administrator) may approve. The pair is locked and the
// duplicate check repeated so two approvals for one pair cannot both win.
func (s *Service) Approve(ctx context.Context, actor shared.Actor, id string) (*league.Relationship, error) {
	current, err := s.repo.GetRelationship(ctx, id)
	if err != nil {
		return nil, err
	}
	unlock, err := s.lockPair(ctx, current.PairKey())
	if err != nil {
		return nil, err
	}
	defer unlock()

	var rel *league.Relationship
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		loaded, err := tx.GetRelationship(ctx, id)
		if err != nil {
			return err
		}
		if loaded.State != league.StatePending {
			return ErrNotPending
		}

		counterparty := loaded.Origin.Opposite()
		res, err := s.resolver.Resolve(ctx, tx, loaded.OwnerKind(counterparty), loaded.OwnerID(counterparty))
		if err != nil {
			return err
		}
		if !actor.IsGlobalAdmin() && !res.Contains(actor.ID) {
			return ErrNotCounterparty
		}

		if err := ensureNoOpenPair(ctx, tx, loaded.Kind, loaded.OwnerAID, loaded.OwnerBID, loaded.ID, league.StateAccepted); err != nil {
			return err
		}

		now := s.now().UTC()
		loaded.State = league.StateAccepted
		loaded.Active = true
		loaded.AcceptedAt = &now
		loaded.UpdatedAt = now
		loaded.SyncOpenPairKey()
		if err := tx.UpdateRelationship(ctx, loaded, league.StatePending); err != nil {
			return err
		}
		rel = loaded
		return tx.AppendRelationshipEvent(ctx, auditEntry(rel, league.ActionApproved, actor.ID, nil, now))
	})
	if err != nil {
		return nil, err
	}

	s.after(ctx, rel, league.ActionApproved, actor.ID)
	return rel, nil
}

// Reject lets either side decline a pending relationship. The record is
// deleted; the reason survives in the relationship history.
func (s *Service) Reject(ctx context.Context, actor shared.Actor, id, reason string) (*league.Relationship, error) {
	return s.closePending(ctx, actor, id, reason, league.ActionRejected)
}

// Cancel lets the requester or the requesting side withdraw a pending relationship.
func (s *Service) Cancel(ctx context.Context, actor shared.Actor, id, reason string) (*league.Relationship, error) {
	return s.closePending(ctx, actor, id, reason, league.ActionCancelled)
}

func (s *Service) closePending(ctx context.Context, actor shared.Actor, id, reason string, action league.RelationshipAction) (*league.Relationship, error) {
	var rel *league.Relationship
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		loaded, err := tx.GetRelationship(ctx, id)
		if err != nil {
			return err
		}
		if loaded.State != league.StatePending {
			return ErrNotPending
		}
		if err := s.authorizeClose(ctx, tx, actor, loaded, action); err != nil {
			return err
		}

		now := s.now().UTC()
		var reasonPtr *string
		if trimmed := strings.TrimSpace(reason); trimmed != "" {
			reasonPtr = &trimmed
		}
		if err := tx.AppendRelationshipEvent(ctx, auditEntry(loaded, action, actor.ID, reasonPtr, now)); err != nil {
			return err
		}
		if err := tx.DeleteRelationship(ctx, loaded.ID, league.StatePending); err != nil {
			return err
		}

		loaded.State = league.StateRejected
		if action == league.ActionCancelled {
			loaded.State = league.StateCancelled
		}
		loaded.RejectionReason = reasonPtr
		loaded.UpdatedAt = now
		loaded.SyncOpenPairKey()
		rel = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.after(ctx, rel, action, actor.ID)
	return rel, nil
}

func (s *Service) authorizeClose(ctx context.Context, tx Repository, actor shared.Actor, rel *league.Relationship, action league.RelationshipAction) error {
	if actor.IsGlobalAdmin() {
		return nil
	}
	if action == league.ActionRejected {
		res, err := s.resolver.Resolve(ctx, tx, league.KindRelationship, rel.ID)
		if err != nil {
			return err
		}
		if !res.Contains(actor.ID) {
			return ErrNotParticipant
		}
		return nil
	}

	if actor.ID == rel.RequestedBy {
		return nil
	}
	res, err := s.resolver.Resolve(ctx, tx, rel.OwnerKind(rel.Origin), rel.OwnerID(rel.Origin))
	if err != nil {
		return err
	}
	if !res.Contains(actor.ID) {
		return ErrNotRequester
	}
	return nil
}

// Amend updates contract terms of an accepted or ended relationship. State is untouched.
func (s *Service) Amend(ctx context.Context, actor shared.Actor, id string, changes league.ContractChanges) (*league.Relationship, error) {
	var rel *league.Relationship
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if err := s.authorizeParticipant(ctx, tx, actor, id); err != nil {
			return err
		}
		amended, err := s.WithRepository(tx).AmendApproved(ctx, actor.ID, id, changes)
		if err != nil {
			return err
		}
		rel = amended
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.after(ctx, rel, league.ActionAmended, actor.ID)
	return rel, nil
}

// End closes an accepted relationship. The record is kept with active=false.
func (s *Service) End(ctx context.Context, actor shared.Actor, id, reason string) (*league.Relationship, error) {
	var rel *league.Relationship
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if err := s.authorizeParticipant(ctx, tx, actor, id); err != nil {
			return err
		}
		ended, err := s.WithRepository(tx).EndApproved(ctx, actor.ID, id, reason)
		if err != nil {
			return err
		}
		rel = ended
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.after(ctx, rel, league.ActionEnded, actor.ID)
	return rel, nil
}

func (s *Service) authorizeParticipant(ctx context.Context, tx Repository, actor shared.Actor, id string) error {
	res, err := s.resolver.Resolve(ctx, tx, league.KindRelationship, id)
	if err != nil {
		return err
	}
	if !actor.IsGlobalAdmin() && !res.Contains(actor.ID) {
		return ErrNotParticipant
	}
	return nil
}

// CreateApproved creates a relationship directly in accepted state. It does
// not authorize; callers such as the edit request workflow already did.
func (s *Service) CreateApproved(ctx context.Context, actorID string, input RequestInput) (*league.Relationship, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	if !input.Origin.Valid() {
		input.Origin = league.OriginOwnerA
	}
	if _, err := s.resolver.ResolveOwners(ctx, s.repo, input.Kind, input.OwnerAID, input.OwnerBID); err != nil {
		return nil, err
	}
	if err := ensureNoOpenPair(ctx, s.repo, input.Kind, input.OwnerAID, input.OwnerBID, "", league.StatePending, league.StateAccepted); err != nil {
		return nil, err
	}

	rel, err := s.newRelationship(actorID, input, league.StateAccepted)
	if err != nil {
		return nil, err
	}
	rel.Active = true
	acceptedAt := rel.CreatedAt
	rel.AcceptedAt = &acceptedAt
	if err := s.repo.CreateRelationship(ctx, rel); err != nil {
		return nil, err
	}
	if err := s.repo.AppendRelationshipEvent(ctx, auditEntry(rel, league.ActionCreated, actorID, nil, rel.CreatedAt)); err != nil {
		return nil, err
	}
	return rel, nil
}

// AmendApproved applies contract changes without authorization checks.
func (s *Service) AmendApproved(ctx context.Context, actorID, id string, changes league.ContractChanges) (*league.Relationship, error) {
	if changes.Empty() {
		return nil, ErrNothingToAmend
	}
	rel, err := s.repo.GetRelationship(ctx, id)
	if err != nil {
		return nil, err
	}
	if rel.State != league.StateAccepted && rel.State != league.StateEnded {
		return nil, ErrNotAmendable
	}
	previous := rel.State
	if err := changes.ApplyTo(rel); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	rel.UpdatedAt = now
	if err := s.repo.UpdateRelationship(ctx, rel, previous); err != nil {
		return nil, err
	}
	if err := s.repo.AppendRelationshipEvent(ctx, auditEntry(rel, league.ActionAmended, actorID, nil, now)); err != nil {
		return nil, err
	}
	return rel, nil
}

// EndApproved ends an accepted relationship without authorization checks.
func (s *Service) EndApproved(ctx context.Context, actorID, id, reason string) (*league.Relationship, error) {
	rel, err := s.repo.GetRelationship(ctx, id)
	if err != nil {
		return nil, err
	}
	if rel.State != league.StateAccepted {
		return nil, ErrNotAccepted
	}

	now := s.now().UTC()
	rel.State = league.StateEnded
	rel.Active = false
	rel.EndedAt = &now
	if rel.ValidTo == nil || rel.ValidTo.After(now) {
		rel.ValidTo = &now
	}
	rel.UpdatedAt = now
	rel.SyncOpenPairKey()
	if err := s.repo.UpdateRelationship(ctx, rel, league.StateAccepted); err != nil {
		return nil, err
	}

	var reasonPtr *string
	if trimmed := strings.TrimSpace(reason); trimmed != "" {
		reasonPtr = &trimmed
	}
	if err := s.repo.AppendRelationshipEvent(ctx, auditEntry(rel, league.ActionEnded, actorID, reasonPtr, now)); err != nil {
		return nil, err
	}
	return rel, nil
}

func (s *Service) Get(ctx context.Context, id string) (*league.Relationship, error) {
	return s.repo.GetRelationship(ctx, id)
}

func (s *Service) List(ctx context.Context, filter league.RelationshipFilter) ([]league.Relationship, int64, error) {
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, 0, ErrInvalidKind
	}
	return s.repo.ListRelationships(ctx, filter)
}

// History returns the audit trail, which outlives rejected and cancelled relationships.
func (s *Service) History(ctx context.Context, id string) ([]league.RelationshipEvent, error) {
	events, err := s.repo.ListRelationshipEvents(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		if _, err := s.repo.GetRelationship(ctx, id); err != nil {
			return nil, err
		}
	}
	return events, nil
}

// PairLockKey is the lock key shared by every workflow that can open a
// relationship for the pair.
func PairLockKey(pairKey string) string {
	return "relationship-pair:" + pairKey
}

func (s *Service) lockPair(ctx context.Context, pairKey string) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	return s.locker.Lock(ctx, PairLockKey(pairKey))
}

// LockPair serializes callers that open relationships for the pair.
func (s *Service) LockPair(ctx context.Context, kind league.RelationshipKind, ownerAID, ownerBID string) (func(), error) {
	return s.lockPair(ctx, league.PairKey(kind, ownerAID, ownerBID))
}

func (s *Service) newRelationship(actorID string, input RequestInput, state league.RelationshipState) (*league.Relationship, error) {
	now := s.now().UTC()
	rel := &league.Relationship{
		ID:          uuid.NewString(),
		Kind:        input.Kind,
		OwnerAID:    input.OwnerAID,
		OwnerBID:    input.OwnerBID,
		RequestedBy: actorID,
		Origin:      input.Origin,
		State:       state,
		ValidFrom:   now,
		Ownership:   league.NewOwnership(actorID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := input.Terms.ApplyTo(rel); err != nil {
		return nil, err
	}
	rel.SyncOpenPairKey()
	return rel, nil
}

func (s *Service) after(ctx context.Context, rel *league.Relationship, action league.RelationshipAction, actorID string) {
	metrics.RecordRelationshipTransition(string(rel.Kind), string(action))
	s.Publish(ctx, NewEvent(rel, action, actorID, s.now().UTC()))
}

// Publish sends events after commit. Failures are logged and never surface.
func (s *Service) Publish(ctx context.Context, events ...shared.Event) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.log.InternalError("relationship.publish: events dropped", err, "count", len(events), "type", events[0].Type)
	}
}

// NewEvent describes a relationship transition for subscribers.
func NewEvent(rel *league.Relationship, action league.RelationshipAction, actorID string, at time.Time) shared.Event {
	return shared.Event{
		Type:        "relationship." + string(action),
		AggregateID: rel.ID,
		ActorID:     actorID,
		At:          at,
		Data: map[string]any{
			"kind":     rel.Kind,
			"ownerAId": rel.OwnerAID,
			"ownerBId": rel.OwnerBID,
			"state":    rel.State,
			"active":   rel.Active,
		},
	}
}

func ensureNoOpenPair(ctx context.Context, repo Repository, kind league.RelationshipKind, ownerAID, ownerBID, excludeID string, states ...league.RelationshipState) error {
	exists, err := repo.ExistsRelationship(ctx, league.PairQuery{
		Kind:      kind,
		OwnerAID:  ownerAID,
		OwnerBID:  ownerBID,
		States:    states,
		ExcludeID: excludeID,
	})
	if err != nil {
		return err
	}
	if exists {
		return league.ErrOpenRelationshipExists
	}
	return nil
}

func auditEntry(rel *league.Relationship, action league.RelationshipAction, actorID string, reason *string, at time.Time) *league.RelationshipEvent {
	return &league.RelationshipEvent{
		ID:             uuid.NewString(),
		RelationshipID: rel.ID,
		Kind:           rel.Kind,
		OwnerAID:       rel.OwnerAID,
		OwnerBID:       rel.OwnerBID,
		Action:         action,
		ActorID:        actorID,
		Reason:         reason,
		At:             at,
	}
}

func ownerKind(kind league.RelationshipKind, origin league.Origin) league.EntityKind {
	a, b := kind.OwnerKinds()
	if origin == league.OriginOwnerA {
		return a
	}
	return b
}

func sideOf(res authz.Resolution, kind league.EntityKind, id string) authz.Side {
	for _, side := range res.Sides {
		if side.Kind == kind && side.EntityID == id {
			return side
		}
	}
	return authz.Side{}
}

// IsSoftFailure reports errors an ending apply step may log and skip.
func IsSoftFailure(err error) bool {
	return errors.Is(err, ErrNotAccepted)
}
