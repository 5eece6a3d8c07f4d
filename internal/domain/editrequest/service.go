package editrequest

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"league-app-go/internal/domain/authz"
	"league-app-go/internal/domain/league"
	"league-app-go/internal/domain/policy"
	"league-app-go/internal/domain/relationship"
	"league-app-go/internal/domain/shared"
	"league-app-go/pkg/logger"
)

// Counting selects how double confirmation is considered complete.
type Counting string

const (
	// CountingSides requires one approver from every resolved side.
	CountingSides Counting = "sides"
	// CountingCount requires as many distinct approvers as the policy has roles.
	CountingCount Counting = "count"
)

func ParseCounting(value string) Counting {
	if strings.EqualFold(strings.TrimSpace(value), string(CountingCount)) {
		return CountingCount
	}
	return CountingSides
}

type Deps struct {
	Policies      *policy.Table
	Resolver      *authz.Resolver
	Relationships *relationship.Service
	Publisher     shared.Publisher
	Log           logger.Logger
	Counting      Counting
}

type Service struct {
	repo          Repository
	policies      *policy.Table
	resolver      *authz.Resolver
	relationships *relationship.Service
	publisher     shared.Publisher
	log           logger.Logger
	counting      Counting
	now           func() time.Time
}

func NewService(repo Repository, deps Deps) *Service {
	s := &Service{
		repo:          repo,
		policies:      deps.Policies,
		resolver:      deps.Resolver,
		relationships: deps.Relationships,
		publisher:     deps.Publisher,
		log:           deps.Log,
		counting:      deps.Counting,
		now:           time.Now,
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.counting == "" {
		s.counting = CountingSides
	}
	return s
}

type CreateInput struct {
	ChangeType   policy.ChangeType
	TargetID     *string
	ProposedData []byte
}

// Create records a pending edit request. The confirmation mode is resolved
// from the policy and the proposed fields, then frozen on the request.
func (s *Service) Create(ctx context.Context, actor shared.Actor, input CreateInput) (*EditRequest, error) {
	p, err := s.policies.Lookup(input.ChangeType)
	if err != nil {
		return nil, err
	}
	proposal, fields, err := DecodeProposal(input.ChangeType, input.ProposedData)
	if err != nil {
		return nil, err
	}
	double, err := p.ConfirmationFor(fields)
	if err != nil {
		return nil, err
	}

	var targetID *string
	if input.TargetID != nil && strings.TrimSpace(*input.TargetID) != "" {
		trimmed := strings.TrimSpace(*input.TargetID)
		targetID = &trimmed
	}
	if err := s.checkTarget(ctx, p, targetID, proposal); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	req := &EditRequest{
		ID:                         uuid.NewString(),
		ChangeType:                 input.ChangeType,
		TargetKind:                 p.TargetKind,
		TargetID:                   targetID,
		ProposedData:               compactPayload(input.ProposedData),
		State:                      StatePending,
		ApprovedBy:                 league.StringList{},
		RequiresDoubleConfirmation: double,
		CreatedBy:                  actor.ID,
		Version:                    1,
		CreatedAt:                  now,
		UpdatedAt:                  now,
	}
	if err := s.repo.CreateEditRequest(ctx, req); err != nil {
		return nil, err
	}

	s.publish(ctx, newEvent(req, "created", actor.ID, now))
	return req, nil
}

func (s *Service) checkTarget(ctx context.Context, p policy.ApprovalPolicy, targetID *string, proposal Proposal) error {
	if !p.HasTarget() {
		if targetID != nil {
			return ErrTargetNotAllowed
		}
		create, ok := proposal.(RelationshipCreateProposal)
		if !ok {
			return nil
		}
		if _, err := s.resolver.ResolveOwners(ctx, s.repo, create.Kind, create.TeamID, create.OwnerBID()); err != nil {
			return err
		}
		exists, err := s.repo.Relationships().ExistsRelationship(ctx, league.PairQuery{
			Kind:     create.Kind,
			OwnerAID: create.TeamID,
			OwnerBID: create.OwnerBID(),
			States:   []league.RelationshipState{league.StatePending, league.StateAccepted},
		})
		if err != nil {
			return err
		}
		if exists {
			return league.ErrOpenRelationshipExists
		}
		return nil
	}

	if targetID == nil {
		return ErrTargetRequired
	}
	if p.TargetKind == league.KindRelationship {
		rel, err := s.repo.GetRelationship(ctx, *targetID)
		if err != nil {
			return err
		}
		if p.RelationshipKind != "" && rel.Kind != p.RelationshipKind {
			return ErrTargetKindMismatch
		}
		return nil
	}
	return loadTarget(ctx, s.repo, p.TargetKind, *targetID)
}

func loadTarget(ctx context.Context, r league.Reader, kind league.EntityKind, id string) error {
	var err error
	switch kind {
	case league.KindMatch:
		_, err = r.GetMatch(ctx, id)
	case league.KindMatchSet:
		_, err = r.GetMatchSet(ctx, id)
	case league.KindPlayerMatchStats:
		_, err = r.GetPlayerMatchStats(ctx, id)
	case league.KindTeamMatchStats:
		_, err = r.GetTeamMatchStats(ctx, id)
	default:
		_, err = league.LoadOwnership(ctx, r, kind, id)
	}
	return err
}

func (s *Service) Get(ctx context.Context, id string) (*EditRequest, error) {
	return s.repo.GetEditRequest(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]EditRequest, int64, error) {
	return s.repo.ListEditRequests(ctx, filter)
}

// Approvers reports who may still decide the request and which sides have signed.
func (s *Service) Approvers(ctx context.Context, id string) (*Approvers, error) {
	req, err := s.repo.GetEditRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := s.policies.Lookup(req.ChangeType)
	if err != nil {
		return nil, err
	}
	full, eligible, err := s.eligibility(ctx, s.repo, req, p)
	if err != nil {
		return nil, err
	}

	result := &Approvers{
		RequiresDoubleConfirmation: req.RequiresDoubleConfirmation,
		Eligible:                   eligible.All(),
		ApprovedBy:                 append([]string{}, req.ApprovedBy...),
		Sides:                      make([]Side, 0, len(full.Sides)),
	}
	signed := signedSides(full.Sides, req.ApprovedBy)
	for i, side := range full.Sides {
		result.Sides = append(result.Sides, Side{
			Role:      side.Role,
			Kind:      side.Kind,
			EntityID:  side.EntityID,
			Users:     side.Users,
			Satisfied: signed[i],
		})
	}
	return result, nil
}

// Cancel withdraws a pending request. Allowed for its creator, any eligible
// approver and global administrators.
func (s *Service) Cancel(ctx context.Context, actor shared.Actor, id, reason string) (*EditRequest, error) {
	var result *EditRequest
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		req, err := tx.GetEditRequest(ctx, id)
		if err != nil {
			return err
		}
		if req.State != StatePending {
			return ErrNotPending
		}
		if actor.ID != req.CreatedBy && !actor.IsGlobalAdmin() {
			p, err := s.policies.Lookup(req.ChangeType)
			if err != nil {
				return err
			}
			_, eligible, err := s.eligibility(ctx, tx, req, p)
			if err != nil {
				return err
			}
			if !eligible.Contains(actor.ID) {
				return ErrCannotCancel
			}
		}

		now := s.now().UTC()
		version := req.Version
		req.State = StateCancelled
		req.CancelledAt = &now
		if trimmed := strings.TrimSpace(reason); trimmed != "" {
			req.RejectionReason = &trimmed
		}
		req.UpdatedAt = now
		if err := tx.UpdateEditRequest(ctx, req, version); err != nil {
			return err
		}
		result = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, newEvent(result, "cancelled", actor.ID, s.now().UTC()))
	return result, nil
}

// eligibility returns the full approver resolution and the subset allowed to
// decide. With double confirmation everyone but the creator is eligible. With
// single confirmation only the sides the creator does not belong to are,
// unless the creator is on no side or there is just one side.
func (s *Service) eligibility(ctx context.Context, tx Repository, req *EditRequest, p policy.ApprovalPolicy) (authz.Resolution, authz.Resolution, error) {
	var full authz.Resolution
	if p.HasTarget() {
		if req.TargetID == nil {
			return authz.Resolution{}, authz.Resolution{}, ErrTargetRequired
		}
		res, err := s.resolver.ResolveApprovers(ctx, tx, req.ChangeType, *req.TargetID)
		if err != nil {
			return authz.Resolution{}, authz.Resolution{}, err
		}
		full = res
	} else {
		proposal, _, err := DecodeProposal(req.ChangeType, req.ProposedData)
		if err != nil {
			return authz.Resolution{}, authz.Resolution{}, err
		}
		create, ok := proposal.(RelationshipCreateProposal)
		if !ok {
			return authz.Resolution{}, authz.Resolution{}, ErrTargetRequired
		}
		res, err := s.resolver.ResolveOwners(ctx, tx, create.Kind, create.TeamID, create.OwnerBID())
		if err != nil {
			return authz.Resolution{}, authz.Resolution{}, err
		}
		full = res.WithRoles(p.ApproverRoles)
	}

	if req.RequiresDoubleConfirmation {
		return full, full.WithoutUser(req.CreatedBy), nil
	}
	if len(full.Sides) <= 1 || len(full.SidesOf(req.CreatedBy)) == 0 {
		return full, full, nil
	}
	return full, full.Excluding(req.CreatedBy), nil
}

func (s *Service) publish(ctx context.Context, events ...shared.Event) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.log.InternalError("editrequest.publish: events dropped", err, "count", len(events), "type", events[0].Type)
	}
}

func newEvent(req *EditRequest, action string, actorID string, at time.Time) shared.Event {
	data := map[string]any{
		"changeType": req.ChangeType,
		"state":      req.State,
		"approvedBy": []string(req.ApprovedBy),
	}
	if req.TargetID != nil {
		data["targetId"] = *req.TargetID
	}
	return shared.Event{
		Type:        "edit_request." + action,
		AggregateID: req.ID,
		ActorID:     actorID,
		Data:        data,
		At:          at,
	}
}

func compactPayload(data []byte) Payload {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return Payload("{}")
	}
	return Payload(trimmed)
}
