package editrequest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"league-app-go/internal/domain/authz"
	"league-app-go/internal/domain/league"
	"league-app-go/internal/domain/policy"
	"league-app-go/internal/domain/relationship"
	"league-app-go/internal/domain/shared"
	"league-app-go/internal/metrics"
)

type DecideInput struct {
	Decision Decision
	Reason   string
	// ProposedData optionally replaces the proposal when accepting. Earlier
	// approvals are discarded because they signed different data.
	ProposedData []byte
}

const (
	outcomePending   = "pending"
	outcomeUnchanged = "unchanged"
	outcomeAccepted  = "accepted"
	outcomeRejected  = "rejected"
	outcomeFailed    = "failed"
)

// Decide records an accept or reject. Accepting either records a partial
// approval or, once the policy is satisfied, applies the proposal and accepts
// the request in the same transaction. If the apply step fails nothing is
// persisted and the request stays pending.
func (s *Service) Decide(ctx context.Context, actor shared.Actor, id string, input DecideInput) (*EditRequest, error) {
	if input.Decision != DecisionAccept && input.Decision != DecisionReject {
		return nil, ErrInvalidDecision
	}
	if input.Decision == DecisionReject && len(strings.TrimSpace(string(input.ProposedData))) > 0 {
		return nil, ErrOverrideOnReject
	}

	unlock, err := s.lockForApply(ctx, id, input)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var (
		result  *EditRequest
		outcome string
		pending []shared.Event
	)
	changeType := "unknown"
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		pending = nil
		req, err := tx.GetEditRequest(ctx, id)
		if err != nil {
			return err
		}
		changeType = string(req.ChangeType)
		if req.State != StatePending {
			return ErrNotPending
		}
		p, err := s.policies.Lookup(req.ChangeType)
		if err != nil {
			return err
		}
		full, eligible, err := s.eligibility(ctx, tx, req, p)
		if err != nil {
			return err
		}
		if err := authz.Authorize(eligible, actor); err != nil {
			return ErrNotEligible
		}

		version := req.Version
		now := s.now().UTC()

		if input.Decision == DecisionReject {
			req.State = StateRejected
			req.RejectedAt = &now
			req.FinalApprovedBy = &actor.ID
			if trimmed := strings.TrimSpace(input.Reason); trimmed != "" {
				req.RejectionReason = &trimmed
			}
			req.UpdatedAt = now
			if err := tx.UpdateEditRequest(ctx, req, version); err != nil {
				return err
			}
			result, outcome = req, outcomeRejected
			return nil
		}

		if len(strings.TrimSpace(string(input.ProposedData))) > 0 {
			if err := s.override(req, p, input.ProposedData); err != nil {
				return err
			}
		} else if req.HasApproved(actor.ID) && !actor.IsGlobalAdmin() {
			result, outcome = req, outcomeUnchanged
			return nil
		}

		req.ApprovedBy = req.ApprovedBy.With(actor.ID)
		req.UpdatedAt = now
		if !actor.IsGlobalAdmin() && req.RequiresDoubleConfirmation && !s.satisfied(full, req, p) {
			if err := tx.UpdateEditRequest(ctx, req, version); err != nil {
				return err
			}
			result, outcome = req, outcomePending
			return nil
		}

		events, err := s.apply(ctx, tx, req, actor)
		if err != nil {
			metrics.RecordApplyFailure(changeType)
			return wrapApplyError(req.ChangeType, err)
		}
		req.State = StateAccepted
		req.AcceptedAt = &now
		req.FinalApprovedBy = &actor.ID
		if err := tx.UpdateEditRequest(ctx, req, version); err != nil {
			return err
		}
		result, outcome, pending = req, outcomeAccepted, events
		return nil
	})
	if err != nil {
		metrics.RecordDecision(changeType, string(input.Decision), outcomeFailed)
		if errors.Is(err, shared.ErrUnsupportedChangeType) {
			s.log.Critical("editrequest.decide: change type has no policy", "change_type", changeType, "request_id", id, "err", err)
		} else if errors.Is(err, shared.ErrInternal) {
			s.log.InternalError("editrequest.decide: apply failed", err, "change_type", changeType, "request_id", id, "actor_id", actor.ID)
		}
		return nil, err
	}

	metrics.RecordDecision(changeType, string(input.Decision), outcome)
	at := s.now().UTC()
	switch outcome {
	case outcomeRejected:
		s.publish(ctx, newEvent(result, "rejected", actor.ID, at))
	case outcomePending:
		s.publish(ctx, newEvent(result, "approved", actor.ID, at))
	case outcomeAccepted:
		s.publish(ctx, append([]shared.Event{newEvent(result, "accepted", actor.ID, at)}, pending...)...)
	}
	return result, nil
}

// lockForApply takes the pair lock when accepting may open a relationship.
func (s *Service) lockForApply(ctx context.Context, id string, input DecideInput) (func(), error) {
	noop := func() {}
	if input.Decision != DecisionAccept || s.relationships == nil {
		return noop, nil
	}
	req, err := s.repo.GetEditRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.ChangeType != policy.ChangeRelationshipCreate {
		return noop, nil
	}
	data := req.ProposedData
	if len(strings.TrimSpace(string(input.ProposedData))) > 0 {
		data = Payload(input.ProposedData)
	}
	proposal, _, err := DecodeProposal(req.ChangeType, data)
	if err != nil {
		return nil, err
	}
	create := proposal.(RelationshipCreateProposal)
	return s.relationships.LockPair(ctx, create.Kind, create.TeamID, create.OwnerBID())
}

// override replaces the proposal. The confirmation mode can only tighten.
func (s *Service) override(req *EditRequest, p policy.ApprovalPolicy, data []byte) error {
	proposal, fields, err := DecodeProposal(req.ChangeType, data)
	if err != nil {
		return err
	}
	if create, ok := proposal.(RelationshipCreateProposal); ok {
		original, _, err := DecodeProposal(req.ChangeType, req.ProposedData)
		if err != nil {
			return err
		}
		previous := original.(RelationshipCreateProposal)
		if create.Kind != previous.Kind || create.TeamID != previous.TeamID || create.OwnerBID() != previous.OwnerBID() {
			return fmt.Errorf("%w: owners cannot be changed", ErrInvalidProposal)
		}
	}
	double, err := p.ConfirmationFor(fields)
	if err != nil {
		return err
	}
	req.ProposedData = compactPayload(data)
	req.RequiresDoubleConfirmation = req.RequiresDoubleConfirmation || double
	req.ApprovedBy = league.StringList{}
	return nil
}

// satisfied applies the configured counting rule to a double-confirmation
// request. In sides mode every side needs its own approver: one user who
// administers several sides signs for only one of them.
func (s *Service) satisfied(full authz.Resolution, req *EditRequest, p policy.ApprovalPolicy) bool {
	if s.counting == CountingCount {
		return len(req.ApprovedBy) >= len(p.ApproverRoles)
	}
	if len(full.Sides) == 0 {
		return false
	}
	for _, signed := range signedSides(full.Sides, req.ApprovedBy) {
		if !signed {
			return false
		}
	}
	return true
}

// signedSides assigns approvers to sides one to one and reports which sides
// ended up with a signer.
func signedSides(sides []authz.Side, approvedBy league.StringList) []bool {
	signer := make(map[string]int, len(approvedBy))
	signed := make([]bool, len(sides))
	for i := range sides {
		signed[i] = assignSide(i, sides, approvedBy, signer, make(map[string]bool))
	}
	return signed
}

// assignSide finds an approver for side i, moving earlier assignments to
// other sides they can sign when needed.
func assignSide(i int, sides []authz.Side, approvedBy league.StringList, signer map[string]int, visited map[string]bool) bool {
	for _, id := range approvedBy {
		if visited[id] || !sides[i].Contains(id) {
			continue
		}
		visited[id] = true
		current, taken := signer[id]
		if !taken || assignSide(current, sides, approvedBy, signer, visited) {
			signer[id] = i
			return true
		}
	}
	return false
}

// apply performs the side effect of an accepted request inside tx and
// returns the events to publish after commit.
func (s *Service) apply(ctx context.Context, tx Repository, req *EditRequest, actor shared.Actor) ([]shared.Event, error) {
	proposal, _, err := DecodeProposal(req.ChangeType, req.ProposedData)
	if err != nil {
		return nil, err
	}
	rels := s.relationships.WithRepository(tx.Relationships())
	now := s.now().UTC()

	switch v := proposal.(type) {
	case RelationshipCreateProposal:
		origin := league.OriginOwnerA
		kindA, kindB := v.Kind.OwnerKinds()
		ownerA, err := league.LoadOwnership(ctx, tx, kindA, v.TeamID)
		if err != nil {
			return nil, err
		}
		if !ownerA.IsApprover(req.CreatedBy) {
			ownerB, err := league.LoadOwnership(ctx, tx, kindB, v.OwnerBID())
			if err != nil {
				return nil, err
			}
			if ownerB.IsApprover(req.CreatedBy) {
				origin = league.OriginOwnerB
			}
		}
		rel, err := rels.CreateApproved(ctx, req.CreatedBy, relationship.RequestInput{
			Kind:     v.Kind,
			OwnerAID: v.TeamID,
			OwnerBID: v.OwnerBID(),
			Origin:   origin,
			Terms:    v.ContractChanges,
		})
		if err != nil {
			return nil, err
		}
		return []shared.Event{relationship.NewEvent(rel, league.ActionCreated, actor.ID, now)}, nil

	case RelationshipEndProposal:
		rel, err := rels.EndApproved(ctx, actor.ID, *req.TargetID, v.Reason)
		if relationship.IsSoftFailure(err) {
			s.log.Warn("editrequest.apply: relationship is not accepted, end skipped",
				"request_id", req.ID, "relationship_id", *req.TargetID, "change_type", req.ChangeType)
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return []shared.Event{relationship.NewEvent(rel, league.ActionEnded, actor.ID, now)}, nil

	case ContractAmendProposal:
		rel, err := rels.AmendApproved(ctx, actor.ID, *req.TargetID, v.ContractChanges)
		if err != nil {
			return nil, err
		}
		return []shared.Event{relationship.NewEvent(rel, league.ActionAmended, actor.ID, now)}, nil

	case MatchResultProposal:
		return nil, applyMatchResult(ctx, tx, *req.TargetID, v)

	case SetResultProposal:
		set, err := tx.GetMatchSet(ctx, *req.TargetID)
		if err != nil {
			return nil, err
		}
		if v.HomePoints != nil {
			set.HomePoints = *v.HomePoints
		}
		if v.AwayPoints != nil {
			set.AwayPoints = *v.AwayPoints
		}
		return nil, tx.UpdateMatchSet(ctx, set)

	case StatsProposal:
		if req.ChangeType == policy.ChangePlayerMatchStats {
			stats, err := tx.GetPlayerMatchStats(ctx, *req.TargetID)
			if err != nil {
				return nil, err
			}
			v.applyTo(&stats.StatLine)
			return nil, tx.UpdatePlayerMatchStats(ctx, stats)
		}
		stats, err := tx.GetTeamMatchStats(ctx, *req.TargetID)
		if err != nil {
			return nil, err
		}
		v.applyTo(&stats.StatLine)
		return nil, tx.UpdateTeamMatchStats(ctx, stats)

	default:
		return nil, fmt.Errorf("%s: %w", req.ChangeType, shared.ErrUnsupportedChangeType)
	}
}

func applyMatchResult(ctx context.Context, tx Repository, matchID string, v MatchResultProposal) error {
	match, err := tx.GetMatch(ctx, matchID)
	if err != nil {
		return err
	}
	if v.Status != nil {
		match.Status = *v.Status
	}
	if v.HomeScore != nil {
		match.HomeScore = *v.HomeScore
	}
	if v.AwayScore != nil {
		match.AwayScore = *v.AwayScore
	}
	if v.WinnerTeamID != nil {
		if *v.WinnerTeamID != match.HomeTeamID && *v.WinnerTeamID != match.AwayTeamID {
			return league.ErrTeamNotInMatch
		}
		winner := *v.WinnerTeamID
		match.WinnerTeamID = &winner
	}
	return tx.UpdateMatch(ctx, match)
}

func (p StatsProposal) applyTo(line *league.StatLine) {
	if p.Points != nil {
		line.Points = *p.Points
	}
	if p.Aces != nil {
		line.Aces = *p.Aces
	}
	if p.Blocks != nil {
		line.Blocks = *p.Blocks
	}
	if p.Errors != nil {
		line.Errors = *p.Errors
	}
}

// wrapApplyError keeps domain error kinds and turns anything else into an
// internal error.
func wrapApplyError(changeType policy.ChangeType, err error) error {
	if shared.IsClientError(err) || errors.Is(err, shared.ErrUnsupportedChangeType) || errors.Is(err, shared.ErrInternal) {
		return err
	}
	return fmt.Errorf("%s: %w: %v", changeType, ErrApplyFailed, err)
}
