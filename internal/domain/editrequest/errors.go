package editrequest

import (
	"fmt"

	"league-app-go/internal/domain/shared"
)

var (
	ErrEditRequestNotFound = fmt.Errorf("edit request %w", shared.ErrNotFound)
	ErrInvalidProposal     = fmt.Errorf("invalid proposedData: %w", shared.ErrInvalidArgument)
	ErrTargetRequired      = fmt.Errorf("change type requires a target entity: %w", shared.ErrInvalidArgument)
	ErrTargetNotAllowed    = fmt.Errorf("change type does not take a target entity: %w", shared.ErrInvalidArgument)
	ErrTargetKindMismatch  = fmt.Errorf("target does not match the change type: %w", shared.ErrInvalidArgument)
	ErrInvalidDecision     = fmt.Errorf("decision must be accept or reject: %w", shared.ErrInvalidArgument)
	ErrOverrideOnReject    = fmt.Errorf("proposedData can only be overridden when accepting: %w", shared.ErrInvalidArgument)
	ErrNotPending          = fmt.Errorf("edit request is not pending: %w", shared.ErrInvalidState)
	ErrNotEligible         = fmt.Errorf("actor is not an eligible approver: %w", shared.ErrForbidden)
	ErrCannotCancel        = fmt.Errorf("only the creator or an eligible approver can cancel: %w", shared.ErrForbidden)
	ErrStaleVersion        = fmt.Errorf("edit request was modified concurrently, retry: %w", shared.ErrConflict)
	ErrApplyFailed         = fmt.Errorf("apply step failed: %w", shared.ErrInternal)
)
