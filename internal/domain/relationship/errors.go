package relationship

import (
	"fmt"

	"league-app-go/internal/domain/shared"
)

var (
	ErrInvalidKind     = fmt.Errorf("unknown relationship kind: %w", shared.ErrInvalidArgument)
	ErrInvalidOrigin   = fmt.Errorf("origin must be ownerA or ownerB: %w", shared.ErrInvalidArgument)
	ErrOwnersRequired  = fmt.Errorf("both owner ids are required: %w", shared.ErrInvalidArgument)
	ErrNothingToAmend  = fmt.Errorf("no fields to amend: %w", shared.ErrInvalidArgument)
	ErrNotPending      = fmt.Errorf("relationship is not pending: %w", shared.ErrInvalidState)
	ErrNotAccepted     = fmt.Errorf("relationship is not accepted: %w", shared.ErrInvalidState)
	ErrNotAmendable    = fmt.Errorf("only accepted or ended relationships can be amended: %w", shared.ErrInvalidState)
	ErrNotOriginSide   = fmt.Errorf("requester does not administer the requesting side: %w", shared.ErrForbidden)
	ErrNotCounterparty = fmt.Errorf("only the side opposite the requester can approve: %w", shared.ErrForbidden)
	ErrNotParticipant  = fmt.Errorf("actor administers neither side: %w", shared.ErrForbidden)
	ErrNotRequester    = fmt.Errorf("only the requesting side can cancel: %w", shared.ErrForbidden)
)
