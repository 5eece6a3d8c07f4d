package authz

import (
	"fmt"

	"league-app-go/internal/domain/shared"
)

var (
	ErrNotApprover           = fmt.Errorf("actor is not an eligible approver: %w", shared.ErrForbidden)
	ErrUnsupportedChangeType = fmt.Errorf("no approval policy for change type: %w", shared.ErrUnsupportedChangeType)
	ErrNoResolver            = fmt.Errorf("no approver resolver registered for entity kind: %w", shared.ErrUnsupportedChangeType)
	ErrTargetRequired        = fmt.Errorf("change type resolves approvers from a target entity: %w", shared.ErrInvalidArgument)
	ErrResolutionTooDeep     = fmt.Errorf("approver resolution exceeded max depth: %w", shared.ErrInternal)
)
