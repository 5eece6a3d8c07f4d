package policy

import (
	"fmt"

	"league-app-go/internal/domain/shared"
)

var (
	ErrUnknownChangeType  = fmt.Errorf("unknown change type: %w", shared.ErrInvalidArgument)
	ErrUnmappedChangeType = fmt.Errorf("change type has no approval policy: %w", shared.ErrUnsupportedChangeType)
	ErrInvalidTable       = fmt.Errorf("invalid policy table: %w", shared.ErrUnsupportedChangeType)
)

type FieldNotAllowedError struct {
	ChangeType ChangeType
	Field      string
}

func (e *FieldNotAllowedError) Error() string {
	return fmt.Sprintf("field %q cannot be changed through %s", e.Field, e.ChangeType)
}

func (e *FieldNotAllowedError) Unwrap() error {
	return shared.ErrInvalidArgument
}
