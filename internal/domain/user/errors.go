package user

import (
	"fmt"

	"league-app-go/internal/domain/shared"
)

var (
	ErrProfileNotFound = fmt.Errorf("profile %w", shared.ErrNotFound)
	ErrUserIDRequired  = fmt.Errorf("user id is required: %w", shared.ErrInvalidArgument)
	ErrInvalidRole     = fmt.Errorf("role must be user or admin: %w", shared.ErrInvalidArgument)
)
