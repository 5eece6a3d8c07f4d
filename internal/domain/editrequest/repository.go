package editrequest

import (
	"context"

	"league-app-go/internal/domain/league"
	"league-app-go/internal/domain/relationship"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	league.Reader
	league.Writer
	CreateEditRequest(ctx context.Context, req *EditRequest) error
	GetEditRequest(ctx context.Context, id string) (*EditRequest, error)
	// UpdateEditRequest stores req only if the stored version still equals
	// expectedVersion, then sets req.Version to expectedVersion+1. A mismatch
	// returns ErrStaleVersion.
	UpdateEditRequest(ctx context.Context, req *EditRequest, expectedVersion int) error
	ListEditRequests(ctx context.Context, filter ListFilter) ([]EditRequest, int64, error)
	// Relationships exposes the relationship store bound to the same transaction.
	Relationships() relationship.Repository
}
