package relationship

import (
	"context"

	"league-app-go/internal/domain/league"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	league.Reader
	// CreateRelationship returns league.ErrOpenRelationshipExists when the
	// store's open-pair constraint rejects the row.
	CreateRelationship(ctx context.Context, rel *league.Relationship) error
	// UpdateRelationship and DeleteRelationship only touch the row while it is
	// still in expected; otherwise they return league.ErrRelationshipStateChanged.
	UpdateRelationship(ctx context.Context, rel *league.Relationship, expected league.RelationshipState) error
	DeleteRelationship(ctx context.Context, id string, expected league.RelationshipState) error
	ExistsRelationship(ctx context.Context, query league.PairQuery) (bool, error)
	ListRelationships(ctx context.Context, filter league.RelationshipFilter) ([]league.Relationship, int64, error)
	AppendRelationshipEvent(ctx context.Context, event *league.RelationshipEvent) error
	ListRelationshipEvents(ctx context.Context, relationshipID string) ([]league.RelationshipEvent, error)
}
