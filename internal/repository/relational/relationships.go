package relational

import (
	"context"

	"gorm.io/gorm"

	"league-app-go/internal/domain/league"
	"league-app-go/internal/domain/relationship"
)

type RelationshipRepository struct {
	base
}

func (r *RelationshipRepository) Transaction(ctx context.Context, fn func(relationship.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&RelationshipRepository{base{db: tx}})
	})
}

func (r *RelationshipRepository) CreateRelationship(ctx context.Context, rel *league.Relationship) error {
	err := r.db.WithContext(ctx).Create(rel).Error
	if err != nil && isUniqueViolation(err) {
		return league.ErrOpenRelationshipExists
	}
	return err
}

func (r *RelationshipRepository) UpdateRelationship(ctx context.Context, rel *league.Relationship, expected league.RelationshipState) error {
	result := r.db.WithContext(ctx).
		Model(rel).
		Where("state = ?", expected).
		Select("*").
		Updates(rel)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return league.ErrOpenRelationshipExists
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.missedWrite(ctx, rel.ID)
	}
	return nil
}

func (r *RelationshipRepository) DeleteRelationship(ctx context.Context, id string, expected league.RelationshipState) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND state = ?", id, expected).
		Delete(&league.Relationship{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.missedWrite(ctx, id)
	}
	return nil
}

// missedWrite tells a vanished row apart from one whose state moved on.
func (r *RelationshipRepository) missedWrite(ctx context.Context, id string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&league.Relationship{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return league.ErrRelationshipNotFound
	}
	return league.ErrRelationshipStateChanged
}

func (r *RelationshipRepository) ExistsRelationship(ctx context.Context, query league.PairQuery) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&league.Relationship{}).
		Where("kind = ? AND owner_a_id = ? AND owner_b_id = ?", query.Kind, query.OwnerAID, query.OwnerBID)
	if len(query.States) > 0 {
		q = q.Where("state IN ?", query.States)
	}
	if query.ExcludeID != "" {
		q = q.Where("id <> ?", query.ExcludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *RelationshipRepository) ListRelationships(ctx context.Context, filter league.RelationshipFilter) ([]league.Relationship, int64, error) {
	query := r.db.WithContext(ctx).Model(&league.Relationship{})
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.OwnerAID != "" {
		query = query.Where("owner_a_id = ?", filter.OwnerAID)
	}
	if filter.OwnerBID != "" {
		query = query.Where("owner_b_id = ?", filter.OwnerBID)
	}
	if filter.State != "" {
		query = query.Where("state = ?", filter.State)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []league.Relationship
	if err := paginate(query.Order("created_at desc, id asc"), filter.Limit, filter.Offset).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *RelationshipRepository) AppendRelationshipEvent(ctx context.Context, event *league.RelationshipEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *RelationshipRepository) ListRelationshipEvents(ctx context.Context, relationshipID string) ([]league.RelationshipEvent, error) {
	events := []league.RelationshipEvent{}
	if err := r.db.WithContext(ctx).
		Where("relationship_id = ?", relationshipID).
		Order("at asc").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
