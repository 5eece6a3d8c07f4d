package relational

import (
	"context"

	"gorm.io/gorm"

	"league-app-go/internal/domain/editrequest"
	"league-app-go/internal/domain/relationship"
)

type EditRequestRepository struct {
	base
}

func (r *EditRequestRepository) Transaction(ctx context.Context, fn func(editrequest.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&EditRequestRepository{base{db: tx}})
	})
}

// Relationships shares the handle, so inside a transaction the relationship
// writes commit or roll back together with the request.
func (r *EditRequestRepository) Relationships() relationship.Repository {
	return &RelationshipRepository{r.base}
}

func (r *EditRequestRepository) CreateEditRequest(ctx context.Context, req *editrequest.EditRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *EditRequestRepository) GetEditRequest(ctx context.Context, id string) (*editrequest.EditRequest, error) {
	return first[editrequest.EditRequest](ctx, r.db, id, editrequest.ErrEditRequestNotFound)
}

func (r *EditRequestRepository) UpdateEditRequest(ctx context.Context, req *editrequest.EditRequest, expectedVersion int) error {
	req.Version = expectedVersion + 1
	result := r.db.WithContext(ctx).
		Model(req).
		Where("version = ?", expectedVersion).
		Select("*").
		Updates(req)
	if result.Error != nil {
		req.Version = expectedVersion
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}

	req.Version = expectedVersion
	var count int64
	if err := r.db.WithContext(ctx).Model(&editrequest.EditRequest{}).Where("id = ?", req.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return editrequest.ErrEditRequestNotFound
	}
	return editrequest.ErrStaleVersion
}

func (r *EditRequestRepository) ListEditRequests(ctx context.Context, filter editrequest.ListFilter) ([]editrequest.EditRequest, int64, error) {
	query := r.db.WithContext(ctx).Model(&editrequest.EditRequest{})
	if filter.State != "" {
		query = query.Where("state = ?", filter.State)
	}
	if filter.ChangeType != "" {
		query = query.Where("change_type = ?", filter.ChangeType)
	}
	if filter.TargetID != "" {
		query = query.Where("target_id = ?", filter.TargetID)
	}
	if filter.CreatedBy != "" {
		query = query.Where("created_by = ?", filter.CreatedBy)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []editrequest.EditRequest
	if err := paginate(query.Order("created_at desc, id asc"), filter.Limit, filter.Offset).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
