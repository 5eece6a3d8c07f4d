package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"league-app-go/internal/domain/editrequest"
	"league-app-go/internal/domain/relationship"
)

type EditRequestRepository struct {
	base
}

func (r *EditRequestRepository) Transaction(ctx context.Context, fn func(editrequest.Repository) error) error {
	return r.transaction(ctx, func(tx base) error {
		return fn(&EditRequestRepository{tx})
	})
}

func (r *EditRequestRepository) Relationships() relationship.Repository {
	return &RelationshipRepository{r.base}
}

func (r *EditRequestRepository) CreateEditRequest(ctx context.Context, req *editrequest.EditRequest) error {
	return r.insert(ctx, collEditRequests, req, nil)
}

func (r *EditRequestRepository) GetEditRequest(ctx context.Context, id string) (*editrequest.EditRequest, error) {
	return findByID[editrequest.EditRequest](r.ctx(ctx), r.coll(collEditRequests), id, editrequest.ErrEditRequestNotFound)
}

func (r *EditRequestRepository) UpdateEditRequest(ctx context.Context, req *editrequest.EditRequest, expectedVersion int) error {
	req.Version = expectedVersion + 1
	coll := r.coll(collEditRequests)
	result, err := coll.ReplaceOne(r.ctx(ctx), bson.M{"_id": req.ID, "version": expectedVersion}, req)
	if err != nil {
		req.Version = expectedVersion
		return err
	}
	if result.MatchedCount == 1 {
		return nil
	}

	req.Version = expectedVersion
	count, err := coll.CountDocuments(r.ctx(ctx), bson.M{"_id": req.ID})
	if err != nil {
		return err
	}
	if count == 0 {
		return editrequest.ErrEditRequestNotFound
	}
	return editrequest.ErrStaleVersion
}

func (r *EditRequestRepository) ListEditRequests(ctx context.Context, filter editrequest.ListFilter) ([]editrequest.EditRequest, int64, error) {
	query := bson.M{}
	if filter.State != "" {
		query["state"] = filter.State
	}
	if filter.ChangeType != "" {
		query["change_type"] = filter.ChangeType
	}
	if filter.TargetID != "" {
		query["target_id"] = filter.TargetID
	}
	if filter.CreatedBy != "" {
		query["created_by"] = filter.CreatedBy
	}

	coll := r.coll(collEditRequests)
	total, err := coll.CountDocuments(r.ctx(ctx), query)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := coll.Find(r.ctx(ctx), query, findOptions(filter.Limit, filter.Offset))
	if err != nil {
		return nil, 0, err
	}
	items := []editrequest.EditRequest{}
	if err := cursor.All(r.ctx(ctx), &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
