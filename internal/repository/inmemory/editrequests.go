package inmemory

import (
	"context"
	"sort"

	"league-app-go/internal/domain/editrequest"
	"league-app-go/internal/domain/relationship"
)

type EditRequestRepository struct {
	*view
}

func (r *EditRequestRepository) Transaction(ctx context.Context, fn func(editrequest.Repository) error) error {
	return r.transaction(ctx, func(tx *view) error {
		return fn(&EditRequestRepository{view: tx})
	})
}

// Relationships shares the view, so inside a transaction both adapters see
// and commit the same working state.
func (r *EditRequestRepository) Relationships() relationship.Repository {
	return &RelationshipRepository{view: r.view}
}

func (r *EditRequestRepository) CreateEditRequest(ctx context.Context, req *editrequest.EditRequest) error {
	value := cloneEditRequest(*req)
	return r.write(func(st *state) error {
		st.editRequests[value.ID] = value
		return nil
	})
}

func (r *EditRequestRepository) GetEditRequest(ctx context.Context, id string) (*editrequest.EditRequest, error) {
	var (
		req editrequest.EditRequest
		ok  bool
	)
	r.read(func(st *state) {
		req, ok = st.editRequests[id]
	})
	if !ok {
		return nil, editrequest.ErrEditRequestNotFound
	}
	req = cloneEditRequest(req)
	return &req, nil
}

func (r *EditRequestRepository) UpdateEditRequest(ctx context.Context, req *editrequest.EditRequest, expectedVersion int) error {
	return r.write(func(st *state) error {
		current, ok := st.editRequests[req.ID]
		if !ok {
			return editrequest.ErrEditRequestNotFound
		}
		if current.Version != expectedVersion {
			return editrequest.ErrStaleVersion
		}
		req.Version = expectedVersion + 1
		st.editRequests[req.ID] = cloneEditRequest(*req)
		return nil
	})
}

func (r *EditRequestRepository) ListEditRequests(ctx context.Context, filter editrequest.ListFilter) ([]editrequest.EditRequest, int64, error) {
	var items []editrequest.EditRequest
	r.read(func(st *state) {
		for _, req := range st.editRequests {
			if filter.State != "" && req.State != filter.State {
				continue
			}
			if filter.ChangeType != "" && req.ChangeType != filter.ChangeType {
				continue
			}
			if filter.TargetID != "" && (req.TargetID == nil || *req.TargetID != filter.TargetID) {
				continue
			}
			if filter.CreatedBy != "" && req.CreatedBy != filter.CreatedBy {
				continue
			}
			items = append(items, cloneEditRequest(req))
		}
	})
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return paginate(items, filter.Limit, filter.Offset), int64(len(items)), nil
}
