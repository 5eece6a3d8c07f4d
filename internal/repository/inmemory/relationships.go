package inmemory

import (
	"context"
	"slices"
	"sort"

	"league-app-go/internal/domain/league"
	"league-app-go/internal/domain/relationship"
)

type RelationshipRepository struct {
	*view
}

func (r *RelationshipRepository) Transaction(ctx context.Context, fn func(relationship.Repository) error) error {
	return r.transaction(ctx, func(tx *view) error {
		return fn(&RelationshipRepository{view: tx})
	})
}

func (v *view) GetRelationship(ctx context.Context, id string) (*league.Relationship, error) {
	var (
		rel league.Relationship
		ok  bool
	)
	v.read(func(st *state) {
		rel, ok = st.relationships[id]
	})
	if !ok {
		return nil, league.ErrRelationshipNotFound
	}
	rel = cloneRelationship(rel)
	return &rel, nil
}

// openKeyTaken mirrors the unique index on open_pair_key.
func openKeyTaken(st *state, rel league.Relationship) bool {
	if rel.OpenPairKey == nil {
		return false
	}
	for id, existing := range st.relationships {
		if id == rel.ID || existing.OpenPairKey == nil {
			continue
		}
		if *existing.OpenPairKey == *rel.OpenPairKey {
			return true
		}
	}
	return false
}

func (r *RelationshipRepository) CreateRelationship(ctx context.Context, rel *league.Relationship) error {
	value := cloneRelationship(*rel)
	return r.write(func(st *state) error {
		if openKeyTaken(st, value) {
			return league.ErrOpenRelationshipExists
		}
		st.relationships[value.ID] = value
		return nil
	})
}

func (r *RelationshipRepository) UpdateRelationship(ctx context.Context, rel *league.Relationship, expected league.RelationshipState) error {
	value := cloneRelationship(*rel)
	return r.write(func(st *state) error {
		current, ok := st.relationships[value.ID]
		if !ok {
			return league.ErrRelationshipNotFound
		}
		if current.State != expected {
			return league.ErrRelationshipStateChanged
		}
		if openKeyTaken(st, value) {
			return league.ErrOpenRelationshipExists
		}
		st.relationships[value.ID] = value
		return nil
	})
}

func (r *RelationshipRepository) DeleteRelationship(ctx context.Context, id string, expected league.RelationshipState) error {
	return r.write(func(st *state) error {
		current, ok := st.relationships[id]
		if !ok {
			return league.ErrRelationshipNotFound
		}
		if current.State != expected {
			return league.ErrRelationshipStateChanged
		}
		delete(st.relationships, id)
		return nil
	})
}

func (r *RelationshipRepository) ExistsRelationship(ctx context.Context, query league.PairQuery) (bool, error) {
	var found bool
	r.read(func(st *state) {
		for id, rel := range st.relationships {
			if id == query.ExcludeID {
				continue
			}
			if rel.Kind != query.Kind || rel.OwnerAID != query.OwnerAID || rel.OwnerBID != query.OwnerBID {
				continue
			}
			if len(query.States) > 0 && !slices.Contains(query.States, rel.State) {
				continue
			}
			found = true
			return
		}
	})
	return found, nil
}

func (r *RelationshipRepository) ListRelationships(ctx context.Context, filter league.RelationshipFilter) ([]league.Relationship, int64, error) {
	var items []league.Relationship
	r.read(func(st *state) {
		for _, rel := range st.relationships {
			if filter.Kind != "" && rel.Kind != filter.Kind {
				continue
			}
			if filter.OwnerAID != "" && rel.OwnerAID != filter.OwnerAID {
				continue
			}
			if filter.OwnerBID != "" && rel.OwnerBID != filter.OwnerBID {
				continue
			}
			if filter.State != "" && rel.State != filter.State {
				continue
			}
			items = append(items, cloneRelationship(rel))
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

func (r *RelationshipRepository) AppendRelationshipEvent(ctx context.Context, event *league.RelationshipEvent) error {
	value := *event
	return r.write(func(st *state) error {
		st.events = append(st.events, value)
		return nil
	})
}

func (r *RelationshipRepository) ListRelationshipEvents(ctx context.Context, relationshipID string) ([]league.RelationshipEvent, error) {
	events := []league.RelationshipEvent{}
	r.read(func(st *state) {
		for _, event := range st.events {
			if event.RelationshipID == relationshipID {
				events = append(events, event)
			}
		}
	})
	return events, nil
}
