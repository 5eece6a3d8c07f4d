package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"league-app-go/internal/domain/league"
	"league-app-go/internal/domain/relationship"
)

type RelationshipRepository struct {
	base
}

func (r *RelationshipRepository) Transaction(ctx context.Context, fn func(relationship.Repository) error) error {
	return r.transaction(ctx, func(tx base) error {
		return fn(&RelationshipRepository{tx})
	})
}

func (r *RelationshipRepository) CreateRelationship(ctx context.Context, rel *league.Relationship) error {
	return r.insert(ctx, collRelationships, rel, league.ErrOpenRelationshipExists)
}

func (r *RelationshipRepository) UpdateRelationship(ctx context.Context, rel *league.Relationship, expected league.RelationshipState) error {
	result, err := r.coll(collRelationships).ReplaceOne(r.ctx(ctx), bson.M{"_id": rel.ID, "state": expected}, rel)
	if err != nil {
		if driver.IsDuplicateKeyError(err) {
			return league.ErrOpenRelationshipExists
		}
		return err
	}
	if result.MatchedCount == 0 {
		return r.missedWrite(ctx, rel.ID)
	}
	return nil
}

func (r *RelationshipRepository) DeleteRelationship(ctx context.Context, id string, expected league.RelationshipState) error {
	result, err := r.coll(collRelationships).DeleteOne(r.ctx(ctx), bson.M{"_id": id, "state": expected})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return r.missedWrite(ctx, id)
	}
	return nil
}

func (r *RelationshipRepository) missedWrite(ctx context.Context, id string) error {
	count, err := r.coll(collRelationships).CountDocuments(r.ctx(ctx), bson.M{"_id": id})
	if err != nil {
		return err
	}
	if count == 0 {
		return league.ErrRelationshipNotFound
	}
	return league.ErrRelationshipStateChanged
}

func (r *RelationshipRepository) ExistsRelationship(ctx context.Context, query league.PairQuery) (bool, error) {
	filter := bson.M{
		"kind":       query.Kind,
		"owner_a_id": query.OwnerAID,
		"owner_b_id": query.OwnerBID,
	}
	if len(query.States) > 0 {
		filter["state"] = bson.M{"$in": query.States}
	}
	if query.ExcludeID != "" {
		filter["_id"] = bson.M{"$ne": query.ExcludeID}
	}

	count, err := r.coll(collRelationships).CountDocuments(r.ctx(ctx), filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *RelationshipRepository) ListRelationships(ctx context.Context, filter league.RelationshipFilter) ([]league.Relationship, int64, error) {
	query := bson.M{}
	if filter.Kind != "" {
		query["kind"] = filter.Kind
	}
	if filter.OwnerAID != "" {
		query["owner_a_id"] = filter.OwnerAID
	}
	if filter.OwnerBID != "" {
		query["owner_b_id"] = filter.OwnerBID
	}
	if filter.State != "" {
		query["state"] = filter.State
	}

	coll := r.coll(collRelationships)
	total, err := coll.CountDocuments(r.ctx(ctx), query)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := coll.Find(r.ctx(ctx), query, findOptions(filter.Limit, filter.Offset))
	if err != nil {
		return nil, 0, err
	}
	items := []league.Relationship{}
	if err := cursor.All(r.ctx(ctx), &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *RelationshipRepository) AppendRelationshipEvent(ctx context.Context, event *league.RelationshipEvent) error {
	return r.insert(ctx, collEvents, event, nil)
}

func (r *RelationshipRepository) ListRelationshipEvents(ctx context.Context, relationshipID string) ([]league.RelationshipEvent, error) {
	cursor, err := r.coll(collEvents).Find(r.ctx(ctx),
		bson.M{"relationship_id": relationshipID},
		options.Find().SetSort(bson.D{{Key: "at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	events := []league.RelationshipEvent{}
	if err := cursor.All(r.ctx(ctx), &events); err != nil {
		return nil, err
	}
	return events, nil
}
