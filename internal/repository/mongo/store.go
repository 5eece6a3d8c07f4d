package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collTeams         = "teams"
	collPlayers       = "players"
	collCompetitions  = "competitions"
	collMatches       = "matches"
	collMatchSets     = "match_sets"
	collPlayerStats   = "player_match_stats"
	collTeamStats     = "team_match_stats"
	collRelationships = "relationships"
	collEvents        = "relationship_events"
	collEditRequests  = "edit_requests"
	collProfiles      = "user_profiles"
)

// Store is the document-backed Entity Store. Transactions need a replica set.
type Store struct {
	client *driver.Client
	db     *driver.Database
}

func Connect(ctx context.Context, uri, database string) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := driver.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) League() *LeagueRepository {
	return &LeagueRepository{s.base()}
}

func (s *Store) Relationships() *RelationshipRepository {
	return &RelationshipRepository{s.base()}
}

func (s *Store) EditRequests() *EditRequestRepository {
	return &EditRequestRepository{s.base()}
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{db: s.db}
}

func (s *Store) base() base {
	return base{client: s.client, db: s.db}
}

// EnsureIndexes creates the unique and lookup indexes. The partial unique
// index on open_pair_key only covers documents where the key is present,
// which is exactly the pending and accepted relationships.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]driver.IndexModel{
		collRelationships: {
			{
				Keys: bson.D{{Key: "open_pair_key", Value: 1}},
				Options: options.Index().
					SetName("uniq_open_pair_key").
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"open_pair_key": bson.M{"$type": "string"}}),
			},
			{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "owner_a_id", Value: 1}, {Key: "owner_b_id", Value: 1}}},
			{Keys: bson.D{{Key: "state", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		collEvents: {
			{Keys: bson.D{{Key: "relationship_id", Value: 1}, {Key: "at", Value: 1}}},
		},
		collMatchSets: {
			{Keys: bson.D{{Key: "match_id", Value: 1}, {Key: "number", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collPlayerStats: {
			{Keys: bson.D{{Key: "match_id", Value: 1}, {Key: "player_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collTeamStats: {
			{Keys: bson.D{{Key: "match_id", Value: 1}, {Key: "team_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collEditRequests: {
			{Keys: bson.D{{Key: "state", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "target_id", Value: 1}}},
			{Keys: bson.D{{Key: "created_by", Value: 1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure indexes %s: %w", coll, err)
		}
	}
	return nil
}

// base is shared by every adapter. A non-nil session binds all operations to
// the running transaction.
type base struct {
	client  *driver.Client
	db      *driver.Database
	session driver.Session
}

func (b base) ctx(ctx context.Context) context.Context {
	if b.session == nil {
		return ctx
	}
	return driver.NewSessionContext(ctx, b.session)
}

func (b base) coll(name string) *driver.Collection {
	return b.db.Collection(name)
}

func (b base) transaction(ctx context.Context, fn func(base) error) error {
	if b.session != nil {
		return fn(b)
	}

	session, err := b.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc driver.SessionContext) (interface{}, error) {
		return nil, fn(base{client: b.client, db: b.db, session: session})
	})
	return err
}

func findByID[T any](ctx context.Context, coll *driver.Collection, id string, notFound error) (*T, error) {
	var record T
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&record); err != nil {
		if errors.Is(err, driver.ErrNoDocuments) {
			return nil, notFound
		}
		return nil, err
	}
	return &record, nil
}

func findOptions(limit, offset int) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	return opts
}
