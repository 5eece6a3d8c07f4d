package relational

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"league-app-go/internal/domain/editrequest"
	"league-app-go/internal/domain/league"
	"league-app-go/internal/domain/user"
)

// Store is the gorm-backed Entity Store. It works with the postgres and the
// sqlite dialector; the open-pair rule relies on a unique index over
// open_pair_key, which both engines enforce while allowing many NULLs.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) League() *LeagueRepository {
	return &LeagueRepository{base{db: s.db}}
}

func (s *Store) Relationships() *RelationshipRepository {
	return &RelationshipRepository{base{db: s.db}}
}

func (s *Store) EditRequests() *EditRequestRepository {
	return &EditRequestRepository{base{db: s.db}}
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{db: s.db}
}

// Models lists every table of the store, in creation order.
func Models() []interface{} {
	return []interface{}{
		&league.Team{},
		&league.Player{},
		&league.Competition{},
		&league.Match{},
		&league.MatchSet{},
		&league.PlayerMatchStats{},
		&league.TeamMatchStats{},
		&league.Relationship{},
		&league.RelationshipEvent{},
		&editrequest.EditRequest{},
		&user.Profile{},
	}
}

// base holds the Entity Store reads and writes shared by every adapter, so an
// adapter bound to a transaction reads its own uncommitted writes.
type base struct {
	db *gorm.DB
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isMalformedID reports a postgres rejection of a value cast to a uuid column.
func isMalformedID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

func paginate(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}
