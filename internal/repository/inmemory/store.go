package inmemory

import (
	"context"
	"sync"

	"league-app-go/internal/domain/editrequest"
	"league-app-go/internal/domain/league"
	"league-app-go/internal/domain/user"
)

// Store keeps every collection in process memory. Transactions are
// serialized: each one works on a copy of the state that replaces the
// original only when the callback succeeds.
type Store struct {
	db *database
}

type database struct {
	mu sync.RWMutex
	st *state
}

type state struct {
	teams         map[string]league.Team
	players       map[string]league.Player
	competitions  map[string]league.Competition
	matches       map[string]league.Match
	sets          map[string]league.MatchSet
	playerStats   map[string]league.PlayerMatchStats
	teamStats     map[string]league.TeamMatchStats
	relationships map[string]league.Relationship
	events        []league.RelationshipEvent
	editRequests  map[string]editrequest.EditRequest
	profiles      map[string]user.Profile
}

func NewStore() *Store {
	return &Store{db: &database{st: newState()}}
}

func newState() *state {
	return &state{
		teams:         make(map[string]league.Team),
		players:       make(map[string]league.Player),
		competitions:  make(map[string]league.Competition),
		matches:       make(map[string]league.Match),
		sets:          make(map[string]league.MatchSet),
		playerStats:   make(map[string]league.PlayerMatchStats),
		teamStats:     make(map[string]league.TeamMatchStats),
		relationships: make(map[string]league.Relationship),
		editRequests:  make(map[string]editrequest.EditRequest),
		profiles:      make(map[string]user.Profile),
	}
}

func (s *state) clone() *state {
	out := newState()
	for id, v := range s.teams {
		v.Ownership = cloneOwnership(v.Ownership)
		out.teams[id] = v
	}
	for id, v := range s.players {
		v.Ownership = cloneOwnership(v.Ownership)
		out.players[id] = v
	}
	for id, v := range s.competitions {
		v.Ownership = cloneOwnership(v.Ownership)
		out.competitions[id] = v
	}
	for id, v := range s.matches {
		out.matches[id] = cloneMatch(v)
	}
	for id, v := range s.sets {
		out.sets[id] = v
	}
	for id, v := range s.playerStats {
		out.playerStats[id] = v
	}
	for id, v := range s.teamStats {
		out.teamStats[id] = v
	}
	for id, v := range s.relationships {
		out.relationships[id] = cloneRelationship(v)
	}
	out.events = append(out.events, s.events...)
	for id, v := range s.editRequests {
		out.editRequests[id] = cloneEditRequest(v)
	}
	for id, v := range s.profiles {
		out.profiles[id] = v
	}
	return out
}

func (s *Store) League() *LeagueRepository {
	return &LeagueRepository{view: &view{db: s.db}}
}

func (s *Store) Relationships() *RelationshipRepository {
	return &RelationshipRepository{view: &view{db: s.db}}
}

func (s *Store) EditRequests() *EditRequestRepository {
	return &EditRequestRepository{view: &view{db: s.db}}
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{view: &view{db: s.db}}
}

// view is the data access shared by every repository adapter. tx is set
// while running inside a transaction.
type view struct {
	db *database
	tx *state
}

func (v *view) read(fn func(st *state)) {
	if v.tx != nil {
		fn(v.tx)
		return
	}
	v.db.mu.RLock()
	defer v.db.mu.RUnlock()
	fn(v.db.st)
}

// write runs fn against the live state. fn must validate before mutating.
func (v *view) write(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.db.mu.Lock()
	defer v.db.mu.Unlock()
	return fn(v.db.st)
}

func (v *view) transaction(ctx context.Context, fn func(tx *view) error) error {
	if v.tx != nil {
		return fn(v)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	v.db.mu.Lock()
	defer v.db.mu.Unlock()

	working := v.db.st.clone()
	if err := fn(&view{db: v.db, tx: working}); err != nil {
		return err
	}
	v.db.st = working
	return nil
}

func cloneOwnership(o league.Ownership) league.Ownership {
	o.Administrators = append(league.StringList{}, o.Administrators...)
	return o
}

func cloneMatch(m league.Match) league.Match {
	m.Ownership = cloneOwnership(m.Ownership)
	if m.CompetitionID != nil {
		id := *m.CompetitionID
		m.CompetitionID = &id
	}
	if m.WinnerTeamID != nil {
		id := *m.WinnerTeamID
		m.WinnerTeamID = &id
	}
	return m
}

func cloneRelationship(r league.Relationship) league.Relationship {
	r.Ownership = cloneOwnership(r.Ownership)
	if r.OpenPairKey != nil {
		key := *r.OpenPairKey
		r.OpenPairKey = &key
	}
	return r
}

func cloneEditRequest(r editrequest.EditRequest) editrequest.EditRequest {
	r.ApprovedBy = append(league.StringList{}, r.ApprovedBy...)
	r.ProposedData = append(editrequest.Payload(nil), r.ProposedData...)
	return r
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
