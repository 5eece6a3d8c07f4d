package league

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"league-app-go/internal/domain/shared"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type CreateMatchInput struct {
	CompetitionID *string
	HomeTeamID    string
	AwayTeamID    string
	ScheduledAt   *time.Time
}

type CreateMatchSetInput struct {
	Number     int
	HomePoints int
	AwayPoints int
}

type CreatePlayerStatsInput struct {
	PlayerID string
	TeamID   string
	StatLine
}

type CreateTeamStatsInput struct {
	TeamID string
	StatLine
}

func (s *Service) CreateTeam(ctx context.Context, actor shared.Actor, name string) (*Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	now := s.now().UTC()
	team := Team{ID: uuid.NewString(), Name: name, Ownership: NewOwnership(actor.ID), CreatedAt: now, UpdatedAt: now}
	if err := s.repo.CreateTeam(ctx, &team); err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *Service) CreatePlayer(ctx context.Context, actor shared.Actor, name string) (*Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	now := s.now().UTC()
	player := Player{ID: uuid.NewString(), Name: name, Ownership: NewOwnership(actor.ID), CreatedAt: now, UpdatedAt: now}
	if err := s.repo.CreatePlayer(ctx, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Service) CreateCompetition(ctx context.Context, actor shared.Actor, name string) (*Competition, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	now := s.now().UTC()
	competition := Competition{ID: uuid.NewString(), Name: name, Ownership: NewOwnership(actor.ID), CreatedAt: now, UpdatedAt: now}
	if err := s.repo.CreateCompetition(ctx, &competition); err != nil {
		return nil, err
	}
	return &competition, nil
}

// CreateMatch schedules a match. Matches inside a competition may only be
// created by that competition's approvers.
func (s *Service) CreateMatch(ctx context.Context, actor shared.Actor, input CreateMatchInput) (*Match, error) {
	if input.HomeTeamID == "" || input.AwayTeamID == "" {
		return nil, ErrTeamsRequired
	}
	if input.HomeTeamID == input.AwayTeamID {
		return nil, ErrSameTeams
	}
	if _, err := s.repo.GetTeam(ctx, input.HomeTeamID); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetTeam(ctx, input.AwayTeamID); err != nil {
		return nil, err
	}

	var competitionID *string
	if input.CompetitionID != nil && *input.CompetitionID != "" {
		competition, err := s.repo.GetCompetition(ctx, *input.CompetitionID)
		if err != nil {
			return nil, err
		}
		if !actor.IsGlobalAdmin() && !competition.IsApprover(actor.ID) {
			return nil, ErrNotAnApprover
		}
		id := competition.ID
		competitionID = &id
	}

	now := s.now().UTC()
	match := Match{
		ID:            uuid.NewString(),
		CompetitionID: competitionID,
		HomeTeamID:    input.HomeTeamID,
		AwayTeamID:    input.AwayTeamID,
		Status:        MatchStatusScheduled,
		ScheduledAt:   input.ScheduledAt,
		Ownership:     NewOwnership(actor.ID),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.CreateMatch(ctx, &match); err != nil {
		return nil, err
	}
	return &match, nil
}

func (s *Service) GetTeam(ctx context.Context, id string) (*Team, error) {
	return s.repo.GetTeam(ctx, id)
}

func (s *Service) GetPlayer(ctx context.Context, id string) (*Player, error) {
	return s.repo.GetPlayer(ctx, id)
}

func (s *Service) GetCompetition(ctx context.Context, id string) (*Competition, error) {
	return s.repo.GetCompetition(ctx, id)
}

func (s *Service) GetMatch(ctx context.Context, id string) (*Match, error) {
	return s.repo.GetMatch(ctx, id)
}

func (s *Service) AddMatchSet(ctx context.Context, actor shared.Actor, matchID string, input CreateMatchSetInput) (*MatchSet, error) {
	if input.Number < 1 || input.HomePoints < 0 || input.AwayPoints < 0 {
		return nil, ErrInvalidSetScore
	}
	if _, err := s.managedMatch(ctx, actor, matchID); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	set := MatchSet{
		ID:         uuid.NewString(),
		MatchID:    matchID,
		Number:     input.Number,
		HomePoints: input.HomePoints,
		AwayPoints: input.AwayPoints,
		CreatedBy:  actor.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.CreateMatchSet(ctx, &set); err != nil {
		return nil, err
	}
	return &set, nil
}

func (s *Service) AddPlayerStats(ctx context.Context, actor shared.Actor, matchID string, input CreatePlayerStatsInput) (*PlayerMatchStats, error) {
	match, err := s.managedMatch(ctx, actor, matchID)
	if err != nil {
		return nil, err
	}
	if input.TeamID != match.HomeTeamID && input.TeamID != match.AwayTeamID {
		return nil, ErrTeamNotInMatch
	}
	if _, err := s.repo.GetPlayer(ctx, input.PlayerID); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	stats := PlayerMatchStats{
		ID:        uuid.NewString(),
		MatchID:   matchID,
		PlayerID:  input.PlayerID,
		TeamID:    input.TeamID,
		StatLine:  input.StatLine,
		CreatedBy: actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreatePlayerMatchStats(ctx, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *Service) AddTeamStats(ctx context.Context, actor shared.Actor, matchID string, input CreateTeamStatsInput) (*TeamMatchStats, error) {
	match, err := s.managedMatch(ctx, actor, matchID)
	if err != nil {
		return nil, err
	}
	if input.TeamID != match.HomeTeamID && input.TeamID != match.AwayTeamID {
		return nil, ErrTeamNotInMatch
	}
	now := s.now().UTC()
	stats := TeamMatchStats{
		ID:        uuid.NewString(),
		MatchID:   matchID,
		TeamID:    input.TeamID,
		StatLine:  input.StatLine,
		CreatedBy: actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateTeamMatchStats(ctx, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// AddAdministrator grants userID approver rights on an owning entity. Only a
// current approver of that entity or a global administrator may do so.
func (s *Service) AddAdministrator(ctx context.Context, actor shared.Actor, kind EntityKind, id, userID string) (StringList, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	switch kind {
	case KindTeam, KindPlayer, KindCompetition, KindMatch:
	default:
		return nil, ErrUnknownEntityKind
	}

	var administrators StringList
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		ownership, err := LoadOwnership(ctx, tx, kind, id)
		if err != nil {
			return err
		}
		if !actor.IsGlobalAdmin() && !ownership.IsApprover(actor.ID) {
			return ErrNotAnApprover
		}
		administrators = ownership.Administrators.With(userID)
		return tx.SetAdministrators(ctx, kind, id, administrators)
	})
	if err != nil {
		return nil, err
	}
	return administrators, nil
}

// managedMatch loads a match the actor may record results for: approvers of
// its competition, or of the match itself when standalone.
func (s *Service) managedMatch(ctx context.Context, actor shared.Actor, matchID string) (*Match, error) {
	match, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if actor.IsGlobalAdmin() {
		return match, nil
	}
	ownership := match.Ownership
	if !match.IsStandalone() {
		ownership, err = LoadOwnership(ctx, s.repo, KindCompetition, *match.CompetitionID)
		if err != nil {
			return nil, err
		}
	}
	if !ownership.IsApprover(actor.ID) {
		return nil, ErrNotAnApprover
	}
	return match, nil
}
