package inmemory

import (
	"context"

	"league-app-go/internal/domain/league"
)

type LeagueRepository struct {
	*view
}

func (r *LeagueRepository) Transaction(ctx context.Context, fn func(league.Repository) error) error {
	return r.transaction(ctx, func(tx *view) error {
		return fn(&LeagueRepository{view: tx})
	})
}

func (v *view) GetTeam(ctx context.Context, id string) (*league.Team, error) {
	var (
		team league.Team
		ok   bool
	)
	v.read(func(st *state) {
		team, ok = st.teams[id]
	})
	if !ok {
		return nil, league.ErrTeamNotFound
	}
	team.Ownership = cloneOwnership(team.Ownership)
	return &team, nil
}

func (v *view) GetPlayer(ctx context.Context, id string) (*league.Player, error) {
	var (
		player league.Player
		ok     bool
	)
	v.read(func(st *state) {
		player, ok = st.players[id]
	})
	if !ok {
		return nil, league.ErrPlayerNotFound
	}
	player.Ownership = cloneOwnership(player.Ownership)
	return &player, nil
}

func (v *view) GetCompetition(ctx context.Context, id string) (*league.Competition, error) {
	var (
		competition league.Competition
		ok          bool
	)
	v.read(func(st *state) {
		competition, ok = st.competitions[id]
	})
	if !ok {
		return nil, league.ErrCompetitionNotFound
	}
	competition.Ownership = cloneOwnership(competition.Ownership)
	return &competition, nil
}

func (v *view) GetMatch(ctx context.Context, id string) (*league.Match, error) {
	var (
		match league.Match
		ok    bool
	)
	v.read(func(st *state) {
		match, ok = st.matches[id]
	})
	if !ok {
		return nil, league.ErrMatchNotFound
	}
	match = cloneMatch(match)
	return &match, nil
}

func (v *view) GetMatchSet(ctx context.Context, id string) (*league.MatchSet, error) {
	var (
		set league.MatchSet
		ok  bool
	)
	v.read(func(st *state) {
		set, ok = st.sets[id]
	})
	if !ok {
		return nil, league.ErrMatchSetNotFound
	}
	return &set, nil
}

func (v *view) GetPlayerMatchStats(ctx context.Context, id string) (*league.PlayerMatchStats, error) {
	var (
		stats league.PlayerMatchStats
		ok    bool
	)
	v.read(func(st *state) {
		stats, ok = st.playerStats[id]
	})
	if !ok {
		return nil, league.ErrPlayerMatchStatsNotFound
	}
	return &stats, nil
}

func (v *view) GetTeamMatchStats(ctx context.Context, id string) (*league.TeamMatchStats, error) {
	var (
		stats league.TeamMatchStats
		ok    bool
	)
	v.read(func(st *state) {
		stats, ok = st.teamStats[id]
	})
	if !ok {
		return nil, league.ErrTeamMatchStatsNotFound
	}
	return &stats, nil
}

func (v *view) CreateTeam(ctx context.Context, team *league.Team) error {
	return v.write(func(st *state) error {
		value := *team
		value.Ownership = cloneOwnership(team.Ownership)
		st.teams[team.ID] = value
		return nil
	})
}

func (v *view) CreatePlayer(ctx context.Context, player *league.Player) error {
	return v.write(func(st *state) error {
		value := *player
		value.Ownership = cloneOwnership(player.Ownership)
		st.players[player.ID] = value
		return nil
	})
}

func (v *view) CreateCompetition(ctx context.Context, competition *league.Competition) error {
	return v.write(func(st *state) error {
		value := *competition
		value.Ownership = cloneOwnership(competition.Ownership)
		st.competitions[competition.ID] = value
		return nil
	})
}

func (v *view) CreateMatch(ctx context.Context, match *league.Match) error {
	return v.write(func(st *state) error {
		st.matches[match.ID] = cloneMatch(*match)
		return nil
	})
}

func (v *view) CreateMatchSet(ctx context.Context, set *league.MatchSet) error {
	return v.write(func(st *state) error {
		for _, existing := range st.sets {
			if existing.MatchID == set.MatchID && existing.Number == set.Number {
				return league.ErrSetNumberTaken
			}
		}
		st.sets[set.ID] = *set
		return nil
	})
}

func (v *view) CreatePlayerMatchStats(ctx context.Context, stats *league.PlayerMatchStats) error {
	return v.write(func(st *state) error {
		for _, existing := range st.playerStats {
			if existing.MatchID == stats.MatchID && existing.PlayerID == stats.PlayerID {
				return league.ErrStatsAlreadyRecorded
			}
		}
		st.playerStats[stats.ID] = *stats
		return nil
	})
}

func (v *view) CreateTeamMatchStats(ctx context.Context, stats *league.TeamMatchStats) error {
	return v.write(func(st *state) error {
		for _, existing := range st.teamStats {
			if existing.MatchID == stats.MatchID && existing.TeamID == stats.TeamID {
				return league.ErrStatsAlreadyRecorded
			}
		}
		st.teamStats[stats.ID] = *stats
		return nil
	})
}

func (v *view) UpdateMatch(ctx context.Context, match *league.Match) error {
	return v.write(func(st *state) error {
		if _, ok := st.matches[match.ID]; !ok {
			return league.ErrMatchNotFound
		}
		st.matches[match.ID] = cloneMatch(*match)
		return nil
	})
}

func (v *view) UpdateMatchSet(ctx context.Context, set *league.MatchSet) error {
	return v.write(func(st *state) error {
		if _, ok := st.sets[set.ID]; !ok {
			return league.ErrMatchSetNotFound
		}
		st.sets[set.ID] = *set
		return nil
	})
}

func (v *view) UpdatePlayerMatchStats(ctx context.Context, stats *league.PlayerMatchStats) error {
	return v.write(func(st *state) error {
		if _, ok := st.playerStats[stats.ID]; !ok {
			return league.ErrPlayerMatchStatsNotFound
		}
		st.playerStats[stats.ID] = *stats
		return nil
	})
}

func (v *view) UpdateTeamMatchStats(ctx context.Context, stats *league.TeamMatchStats) error {
	return v.write(func(st *state) error {
		if _, ok := st.teamStats[stats.ID]; !ok {
			return league.ErrTeamMatchStatsNotFound
		}
		st.teamStats[stats.ID] = *stats
		return nil
	})
}

func (v *view) SetAdministrators(ctx context.Context, kind league.EntityKind, id string, administrators league.StringList) error {
	admins := append(league.StringList{}, administrators...)
	return v.write(func(st *state) error {
		switch kind {
		case league.KindTeam:
			team, ok := st.teams[id]
			if !ok {
				return league.ErrTeamNotFound
			}
			team.Administrators = admins
			st.teams[id] = team
		case league.KindPlayer:
			player, ok := st.players[id]
			if !ok {
				return league.ErrPlayerNotFound
			}
			player.Administrators = admins
			st.players[id] = player
		case league.KindCompetition:
			competition, ok := st.competitions[id]
			if !ok {
				return league.ErrCompetitionNotFound
			}
			competition.Administrators = admins
			st.competitions[id] = competition
		case league.KindMatch:
			match, ok := st.matches[id]
			if !ok {
				return league.ErrMatchNotFound
			}
			match.Administrators = admins
			st.matches[id] = match
		default:
			return league.ErrUnknownEntityKind
		}
		return nil
	})
}
