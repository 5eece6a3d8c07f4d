package league

import (
	"net/http"
	"time"

	leaguedomain "league-app-go/internal/domain/league"
	commonhandler "league-app-go/internal/transport/httpserver/handler/common"
)

type createMatchSetRequest struct {
	Number     int `json:"number"`
	HomePoints int `json:"home_points"`
	AwayPoints int `json:"away_points"`
}

type statLineRequest struct {
	Points int `json:"points"`
	Aces   int `json:"aces"`
	Blocks int `json:"blocks"`
	Errors int `json:"errors"`
}

type createPlayerStatsRequest struct {
	PlayerID string `json:"player_id"`
	TeamID   string `json:"team_id"`
	statLineRequest
}

type createTeamStatsRequest struct {
	TeamID string `json:"team_id"`
	statLineRequest
}

type matchSetResponse struct {
	ID         string    `json:"id"`
	MatchID    string    `json:"match_id"`
	Number     int       `json:"number"`
	HomePoints int       `json:"home_points"`
	AwayPoints int       `json:"away_points"`
	CreatedBy  string    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

type statsResponse struct {
	ID        string    `json:"id"`
	MatchID   string    `json:"match_id"`
	PlayerID  *string   `json:"player_id,omitempty"`
	TeamID    string    `json:"team_id"`
	Points    int       `json:"points"`
	Aces      int       `json:"aces"`
	Blocks    int       `json:"blocks"`
	Errors    int       `json:"errors"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

func (s statLineRequest) toDomain() leaguedomain.StatLine {
	return leaguedomain.StatLine{Points: s.Points, Aces: s.Aces, Blocks: s.Blocks, Errors: s.Errors}
}

func (h *Handlers) AddMatchSet(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	var req createMatchSetRequest
	if err := decodeJSON(r, &req); err != nil {
		commonhandler.WriteInvalidJSON(w)
		return
	}

	matchID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	set, err := h.League.AddMatchSet(r.Context(), user.Actor(), matchID, leaguedomain.CreateMatchSetInput{
		Number:     req.Number,
		HomePoints: req.HomePoints,
		AwayPoints: req.AwayPoints,
	})
	if err != nil {
		writeServiceError(w, h.log, "league.add_set", err, "match_id", matchID, "number", req.Number, "user_id", user.ID)
		return
	}
	writeJSON(w, http.StatusCreated, matchSetResponse{
		ID:         set.ID,
		MatchID:    set.MatchID,
		Number:     set.Number,
		HomePoints: set.HomePoints,
		AwayPoints: set.AwayPoints,
		CreatedBy:  set.CreatedBy,
		CreatedAt:  set.CreatedAt,
	})
}

func (h *Handlers) AddPlayerStats(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	var req createPlayerStatsRequest
	if err := decodeJSON(r, &req); err != nil {
		commonhandler.WriteInvalidJSON(w)
		return
	}

	matchID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	stats, err := h.League.AddPlayerStats(r.Context(), user.Actor(), matchID, leaguedomain.CreatePlayerStatsInput{
		PlayerID: req.PlayerID,
		TeamID:   req.TeamID,
		StatLine: req.toDomain(),
	})
	if err != nil {
		writeServiceError(w, h.log, "league.add_player_stats", err, "match_id", matchID, "player_id", req.PlayerID, "user_id", user.ID)
		return
	}
	playerID := stats.PlayerID
	writeJSON(w, http.StatusCreated, newStatsResponse(stats.ID, stats.MatchID, &playerID, stats.TeamID, stats.StatLine, stats.CreatedBy, stats.CreatedAt))
}

func (h *Handlers) AddTeamStats(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	var req createTeamStatsRequest
	if err := decodeJSON(r, &req); err != nil {
		commonhandler.WriteInvalidJSON(w)
		return
	}

	matchID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	stats, err := h.League.AddTeamStats(r.Context(), user.Actor(), matchID, leaguedomain.CreateTeamStatsInput{
		TeamID:   req.TeamID,
		StatLine: req.toDomain(),
	})
	if err != nil {
		writeServiceError(w, h.log, "league.add_team_stats", err, "match_id", matchID, "team_id", req.TeamID, "user_id", user.ID)
		return
	}
	writeJSON(w, http.StatusCreated, newStatsResponse(stats.ID, stats.MatchID, nil, stats.TeamID, stats.StatLine, stats.CreatedBy, stats.CreatedAt))
}

func newStatsResponse(id, matchID string, playerID *string, teamID string, line leaguedomain.StatLine, createdBy string, createdAt time.Time) statsResponse {
	return statsResponse{
		ID:        id,
		MatchID:   matchID,
		PlayerID:  playerID,
		TeamID:    teamID,
		Points:    line.Points,
		Aces:      line.Aces,
		Blocks:    line.Blocks,
		Errors:    line.Errors,
		CreatedBy: createdBy,
		CreatedAt: createdAt,
	}
}
