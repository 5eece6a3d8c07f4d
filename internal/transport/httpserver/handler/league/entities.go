package league

import (
	"net/http"
	"time"

	leaguedomain "league-app-go/internal/domain/league"
	commonhandler "league-app-go/internal/transport/httpserver/handler/common"
)

type createNamedRequest struct {
	Name string `json:"name"`
}

type createMatchRequest struct {
	CompetitionID *string    `json:"competition_id"`
	HomeTeamID    string     `json:"home_team_id"`
	AwayTeamID    string     `json:"away_team_id"`
	ScheduledAt   *time.Time `json:"scheduled_at"`
}

type addAdministratorRequest struct {
	UserID string `json:"user_id"`
}

type entityResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	CreatedBy      string    `json:"created_by"`
	Administrators []string  `json:"administrators"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type matchResponse struct {
	ID             string     `json:"id"`
	CompetitionID  *string    `json:"competition_id"`
	HomeTeamID     string     `json:"home_team_id"`
	AwayTeamID     string     `json:"away_team_id"`
	Status         string     `json:"status"`
	HomeScore      int        `json:"home_score"`
	AwayScore      int        `json:"away_score"`
	WinnerTeamID   *string    `json:"winner_team_id"`
	ScheduledAt    *time.Time `json:"scheduled_at"`
	CreatedBy      string     `json:"created_by"`
	Administrators []string   `json:"administrators"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type administratorsResponse struct {
	Administrators []string `json:"administrators"`
}

func (h *Handlers) CreateTeam(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	var req createNamedRequest
	if err := decodeJSON(r, &req); err != nil {
		commonhandler.WriteInvalidJSON(w)
		return
	}

	team, err := h.League.CreateTeam(r.Context(), user.Actor(), req.Name)
	if err != nil {
		writeServiceError(w, h.log, "league.create_team", err, "user_id", user.ID)
		return
	}
	writeJSON(w, http.StatusCreated, newEntityResponse(team.ID, team.Name, team.Ownership, team.CreatedAt, team.UpdatedAt))
}

func (h *Handlers) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	var req createNamedRequest
	if err := decodeJSON(r, &req); err != nil {
		commonhandler.WriteInvalidJSON(w)
		return
	}

	player, err := h.League.CreatePlayer(r.Context(), user.Actor(), req.Name)
	if err != nil {
		writeServiceError(w, h.log, "league.create_player", err, "user_id", user.ID)
		return
	}
	writeJSON(w, http.StatusCreated, newEntityResponse(player.ID, player.Name, player.Ownership, player.CreatedAt, player.UpdatedAt))
}

func (h *Handlers) CreateCompetition(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	var req createNamedRequest
	if err := decodeJSON(r, &req); err != nil {
		commonhandler.WriteInvalidJSON(w)
		return
	}

	competition, err := h.League.CreateCompetition(r.Context(), user.Actor(), req.Name)
	if err != nil {
		writeServiceError(w, h.log, "league.create_competition", err, "user_id", user.ID)
		return
	}
	writeJSON(w, http.StatusCreated, newEntityResponse(competition.ID, competition.Name, competition.Ownership, competition.CreatedAt, competition.UpdatedAt))
}

func (h *Handlers) CreateMatch(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	var req createMatchRequest
	if err := decodeJSON(r, &req); err != nil {
		commonhandler.WriteInvalidJSON(w)
		return
	}

	match, err := h.League.CreateMatch(r.Context(), user.Actor(), leaguedomain.CreateMatchInput{
		CompetitionID: req.CompetitionID,
		HomeTeamID:    req.HomeTeamID,
		AwayTeamID:    req.AwayTeamID,
		ScheduledAt:   req.ScheduledAt,
	})
	if err != nil {
		writeServiceError(w, h.log, "league.create_match", err, "user_id", user.ID, "home_team_id", req.HomeTeamID, "away_team_id", req.AwayTeamID)
		return
	}
	writeJSON(w, http.StatusCreated, newMatchResponse(match))
}

func (h *Handlers) GetTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	team, err := h.League.GetTeam(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, "league.get_team", err, "team_id", id)
		return
	}
	writeJSON(w, http.StatusOK, newEntityResponse(team.ID, team.Name, team.Ownership, team.CreatedAt, team.UpdatedAt))
}

func (h *Handlers) GetPlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	player, err := h.League.GetPlayer(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, "league.get_player", err, "player_id", id)
		return
	}
	writeJSON(w, http.StatusOK, newEntityResponse(player.ID, player.Name, player.Ownership, player.CreatedAt, player.UpdatedAt))
}

func (h *Handlers) GetCompetition(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	competition, err := h.League.GetCompetition(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, "league.get_competition", err, "competition_id", id)
		return
	}
	writeJSON(w, http.StatusOK, newEntityResponse(competition.ID, competition.Name, competition.Ownership, competition.CreatedAt, competition.UpdatedAt))
}

func (h *Handlers) GetMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	match, err := h.League.GetMatch(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, "league.get_match", err, "match_id", id)
		return
	}
	writeJSON(w, http.StatusOK, newMatchResponse(match))
}

// AddAdministrator returns the handler granting approver rights on an entity of kind.
func (h *Handlers) AddAdministrator(kind leaguedomain.EntityKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := caller(w, r)
		if !ok {
			return
		}
		var req addAdministratorRequest
		if err := decodeJSON(r, &req); err != nil {
			commonhandler.WriteInvalidJSON(w)
			return
		}

		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		administrators, err := h.League.AddAdministrator(r.Context(), user.Actor(), kind, id, req.UserID)
		if err != nil {
			writeServiceError(w, h.log, "league.add_administrator", err, "kind", kind, "entity_id", id, "user_id", user.ID)
			return
		}
		h.log.Info("league.add_administrator: granted", "kind", kind, "entity_id", id, "administrator_id", req.UserID, "actor_id", user.ID)
		writeJSON(w, http.StatusOK, administratorsResponse{Administrators: nonNil(administrators)})
	}
}

func newEntityResponse(id, name string, ownership leaguedomain.Ownership, createdAt, updatedAt time.Time) entityResponse {
	return entityResponse{
		ID:             id,
		Name:           name,
		CreatedBy:      ownership.CreatedBy,
		Administrators: nonNil(ownership.Administrators),
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}
}

func newMatchResponse(m *leaguedomain.Match) matchResponse {
	return matchResponse{
		ID:             m.ID,
		CompetitionID:  m.CompetitionID,
		HomeTeamID:     m.HomeTeamID,
		AwayTeamID:     m.AwayTeamID,
		Status:         m.Status,
		HomeScore:      m.HomeScore,
		AwayScore:      m.AwayScore,
		WinnerTeamID:   m.WinnerTeamID,
		ScheduledAt:    m.ScheduledAt,
		CreatedBy:      m.CreatedBy,
		Administrators: nonNil(m.Administrators),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func nonNil(list leaguedomain.StringList) []string {
	if list == nil {
		return []string{}
	}
	return []string(list)
}
