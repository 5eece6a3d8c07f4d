package league

import "time"

type EntityKind string

const (
	KindTeam             EntityKind = "team"
	KindPlayer           EntityKind = "player"
	KindCompetition      EntityKind = "competition"
	KindMatch            EntityKind = "match"
	KindMatchSet         EntityKind = "set"
	KindPlayerMatchStats EntityKind = "playerMatchStats"
	KindTeamMatchStats   EntityKind = "teamMatchStats"
	KindRelationship     EntityKind = "relationship"
)

func (k EntityKind) Valid() bool {
	switch k {
	case KindTeam, KindPlayer, KindCompetition, KindMatch, KindMatchSet,
		KindPlayerMatchStats, KindTeamMatchStats, KindRelationship:
		return true
	default:
		return false
	}
}

const (
	MatchStatusScheduled  = "scheduled"
	MatchStatusInProgress = "in_progress"
	MatchStatusFinished   = "finished"
)

// Ownership is carried by every entity that can authorize changes.
type Ownership struct {
	CreatedBy      string     `gorm:"not null" bson:"created_by"`
	Administrators StringList `gorm:"type:text;not null" bson:"administrators"`
}

// Approvers returns the creator followed by the administrators, without duplicates.
func (o Ownership) Approvers() []string {
	result := make([]string, 0, len(o.Administrators)+1)
	seen := make(map[string]struct{}, len(o.Administrators)+1)
	for _, id := range append([]string{o.CreatedBy}, o.Administrators...) {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

func (o Ownership) IsApprover(userID string) bool {
	if userID == "" {
		return false
	}
	return o.CreatedBy == userID || o.Administrators.Contains(userID)
}

func NewOwnership(creatorID string) Ownership {
	return Ownership{CreatedBy: creatorID, Administrators: StringList{creatorID}}
}

type Team struct {
	ID        string `gorm:"type:uuid;primaryKey" bson:"_id"`
	Name      string `gorm:"not null" bson:"name"`
	Ownership `gorm:"embedded" bson:",inline"`
	CreatedAt time.Time `gorm:"autoCreateTime" bson:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" bson:"updated_at"`
}

type Player struct {
	ID        string `gorm:"type:uuid;primaryKey" bson:"_id"`
	Name      string `gorm:"not null" bson:"name"`
	Ownership `gorm:"embedded" bson:",inline"`
	CreatedAt time.Time `gorm:"autoCreateTime" bson:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" bson:"updated_at"`
}

type Competition struct {
	ID        string `gorm:"type:uuid;primaryKey" bson:"_id"`
	Name      string `gorm:"not null" bson:"name"`
	Ownership `gorm:"embedded" bson:",inline"`
	CreatedAt time.Time `gorm:"autoCreateTime" bson:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" bson:"updated_at"`
}

type Match struct {
	ID            string     `gorm:"type:uuid;primaryKey" bson:"_id"`
	CompetitionID *string    `gorm:"type:uuid;index" bson:"competition_id,omitempty"`
	HomeTeamID    string     `gorm:"type:uuid;not null" bson:"home_team_id"`
	AwayTeamID    string     `gorm:"type:uuid;not null" bson:"away_team_id"`
	Status        string     `gorm:"type:varchar(16);not null" bson:"status"`
	HomeScore     int        `gorm:"not null;default:0" bson:"home_score"`
	AwayScore     int        `gorm:"not null;default:0" bson:"away_score"`
	WinnerTeamID  *string    `gorm:"type:uuid" bson:"winner_team_id,omitempty"`
	ScheduledAt   *time.Time `bson:"scheduled_at,omitempty"`
	Ownership     `gorm:"embedded" bson:",inline"`
	CreatedAt     time.Time `gorm:"autoCreateTime" bson:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" bson:"updated_at"`
}

// IsStandalone reports whether the match is outside any competition.
func (m *Match) IsStandalone() bool {
	return m.CompetitionID == nil || *m.CompetitionID == ""
}

type MatchSet struct {
	ID         string    `gorm:"type:uuid;primaryKey" bson:"_id"`
	MatchID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_match_sets_number" bson:"match_id"`
	Number     int       `gorm:"not null;uniqueIndex:idx_match_sets_number" bson:"number"`
	HomePoints int       `gorm:"not null;default:0" bson:"home_points"`
	AwayPoints int       `gorm:"not null;default:0" bson:"away_points"`
	CreatedBy  string    `gorm:"not null" bson:"created_by"`
	CreatedAt  time.Time `gorm:"autoCreateTime" bson:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" bson:"updated_at"`
}

// StatLine holds the counters shared by player and team match statistics.
type StatLine struct {
	Points int `gorm:"not null;default:0" bson:"points"`
	Aces   int `gorm:"not null;default:0" bson:"aces"`
	Blocks int `gorm:"not null;default:0" bson:"blocks"`
	Errors int `gorm:"not null;default:0" bson:"errors"`
}

type PlayerMatchStats struct {
	ID        string `gorm:"type:uuid;primaryKey" bson:"_id"`
	MatchID   string `gorm:"type:uuid;not null;uniqueIndex:idx_player_match_stats_player" bson:"match_id"`
	PlayerID  string `gorm:"type:uuid;not null;uniqueIndex:idx_player_match_stats_player" bson:"player_id"`
	TeamID    string `gorm:"type:uuid;not null" bson:"team_id"`
	StatLine  `gorm:"embedded" bson:",inline"`
	CreatedBy string    `gorm:"not null" bson:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" bson:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" bson:"updated_at"`
}

func (PlayerMatchStats) TableName() string {
	return "player_match_stats"
}

type TeamMatchStats struct {
	ID        string `gorm:"type:uuid;primaryKey" bson:"_id"`
	MatchID   string `gorm:"type:uuid;not null;uniqueIndex:idx_team_match_stats_team" bson:"match_id"`
	TeamID    string `gorm:"type:uuid;not null;uniqueIndex:idx_team_match_stats_team" bson:"team_id"`
	StatLine  `gorm:"embedded" bson:",inline"`
	CreatedBy string    `gorm:"not null" bson:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" bson:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" bson:"updated_at"`
}

func (TeamMatchStats) TableName() string {
	return "team_match_stats"
}
