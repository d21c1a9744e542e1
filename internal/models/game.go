package models

import (
	"time"

	"courtside/internal/projection"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Game is one scheduled or finished league game.
type Game struct {
	GameID         string      `gorm:"primaryKey;size:16" json:"game_id"`
	GameDateEst    time.Time   `gorm:"index;not null" json:"game_date_est"`
	GameSequence   int         `json:"game_sequence"`
	GameStatusID   int         `gorm:"index" json:"game_status_id"`
	GameStatusText string      `gorm:"size:32" json:"game_status_text"`
	GameCode       string      `gorm:"size:32" json:"gamecode"`
	HomeTeamID     uint        `gorm:"index;not null" json:"home_team_id"`
	HomeTeam       *Team       `gorm:"foreignKey:HomeTeamID;constraint:OnDelete:CASCADE" json:"home_team,omitempty"`
	VisitorTeamID  uint        `gorm:"index;not null" json:"visitor_team_id"`
	VisitorTeam    *Team       `gorm:"foreignKey:VisitorTeamID;constraint:OnDelete:CASCADE" json:"visitor_team,omitempty"`
	Season         string      `gorm:"size:8;index" json:"season"`
	LivePeriod     int         `json:"live_period"`
	ArenaName      string      `gorm:"size:128" json:"arena_name"`
	Broadcaster    string      `gorm:"size:64" json:"natl_tv_broadcaster_abbreviation"`
	LineScores     []LineScore `gorm:"foreignKey:GameID;references:GameID;constraint:OnDelete:CASCADE" json:"linescore_set,omitempty"`
}

// Game status ids as published by the league.
const (
	GameStatusScheduled = 1
	GameStatusLive      = 2
	GameStatusFinal     = 3
)

func (g *Game) ProjectionSchema() *projection.Schema { return GameSchema }

func (g *Game) ProjectionFields() []projection.Field {
	return []projection.Field{
		projection.Value("game_id", g.GameID),
		projection.Value("game_date_est", g.GameDateEst),
		projection.Value("game_sequence", g.GameSequence),
		projection.Value("game_status_id", g.GameStatusID),
		projection.Value("game_status_text", g.GameStatusText),
		projection.Value("gamecode", g.GameCode),
		projection.One("home_team", "team", g.HomeTeam),
		projection.One("visitor_team", "team", g.VisitorTeam),
		projection.Value("season", g.Season),
		projection.Value("live_period", g.LivePeriod),
		projection.Value("arena_name", g.ArenaName),
		projection.Value("natl_tv_broadcaster_abbreviation", g.Broadcaster),
		projection.Many("linescore_set", "linescore", g.LineScores),
	}
}

// LineScore is one team's scoring by quarter in a game.
type LineScore struct {
	LineScoreID string `gorm:"primaryKey;size:36" json:"line_score_id"`
	GameID      string `gorm:"size:16;not null;uniqueIndex:idx_game_team" json:"game_id"`
	TeamID      uint   `gorm:"not null;uniqueIndex:idx_game_team" json:"team_id"`
	Team        *Team  `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"team,omitempty"`
	PtsQtr1     *int   `json:"pts_qtr1"`
	PtsQtr2     *int   `json:"pts_qtr2"`
	PtsQtr3     *int   `json:"pts_qtr3"`
	PtsQtr4     *int   `json:"pts_qtr4"`
	PtsOT1      *int   `gorm:"column:pts_ot1" json:"pts_ot1"`
	Pts         *int   `json:"pts"`
}

// BeforeCreate assigns a UUID primary key.
func (l *LineScore) BeforeCreate(*gorm.DB) error {
	if l.LineScoreID == "" {
		l.LineScoreID = uuid.NewString()
	}
	return nil
}

func (l *LineScore) ProjectionSchema() *projection.Schema { return LineScoreSchema }

func (l *LineScore) ProjectionFields() []projection.Field {
	return []projection.Field{
		projection.Value("line_score_id", l.LineScoreID),
		projection.Value("game_id", l.GameID),
		projection.One("team", "team", l.Team),
		projection.Value("pts_qtr1", l.PtsQtr1),
		projection.Value("pts_qtr2", l.PtsQtr2),
		projection.Value("pts_qtr3", l.PtsQtr3),
		projection.Value("pts_qtr4", l.PtsQtr4),
		projection.Value("pts_ot1", l.PtsOT1),
		projection.Value("pts", l.Pts),
	}
}
