package models

import (
	"time"

	"courtside/internal/projection"
)

// Language is a display language for localized names.
type Language struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:32;uniqueIndex;not null" json:"name"`
	Code string `gorm:"size:16;uniqueIndex;not null" json:"code"`
}

func (l *Language) ProjectionSchema() *projection.Schema { return LanguageSchema }

func (l *Language) ProjectionFields() []projection.Field {
	return []projection.Field{
		projection.Value("id", l.ID),
		projection.Value("name", l.Name),
		projection.Value("code", l.Code),
	}
}

// Team is a league franchise. Its ID is the league's own team id.
type Team struct {
	ID        uint       `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Symbol    string     `gorm:"size:8;uniqueIndex;not null" json:"symbol"`
	TeamNames []TeamName `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"teamname_set,omitempty"`

	Liked *bool `gorm:"->;-:migration" json:"liked,omitempty"`
}

func (t *Team) ProjectionSchema() *projection.Schema { return TeamSchema }

func (t *Team) ProjectionFields() []projection.Field {
	return []projection.Field{
		projection.Value("id", t.ID),
		projection.Value("symbol", t.Symbol),
		projection.Many("teamname_set", "teamname", t.TeamNames),
		projection.Optional("liked", t.Liked),
	}
}

// TeamName is a team's name in one language.
type TeamName struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TeamID     uint      `gorm:"not null;uniqueIndex:idx_team_language" json:"team_id"`
	LanguageID uint      `gorm:"not null;uniqueIndex:idx_team_language" json:"language_id"`
	Language   *Language `gorm:"foreignKey:LanguageID;constraint:OnDelete:CASCADE" json:"language,omitempty"`
	Name       string    `gorm:"size:64;not null" json:"name"`
}

func (n *TeamName) ProjectionSchema() *projection.Schema { return TeamNameSchema }

func (n *TeamName) ProjectionFields() []projection.Field {
	return []projection.Field{
		projection.Value("id", n.ID),
		projection.Value("name", n.Name),
		projection.One("language", "language", n.Language),
	}
}

// TeamLike marks a team as one of a user's favorites.
type TeamLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_team" json:"user_id"`
	TeamID    uint      `gorm:"not null;uniqueIndex:idx_user_team;index" json:"team_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Team      *Team     `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
