package repository

import (
	"context"

	"courtside/internal/models"
	"courtside/internal/observability"

	"gorm.io/gorm"
)

// GameRepository reads the schedule and results of games.
type GameRepository interface {
	ListByTeam(ctx context.Context, teamID uint) ([]models.Game, error)
	LastPlayed(ctx context.Context, teamID uint, n int) ([]models.Game, error)
	Earliest(ctx context.Context, teamID uint, n int) ([]models.Game, error)
	Upsert(ctx context.Context, game *models.Game) error
}

type gameRepository struct {
	db *gorm.DB
}

// NewGameRepository creates a new GameRepository.
func NewGameRepository(db *gorm.DB) GameRepository {
	return &gameRepository{db: db}
}

func (r *gameRepository) forTeam(ctx context.Context, teamID uint) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("HomeTeam.TeamNames.Language").
		Preload("VisitorTeam.TeamNames.Language").
		Preload("LineScores.Team").
		Where("(games.home_team_id = ? OR games.visitor_team_id = ?)", teamID, teamID)
}

// ListByTeam returns every game of the team in date order.
func (r *gameRepository) ListByTeam(ctx context.Context, teamID uint) ([]models.Game, error) {
	defer observability.TrackQuery("list_by_team", "games")()
	var games []models.Game
	err := r.forTeam(ctx, teamID).
		Order("games.game_date_est").
		Order("games.game_sequence").
		Find(&games).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return games, nil
}

// LastPlayed returns up to n live or finished games, most recent first.
func (r *gameRepository) LastPlayed(ctx context.Context, teamID uint, n int) ([]models.Game, error) {
	defer observability.TrackQuery("last_played", "games")()
	var games []models.Game
	err := r.forTeam(ctx, teamID).
		Where("games.game_status_id IN ?", []int{models.GameStatusLive, models.GameStatusFinal}).
		Order("games.game_date_est DESC").
		Limit(n).
		Find(&games).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return games, nil
}

// Earliest returns the team's first n games of the schedule, whatever their status.
func (r *gameRepository) Earliest(ctx context.Context, teamID uint, n int) ([]models.Game, error) {
	defer observability.TrackQuery("earliest", "games")()
	var games []models.Game
	err := r.forTeam(ctx, teamID).
		Order("games.game_date_est").
		Limit(n).
		Find(&games).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return games, nil
}

// Upsert stores a game and its line scores, replacing existing values.
func (r *gameRepository) Upsert(ctx context.Context, game *models.Game) error {
	defer observability.TrackQuery("upsert", "games")()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scores := game.LineScores
		game.LineScores = nil
		if err := tx.Omit("HomeTeam", "VisitorTeam").Save(game).Error; err != nil {
			return err
		}
		if err := tx.Where("game_id = ?", game.GameID).Delete(&models.LineScore{}).Error; err != nil {
			return err
		}
		for i := range scores {
			scores[i].GameID = game.GameID
			scores[i].Team = nil
		}
		if len(scores) > 0 {
			if err := tx.Create(&scores).Error; err != nil {
				return err
			}
		}
		game.LineScores = scores
		return nil
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
