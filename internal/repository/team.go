package repository

import (
	"context"
	"errors"

	"courtside/internal/models"
	"courtside/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TeamRepository reads teams and manages users' favorite teams.
type TeamRepository interface {
	List(ctx context.Context) ([]models.Team, error)
	GetByID(ctx context.Context, id uint, viewer *uint) (*models.Team, error)
	Favorites(ctx context.Context, userID uint) ([]models.Team, error)
	ReplaceFavorites(ctx context.Context, userID uint, teamIDs []uint) error
	AddFavorite(ctx context.Context, userID, teamID uint) error
	RemoveFavorite(ctx context.Context, userID, teamID uint) (bool, error)
}

type teamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new TeamRepository.
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) List(ctx context.Context) ([]models.Team, error) {
	defer observability.TrackQuery("list", "teams")()
	var teams []models.Team
	err := r.db.WithContext(ctx).
		Preload("TeamNames.Language").
		Order("teams.symbol").
		Find(&teams).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return teams, nil
}

// GetByID loads one team; with a viewer the liked flag reflects their favorites.
func (r *teamRepository) GetByID(ctx context.Context, id uint, viewer *uint) (*models.Team, error) {
	defer observability.TrackQuery("get", "teams")()
	q := r.db.WithContext(ctx).Model(&models.Team{}).Preload("TeamNames.Language")
	if viewer != nil {
		q = q.Select("teams.*, EXISTS(SELECT 1 FROM team_likes WHERE team_likes.team_id = teams.id AND team_likes.user_id = ?) AS liked", *viewer)
	}
	var team models.Team
	if err := q.Where("teams.id = ?", id).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Team", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &team, nil
}

// Favorites lists the user's favorite teams by symbol. A join would make GORM
// name every readable field, including the computed liked column.
func (r *teamRepository) Favorites(ctx context.Context, userID uint) ([]models.Team, error) {
	defer observability.TrackQuery("favorites", "team_likes")()
	var teams []models.Team
	err := r.db.WithContext(ctx).
		Preload("TeamNames.Language").
		Where("teams.id IN (SELECT team_id FROM team_likes WHERE user_id = ?)", userID).
		Order("teams.symbol").
		Find(&teams).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return teams, nil
}

// ReplaceFavorites makes teamIDs the user's exact favorite set. Unknown ids are ignored.
func (r *teamRepository) ReplaceFavorites(ctx context.Context, userID uint, teamIDs []uint) error {
	defer observability.TrackQuery("replace_favorites", "team_likes")()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.TeamLike{}).Error; err != nil {
			return err
		}
		if len(teamIDs) == 0 {
			return nil
		}
		var existing []uint
		if err := tx.Model(&models.Team{}).Where("id IN ?", teamIDs).Pluck("id", &existing).Error; err != nil {
			return err
		}
		if len(existing) == 0 {
			return nil
		}
		likes := make([]models.TeamLike, 0, len(existing))
		for _, id := range existing {
			likes = append(likes, models.TeamLike{UserID: userID, TeamID: id})
		}
		return tx.Create(&likes).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *teamRepository) AddFavorite(ctx context.Context, userID, teamID uint) error {
	defer observability.TrackQuery("add_favorite", "team_likes")()
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "team_id"}},
			DoNothing: true,
		}).
		Create(&models.TeamLike{UserID: userID, TeamID: teamID}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *teamRepository) RemoveFavorite(ctx context.Context, userID, teamID uint) (bool, error) {
	defer observability.TrackQuery("remove_favorite", "team_likes")()
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND team_id = ?", userID, teamID).
		Delete(&models.TeamLike{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}
