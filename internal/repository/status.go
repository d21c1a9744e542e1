package repository

import (
	"context"

	"courtside/internal/models"
	"courtside/internal/observability"

	"gorm.io/gorm"
)

// LookupRepository reads the small reference tables: languages and post statuses.
type LookupRepository interface {
	Languages(ctx context.Context) ([]models.Language, error)
	PostStatuses(ctx context.Context) ([]models.PostStatus, error)
}

type lookupRepository struct {
	db *gorm.DB
}

// NewLookupRepository creates a new LookupRepository.
func NewLookupRepository(db *gorm.DB) LookupRepository {
	return &lookupRepository{db: db}
}

func (r *lookupRepository) Languages(ctx context.Context) ([]models.Language, error) {
	defer observability.TrackQuery("list", "languages")()
	var langs []models.Language
	if err := r.db.WithContext(ctx).Order("id").Find(&langs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return langs, nil
}

func (r *lookupRepository) PostStatuses(ctx context.Context) ([]models.PostStatus, error) {
	defer observability.TrackQuery("list", "post_statuses")()
	var statuses []models.PostStatus
	err := r.db.WithContext(ctx).
		Preload("DisplayNames", func(db *gorm.DB) *gorm.DB { return db.Order("post_status_display_names.id") }).
		Preload("DisplayNames.Language").
		Order("id").
		Find(&statuses).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return statuses, nil
}
