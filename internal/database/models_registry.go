package database

import "courtside/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models,
// parents before children.
func PersistentModels() []any {
	return []any{
		&models.Language{},
		&models.Team{},
		&models.TeamName{},
		&models.Role{},
		&models.User{},
		&models.TeamLike{},
		&models.Game{},
		&models.LineScore{},
		&models.PostStatus{},
		&models.PostStatusDisplayName{},
		&models.Post{},
		&models.PostLike{},
		&models.PostCommentStatus{},
		&models.PostComment{},
		&models.PostCommentLike{},
		&models.PostCommentReply{},
	}
}
