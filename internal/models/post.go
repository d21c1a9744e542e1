package models

import (
	"time"

	"courtside/internal/projection"
)

// Status names shared by posts, comments and replies.
const (
	StatusCreated = "created"
	StatusHidden  = "hidden"
	StatusDeleted = "deleted"
)

// PostStatus is a post lifecycle state.
type PostStatus struct {
	ID           uint                    `gorm:"primaryKey" json:"id"`
	Name         string                  `gorm:"size:32;uniqueIndex;not null" json:"name"`
	DisplayNames []PostStatusDisplayName `gorm:"foreignKey:StatusID;constraint:OnDelete:CASCADE" json:"poststatusdisplayname_set,omitempty"`
}

func (s *PostStatus) ProjectionSchema() *projection.Schema { return PostStatusSchema }

func (s *PostStatus) ProjectionFields() []projection.Field {
	return []projection.Field{
		projection.Value("id", s.ID),
		projection.Value("name", s.Name),
		projection.Many("poststatusdisplayname_set", "poststatusdisplayname", s.DisplayNames),
	}
}

// PostStatusDisplayName is a localized label for a status. At most one per status and language.
type PostStatusDisplayName struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	StatusID    uint      `gorm:"not null;uniqueIndex:idx_status_language" json:"status_id"`
	LanguageID  uint      `gorm:"not null;uniqueIndex:idx_status_language" json:"language_id"`
	Language    *Language `gorm:"foreignKey:LanguageID;constraint:OnDelete:CASCADE" json:"language,omitempty"`
	DisplayName string    `gorm:"size:64;not null" json:"display_name"`
}

func (d *PostStatusDisplayName) ProjectionSchema() *projection.Schema {
	return PostStatusDisplayNameSchema
}

func (d *PostStatusDisplayName) ProjectionFields() []projection.Field {
	return []projection.Field{
		projection.Value("id", d.ID),
		projection.Value("display_name", d.DisplayName),
		projection.One("language", "language", d.Language),
	}
}

// Post is a user's post on a team board.
type Post struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	UserID    uint        `gorm:"not null;index" json:"user_id"`
	User      *User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	TeamID    uint        `gorm:"not null;index" json:"team_id"`
	Team      *Team       `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"team,omitempty"`
	StatusID  uint        `gorm:"not null;index" json:"status_id"`
	Status    *PostStatus `gorm:"foreignKey:StatusID" json:"status,omitempty"`
	Title     string      `gorm:"size:128;not null" json:"title"`
	Content   string      `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`

	LikesCount    *int64 `gorm:"->;-:migration" json:"likes_count,omitempty"`
	CommentsCount *int64 `gorm:"->;-:migration" json:"comments_count,omitempty"`
	Liked         *bool  `gorm:"->;-:migration" json:"liked,omitempty"`
}

func (p *Post) ProjectionSchema() *projection.Schema { return PostSchema }

func (p *Post) ProjectionFields() []projection.Field {
	return []projection.Field{
		projection.Value("id", p.ID),
		projection.One("user", "user", p.User),
		projection.One("team", "team", p.Team),
		projection.Value("title", p.Title),
		projection.Value("content", p.Content),
		projection.One("status", "status", p.Status),
		projection.Value("created_at", p.CreatedAt),
		projection.Value("updated_at", p.UpdatedAt),
		projection.Optional("likes_count", p.LikesCount),
		projection.Optional("comments_count", p.CommentsCount),
		projection.Optional("liked", p.Liked),
	}
}

// LikeTargetID and SetLiked let posts take a viewer's liked flag.
func (p *Post) LikeTargetID() uint { return p.ID }
func (p *Post) SetLiked(v bool)    { p.Liked = &v }

// PostLike records that a user liked a post. Unique per user and post.
type PostLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_like_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_like_user_post;index" json:"post_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Post      *Post     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
