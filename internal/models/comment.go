package models

import (
	"time"

	"courtside/internal/projection"
)

// PostCommentStatus is a comment or reply lifecycle state.
type PostCommentStatus struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:32;uniqueIndex;not null" json:"name"`
}

func (s *PostCommentStatus) ProjectionSchema() *projection.Schema { return PostCommentStatusSchema }

func (s *PostCommentStatus) ProjectionFields() []projection.Field {
	return []projection.Field{
		projection.Value("id", s.ID),
		projection.Value("name", s.Name),
	}
}

// PostComment is a comment on a post.
type PostComment struct {
	ID        uint               `gorm:"primaryKey" json:"id"`
	UserID    uint               `gorm:"not null;index" json:"user_id"`
	User      *User              `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	PostID    uint               `gorm:"not null;index" json:"post_id"`
	Post      *Post              `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"post,omitempty"`
	StatusID  uint               `gorm:"not null;index" json:"status_id"`
	Status    *PostCommentStatus `gorm:"foreignKey:StatusID" json:"status,omitempty"`
	Content   string             `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time          `gorm:"index" json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`

	LikesCount   *int64 `gorm:"->;-:migration" json:"likes_count,omitempty"`
	RepliesCount *int64 `gorm:"->;-:migration" json:"replies_count,omitempty"`
	Liked        *bool  `gorm:"->;-:migration" json:"liked,omitempty"`
}

func (c *PostComment) ProjectionSchema() *projection.Schema { return PostCommentSchema }

func (c *PostComment) ProjectionFields() []projection.Field {
	return []projection.Field{
		projection.Value("id", c.ID),
		projection.One("user", "user", c.User),
		projection.One("post", "post", c.Post),
		projection.Value("content", c.Content),
		projection.One("status", "status", c.Status),
		projection.Value("created_at", c.CreatedAt),
		projection.Value("updated_at", c.UpdatedAt),
		projection.Optional("likes_count", c.LikesCount),
		projection.Optional("replies_count", c.RepliesCount),
		projection.Optional("liked", c.Liked),
	}
}

func (c *PostComment) LikeTargetID() uint { return c.ID }
func (c *PostComment) SetLiked(v bool)    { c.Liked = &v }

// PostCommentLike records that a user liked a comment. Unique per user and comment.
type PostCommentLike struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	UserID        uint         `gorm:"not null;uniqueIndex:idx_comment_like_user_comment" json:"user_id"`
	PostCommentID uint         `gorm:"not null;uniqueIndex:idx_comment_like_user_comment;index" json:"post_comment_id"`
	User          *User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	PostComment   *PostComment `gorm:"foreignKey:PostCommentID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt     time.Time    `json:"created_at"`
}

// PostCommentReply is a reply under a comment. Replies are counted, not deduplicated per user.
type PostCommentReply struct {
	ID            uint               `gorm:"primaryKey" json:"id"`
	PostCommentID uint               `gorm:"not null;index" json:"post_comment_id"`
	PostComment   *PostComment       `gorm:"foreignKey:PostCommentID;constraint:OnDelete:CASCADE" json:"-"`
	UserID        uint               `gorm:"not null;index" json:"user_id"`
	User          *User              `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	StatusID      uint               `gorm:"not null;index" json:"status_id"`
	Status        *PostCommentStatus `gorm:"foreignKey:StatusID" json:"status,omitempty"`
	Content       string             `gorm:"type:text;not null" json:"content"`
	CreatedAt     time.Time          `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

func (r *PostCommentReply) ProjectionSchema() *projection.Schema { return PostCommentReplySchema }

func (r *PostCommentReply) ProjectionFields() []projection.Field {
	return []projection.Field{
		projection.Value("id", r.ID),
		projection.One("user", "user", r.User),
		projection.Value("content", r.Content),
		projection.One("status", "status", r.Status),
		projection.Value("created_at", r.CreatedAt),
		projection.Value("updated_at", r.UpdatedAt),
	}
}
