package repository

import (
	"context"
	"errors"

	"courtside/internal/models"
	"courtside/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines persistence operations for comments, comment likes and replies.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.PostComment) error
	GetByID(ctx context.Context, postID, id uint) (*models.PostComment, error)
	ListByPost(ctx context.Context, postID uint, opts ListOptions, page Page) ([]models.PostComment, int64, error)
	ListByUser(ctx context.Context, userID uint, page Page) ([]models.PostComment, int64, error)
	UpdateContent(ctx context.Context, comment *models.PostComment) error
	SetStatus(ctx context.Context, comment *models.PostComment, status string) error
	Like(ctx context.Context, userID, commentID uint) (bool, error)
	Unlike(ctx context.Context, userID, commentID uint) (bool, error)
	LikedIDs(ctx context.Context, userID uint, commentIDs []uint) ([]uint, error)
	CreateReply(ctx context.Context, reply *models.PostCommentReply) error
	ListReplies(ctx context.Context, commentID uint, page Page) ([]models.PostCommentReply, int64, error)
}

type commentRepository struct {
	db      *gorm.DB
	listing Listing
}

// NewCommentRepository creates a new CommentRepository. CommentListing is the standard listing.
func NewCommentRepository(db *gorm.DB, listing Listing) CommentRepository {
	return &commentRepository{db: db, listing: listing}
}

var commentCounts = []string{"likes_count", "replies_count"}

// notOnDeletedPost excludes comments whose post has been deleted.
const notOnDeletedPost = "post_comments.post_id NOT IN (SELECT posts.id FROM posts JOIN post_statuses ON post_statuses.id = posts.status_id WHERE post_statuses.name = ?)"

func (r *commentRepository) statusID(ctx context.Context, name string) (uint, error) {
	var st models.PostCommentStatus
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&st).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, models.NewNotFoundError("PostCommentStatus", name)
		}
		return 0, models.NewInternalError(err)
	}
	return st.ID, nil
}

// Create stores a new comment with the created status.
func (r *commentRepository) Create(ctx context.Context, comment *models.PostComment) error {
	defer observability.TrackQuery("create", "post_comments")()
	if comment.StatusID == 0 {
		id, err := r.statusID(ctx, models.StatusCreated)
		if err != nil {
			return err
		}
		comment.StatusID = id
	}
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GetByID loads a comment of the given post, including deleted ones.
func (r *commentRepository) GetByID(ctx context.Context, postID, id uint) (*models.PostComment, error) {
	defer observability.TrackQuery("get", "post_comments")()
	var comment models.PostComment
	err := r.db.WithContext(ctx).
		Preload("User.Role").
		Preload("Status").
		Where("post_comments.post_id = ?", postID).
		First(&comment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint, opts ListOptions, page Page) ([]models.PostComment, int64, error) {
	defer observability.TrackQuery("list_by_post", "post_comments")()
	base := r.db.WithContext(ctx).Model(&models.PostComment{}).Where("post_comments.post_id = ?", postID)

	var total int64
	if err := r.listing.Filter(base, opts.IncludeDeleted).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	opts.Annotate = commentCounts
	comments := make([]models.PostComment, 0, page.Size)
	err := r.listing.Build(base, opts).
		Preload("User.Role").
		Preload("Status").
		Limit(page.Size).Offset(page.Offset()).
		Find(&comments).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return comments, total, nil
}

// ListByUser lists the user's own live comments on live posts, newest first,
// annotated with whether the user liked each one.
func (r *commentRepository) ListByUser(ctx context.Context, userID uint, page Page) ([]models.PostComment, int64, error) {
	defer observability.TrackQuery("list_by_user", "post_comments")()
	base := r.db.WithContext(ctx).Model(&models.PostComment{}).
		Where("post_comments.user_id = ?", userID).
		Where(notOnDeletedPost, models.StatusDeleted)

	var total int64
	if err := r.listing.Filter(base, false).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	comments := make([]models.PostComment, 0, page.Size)
	err := r.listing.Build(base, ListOptions{Viewer: &userID, Annotate: commentCounts}).
		Preload("Post.Team.TeamNames.Language").
		Preload("Status").
		Limit(page.Size).Offset(page.Offset()).
		Find(&comments).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return comments, total, nil
}

func (r *commentRepository) UpdateContent(ctx context.Context, comment *models.PostComment) error {
	defer observability.TrackQuery("update", "post_comments")()
	err := r.db.WithContext(ctx).Model(&models.PostComment{ID: comment.ID}).
		Select("content", "updated_at").
		Updates(&models.PostComment{Content: comment.Content}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) SetStatus(ctx context.Context, comment *models.PostComment, status string) error {
	defer observability.TrackQuery("set_status", "post_comments")()
	id, err := r.statusID(ctx, status)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Model(&models.PostComment{ID: comment.ID}).Update("status_id", id).Error; err != nil {
		return models.NewInternalError(err)
	}
	comment.StatusID = id
	comment.Status = &models.PostCommentStatus{ID: id, Name: status}
	return nil
}

func (r *commentRepository) Like(ctx context.Context, userID, commentID uint) (bool, error) {
	defer observability.TrackQuery("like", "post_comment_likes")()
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_comment_id"}},
			DoNothing: true,
		}).
		Create(&models.PostCommentLike{UserID: userID, PostCommentID: commentID})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *commentRepository) Unlike(ctx context.Context, userID, commentID uint) (bool, error) {
	defer observability.TrackQuery("unlike", "post_comment_likes")()
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND post_comment_id = ?", userID, commentID).
		Delete(&models.PostCommentLike{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *commentRepository) LikedIDs(ctx context.Context, userID uint, commentIDs []uint) ([]uint, error) {
	if len(commentIDs) == 0 {
		return []uint{}, nil
	}
	defer observability.TrackQuery("liked_ids", "post_comment_likes")()
	var liked []uint
	err := r.db.WithContext(ctx).Model(&models.PostCommentLike{}).
		Where("user_id = ? AND post_comment_id IN ?", userID, commentIDs).
		Pluck("post_comment_id", &liked).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return liked, nil
}

func (r *commentRepository) CreateReply(ctx context.Context, reply *models.PostCommentReply) error {
	defer observability.TrackQuery("create", "post_comment_replies")()
	if reply.StatusID == 0 {
		id, err := r.statusID(ctx, models.StatusCreated)
		if err != nil {
			return err
		}
		reply.StatusID = id
	}
	if err := r.db.WithContext(ctx).Create(reply).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ListReplies returns live replies oldest first.
func (r *commentRepository) ListReplies(ctx context.Context, commentID uint, page Page) ([]models.PostCommentReply, int64, error) {
	defer observability.TrackQuery("list", "post_comment_replies")()
	base := r.db.WithContext(ctx).Model(&models.PostCommentReply{}).
		Where("post_comment_replies.post_comment_id = ?", commentID).
		Where("post_comment_replies.status_id NOT IN (SELECT id FROM post_comment_statuses WHERE name = ?)", models.StatusDeleted)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	replies := make([]models.PostCommentReply, 0, page.Size)
	err := base.Session(&gorm.Session{}).
		Preload("User.Role").
		Preload("Status").
		Order("post_comment_replies.created_at").
		Order("post_comment_replies.id").
		Limit(page.Size).Offset(page.Offset()).
		Find(&replies).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return replies, total, nil
}
