package repository

import (
	"context"
	"errors"

	"courtside/internal/cache"
	"courtside/internal/models"
	"courtside/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines persistence operations for posts and post likes.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, viewer *uint) (*models.Post, error)
	ListByTeam(ctx context.Context, teamID uint, opts ListOptions, page Page) ([]models.Post, int64, error)
	ListByUser(ctx context.Context, userID uint, opts ListOptions, page Page) ([]models.Post, int64, error)
	Update(ctx context.Context, post *models.Post) error
	SetStatus(ctx context.Context, post *models.Post, status string) error
	Like(ctx context.Context, userID, postID uint) (bool, error)
	Unlike(ctx context.Context, userID, postID uint) (bool, error)
	LikedIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error)
}

type postRepository struct {
	db      *gorm.DB
	listing Listing
}

// NewPostRepository creates a new PostRepository. listing supplies the status
// filter, counts and sort safelist; PostListing is the standard one.
func NewPostRepository(db *gorm.DB, listing Listing) PostRepository {
	return &postRepository{db: db, listing: listing}
}

// postCounts are always computed for post payloads.
var postCounts = []string{"likes_count", "comments_count"}

func preloadPost(q *gorm.DB) *gorm.DB {
	return q.
		Preload("User.Role").
		Preload("Team.TeamNames.Language").
		Preload("Status.DisplayNames.Language")
}

func (r *postRepository) status(ctx context.Context, name string) (*models.PostStatus, error) {
	var st models.PostStatus
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&st).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("PostStatus", name)
		}
		return nil, models.NewInternalError(err)
	}
	return &st, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", "posts")()
	if post.StatusID == 0 {
		st, err := r.status(ctx, models.StatusCreated)
		if err != nil {
			return err
		}
		post.StatusID = st.ID
	}
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateTeamPosts(ctx, post.TeamID)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint, viewer *uint) (*models.Post, error) {
	defer observability.TrackQuery("get", "posts")()
	var post models.Post
	base := r.db.WithContext(ctx).Model(&models.Post{}).Where("posts.id = ?", id)
	q := r.listing.Build(base, ListOptions{Viewer: viewer, Annotate: postCounts})
	if err := preloadPost(q).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) list(base *gorm.DB, opts ListOptions, page Page) ([]models.Post, int64, error) {
	var total int64
	if err := r.listing.Filter(base, opts.IncludeDeleted).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	opts.Annotate = postCounts
	posts := make([]models.Post, 0, page.Size)
	q := r.listing.Build(base, opts).Limit(page.Size).Offset(page.Offset())
	if err := preloadPost(q).Find(&posts).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return posts, total, nil
}

func (r *postRepository) ListByTeam(ctx context.Context, teamID uint, opts ListOptions, page Page) ([]models.Post, int64, error) {
	defer observability.TrackQuery("list_by_team", "posts")()
	base := r.db.WithContext(ctx).Model(&models.Post{}).Where("posts.team_id = ?", teamID)
	return r.list(base, opts, page)
}

func (r *postRepository) ListByUser(ctx context.Context, userID uint, opts ListOptions, page Page) ([]models.Post, int64, error) {
	defer observability.TrackQuery("list_by_user", "posts")()
	base := r.db.WithContext(ctx).Model(&models.Post{}).Where("posts.user_id = ?", userID)
	return r.list(base, opts, page)
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("update", "posts")()
	err := r.db.WithContext(ctx).Model(&models.Post{ID: post.ID}).
		Select("title", "content", "updated_at").
		Updates(&models.Post{Title: post.Title, Content: post.Content}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateTeamPosts(ctx, post.TeamID)
	return nil
}

// SetStatus moves a post to the named status. Deletion is a status change, never a row delete.
func (r *postRepository) SetStatus(ctx context.Context, post *models.Post, status string) error {
	defer observability.TrackQuery("set_status", "posts")()
	st, err := r.status(ctx, status)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Model(&models.Post{ID: post.ID}).Update("status_id", st.ID).Error; err != nil {
		return models.NewInternalError(err)
	}
	post.StatusID = st.ID
	post.Status = st
	cache.InvalidateTeamPosts(ctx, post.TeamID)
	return nil
}

// Like records a like and reports whether a new row was created.
func (r *postRepository) Like(ctx context.Context, userID, postID uint) (bool, error) {
	defer observability.TrackQuery("like", "post_likes")()
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			DoNothing: true,
		}).
		Create(&models.PostLike{UserID: userID, PostID: postID})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Unlike removes a like and reports whether one existed.
func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) (bool, error) {
	defer observability.TrackQuery("unlike", "post_likes")()
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.PostLike{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// LikedIDs returns the subset of postIDs the user has liked, in one query.
func (r *postRepository) LikedIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error) {
	if len(postIDs) == 0 {
		return []uint{}, nil
	}
	defer observability.TrackQuery("liked_ids", "post_likes")()
	var liked []uint
	err := r.db.WithContext(ctx).Model(&models.PostLike{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &liked).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return liked, nil
}
