package service

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"courtside/internal/cache"
	"courtside/internal/middleware"
	"courtside/internal/models"
	"courtside/internal/notifications"
	"courtside/internal/observability"
	"courtside/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const (
	maxTitleLen   = 128
	maxContentLen = 10000
)

// EventPublisher delivers realtime events. notifications.Notifier implements it.
type EventPublisher interface {
	Publish(ctx context.Context, channel, eventType string, payload any) error
}

// ModeratorCheck reports whether a user may manage other users' content.
type ModeratorCheck func(ctx context.Context, userID uint) (bool, error)

func publish(ctx context.Context, events EventPublisher, channel, eventType string, payload any) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, channel, eventType, payload); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish event",
			slog.String("channel", channel), slog.String("type", eventType), slog.Any("error", err))
	}
}

type PostService struct {
	posts       repository.PostRepository
	teams       repository.TeamRepository
	events      EventPublisher
	isModerator ModeratorCheck
}

type ListPostsInput struct {
	TeamID         uint
	Sort           string
	Viewer         *uint
	IncludeDeleted bool
	Page           repository.Page
}

type CreatePostInput struct {
	UserID  uint
	TeamID  uint
	Title   string
	Content string
}

type UpdatePostInput struct {
	UserID  uint
	PostID  uint
	Title   string
	Content string
}

type postEvent struct {
	ID     uint `json:"id"`
	TeamID uint `json:"team_id"`
	UserID uint `json:"user_id"`
}

func NewPostService(
	posts repository.PostRepository,
	teams repository.TeamRepository,
	events EventPublisher,
	isModerator ModeratorCheck,
) *PostService {
	return &PostService{
		posts:       posts,
		teams:       teams,
		events:      events,
		isModerator: isModerator,
	}
}

// cachedPage is the cached anonymous first page of a team board.
type cachedPage struct {
	Posts []models.Post `json:"posts"`
	Total int64         `json:"total"`
}

func firstDefaultPage(in ListPostsInput) bool {
	return strings.TrimSpace(in.Sort) == "" && !in.IncludeDeleted && in.Page.Number <= 1
}

// ListTeamPosts lists a team board. The default first page is served from the
// cache; the viewer's liked flags are applied afterwards in one lookup.
func (s *PostService) ListTeamPosts(ctx context.Context, in ListPostsInput) ([]models.Post, int64, error) {
	span, ctx := observability.NewSpan(ctx, "PostService.ListTeamPosts",
		attribute.Int64("team.id", int64(in.TeamID)), attribute.String("sort", in.Sort))
	defer span.End()

	if _, err := s.teams.GetByID(ctx, in.TeamID, nil); err != nil {
		span.SetError(err)
		return nil, 0, err
	}

	opts := repository.ListOptions{Sort: in.Sort, IncludeDeleted: in.IncludeDeleted}
	var page cachedPage
	fetch := func() error {
		posts, total, err := s.posts.ListByTeam(ctx, in.TeamID, opts, in.Page)
		if err != nil {
			return err
		}
		page = cachedPage{Posts: posts, Total: total}
		return nil
	}

	var err error
	if firstDefaultPage(in) {
		err = cache.Aside(ctx, "team_posts", cache.TeamPostsKey(in.TeamID, in.Page.Size), &page, cache.TeamPostsTTL, fetch)
	} else {
		err = fetch()
	}
	if err != nil {
		span.SetError(err)
		return nil, 0, err
	}

	if err := DecorateLiked(ctx, page.Posts, in.Viewer, s.posts.LikedIDs); err != nil {
		span.SetError(err)
		return nil, 0, err
	}
	return page.Posts, page.Total, nil
}

// ListUserPosts lists the user's own posts with their liked flags.
func (s *PostService) ListUserPosts(ctx context.Context, userID uint, sort string, page repository.Page) ([]models.Post, int64, error) {
	posts, total, err := s.posts.ListByUser(ctx, userID, repository.ListOptions{Sort: sort}, page)
	if err != nil {
		return nil, 0, err
	}
	if err := DecorateLiked(ctx, posts, &userID, s.posts.LikedIDs); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (s *PostService) GetPost(ctx context.Context, postID uint, viewer *uint) (*models.Post, error) {
	return s.posts.GetByID(ctx, postID, viewer)
}

func validatePost(title, content string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.NewValidationError("Title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return models.NewValidationError("Title too long (max 128 characters)")
	}
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("Content is required")
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return models.NewValidationError("Content too long (max 10000 characters)")
	}
	return nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validatePost(in.Title, in.Content); err != nil {
		return nil, err
	}
	if _, err := s.teams.GetByID(ctx, in.TeamID, nil); err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:  in.UserID,
		TeamID:  in.TeamID,
		Title:   strings.TrimSpace(in.Title),
		Content: in.Content,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	publish(ctx, s.events, notifications.TeamChannel(in.TeamID), notifications.EventPostCreated,
		postEvent{ID: post.ID, TeamID: in.TeamID, UserID: in.UserID})
	return s.posts.GetByID(ctx, post.ID, &in.UserID)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, in.PostID, &in.UserID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}
	if err := validatePost(in.Title, in.Content); err != nil {
		return nil, err
	}

	post.Title = strings.TrimSpace(in.Title)
	post.Content = in.Content
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}

	publish(ctx, s.events, notifications.PostChannel(post.ID), notifications.EventPostUpdated,
		postEvent{ID: post.ID, TeamID: post.TeamID, UserID: post.UserID})
	return s.posts.GetByID(ctx, post.ID, &in.UserID)
}

func (s *PostService) canManage(ctx context.Context, ownerID, userID uint) error {
	if ownerID == userID {
		return nil
	}
	if s.isModerator != nil {
		ok, err := s.isModerator(ctx, userID)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return models.NewForbiddenError("You do not have permission to manage this content")
}

// DeletePost marks the post deleted. Owners and moderators may delete.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.posts.GetByID(ctx, postID, nil)
	if err != nil {
		return err
	}
	if err := s.canManage(ctx, post.UserID, userID); err != nil {
		return err
	}
	if err := s.posts.SetStatus(ctx, post, models.StatusDeleted); err != nil {
		return err
	}

	ev := postEvent{ID: post.ID, TeamID: post.TeamID, UserID: post.UserID}
	publish(ctx, s.events, notifications.TeamChannel(post.TeamID), notifications.EventPostDeleted, ev)
	publish(ctx, s.events, notifications.PostChannel(post.ID), notifications.EventPostDeleted, ev)
	return nil
}

// LikePost likes a post. Repeating the call changes nothing.
func (s *PostService) LikePost(ctx context.Context, userID, postID uint) (*models.Post, error) {
	target, err := s.posts.GetByID(ctx, postID, nil)
	if err != nil {
		return nil, err
	}
	created, err := s.posts.Like(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if created {
		cache.InvalidateTeamPosts(ctx, target.TeamID)
	}
	post, err := s.posts.GetByID(ctx, postID, &userID)
	if err != nil {
		return nil, err
	}
	if created {
		publish(ctx, s.events, notifications.PostChannel(postID), notifications.EventPostLiked,
			map[string]any{"id": postID, "likes_count": post.LikesCount})
	}
	return post, nil
}

// UnlikePost removes a like. Unliking a post that was not liked changes nothing.
func (s *PostService) UnlikePost(ctx context.Context, userID, postID uint) (*models.Post, error) {
	target, err := s.posts.GetByID(ctx, postID, nil)
	if err != nil {
		return nil, err
	}
	removed, err := s.posts.Unlike(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if removed {
		cache.InvalidateTeamPosts(ctx, target.TeamID)
	}
	return s.posts.GetByID(ctx, postID, &userID)
}
