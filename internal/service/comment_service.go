package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"courtside/internal/cache"
	"courtside/internal/models"
	"courtside/internal/notifications"
	"courtside/internal/observability"
	"courtside/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

type CommentService struct {
	comments    repository.CommentRepository
	posts       repository.PostRepository
	events      EventPublisher
	isModerator ModeratorCheck
}

type ListCommentsInput struct {
	PostID         uint
	Sort           string
	Viewer         *uint
	IncludeDeleted bool
	Page           repository.Page
}

type CreateCommentInput struct {
	UserID  uint
	PostID  uint
	Content string
}

type UpdateCommentInput struct {
	UserID    uint
	PostID    uint
	CommentID uint
	Content   string
}

type CreateReplyInput struct {
	UserID    uint
	PostID    uint
	CommentID uint
	Content   string
}

type commentEvent struct {
	ID     uint `json:"id"`
	PostID uint `json:"post_id"`
	UserID uint `json:"user_id"`
}

func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	events EventPublisher,
	isModerator ModeratorCheck,
) *CommentService {
	return &CommentService{
		comments:    comments,
		posts:       posts,
		events:      events,
		isModerator: isModerator,
	}
}

func validateComment(content string) error {
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("Content is required")
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return models.NewValidationError("Comment too long (max 10000 characters)")
	}
	return nil
}

// ListComments lists a post's comments with counts and the viewer's liked flags.
func (s *CommentService) ListComments(ctx context.Context, in ListCommentsInput) ([]models.PostComment, int64, error) {
	span, ctx := observability.NewSpan(ctx, "CommentService.ListComments",
		attribute.Int64("post.id", int64(in.PostID)), attribute.String("sort", in.Sort))
	defer span.End()

	if _, err := s.posts.GetByID(ctx, in.PostID, nil); err != nil {
		span.SetError(err)
		return nil, 0, err
	}
	comments, total, err := s.comments.ListByPost(ctx, in.PostID,
		repository.ListOptions{Sort: in.Sort, IncludeDeleted: in.IncludeDeleted}, in.Page)
	if err != nil {
		span.SetError(err)
		return nil, 0, err
	}
	if err := DecorateLiked(ctx, comments, in.Viewer, s.comments.LikedIDs); err != nil {
		span.SetError(err)
		return nil, 0, err
	}
	return comments, total, nil
}

// ListUserComments lists the user's live comments on live posts.
func (s *CommentService) ListUserComments(ctx context.Context, userID uint, page repository.Page) ([]models.PostComment, int64, error) {
	return s.comments.ListByUser(ctx, userID, page)
}

// GetComment loads one live comment with the viewer's liked flag.
func (s *CommentService) GetComment(ctx context.Context, postID, commentID uint, viewer *uint) (*models.PostComment, error) {
	comment, err := s.liveComment(ctx, postID, commentID)
	if err != nil {
		return nil, err
	}
	items := []models.PostComment{*comment}
	if err := DecorateLiked(ctx, items, viewer, s.comments.LikedIDs); err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (s *CommentService) liveComment(ctx context.Context, postID, commentID uint) (*models.PostComment, error) {
	_, comment, err := s.livePostComment(ctx, postID, commentID)
	return comment, err
}

// livePostComment loads a live post and one of its live comments.
func (s *CommentService) livePostComment(ctx context.Context, postID, commentID uint) (*models.Post, *models.PostComment, error) {
	post, err := s.posts.GetByID(ctx, postID, nil)
	if err != nil {
		return nil, nil, err
	}
	comment, err := s.comments.GetByID(ctx, postID, commentID)
	if err != nil {
		return nil, nil, err
	}
	if comment.Status != nil && comment.Status.Name == models.StatusDeleted {
		return nil, nil, models.NewNotFoundError("Comment", commentID)
	}
	return post, comment, nil
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.PostComment, error) {
	if err := validateComment(in.Content); err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, in.PostID, nil)
	if err != nil {
		return nil, err
	}

	comment := &models.PostComment{UserID: in.UserID, PostID: in.PostID, Content: in.Content}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	// The cached board page carries comments_count.
	cache.InvalidateTeamPosts(ctx, post.TeamID)

	publish(ctx, s.events, notifications.PostChannel(in.PostID), notifications.EventCommentCreated,
		commentEvent{ID: comment.ID, PostID: in.PostID, UserID: in.UserID})
	return s.comments.GetByID(ctx, in.PostID, comment.ID)
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.PostComment, error) {
	comment, err := s.liveComment(ctx, in.PostID, in.CommentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own comments")
	}
	if err := validateComment(in.Content); err != nil {
		return nil, err
	}

	comment.Content = in.Content
	if err := s.comments.UpdateContent(ctx, comment); err != nil {
		return nil, err
	}

	publish(ctx, s.events, notifications.PostChannel(in.PostID), notifications.EventCommentUpdated,
		commentEvent{ID: comment.ID, PostID: in.PostID, UserID: comment.UserID})
	return s.comments.GetByID(ctx, in.PostID, comment.ID)
}

// DeleteComment marks the comment deleted. Owners and moderators may delete.
func (s *CommentService) DeleteComment(ctx context.Context, userID, postID, commentID uint) error {
	post, comment, err := s.livePostComment(ctx, postID, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		ok := false
		if s.isModerator != nil {
			if ok, err = s.isModerator(ctx, userID); err != nil {
				return err
			}
		}
		if !ok {
			return models.NewForbiddenError("You do not have permission to manage this content")
		}
	}
	if err := s.comments.SetStatus(ctx, comment, models.StatusDeleted); err != nil {
		return err
	}
	cache.InvalidateTeamPosts(ctx, post.TeamID)

	publish(ctx, s.events, notifications.PostChannel(postID), notifications.EventCommentDeleted,
		commentEvent{ID: comment.ID, PostID: postID, UserID: comment.UserID})
	return nil
}

// LikeComment likes a comment. Repeating the call changes nothing.
func (s *CommentService) LikeComment(ctx context.Context, userID, postID, commentID uint) (*models.PostComment, error) {
	if _, err := s.liveComment(ctx, postID, commentID); err != nil {
		return nil, err
	}
	created, err := s.comments.Like(ctx, userID, commentID)
	if err != nil {
		return nil, err
	}
	if created {
		publish(ctx, s.events, notifications.PostChannel(postID), notifications.EventCommentLiked,
			commentEvent{ID: commentID, PostID: postID, UserID: userID})
	}
	return s.GetComment(ctx, postID, commentID, &userID)
}

func (s *CommentService) UnlikeComment(ctx context.Context, userID, postID, commentID uint) (*models.PostComment, error) {
	if _, err := s.liveComment(ctx, postID, commentID); err != nil {
		return nil, err
	}
	if _, err := s.comments.Unlike(ctx, userID, commentID); err != nil {
		return nil, err
	}
	return s.GetComment(ctx, postID, commentID, &userID)
}

func (s *CommentService) ListReplies(ctx context.Context, postID, commentID uint, page repository.Page) ([]models.PostCommentReply, int64, error) {
	if _, err := s.liveComment(ctx, postID, commentID); err != nil {
		return nil, 0, err
	}
	return s.comments.ListReplies(ctx, commentID, page)
}

func (s *CommentService) CreateReply(ctx context.Context, in CreateReplyInput) (*models.PostCommentReply, error) {
	if err := validateComment(in.Content); err != nil {
		return nil, err
	}
	if _, err := s.liveComment(ctx, in.PostID, in.CommentID); err != nil {
		return nil, err
	}

	reply := &models.PostCommentReply{PostCommentID: in.CommentID, UserID: in.UserID, Content: in.Content}
	if err := s.comments.CreateReply(ctx, reply); err != nil {
		return nil, err
	}

	publish(ctx, s.events, notifications.PostChannel(in.PostID), notifications.EventReplyCreated,
		map[string]uint{"id": reply.ID, "comment_id": in.CommentID, "post_id": in.PostID, "user_id": in.UserID})
	return reply, nil
}
