package service

import (
	"context"
	"testing"

	"courtside/internal/models"
	"courtside/internal/notifications"
	"courtside/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commentBy(userID uint, status string) *commentRepoStub {
	return &commentRepoStub{getByIDFn: func(_ context.Context, postID, id uint) (*models.PostComment, error) {
		return &models.PostComment{
			ID: id, PostID: postID, UserID: userID,
			Status: &models.PostCommentStatus{Name: status},
		}, nil
	}}
}

func TestCommentService_ListComments(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	viewer := uint(5)

	t.Run("decorates with one lookup and passes options through", func(t *testing.T) {
		t.Parallel()
		lookups := 0
		comments := &commentRepoStub{
			listByPostFn: func(_ context.Context, postID uint, opts repository.ListOptions, page repository.Page) ([]models.PostComment, int64, error) {
				assert.Equal(t, uint(10), postID)
				assert.Equal(t, "-postcommentlike", opts.Sort)
				assert.True(t, opts.IncludeDeleted)
				assert.Nil(t, opts.Viewer)
				assert.Equal(t, 2, page.Number)
				return []models.PostComment{{ID: 1}, {ID: 2}, {ID: 3}}, 23, nil
			},
			likedIDsFn: func(_ context.Context, _ uint, ids []uint) ([]uint, error) {
				lookups++
				return []uint{1, 3}, nil
			},
		}
		svc := NewCommentService(comments, &postRepoStub{}, nil, nil)

		got, total, err := svc.ListComments(ctx, ListCommentsInput{
			PostID: 10, Sort: "-postcommentlike", Viewer: &viewer, IncludeDeleted: true,
			Page: repository.Page{Number: 2, Size: 10},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(23), total)
		assert.Equal(t, 1, lookups)
		liked := make([]bool, 0, len(got))
		for _, c := range got {
			liked = append(liked, *c.Liked)
		}
		assert.Equal(t, []bool{true, false, true}, liked)
	})

	t.Run("unknown post", func(t *testing.T) {
		t.Parallel()
		posts := &postRepoStub{getByIDFn: func(_ context.Context, id uint, _ *uint) (*models.Post, error) {
			return nil, models.NewNotFoundError("Post", id)
		}}
		svc := NewCommentService(&commentRepoStub{}, posts, nil, nil)
		_, _, err := svc.ListComments(ctx, ListCommentsInput{PostID: 10})
		assertCode(t, err, models.CodeNotFound)
	})
}

func TestCommentService_CreateComment(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("validation", func(t *testing.T) {
		t.Parallel()
		svc := NewCommentService(&commentRepoStub{}, &postRepoStub{}, nil, nil)
		for _, content := range []string{"", "   \n"} {
			_, err := svc.CreateComment(ctx, CreateCommentInput{UserID: 1, PostID: 10, Content: content})
			assertCode(t, err, models.CodeValidation)
		}
	})

	t.Run("publishes on the post channel", func(t *testing.T) {
		t.Parallel()
		comments := &commentRepoStub{createFn: func(_ context.Context, c *models.PostComment) error {
			assert.Equal(t, uint(10), c.PostID)
			c.ID = 77
			return nil
		}}
		events := &recordingPublisher{}
		svc := NewCommentService(comments, &postRepoStub{}, events, nil)

		got, err := svc.CreateComment(ctx, CreateCommentInput{UserID: 1, PostID: 10, Content: "nice"})
		require.NoError(t, err)
		assert.Equal(t, uint(77), got.ID)
		assert.Equal(t, []sentEvent{{Channel: notifications.PostChannel(10), Type: notifications.EventCommentCreated}}, events.events)
	})
}

func TestCommentService_UpdateAndDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("only the author edits", func(t *testing.T) {
		t.Parallel()
		svc := NewCommentService(commentBy(1, models.StatusCreated), &postRepoStub{}, nil, moderators(2))
		_, err := svc.UpdateComment(ctx, UpdateCommentInput{UserID: 2, PostID: 10, CommentID: 3, Content: "edit"})
		assertCode(t, err, models.CodeForbidden)

		_, err = svc.UpdateComment(ctx, UpdateCommentInput{UserID: 1, PostID: 10, CommentID: 3, Content: "edit"})
		require.NoError(t, err)
	})

	t.Run("deleted comments are gone", func(t *testing.T) {
		t.Parallel()
		svc := NewCommentService(commentBy(1, models.StatusDeleted), &postRepoStub{}, nil, nil)
		_, err := svc.GetComment(ctx, 10, 3, nil)
		assertCode(t, err, models.CodeNotFound)
		err = svc.DeleteComment(ctx, 1, 10, 3)
		assertCode(t, err, models.CodeNotFound)
		_, err = svc.LikeComment(ctx, 1, 10, 3)
		assertCode(t, err, models.CodeNotFound)
	})

	tests := []struct {
		name     string
		userID   uint
		wantCode string
	}{
		{name: "author", userID: 1},
		{name: "moderator", userID: 2},
		{name: "other user", userID: 3, wantCode: models.CodeForbidden},
	}
	for _, tt := range tests {
		t.Run("delete by "+tt.name, func(t *testing.T) {
			t.Parallel()
			comments := commentBy(1, models.StatusCreated)
			var status string
			comments.setStatusFn = func(_ context.Context, _ *models.PostComment, s string) error {
				status = s
				return nil
			}
			svc := NewCommentService(comments, &postRepoStub{}, nil, moderators(2))

			err := svc.DeleteComment(ctx, tt.userID, 10, 3)
			if tt.wantCode != "" {
				assertCode(t, err, tt.wantCode)
				assert.Empty(t, status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.StatusDeleted, status)
		})
	}
}

func TestCommentService_LikeComment(t *testing.T) {
	t.Parallel()
	comments := commentBy(1, models.StatusCreated)
	comments.likedIDsFn = func(_ context.Context, _ uint, ids []uint) ([]uint, error) { return ids, nil }
	events := &recordingPublisher{}
	svc := NewCommentService(comments, &postRepoStub{}, events, nil)

	got, err := svc.LikeComment(context.Background(), 4, 10, 3)
	require.NoError(t, err)
	require.NotNil(t, got.Liked)
	assert.True(t, *got.Liked)
	assert.Equal(t, []sentEvent{{Channel: notifications.PostChannel(10), Type: notifications.EventCommentLiked}}, events.events)

	got, err = svc.UnlikeComment(context.Background(), 4, 10, 3)
	require.NoError(t, err)
	require.NotNil(t, got.Liked)
}

func TestCommentService_Replies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	comments := commentBy(1, models.StatusCreated)
	comments.createReplyFn = func(_ context.Context, r *models.PostCommentReply) error {
		r.ID = 9
		return nil
	}
	comments.listRepliesFn = func(_ context.Context, commentID uint, _ repository.Page) ([]models.PostCommentReply, int64, error) {
		return []models.PostCommentReply{{ID: 9, PostCommentID: commentID}}, 1, nil
	}
	events := &recordingPublisher{}
	svc := NewCommentService(comments, &postRepoStub{}, events, nil)

	_, err := svc.CreateReply(ctx, CreateReplyInput{UserID: 2, PostID: 10, CommentID: 3})
	assertCode(t, err, models.CodeValidation)

	reply, err := svc.CreateReply(ctx, CreateReplyInput{UserID: 2, PostID: 10, CommentID: 3, Content: "agreed"})
	require.NoError(t, err)
	assert.Equal(t, uint(9), reply.ID)
	assert.Equal(t, uint(3), reply.PostCommentID)
	assert.Equal(t, []sentEvent{{Channel: notifications.PostChannel(10), Type: notifications.EventReplyCreated}}, events.events)

	replies, total, err := svc.ListReplies(ctx, 10, 3, repository.Page{Number: 1, Size: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, replies, 1)
}
