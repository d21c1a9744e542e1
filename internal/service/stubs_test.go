package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"courtside/internal/auth"
	"courtside/internal/models"
	"courtside/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository. Unset funcs return zero values.
type postRepoStub struct {
	createFn     func(context.Context, *models.Post) error
	getByIDFn    func(context.Context, uint, *uint) (*models.Post, error)
	listByTeamFn func(context.Context, uint, repository.ListOptions, repository.Page) ([]models.Post, int64, error)
	listByUserFn func(context.Context, uint, repository.ListOptions, repository.Page) ([]models.Post, int64, error)
	updateFn     func(context.Context, *models.Post) error
	setStatusFn  func(context.Context, *models.Post, string) error
	likeFn       func(context.Context, uint, uint) (bool, error)
	unlikeFn     func(context.Context, uint, uint) (bool, error)
	likedIDsFn   func(context.Context, uint, []uint) ([]uint, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint, viewer *uint) (*models.Post, error) {
	if s.getByIDFn == nil {
		return &models.Post{ID: id}, nil
	}
	return s.getByIDFn(ctx, id, viewer)
}
func (s *postRepoStub) ListByTeam(ctx context.Context, teamID uint, opts repository.ListOptions, page repository.Page) ([]models.Post, int64, error) {
	if s.listByTeamFn == nil {
		return nil, 0, nil
	}
	return s.listByTeamFn(ctx, teamID, opts, page)
}
func (s *postRepoStub) ListByUser(ctx context.Context, userID uint, opts repository.ListOptions, page repository.Page) ([]models.Post, int64, error) {
	if s.listByUserFn == nil {
		return nil, 0, nil
	}
	return s.listByUserFn(ctx, userID, opts, page)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) SetStatus(ctx context.Context, post *models.Post, status string) error {
	if s.setStatusFn == nil {
		return nil
	}
	return s.setStatusFn(ctx, post, status)
}
func (s *postRepoStub) Like(ctx context.Context, userID, postID uint) (bool, error) {
	if s.likeFn == nil {
		return true, nil
	}
	return s.likeFn(ctx, userID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID uint) (bool, error) {
	if s.unlikeFn == nil {
		return true, nil
	}
	return s.unlikeFn(ctx, userID, postID)
}
func (s *postRepoStub) LikedIDs(ctx context.Context, userID uint, ids []uint) ([]uint, error) {
	if s.likedIDsFn == nil {
		return nil, nil
	}
	return s.likedIDsFn(ctx, userID, ids)
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn        func(context.Context, *models.PostComment) error
	getByIDFn       func(context.Context, uint, uint) (*models.PostComment, error)
	listByPostFn    func(context.Context, uint, repository.ListOptions, repository.Page) ([]models.PostComment, int64, error)
	listByUserFn    func(context.Context, uint, repository.Page) ([]models.PostComment, int64, error)
	updateContentFn func(context.Context, *models.PostComment) error
	setStatusFn     func(context.Context, *models.PostComment, string) error
	likeFn          func(context.Context, uint, uint) (bool, error)
	unlikeFn        func(context.Context, uint, uint) (bool, error)
	likedIDsFn      func(context.Context, uint, []uint) ([]uint, error)
	createReplyFn   func(context.Context, *models.PostCommentReply) error
	listRepliesFn   func(context.Context, uint, repository.Page) ([]models.PostCommentReply, int64, error)
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.PostComment) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) GetByID(ctx context.Context, postID, id uint) (*models.PostComment, error) {
	if s.getByIDFn == nil {
		return &models.PostComment{ID: id, PostID: postID}, nil
	}
	return s.getByIDFn(ctx, postID, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint, opts repository.ListOptions, page repository.Page) ([]models.PostComment, int64, error) {
	if s.listByPostFn == nil {
		return nil, 0, nil
	}
	return s.listByPostFn(ctx, postID, opts, page)
}
func (s *commentRepoStub) ListByUser(ctx context.Context, userID uint, page repository.Page) ([]models.PostComment, int64, error) {
	if s.listByUserFn == nil {
		return nil, 0, nil
	}
	return s.listByUserFn(ctx, userID, page)
}
func (s *commentRepoStub) UpdateContent(ctx context.Context, c *models.PostComment) error {
	if s.updateContentFn == nil {
		return nil
	}
	return s.updateContentFn(ctx, c)
}
func (s *commentRepoStub) SetStatus(ctx context.Context, c *models.PostComment, status string) error {
	if s.setStatusFn == nil {
		return nil
	}
	return s.setStatusFn(ctx, c, status)
}
func (s *commentRepoStub) Like(ctx context.Context, userID, commentID uint) (bool, error) {
	if s.likeFn == nil {
		return true, nil
	}
	return s.likeFn(ctx, userID, commentID)
}
func (s *commentRepoStub) Unlike(ctx context.Context, userID, commentID uint) (bool, error) {
	if s.unlikeFn == nil {
		return true, nil
	}
	return s.unlikeFn(ctx, userID, commentID)
}
func (s *commentRepoStub) LikedIDs(ctx context.Context, userID uint, ids []uint) ([]uint, error) {
	if s.likedIDsFn == nil {
		return nil, nil
	}
	return s.likedIDsFn(ctx, userID, ids)
}
func (s *commentRepoStub) CreateReply(ctx context.Context, r *models.PostCommentReply) error {
	if s.createReplyFn == nil {
		return nil
	}
	return s.createReplyFn(ctx, r)
}
func (s *commentRepoStub) ListReplies(ctx context.Context, commentID uint, page repository.Page) ([]models.PostCommentReply, int64, error) {
	if s.listRepliesFn == nil {
		return nil, 0, nil
	}
	return s.listRepliesFn(ctx, commentID, page)
}

// teamRepoStub is a stub for repository.TeamRepository.
type teamRepoStub struct {
	listFn             func(context.Context) ([]models.Team, error)
	getByIDFn          func(context.Context, uint, *uint) (*models.Team, error)
	favoritesFn        func(context.Context, uint) ([]models.Team, error)
	replaceFavoritesFn func(context.Context, uint, []uint) error
	addFavoriteFn      func(context.Context, uint, uint) error
	removeFavoriteFn   func(context.Context, uint, uint) (bool, error)
}

func (s *teamRepoStub) List(ctx context.Context) ([]models.Team, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx)
}
func (s *teamRepoStub) GetByID(ctx context.Context, id uint, viewer *uint) (*models.Team, error) {
	if s.getByIDFn == nil {
		return &models.Team{ID: id}, nil
	}
	return s.getByIDFn(ctx, id, viewer)
}
func (s *teamRepoStub) Favorites(ctx context.Context, userID uint) ([]models.Team, error) {
	if s.favoritesFn == nil {
		return nil, nil
	}
	return s.favoritesFn(ctx, userID)
}
func (s *teamRepoStub) ReplaceFavorites(ctx context.Context, userID uint, ids []uint) error {
	if s.replaceFavoritesFn == nil {
		return nil
	}
	return s.replaceFavoritesFn(ctx, userID, ids)
}
func (s *teamRepoStub) AddFavorite(ctx context.Context, userID, teamID uint) error {
	if s.addFavoriteFn == nil {
		return nil
	}
	return s.addFavoriteFn(ctx, userID, teamID)
}
func (s *teamRepoStub) RemoveFavorite(ctx context.Context, userID, teamID uint) (bool, error) {
	if s.removeFavoriteFn == nil {
		return true, nil
	}
	return s.removeFavoriteFn(ctx, userID, teamID)
}

// missingTeams makes every team lookup a 404.
func missingTeams() *teamRepoStub {
	return &teamRepoStub{getByIDFn: func(_ context.Context, id uint, _ *uint) (*models.Team, error) {
		return nil, models.NewNotFoundError("Team", id)
	}}
}

// gameRepoStub is a stub for repository.GameRepository.
type gameRepoStub struct {
	listByTeamFn func(context.Context, uint) ([]models.Game, error)
	lastPlayedFn func(context.Context, uint, int) ([]models.Game, error)
	earliestFn   func(context.Context, uint, int) ([]models.Game, error)
}

func (s *gameRepoStub) ListByTeam(ctx context.Context, teamID uint) ([]models.Game, error) {
	if s.listByTeamFn == nil {
		return nil, nil
	}
	return s.listByTeamFn(ctx, teamID)
}
func (s *gameRepoStub) LastPlayed(ctx context.Context, teamID uint, n int) ([]models.Game, error) {
	if s.lastPlayedFn == nil {
		return nil, nil
	}
	return s.lastPlayedFn(ctx, teamID, n)
}
func (s *gameRepoStub) Earliest(ctx context.Context, teamID uint, n int) ([]models.Game, error) {
	if s.earliestFn == nil {
		return nil, nil
	}
	return s.earliestFn(ctx, teamID, n)
}
func (s *gameRepoStub) Upsert(context.Context, *models.Game) error { return nil }

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn          func(context.Context, uint) (*models.User, error)
	getByUsernameFn    func(context.Context, string) (*models.User, error)
	updateVisibilityFn func(context.Context, uint, bool) error
	updateIntroFn      func(context.Context, uint, string) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if s.getByIDFn == nil {
		return &models.User{ID: id, IsProfileVisible: true}, nil
	}
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if s.getByUsernameFn == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(context.Context, *models.User) error { return nil }
func (s *userRepoStub) UpdateProfileVisibility(ctx context.Context, id uint, visible bool) error {
	if s.updateVisibilityFn == nil {
		return nil
	}
	return s.updateVisibilityFn(ctx, id, visible)
}
func (s *userRepoStub) UpdateIntroduction(ctx context.Context, id uint, intro string) error {
	if s.updateIntroFn == nil {
		return nil
	}
	return s.updateIntroFn(ctx, id, intro)
}
func (s *userRepoStub) RoleByName(_ context.Context, name string) (*models.Role, error) {
	return &models.Role{Name: name}, nil
}

// lookupRepoStub is a stub for repository.LookupRepository.
type lookupRepoStub struct {
	calls    int
	statuses []models.PostStatus
}

func (s *lookupRepoStub) Languages(context.Context) ([]models.Language, error) { return nil, nil }
func (s *lookupRepoStub) PostStatuses(context.Context) ([]models.PostStatus, error) {
	s.calls++
	out := make([]models.PostStatus, len(s.statuses))
	copy(out, s.statuses)
	return out, nil
}

// tokenStub is a stub for TokenIssuer.
type tokenStub struct {
	issued  []uint
	revoked []*auth.Claims
	parseFn func(string, auth.Kind) (*auth.Claims, error)
	refresh func(string) (auth.Pair, *auth.Claims, error)
}

func (s *tokenStub) Issue(userID uint, _ string) (auth.Pair, error) {
	s.issued = append(s.issued, userID)
	return auth.Pair{Access: "access", Refresh: "refresh"}, nil
}
func (s *tokenStub) Parse(_ context.Context, token string, kind auth.Kind) (*auth.Claims, error) {
	if s.parseFn == nil {
		return nil, auth.ErrInvalidToken
	}
	return s.parseFn(token, kind)
}
func (s *tokenStub) Refresh(_ context.Context, token string) (auth.Pair, *auth.Claims, error) {
	if s.refresh == nil {
		return auth.Pair{}, nil, auth.ErrInvalidToken
	}
	return s.refresh(token)
}
func (s *tokenStub) Revoke(_ context.Context, claims *auth.Claims) error {
	s.revoked = append(s.revoked, claims)
	return nil
}

// sentEvent is one call recorded by recordingPublisher.
type sentEvent struct {
	Channel string
	Type    string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []sentEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, channel, eventType string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, sentEvent{Channel: channel, Type: eventType})
	return p.err
}

func moderators(ids ...uint) ModeratorCheck {
	return func(_ context.Context, userID uint) (bool, error) {
		for _, id := range ids {
			if id == userID {
				return true, nil
			}
		}
		return false, nil
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}
