package seed

import (
	"context"
	"fmt"
	"time"

	"courtside/internal/models"
	"courtside/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the password of every generated user.
const DemoPassword = "password123"

// Factory builds domain entities and persists them through the repositories.
// It is a thin helper used by the seeder and by tests.
type Factory struct {
	faker    *gofakeit.Faker
	users    repository.UserRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	games    repository.GameRepository
	hash     string
	gameSeq  int
}

// NewFactory creates a Factory. The same seed yields the same content.
// hashCost is the bcrypt cost for the shared demo password.
func NewFactory(db *gorm.DB, seed int64, hashCost int) (*Factory, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}
	return &Factory{
		faker:    gofakeit.New(seed),
		users:    repository.NewUserRepository(db),
		posts:    repository.NewPostRepository(db, repository.PostListing),
		comments: repository.NewCommentRepository(db, repository.CommentListing),
		games:    repository.NewGameRepository(db),
		hash:     string(hash),
	}, nil
}

// CreateUser persists a user with the "user" role. Overrides run before saving.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	role, err := f.users.RoleByName(ctx, models.RoleUser)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		RoleID:           role.ID,
		Username:         fmt.Sprintf("%s%d", f.faker.Username(), f.faker.Number(100, 999)),
		Email:            f.faker.Email(),
		Password:         f.hash,
		Experience:       f.faker.Number(0, 2500),
		Introduction:     f.faker.Sentence(12),
		IsProfileVisible: f.faker.Number(1, 10) > 1,
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.users.Create(ctx, user); err != nil {
		return nil, err
	}
	// The column defaults to true, so a hidden profile needs an explicit update.
	if !user.IsProfileVisible {
		if err := f.users.UpdateProfileVisibility(ctx, user.ID, false); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// CreatePost persists a post on the team board, created within the last maxAge.
func (f *Factory) CreatePost(ctx context.Context, user *models.User, teamID uint, maxAge time.Duration) (*models.Post, error) {
	post := &models.Post{
		UserID:    user.ID,
		TeamID:    teamID,
		Title:     truncate(f.faker.Sentence(f.faker.Number(3, 8)), 128),
		Content:   f.faker.Paragraph(f.faker.Number(1, 3), 4, 12, "\n\n"),
		CreatedAt: f.pastTime(maxAge),
	}
	if err := f.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment on the post.
func (f *Factory) CreateComment(ctx context.Context, user *models.User, post *models.Post) (*models.PostComment, error) {
	comment := &models.PostComment{
		UserID:    user.ID,
		PostID:    post.ID,
		Content:   f.faker.Sentence(f.faker.Number(4, 20)),
		CreatedAt: post.CreatedAt.Add(time.Duration(f.faker.Number(1, 600)) * time.Minute),
	}
	if err := f.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateReply persists a reply to the comment.
func (f *Factory) CreateReply(ctx context.Context, user *models.User, comment *models.PostComment) (*models.PostCommentReply, error) {
	reply := &models.PostCommentReply{
		PostCommentID: comment.ID,
		UserID:        user.ID,
		Content:       f.faker.Sentence(f.faker.Number(3, 12)),
	}
	if err := f.comments.CreateReply(ctx, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// Like makes user like the post. Repeated likes are ignored.
func (f *Factory) Like(ctx context.Context, user *models.User, post *models.Post) error {
	_, err := f.posts.Like(ctx, user.ID, post.ID)
	return err
}

// CreateGame stores a game between two teams. Games dated before now are
// final and carry quarter-by-quarter line scores.
func (f *Factory) CreateGame(ctx context.Context, home, visitor uint, date time.Time, season string) (*models.Game, error) {
	f.gameSeq++
	game := &models.Game{
		GameID:         fmt.Sprintf("002%s%05d", seasonPrefix(season), f.gameSeq),
		GameDateEst:    date,
		GameSequence:   f.gameSeq,
		GameStatusID:   models.GameStatusScheduled,
		GameStatusText: "7:30 pm ET",
		GameCode:       fmt.Sprintf("%s/%d%d", date.Format("20060102"), visitor%1000, home%1000),
		HomeTeamID:     home,
		VisitorTeamID:  visitor,
		Season:         season,
		ArenaName:      f.faker.City() + " Arena",
		LineScores: []models.LineScore{
			{TeamID: home},
			{TeamID: visitor},
		},
	}
	if date.Before(time.Now()) {
		game.GameStatusID = models.GameStatusFinal
		game.GameStatusText = "Final"
		game.LivePeriod = 4
		for i := range game.LineScores {
			f.fillScores(&game.LineScores[i])
		}
	}
	if err := f.games.Upsert(ctx, game); err != nil {
		return nil, err
	}
	return game, nil
}

func (f *Factory) fillScores(l *models.LineScore) {
	quarters := []**int{&l.PtsQtr1, &l.PtsQtr2, &l.PtsQtr3, &l.PtsQtr4}
	total := 0
	for _, q := range quarters {
		pts := f.faker.Number(18, 38)
		total += pts
		*q = &pts
	}
	l.Pts = &total
}

func (f *Factory) pastTime(maxAge time.Duration) time.Time {
	if maxAge <= 0 {
		return time.Now()
	}
	minutes := f.faker.Number(0, int(maxAge/time.Minute))
	return time.Now().Add(-time.Duration(minutes) * time.Minute)
}

// seasonPrefix turns "2024-25" into "24".
func seasonPrefix(season string) string {
	if len(season) >= 4 {
		return season[2:4]
	}
	return "00"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
