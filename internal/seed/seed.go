package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"courtside/internal/middleware"
	"courtside/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers        int
	NumPosts        int
	CommentsPerPost int
	NumGames        int
	Season          string
	ShouldClean     bool
	// RandomSeed makes the generated content reproducible.
	RandomSeed int64
	// HashCost is the bcrypt cost for demo passwords; zero means bcrypt.DefaultCost.
	HashCost int
}

// Summary reports what a Seed run created.
type Summary struct {
	Users    int
	Posts    int
	Comments int
	Replies  int
	Likes    int
	Games    int
}

// contentTables lists generated content, children first.
var contentTables = []any{
	&models.PostCommentLike{},
	&models.PostCommentReply{},
	&models.PostComment{},
	&models.PostLike{},
	&models.Post{},
	&models.TeamLike{},
	&models.LineScore{},
	&models.Game{},
}

// Clean removes generated content and non-staff users. Reference data stays.
func Clean(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, m := range contentTables {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
				return fmt.Errorf("clean %T: %w", m, err)
			}
		}
		return tx.Where("is_staff = ? AND is_superuser = ?", false, false).Delete(&models.User{}).Error
	})
}

// Seed loads the reference data and fills the database with demo content.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (*Summary, error) {
	middleware.Logger.InfoContext(ctx, "starting database seeding",
		slog.Int("users", opts.NumUsers), slog.Int("posts", opts.NumPosts), slog.Int("games", opts.NumGames))

	if opts.ShouldClean {
		if err := Clean(db); err != nil {
			return nil, err
		}
	}
	if err := SeedReference(db); err != nil {
		return nil, fmt.Errorf("seed reference data: %w", err)
	}

	ref, err := LoadReference()
	if err != nil {
		return nil, err
	}
	cost := opts.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	seed := opts.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	f, err := NewFactory(db, seed, cost)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	users := make([]*models.User, 0, opts.NumUsers)
	for range opts.NumUsers {
		u, err := f.CreateUser(ctx)
		if err != nil {
			return summary, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}
	summary.Users = len(users)
	if len(users) == 0 {
		return summary, nil
	}

	for i := range opts.NumPosts {
		author := users[f.faker.Number(0, len(users)-1)]
		team := ref.Teams[i%len(ref.Teams)]
		post, err := f.CreatePost(ctx, author, team.ID, 60*24*time.Hour)
		if err != nil {
			return summary, fmt.Errorf("create post: %w", err)
		}
		summary.Posts++

		for range f.faker.Number(0, opts.CommentsPerPost) {
			comment, err := f.CreateComment(ctx, users[f.faker.Number(0, len(users)-1)], post)
			if err != nil {
				return summary, fmt.Errorf("create comment: %w", err)
			}
			summary.Comments++
			if f.faker.Number(1, 4) == 1 {
				if _, err := f.CreateReply(ctx, users[f.faker.Number(0, len(users)-1)], comment); err != nil {
					return summary, fmt.Errorf("create reply: %w", err)
				}
				summary.Replies++
			}
		}

		for _, u := range users {
			if f.faker.Number(1, 3) == 1 {
				if err := f.Like(ctx, u, post); err != nil {
					return summary, fmt.Errorf("like post: %w", err)
				}
				summary.Likes++
			}
		}
	}

	season := opts.Season
	if season == "" {
		season = "2024-25"
	}
	start := time.Now().AddDate(0, 0, -opts.NumGames/4).Truncate(24 * time.Hour)
	for i := range opts.NumGames {
		home := ref.Teams[f.faker.Number(0, len(ref.Teams)-1)].ID
		visitor := home
		for visitor == home {
			visitor = ref.Teams[f.faker.Number(0, len(ref.Teams)-1)].ID
		}
		if _, err := f.CreateGame(ctx, home, visitor, start.AddDate(0, 0, i/2), season); err != nil {
			return summary, fmt.Errorf("create game: %w", err)
		}
		summary.Games++
	}

	middleware.Logger.InfoContext(ctx, "database seeding complete",
		slog.Int("users", summary.Users), slog.Int("posts", summary.Posts),
		slog.Int("comments", summary.Comments), slog.Int("games", summary.Games))
	return summary, nil
}
