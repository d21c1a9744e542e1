// Command main runs the database seeder for Courtside.
package main

import (
	"context"
	"flag"
	"log"

	"courtside/internal/config"
	"courtside/internal/database"
	"courtside/internal/middleware"
	"courtside/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	comments := flag.Int("comments", 5, "Maximum comments per post")
	numGames := flag.Int("games", 120, "Number of games to schedule")
	season := flag.String("season", "2024-25", "Season label for generated games")
	randomSeed := flag.Int64("seed", 0, "Random seed; 0 picks one from the clock")
	referenceOnly := flag.Bool("reference-only", false, "Only load languages, roles, statuses and teams")
	shouldClean := flag.Bool("clean", true, "Clean generated content before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.InitLogger(cfg.Env, cfg.LogLevel)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if *referenceOnly {
		if err := seed.SeedReference(db); err != nil {
			log.Fatalf("Reference seeding failed: %v", err)
		}
		log.Println("Reference data loaded.")
		return
	}

	summary, err := seed.Seed(context.Background(), db, seed.Options{
		NumUsers:        *numUsers,
		NumPosts:        *numPosts,
		CommentsPerPost: *comments,
		NumGames:        *numGames,
		Season:          *season,
		ShouldClean:     *shouldClean,
		RandomSeed:      *randomSeed,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Created %d users, %d posts, %d comments, %d replies, %d likes, %d games.",
		summary.Users, summary.Posts, summary.Comments, summary.Replies, summary.Likes, summary.Games)
	log.Printf("All demo users have the password: %s", seed.DemoPassword)
}
