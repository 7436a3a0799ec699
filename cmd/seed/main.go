// Command main runs the database seeder for Quill.
package main

import (
	"flag"
	"log"

	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	numComments := flag.Int("comments", 500, "Number of comments to create")
	followRatio := flag.Float64("follow-ratio", 0.1, "Chance that any user follows any other")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db)
	if err := s.Run(seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		NumComments: *numComments,
		FollowRatio: *followRatio,
		ShouldClean: *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
