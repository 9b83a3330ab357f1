// Command main runs the database seeder for Agora.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/seed"

	"github.com/joho/godotenv"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	postsPerUser := flag.Int("posts", 4, "Posts per user")
	commentsPerPost := flag.Int("comments", 3, "Comments per post")
	repliesPerComment := flag.Int("replies", 1, "Replies per comment")
	maxDays := flag.Int("days", 90, "Spread created_at over this many past days")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	preset := flag.String("preset", "", "Apply a built-in preset "+presetHelp())
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Ignoring unreadable .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	s := seed.NewSeeder(db, seed.Options{MaxDays: *maxDays})
	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
	}

	ctx := context.Background()
	if *preset != "" {
		log.Printf("Applying preset: %s (ignoring count flags)", *preset)
		if _, err := s.ApplyPreset(ctx, *preset); err != nil {
			log.Fatalf("❌ Preset seeding failed: %v", err)
		}
	} else {
		shape := seed.Shape{
			Users:             *numUsers,
			PostsPerUser:      *postsPerUser,
			CommentsPerPost:   *commentsPerPost,
			RepliesPerComment: *repliesPerComment,
		}
		log.Printf("Target: %+v, clean=%v", shape, *shouldClean)
		if _, err := s.Run(ctx, shape); err != nil {
			log.Fatalf("❌ Seeding failed: %v", err)
		}
	}

	log.Println("✨ All done! Your database is now populated with test data.")
	log.Printf("📧 All test users have the password: %s", seed.DefaultPassword)
}

func presetHelp() string {
	names := seed.PresetNames()
	if len(names) == 0 {
		return ""
	}
	return "(" + strings.Join(names, ", ") + ")"
}
