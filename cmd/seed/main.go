// Command seed fills the database with generated users, groups and activity.
package main

import (
	"context"
	"flag"
	"log"

	"socialhub/internal/bootstrap"
	"socialhub/internal/config"
	"socialhub/internal/database"
	"socialhub/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numGroups := flag.Int("groups", 8, "Number of groups to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	maxDays := flag.Int("days", 90, "Spread timestamps over this many past days")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	randSeed := flag.Int64("seed", 0, "Random seed (0 picks one)")
	dryRun := flag.Bool("dry-run", false, "Build records without writing them")
	flag.Parse()

	log.Printf("Seeding: %d users, %d groups, %d posts, clean=%v", *numUsers, *numGroups, *numPosts, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, _, err := bootstrap.InitRuntime(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	s, err := seed.NewSeeder(db, seed.Options{
		DryRun:  *dryRun,
		MaxDays: *maxDays,
		Seed:    *randSeed,
	})
	if err != nil {
		log.Fatalf("Seeder setup failed: %v", err)
	}

	if *shouldClean && !*dryRun {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		if err := bootstrap.EnsureAdmin(context.Background(), db, cfg); err != nil {
			log.Fatalf("Admin bootstrap failed: %v", err)
		}
	}

	users, err := s.SeedSocialMesh(*numUsers)
	if err != nil {
		log.Fatalf("User seeding failed: %v", err)
	}
	groups, err := s.SeedGroups(users, *numGroups)
	if err != nil {
		log.Fatalf("Group seeding failed: %v", err)
	}
	if err := s.SeedEngagement(users, groups, *numPosts); err != nil {
		log.Fatalf("Engagement seeding failed: %v", err)
	}

	sum := s.Summary()
	log.Printf("Done: %d users, %d friendships, %d groups, %d posts, %d comments, %d likes, %d messages",
		sum.Users, sum.Friendships, sum.Groups, sum.Posts, sum.Comments, sum.Likes, sum.Messages)
	log.Printf("All seeded users share the password: %s", seed.DefaultPassword)
}
