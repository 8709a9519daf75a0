// Command main seeds the development database with demo data.
package main

import (
	"flag"
	"log"

	"worklane/internal/bootstrap"
	"worklane/internal/config"
	"worklane/internal/seed"
)

func main() {
	users := flag.Int("users", 20, "number of users to create")
	posts := flag.Int("posts", 40, "number of posts to create")
	projects := flag.Int("projects", 15, "number of projects to create")
	clean := flag.Bool("clean", false, "delete existing data first")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	_, _, err = bootstrap.InitRuntime(cfg, bootstrap.Options{
		SeedDemo: true,
		SeedOpts: seed.Options{
			NumUsers:    *users,
			NumPosts:    *posts,
			NumProjects: *projects,
			ShouldClean: *clean,
		},
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding complete")
}
