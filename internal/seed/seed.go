// Package seed creates demo data for development environments.
package seed

import (
	_ "embed"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"worklane/internal/models"
)

//go:embed fixtures.yml
var fixturesYAML []byte

// fixtures are the hand-curated pools the generator draws from, kept in YAML
// so they can be tweaked without touching code.
type fixtures struct {
	Professions []string `yaml:"professions"`
	Skills      []string `yaml:"skills"`
	Hashtags    []string `yaml:"hashtags"`
	Budgets     []string `yaml:"budgets"`
}

func loadFixtures() (*fixtures, error) {
	var f fixtures
	if err := yaml.Unmarshal(fixturesYAML, &f); err != nil {
		return nil, fmt.Errorf("parsing seed fixtures: %w", err)
	}
	return &f, nil
}

// Options configure the seeder.
type Options struct {
	NumUsers    int
	NumPosts    int
	NumProjects int
	ShouldClean bool
}

// Run populates the database with demo users, posts, projects, applications
// and a few conversations. Intended for development only.
func Run(db *gorm.DB, opts Options) error {
	fx, err := loadFixtures()
	if err != nil {
		return err
	}
	gofakeit.Seed(time.Now().UnixNano())
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	if opts.ShouldClean {
		if err := clean(db); err != nil {
			return err
		}
	}

	if opts.NumUsers <= 0 {
		opts.NumUsers = 20
	}
	if opts.NumPosts <= 0 {
		opts.NumPosts = 40
	}
	if opts.NumProjects <= 0 {
		opts.NumProjects = 15
	}

	users, err := seedUsers(db, r, fx, opts.NumUsers)
	if err != nil {
		return err
	}
	workers := make([]*models.User, 0, len(users))
	clients := make([]*models.User, 0, len(users))
	for _, u := range users {
		if u.IsWorker() {
			workers = append(workers, u)
		} else {
			clients = append(clients, u)
		}
	}

	if err := seedPosts(db, r, fx, users, opts.NumPosts); err != nil {
		return err
	}
	if err := seedProjects(db, r, fx, clients, workers, opts.NumProjects); err != nil {
		return err
	}
	if err := seedChats(db, r, users); err != nil {
		return err
	}

	log.Printf("seeded %d users, %d posts, %d projects", len(users), opts.NumPosts, opts.NumProjects)
	return nil
}

func clean(db *gorm.DB) error {
	// child tables first
	tables := []string{
		"messages", "chat_participants", "chats",
		"applications", "comments",
		"post_hashtags", "project_hashtags", "hashtags",
		"posts", "projects",
		"worker_skills", "skills", "portfolio_items", "worker_profiles",
		"tokens", "users",
	}
	for _, t := range tables {
		if err := db.Exec("DELETE FROM " + t).Error; err != nil {
			return fmt.Errorf("cleaning %s: %w", t, err)
		}
	}
	return nil
}

func pick(r *rand.Rand, pool []string) string {
	return pool[r.Intn(len(pool))]
}

func pickN(r *rand.Rand, pool []string, n int) []string {
	shuffled := append([]string(nil), pool...)
	r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}

func spreadBack(r *rand.Rand, maxDays int) time.Time {
	return time.Now().
		Add(-time.Duration(r.Intn(maxDays*24)) * time.Hour).
		Add(-time.Duration(r.Intn(60)) * time.Minute)
}

func seedUsers(db *gorm.DB, r *rand.Rand, fx *fixtures, count int) ([]*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		user := &models.User{
			Username:     fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(10, 99)),
			Email:        gofakeit.Email(),
			Password:     string(hash),
			Name:         gofakeit.Name(),
			About:        gofakeit.Sentence(12),
			ProfilePhoto: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
			Type:         models.UserTypeClient,
			CreatedAt:    spreadBack(r, 180),
		}
		// roughly half the accounts are workers
		if i%2 == 0 {
			user.Type = models.UserTypeWorker
			user.WorkerProfile = &models.WorkerProfile{
				Profession:     pick(r, fx.Professions),
				CompletedTasks: r.Intn(30),
				Rating:         float64(r.Intn(21)) / 4, // 0.0 .. 5.0
			}
		}
		if err := db.Create(user).Error; err != nil {
			return nil, fmt.Errorf("seeding user: %w", err)
		}
		if user.WorkerProfile != nil {
			for _, name := range pickN(r, fx.Skills, 2+r.Intn(4)) {
				var skill models.Skill
				if err := db.Where(models.Skill{Name: name}).FirstOrCreate(&skill).Error; err != nil {
					return nil, err
				}
				if err := db.Model(user.WorkerProfile).Association("Skills").Append(&skill); err != nil {
					return nil, err
				}
			}
		}
		users = append(users, user)
	}
	return users, nil
}

func hashtagRows(db *gorm.DB, r *rand.Rand, fx *fixtures) ([]models.Hashtag, error) {
	names := pickN(r, fx.Hashtags, 1+r.Intn(3))
	tags := make([]models.Hashtag, 0, len(names))
	for _, name := range names {
		var tag models.Hashtag
		if err := db.Where(models.Hashtag{Name: name}).FirstOrCreate(&tag).Error; err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func seedPosts(db *gorm.DB, r *rand.Rand, fx *fixtures, users []*models.User, count int) error {
	for i := 0; i < count; i++ {
		author := users[r.Intn(len(users))]
		tags, err := hashtagRows(db, r, fx)
		if err != nil {
			return err
		}

		post := &models.Post{
			Title:       gofakeit.Sentence(4),
			Description: gofakeit.Paragraph(1, 3, 8, "\n"),
			Gallery:     []string{fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID())},
			Links:       []string{gofakeit.URL()},
			Likes:       r.Intn(200),
			AuthorID:    author.ID,
			Hashtags:    tags,
			CreatedAt:   spreadBack(r, 90),
		}
		if err := db.Create(post).Error; err != nil {
			return fmt.Errorf("seeding post: %w", err)
		}

		for j := 0; j < r.Intn(4); j++ {
			commenter := users[r.Intn(len(users))]
			postID := post.ID
			comment := &models.Comment{
				Content:   gofakeit.Sentence(10),
				AuthorID:  commenter.ID,
				PostID:    &postID,
				CreatedAt: post.CreatedAt.Add(time.Duration(j+1) * time.Hour),
			}
			if err := db.Create(comment).Error; err != nil {
				return fmt.Errorf("seeding comment: %w", err)
			}
		}
	}
	return nil
}

func seedProjects(db *gorm.DB, r *rand.Rand, fx *fixtures, clients, workers []*models.User, count int) error {
	if len(clients) == 0 {
		return nil
	}
	for i := 0; i < count; i++ {
		author := clients[r.Intn(len(clients))]
		tags, err := hashtagRows(db, r, fx)
		if err != nil {
			return err
		}

		project := &models.Project{
			Title:       gofakeit.Sentence(4),
			Description: gofakeit.Paragraph(1, 3, 8, "\n"),
			Budget:      pick(r, fx.Budgets),
			Deadline:    time.Now().Add(time.Duration(7+r.Intn(60)) * 24 * time.Hour),
			AuthorID:    author.ID,
			Hashtags:    tags,
			CreatedAt:   spreadBack(r, 60),
		}
		if err := db.Create(project).Error; err != nil {
			return fmt.Errorf("seeding project: %w", err)
		}

		for _, worker := range pickWorkers(r, workers, r.Intn(4)) {
			app := &models.Application{
				ProjectID:   project.ID,
				WorkerID:    worker.ID,
				CoverLetter: gofakeit.Paragraph(1, 2, 6, "\n"),
				ProposedFee: float64(50 + r.Intn(5000)),
			}
			if err := db.Create(app).Error; err != nil {
				return fmt.Errorf("seeding application: %w", err)
			}
		}
	}
	return nil
}

func pickWorkers(r *rand.Rand, workers []*models.User, n int) []*models.User {
	if n > len(workers) {
		n = len(workers)
	}
	shuffled := append([]*models.User(nil), workers...)
	r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	return shuffled[:n]
}

func seedChats(db *gorm.DB, r *rand.Rand, users []*models.User) error {
	if len(users) < 2 {
		return nil
	}
	pairs := len(users) / 4
	if pairs == 0 {
		pairs = 1
	}
	for i := 0; i < pairs; i++ {
		a := users[r.Intn(len(users))]
		b := users[r.Intn(len(users))]
		if a.ID == b.ID {
			continue
		}

		chat := &models.Chat{Participants: []models.User{{ID: a.ID}, {ID: b.ID}}}
		if err := db.Omit("Participants.*").Create(chat).Error; err != nil {
			return fmt.Errorf("seeding chat: %w", err)
		}

		base := spreadBack(r, 14)
		for j := 0; j < 2+r.Intn(8); j++ {
			sender := a
			if j%2 == 1 {
				sender = b
			}
			msg := &models.Message{
				ChatID:    chat.ID,
				SenderID:  sender.ID,
				Content:   gofakeit.Sentence(8),
				CreatedAt: base.Add(time.Duration(j) * time.Minute),
			}
			if err := db.Create(msg).Error; err != nil {
				return fmt.Errorf("seeding message: %w", err)
			}
		}
	}
	return nil
}
