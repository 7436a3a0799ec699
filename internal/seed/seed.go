// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"quill/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	NumComments int
	ShouldClean bool
	// FollowRatio is the chance (0..1) that any user follows any other.
	FollowRatio float64
}

// Seeder populates the database with fake accounts, posts, comments and a
// follow mesh.
type Seeder struct {
	db   *gorm.DB
	rand *rand.Rand
}

func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:   db,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll removes seeded content. Roles are kept; they are provisioned
// separately and referenced by id.
func (s *Seeder) ClearAll() error {
	tables := []string{"comments", "posts", "follows", "users"}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

// Run populates the database per the options. The default role must already
// be provisioned.
func (s *Seeder) Run(opts Options) error {
	log.Printf("Seeding %d users, %d posts, %d comments...",
		opts.NumUsers, opts.NumPosts, opts.NumComments)

	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	var defaultRole models.Role
	if err := s.db.Where(`"default" = ?`, true).First(&defaultRole).Error; err != nil {
		return fmt.Errorf("no default role provisioned: %w", err)
	}

	users, err := s.createUsers(opts.NumUsers, defaultRole.ID)
	if err != nil {
		return err
	}
	if err := s.createFollowMesh(users, opts.FollowRatio); err != nil {
		return err
	}
	posts, err := s.createPosts(users, opts.NumPosts)
	if err != nil {
		return err
	}
	if err := s.createComments(users, posts, opts.NumComments); err != nil {
		return err
	}

	log.Println("Seeding complete")
	return nil
}

func (s *Seeder) createUsers(n int, roleID uint) ([]*models.User, error) {
	// One shared hash keeps seeding fast; every seeded account logs in with
	// the same development password.
	hash, err := bcrypt.GenerateFromPassword([]byte("Seeded-Password-1!"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		username := fmt.Sprintf("%s%d", strings.ToLower(gofakeit.Username()), i)
		if len(username) > 30 {
			username = username[:30]
		}
		user := &models.User{
			Username:      username,
			Email:         fmt.Sprintf("%d.%s", i, gofakeit.Email()),
			PasswordHash:  string(hash),
			Confirmed:     true,
			AcceptedTerms: true,
			RoleID:        roleID,
			Name:          gofakeit.Name(),
			Bio:           gofakeit.Sentence(8),
			Location:      gofakeit.City(),
			CreatedAt:     s.pastTime(365),
		}
		if err := s.db.Create(user).Error; err != nil {
			return nil, fmt.Errorf("creating user %s: %w", username, err)
		}
		// self-follow edge, same as registration does
		if err := s.db.Create(&models.Follow{FollowerID: user.ID, FollowedID: user.ID}).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	log.Printf("Created %d users", len(users))
	return users, nil
}

func (s *Seeder) createFollowMesh(users []*models.User, ratio float64) error {
	if ratio <= 0 {
		ratio = 0.1
	}
	edges := 0
	for _, follower := range users {
		for _, followed := range users {
			if follower.ID == followed.ID || s.rand.Float64() > ratio {
				continue
			}
			follow := &models.Follow{
				FollowerID: follower.ID,
				FollowedID: followed.ID,
				CreatedAt:  s.pastTime(180),
			}
			if err := s.db.Create(follow).Error; err != nil {
				return fmt.Errorf("creating follow edge: %w", err)
			}
			edges++
		}
	}
	log.Printf("Created %d follow edges", edges)
	return nil
}

func (s *Seeder) createPosts(users []*models.User, n int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := users[s.rand.Intn(len(users))]
		post := &models.Post{AuthorID: author.ID}
		post.SetTitle(gofakeit.Sentence(5))
		post.SetBody(gofakeit.Paragraph(1, 3, 5, "\n"))
		post.CreatedAt = s.pastTime(90)

		if err := s.db.Create(post).Error; err != nil {
			return nil, fmt.Errorf("creating post: %w", err)
		}
		posts = append(posts, post)
	}
	log.Printf("Created %d posts", len(posts))
	return posts, nil
}

func (s *Seeder) createComments(users []*models.User, posts []*models.Post, n int) error {
	if len(posts) == 0 {
		return nil
	}
	for i := 0; i < n; i++ {
		author := users[s.rand.Intn(len(users))]
		post := posts[s.rand.Intn(len(posts))]
		comment := &models.Comment{
			PostID:   post.ID,
			AuthorID: author.ID,
		}
		comment.SetBody(gofakeit.Sentence(12))
		comment.CreatedAt = post.CreatedAt.Add(time.Duration(s.rand.Intn(72)) * time.Hour)

		if err := s.db.Create(comment).Error; err != nil {
			return fmt.Errorf("creating comment: %w", err)
		}
	}
	log.Printf("Created %d comments", n)
	return nil
}

func (s *Seeder) pastTime(maxDays int) time.Time {
	daysBack := s.rand.Intn(maxDays)
	hoursBack := s.rand.Intn(24)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)
}
