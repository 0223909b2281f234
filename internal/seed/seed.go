// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Seeder populates the database with fake but plausible editorial data.
type Seeder struct {
	db *gorm.DB
}

// NewSeeder returns a Seeder bound to the given database.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// ClearAll removes every seeded table's rows. Order matters because of
// foreign keys.
func (s *Seeder) ClearAll() error {
	log.Println("Cleaning database...")
	tables := []string{"post_reviews", "comments", "posts", "categories", "api_keys", "users"}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// SeedUsers creates n USER accounts plus one ADMIN. Every account gets the
// password "Password123!@#".
func (s *Seeder) SeedUsers(n int) ([]*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("Password123!@#"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	admin := &models.User{
		Username: "editor_in_chief",
		Email:    "editor@inkwell.dev",
		Password: string(hashed),
		FullName: "Editor In Chief",
		Role:     models.RoleAdmin,
	}
	if err := s.db.Create(admin).Error; err != nil {
		return nil, err
	}

	users := []*models.User{admin}
	for i := 0; i < n; i++ {
		first := gofakeit.FirstName()
		last := gofakeit.LastName()
		user := &models.User{
			Username: strings.ToLower(fmt.Sprintf("%s_%s%d", first, last, i)),
			Email:    strings.ToLower(fmt.Sprintf("%s.%s%d@example.com", first, last, i)),
			Password: string(hashed),
			FullName: first + " " + last,
			Role:     models.RoleUser,
		}
		if err := s.db.Create(user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	log.Printf("Seeded %d users (1 admin)", len(users))
	return users, nil
}

// SeedCategories creates a small category tree owned by the admin.
func (s *Seeder) SeedCategories(admin *models.User) ([]*models.Category, error) {
	var categories []*models.Category
	for _, name := range []string{"Technology", "Culture", "Science", "Opinion"} {
		category := &models.Category{
			CategoryName: name,
			CreatedBy:    admin.ID,
		}
		if err := s.db.Create(category).Error; err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}

	// One nested child so the tree shape is exercised.
	child := &models.Category{
		CategoryName: "Programming",
		ParentID:     &categories[0].ID,
		CreatedBy:    admin.ID,
	}
	if err := s.db.Create(child).Error; err != nil {
		return nil, err
	}
	categories = append(categories, child)

	log.Printf("Seeded %d categories", len(categories))
	return categories, nil
}

// SeedPosts creates n posts spread across authors, categories and the full
// status range, with comments and reviews on the decided ones.
func (s *Seeder) SeedPosts(users []*models.User, categories []*models.Category, n int) error {
	if len(users) < 2 {
		return fmt.Errorf("need at least one admin and one user to seed posts")
	}
	admin := users[0]
	authors := users[1:]
	statuses := []string{
		models.PostStatusPending,
		models.PostStatusApproved,
		models.PostStatusApproved,
		models.PostStatusRejected,
	}

	for i := 0; i < n; i++ {
		author := authors[rand.Intn(len(authors))]
		title := gofakeit.Sentence(rand.Intn(5) + 3)
		title = strings.TrimSuffix(title, ".")
		status := statuses[rand.Intn(len(statuses))]
		postedAt := gofakeit.DateRange(time.Now().AddDate(0, -6, 0), time.Now())

		slug := strings.ToLower(strings.Join(strings.Fields(title), "-"))
		post := &models.Post{
			Title:       title,
			Description: gofakeit.Paragraph(2, 4, 12, "\n\n"),
			Slug:        fmt.Sprintf("%s-%d", slug, postedAt.UnixMilli()),
			Status:      status,
			PostedAt:    postedAt,
			CreatedBy:   author.ID,
		}
		if len(categories) > 0 && rand.Intn(4) != 0 {
			post.CategoryID = &categories[rand.Intn(len(categories))].ID
		}
		if err := s.db.Create(post).Error; err != nil {
			return err
		}

		if status != models.PostStatusPending {
			reviewStatus := models.ReviewStatusApproved
			if status == models.PostStatusRejected {
				reviewStatus = models.ReviewStatusRejected
			}
			review := &models.PostReview{
				Reviewer: admin.ID,
				PostID:   post.ID,
				Comment:  gofakeit.Sentence(8),
				Rating:   rand.Intn(5) + 1,
				Status:   reviewStatus,
			}
			if err := s.db.Create(review).Error; err != nil {
				return err
			}
		}

		for j := 0; j < rand.Intn(5); j++ {
			comment := &models.Comment{
				Message:   gofakeit.Sentence(rand.Intn(12) + 3),
				PostID:    post.ID,
				CreatedBy: authors[rand.Intn(len(authors))].ID,
				LikeCount: rand.Intn(20),
			}
			if err := s.db.Create(comment).Error; err != nil {
				return err
			}
		}
	}

	log.Printf("Seeded %d posts with reviews and comments", n)
	return nil
}

// Run executes the full seeding pass.
func (s *Seeder) Run(opts Options) error {
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	users, err := s.SeedUsers(opts.NumUsers)
	if err != nil {
		return err
	}
	categories, err := s.SeedCategories(users[0])
	if err != nil {
		return err
	}
	return s.SeedPosts(users, categories, opts.NumPosts)
}
