package seed

import (
	"fmt"
	"log"

	"quill/internal/models"

	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	NumUsers    int
	NumGroups   int
	NumPosts    int
	ShouldClean bool
}

// Seed populates the database with a connected social mesh: users, groups,
// posts spread across groups, comments, likes, and follow edges. Like and
// comment counts are recomputed at the end so feeds order correctly.
func Seed(db *gorm.DB, opts Options) error {
	if opts.NumUsers <= 0 {
		opts.NumUsers = 25
	}
	if opts.NumGroups <= 0 {
		opts.NumGroups = 5
	}
	if opts.NumPosts <= 0 {
		opts.NumPosts = 150
	}

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
	}

	f := NewFactory(db)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("seeded %d users", len(users))

	groups := make([]*models.Group, 0, opts.NumGroups)
	for i := 0; i < opts.NumGroups; i++ {
		group, err := f.CreateGroup()
		if err != nil {
			return fmt.Errorf("create group: %w", err)
		}
		groups = append(groups, group)
	}
	log.Printf("seeded %d groups", len(groups))

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[f.rand.Intn(len(users))]
		var group *models.Group
		// roughly a third of the posts stay ungrouped
		if f.rand.Intn(3) != 0 {
			group = groups[f.rand.Intn(len(groups))]
		}
		posts = append(posts, f.BuildPost(author, group))
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return fmt.Errorf("create posts: %w", err)
	}
	log.Printf("seeded %d posts", len(posts))

	comments := 0
	for _, post := range posts {
		for i := f.rand.Intn(4); i > 0; i-- {
			author := users[f.rand.Intn(len(users))]
			if _, err := f.CreateComment(author, post); err != nil {
				return fmt.Errorf("create comment: %w", err)
			}
			comments++
		}
	}
	log.Printf("seeded %d comments", comments)

	likes := 0
	for _, post := range posts {
		for i := f.rand.Intn(6); i > 0; i-- {
			user := users[f.rand.Intn(len(users))]
			if user.ID == post.AuthorID {
				continue
			}
			if err := f.CreateLike(user, post); err != nil {
				return fmt.Errorf("create like: %w", err)
			}
			likes++
		}
	}
	log.Printf("seeded %d likes", likes)

	follows := 0
	for _, user := range users {
		for i := f.rand.Intn(5); i > 0; i-- {
			author := users[f.rand.Intn(len(users))]
			if err := f.CreateFollow(user, author); err != nil {
				return fmt.Errorf("create follow: %w", err)
			}
			follows++
		}
	}
	log.Printf("seeded %d follow edges", follows)

	if err := recomputeCounts(db); err != nil {
		return fmt.Errorf("recompute counts: %w", err)
	}

	return nil
}

// clearData truncates all seeded tables, children first.
func clearData(db *gorm.DB) error {
	tables := []string{"likes", "follows", "comments", "posts", "groups", "users"}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}

func recomputeCounts(db *gorm.DB) error {
	if err := db.Exec(`
		UPDATE posts SET likes_count = (
			SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id
		)`).Error; err != nil {
		return err
	}
	return db.Exec(`
		UPDATE posts SET comments_count = (
			SELECT COUNT(*) FROM comments
			WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL
		)`).Error
}
