package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"quill/internal/database"
	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Password: "hash"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, author *models.User, text string) *models.Post {
	t.Helper()
	post := &models.Post{Text: text, AuthorID: author.ID}
	require.NoError(t, db.Create(post).Error)
	return post
}

func TestLikeIsIdempotentUnderDuplicates(t *testing.T) {
	t.Parallel()
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	reader := createTestUser(t, db, "reader")
	post := createTestPost(t, db, author, "likeable")

	created, err := repo.Like(ctx, reader.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Like(ctx, reader.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, created, "duplicate like resolves to no new row")

	var count int64
	require.NoError(t, db.Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", reader.ID, post.ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUnlikeReportsWhetherRowExisted(t *testing.T) {
	t.Parallel()
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	reader := createTestUser(t, db, "reader")
	post := createTestPost(t, db, author, "likeable")

	deleted, err := repo.Unlike(ctx, reader.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, deleted, "unlike without a like removes nothing")

	_, err = repo.Like(ctx, reader.ID, post.ID)
	require.NoError(t, err)

	deleted, err = repo.Unlike(ctx, reader.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestRecomputeCountsTrackLiveRows(t *testing.T) {
	t.Parallel()
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	post := createTestPost(t, db, author, "counted")

	for i := 0; i < 3; i++ {
		reader := createTestUser(t, db, fmt.Sprintf("reader%d", i))
		_, err := repo.Like(ctx, reader.ID, post.ID)
		require.NoError(t, err)
		require.NoError(t, db.Create(&models.Comment{
			Text: "reply", AuthorID: reader.ID, PostID: post.ID,
		}).Error)
	}
	require.NoError(t, repo.RecomputeLikesCount(ctx, post.ID))
	require.NoError(t, repo.RecomputeCommentsCount(ctx, post.ID))

	var reloaded models.Post
	require.NoError(t, db.First(&reloaded, post.ID).Error)
	assert.Equal(t, 3, reloaded.LikesCount)
	assert.Equal(t, 3, reloaded.CommentsCount)

	// A soft-deleted comment no longer counts.
	require.NoError(t, db.Where("post_id = ?", post.ID).
		Delete(&models.Comment{}).Error)
	require.NoError(t, repo.RecomputeCommentsCount(ctx, post.ID))
	require.NoError(t, db.First(&reloaded, post.ID).Error)
	assert.Equal(t, 0, reloaded.CommentsCount)
}

func TestListOrdering(t *testing.T) {
	t.Parallel()
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	now := time.Now()
	old := models.Post{Text: "old", AuthorID: author.ID, LikesCount: 5, CreatedAt: now.Add(-2 * time.Hour)}
	mid := models.Post{Text: "mid", AuthorID: author.ID, LikesCount: 1, CreatedAt: now.Add(-time.Hour)}
	fresh := models.Post{Text: "fresh", AuthorID: author.ID, LikesCount: 0, CreatedAt: now}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Create(&mid).Error)
	require.NoError(t, db.Create(&fresh).Error)

	posts, err := repo.List(ctx, OrderByPubDate, "", 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "fresh", posts[0].Text)
	assert.Equal(t, "old", posts[2].Text)

	posts, err = repo.List(ctx, OrderByLikesCount, "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, "old", posts[0].Text, "most liked first")

	// Unrecognized order falls back to newest first.
	posts, err = repo.List(ctx, "-bogus", "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, "fresh", posts[0].Text)
}

func TestListSearchIsCaseInsensitive(t *testing.T) {
	t.Parallel()
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	createTestPost(t, db, author, "The Quick Brown Fox")
	createTestPost(t, db, author, "unrelated")

	posts, err := repo.List(ctx, OrderByPubDate, "quick", 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "The Quick Brown Fox", posts[0].Text)

	total, err := repo.CountAll(ctx, "QUICK")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestListWindowsPartitionWithoutOverlap(t *testing.T) {
	t.Parallel()
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	// identical timestamps force the id tiebreak
	ts := time.Now()
	for i := 0; i < 25; i++ {
		require.NoError(t, db.Create(&models.Post{
			Text: fmt.Sprintf("post %d", i), AuthorID: author.ID, CreatedAt: ts,
		}).Error)
	}

	seen := map[uint]bool{}
	for offset := 0; offset < 30; offset += 10 {
		posts, err := repo.List(ctx, OrderByPubDate, "", 10, offset)
		require.NoError(t, err)
		for _, p := range posts {
			assert.False(t, seen[p.ID], "post %d appeared in two windows", p.ID)
			seen[p.ID] = true
		}
	}
	assert.Len(t, seen, 25, "every post appears in exactly one window")
}

func TestListFollowedFiltersByFollowEdges(t *testing.T) {
	t.Parallel()
	db := setupSQLiteDB(t)
	posts := NewPostRepository(db)
	follows := NewFollowRepository(db)
	ctx := context.Background()

	reader := createTestUser(t, db, "reader")
	followed := createTestUser(t, db, "followed")
	stranger := createTestUser(t, db, "stranger")
	createTestPost(t, db, followed, "from followed")
	createTestPost(t, db, stranger, "from stranger")

	created, err := follows.Follow(ctx, reader.ID, followed.ID)
	require.NoError(t, err)
	assert.True(t, created)

	feed, err := posts.ListFollowed(ctx, reader.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "from followed", feed[0].Text)

	total, err := posts.CountFollowed(ctx, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	// After unfollowing the feed empties again.
	deleted, err := follows.Unfollow(ctx, reader.ID, followed.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	feed, err = posts.ListFollowed(ctx, reader.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, feed)
}

func TestFollowIsIdempotent(t *testing.T) {
	t.Parallel()
	db := setupSQLiteDB(t)
	follows := NewFollowRepository(db)
	ctx := context.Background()

	a := createTestUser(t, db, "a")
	b := createTestUser(t, db, "b")

	created, err := follows.Follow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = follows.Follow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, created)

	var count int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	following, err := follows.IsFollowing(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, following)
}

func TestGetLikedPostIDs(t *testing.T) {
	t.Parallel()
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	reader := createTestUser(t, db, "reader")
	p1 := createTestPost(t, db, author, "one")
	p2 := createTestPost(t, db, author, "two")
	p3 := createTestPost(t, db, author, "three")

	_, err := repo.Like(ctx, reader.ID, p1.ID)
	require.NoError(t, err)
	_, err = repo.Like(ctx, reader.ID, p3.ID)
	require.NoError(t, err)

	liked, err := repo.GetLikedPostIDs(ctx, reader.ID, []uint{p1.ID, p2.ID, p3.ID})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{p1.ID, p3.ID}, liked)

	liked, err = repo.GetLikedPostIDs(ctx, reader.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, liked)
}
