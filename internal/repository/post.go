package repository

import (
	"context"
	"time"

	"quill/internal/models"
	"quill/internal/observability"

	"gorm.io/gorm"
)

// Feed order keys accepted from the `orderby` query parameter.
// Anything unrecognized falls back to OrderByPubDate.
const (
	OrderByPubDate       = "-pub_date"
	OrderByLikesCount    = "-likes_count"
	OrderByCommentsCount = "-comments_count"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	List(ctx context.Context, order, query string, limit, offset int) ([]*models.Post, error)
	CountAll(ctx context.Context, query string) (int, error)
	ListByGroup(ctx context.Context, groupID uint, limit, offset int) ([]*models.Post, error)
	CountByGroup(ctx context.Context, groupID uint) (int, error)
	ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Post, error)
	CountByAuthor(ctx context.Context, authorID uint) (int, error)
	ListFollowed(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error)
	CountFollowed(ctx context.Context, userID uint) (int, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	GetLikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error)
	Like(ctx context.Context, userID, postID uint) (bool, error)
	Unlike(ctx context.Context, userID, postID uint) (bool, error)
	RecomputeLikesCount(ctx context.Context, postID uint) error
	RecomputeCommentsCount(ctx context.Context, postID uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		First(&post, id).Error
	if err != nil {
		return nil, err
	}

	if currentUserID != 0 {
		liked, err := r.IsLiked(ctx, currentUserID, post.ID)
		if err != nil {
			return nil, err
		}
		post.Liked = liked
	}

	return &post, nil
}

// applyOrder appends the ORDER BY clause for the requested feed order. The id
// tiebreak keeps page windows deterministic when timestamps collide.
func (r *postRepository) applyOrder(db *gorm.DB, order string) *gorm.DB {
	switch order {
	case OrderByLikesCount:
		return db.Order("likes_count DESC, created_at DESC, id DESC")
	case OrderByCommentsCount:
		return db.Order("comments_count DESC, created_at DESC, id DESC")
	default: // OrderByPubDate and anything unrecognized
		return db.Order("created_at DESC, id DESC")
	}
}

// applySearch adds the case-insensitive substring filter on post text.
func (r *postRepository) applySearch(db *gorm.DB, query string) *gorm.DB {
	if query == "" {
		return db
	}
	return db.Where("LOWER(text) LIKE LOWER(?)", "%"+query+"%")
}

func (r *postRepository) List(ctx context.Context, order, query string, limit, offset int) ([]*models.Post, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "List", "posts")
	defer span.End()
	defer observability.ObserveQuery("list", "posts", time.Now())

	var posts []*models.Post
	base := r.applySearch(r.db.WithContext(ctx).Preload("Author").Preload("Group"), query)
	err := r.applyOrder(base, order).
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) CountAll(ctx context.Context, query string) (int, error) {
	var count int64
	err := r.applySearch(r.db.WithContext(ctx).Model(&models.Post{}), query).Count(&count).Error
	return int(count), err
}

func (r *postRepository) ListByGroup(ctx context.Context, groupID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		Where("group_id = ?", groupID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) CountByGroup(ctx context.Context, groupID uint) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("group_id = ?", groupID).
		Count(&count).Error
	return int(count), err
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		Where("author_id = ?", authorID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) CountByAuthor(ctx context.Context, authorID uint) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("author_id = ?", authorID).
		Count(&count).Error
	return int(count), err
}

// ListFollowed returns posts whose author is followed by userID, newest first.
func (r *postRepository) ListFollowed(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "ListFollowed", "posts")
	defer span.End()
	defer observability.ObserveQuery("list_followed", "posts", time.Now())

	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		Where("author_id IN (?)", r.db.
			Model(&models.Follow{}).
			Select("author_id").
			Where("user_id = ?", userID)).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) CountFollowed(ctx context.Context, userID uint) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("author_id IN (?)", r.db.
			Model(&models.Follow{}).
			Select("author_id").
			Where("user_id = ?", userID)).
		Count(&count).Error
	return int(count), err
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Post{}, id).Error
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *postRepository) GetLikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var likedPostIDs []uint
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &likedPostIDs).Error
	return likedPostIDs, err
}

// Like inserts the (user, post) pair with ON CONFLICT DO NOTHING so that a
// race between two concurrent requests resolves to exactly one row.
// Returns whether a new row was created.
func (r *postRepository) Like(ctx context.Context, userID, postID uint) (bool, error) {
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO likes (user_id, post_id, created_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (user_id, post_id) DO NOTHING`,
		userID, postID, time.Now().UTC(),
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Unlike deletes the matching row if present. Returns whether a row existed.
func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// RecomputeLikesCount persists the live like count onto the post row.
func (r *postRepository) RecomputeLikesCount(ctx context.Context, postID uint) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE posts SET likes_count =
		 (SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id)
		 WHERE id = ?`, postID).Error
}

// RecomputeCommentsCount persists the live comment count onto the post row.
func (r *postRepository) RecomputeCommentsCount(ctx context.Context, postID uint) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE posts SET comments_count =
		 (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL)
		 WHERE id = ?`, postID).Error
}
