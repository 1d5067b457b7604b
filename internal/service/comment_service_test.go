package service

import (
	"context"
	"testing"

	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAddCommentEmptyTextMutatesNothing(t *testing.T) {
	t.Parallel()

	comments := noopCommentRepo()
	created := false
	comments.createFn = func(_ context.Context, _ *models.Comment) error {
		created = true
		return nil
	}
	posts := noopPostRepo()
	recomputed := false
	posts.recomputeCommentsCountFn = func(_ context.Context, _ uint) error {
		recomputed = true
		return nil
	}
	svc := NewCommentService(comments, posts)

	_, err := svc.AddComment(context.Background(), AddCommentInput{
		UserID: 1,
		PostID: 10,
		Text:   "   ",
	})
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.False(t, created)
	assert.False(t, recomputed)
}

func TestAddCommentMissingPost(t *testing.T) {
	t.Parallel()

	posts := noopPostRepo()
	posts.getByIDFn = func(_ context.Context, _, _ uint) (*models.Post, error) {
		return nil, gorm.ErrRecordNotFound
	}
	svc := NewCommentService(noopCommentRepo(), posts)

	_, err := svc.AddComment(context.Background(), AddCommentInput{
		UserID: 1,
		PostID: 999,
		Text:   "hello",
	})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAddCommentRecomputesCount(t *testing.T) {
	t.Parallel()

	comments := noopCommentRepo()
	var saved *models.Comment
	comments.createFn = func(_ context.Context, c *models.Comment) error {
		c.ID = 4
		saved = c
		return nil
	}
	comments.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, Text: saved.Text, AuthorID: saved.AuthorID, PostID: saved.PostID}, nil
	}
	posts := noopPostRepo()
	var recomputedPost uint
	posts.recomputeCommentsCountFn = func(_ context.Context, postID uint) error {
		recomputedPost = postID
		return nil
	}
	svc := NewCommentService(comments, posts)

	comment, err := svc.AddComment(context.Background(), AddCommentInput{
		UserID: 1,
		PostID: 10,
		Text:   "well said",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(1), comment.AuthorID)
	assert.Equal(t, uint(10), comment.PostID)
	assert.Equal(t, uint(10), recomputedPost, "comment count is recomputed on the target post")
}

func TestDeleteCommentNotAuthor(t *testing.T) {
	t.Parallel()

	comments := noopCommentRepo()
	comments.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, AuthorID: 1, PostID: 10}, nil
	}
	deleted := false
	comments.deleteFn = func(_ context.Context, _ uint) error {
		deleted = true
		return nil
	}
	svc := NewCommentService(comments, noopPostRepo())

	err := svc.DeleteComment(context.Background(), 4, 2)
	assert.ErrorIs(t, err, ErrNotAuthor)
	assert.False(t, deleted)

	require.NoError(t, svc.DeleteComment(context.Background(), 4, 1))
	assert.True(t, deleted)
}
