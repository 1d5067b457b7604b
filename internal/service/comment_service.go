package service

import (
	"context"
	"strings"

	"quill/internal/models"
	"quill/internal/repository"
)

const maxCommentLen = 10000

// CommentService holds comment creation and deletion rules.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

// AddCommentInput carries the comment form fields.
type AddCommentInput struct {
	UserID uint
	PostID uint
	Text   string
}

// NewCommentService creates a new comment service.
func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, postRepo: postRepo}
}

// AddComment attaches a new comment to the target post and requester, then
// recomputes the post's persisted comment count. Empty text mutates nothing.
func (s *CommentService) AddComment(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, in.PostID, 0); err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.Text) == "" {
		return nil, models.NewFieldValidationError(map[string]string{"text": "Text is required"})
	}
	if len(in.Text) > maxCommentLen {
		return nil, models.NewFieldValidationError(map[string]string{"text": "Comment too long"})
	}

	comment := &models.Comment{
		Text:     in.Text,
		AuthorID: in.UserID,
		PostID:   in.PostID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	if err := s.postRepo.RecomputeCommentsCount(ctx, in.PostID); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// ListComments returns a post's comments oldest first.
func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.commentRepo.ListByPost(ctx, postID)
}

// DeleteComment removes the requester's own comment and recomputes the post's
// comment count.
func (s *CommentService) DeleteComment(ctx context.Context, commentID, userID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != userID {
		return ErrNotAuthor
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return err
	}
	return s.postRepo.RecomputeCommentsCount(ctx, comment.PostID)
}
