package service

import (
	"context"
	"errors"
	"strings"

	"quill/internal/models"
	"quill/internal/repository"
)

// ErrNotAuthor is returned when a user tries to mutate someone else's post or
// comment. Handlers translate it into the silent redirect-to-detail contract
// rather than a 403.
var ErrNotAuthor = errors.New("only the author may modify this")

const maxPostLen = 40000

// PostService holds post creation and mutation rules.
type PostService struct {
	postRepo  repository.PostRepository
	groupRepo repository.GroupRepository
}

// CreatePostInput carries the create form fields.
type CreatePostInput struct {
	AuthorID uint
	Text     string
	GroupID  *uint
	ImageURL string
}

// UpdatePostInput carries the edit form fields. The post identity never
// changes; only text, group, and image are mutable.
type UpdatePostInput struct {
	UserID   uint
	PostID   uint
	Text     string
	GroupID  *uint
	ImageURL string
}

// NewPostService creates a new post service.
func NewPostService(postRepo repository.PostRepository, groupRepo repository.GroupRepository) *PostService {
	return &PostService{postRepo: postRepo, groupRepo: groupRepo}
}

func validatePostText(text string) error {
	if strings.TrimSpace(text) == "" {
		return models.NewFieldValidationError(map[string]string{"text": "Text is required"})
	}
	if len(text) > maxPostLen {
		return models.NewFieldValidationError(map[string]string{"text": "Text too long"})
	}
	return nil
}

// resolveGroup verifies the optional group reference.
func (s *PostService) resolveGroup(ctx context.Context, groupID *uint) (*uint, error) {
	if groupID == nil || *groupID == 0 {
		return nil, nil
	}
	group, err := s.groupRepo.GetByID(ctx, *groupID)
	if err != nil {
		return nil, models.NewFieldValidationError(map[string]string{"group": "Unknown group"})
	}
	return &group.ID, nil
}

// CreatePost validates the form and attributes the new post to the requester.
// Nothing is persisted when validation fails.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validatePostText(in.Text); err != nil {
		return nil, err
	}
	groupID, err := s.resolveGroup(ctx, in.GroupID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Text:     in.Text,
		ImageURL: in.ImageURL,
		AuthorID: in.AuthorID,
		GroupID:  groupID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID, in.AuthorID)
}

// UpdatePost mutates text/group/image on the author's own post. A non-author
// caller gets ErrNotAuthor and the post is untouched.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != in.UserID {
		return nil, ErrNotAuthor
	}

	if err := validatePostText(in.Text); err != nil {
		return nil, err
	}
	groupID, err := s.resolveGroup(ctx, in.GroupID)
	if err != nil {
		return nil, err
	}

	post.Text = in.Text
	post.GroupID = groupID
	post.ImageURL = in.ImageURL

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

// GetPost loads a post for the edit form, enforcing authorship.
func (s *PostService) GetPostForEdit(ctx context.Context, postID, userID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, ErrNotAuthor
	}
	return post, nil
}

// DeletePost removes the author's own post.
func (s *PostService) DeletePost(ctx context.Context, postID, userID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if post.AuthorID != userID {
		return ErrNotAuthor
	}
	return s.postRepo.Delete(ctx, postID)
}
