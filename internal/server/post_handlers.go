package server

import (
	"errors"
	"fmt"

	"quill/internal/models"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// postForm carries the post create/edit form fields.
type postForm struct {
	Text     string `json:"text" form:"text"`
	GroupID  *uint  `json:"group" form:"group"`
	ImageURL string `json:"image_url" form:"image_url"`
}

// PostDetail handles GET /posts/:id
// The response carries the post, its comments, the requester's like state,
// and the author's total post count.
func (s *Server) PostDetail(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID, _ := s.optionalUserID(c)

	post, err := s.postRepo.GetByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Post", id))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	comments, err := s.commentService.ListComments(ctx, post.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	authorPosts, err := s.postRepo.CountByAuthor(ctx, post.AuthorID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"post":               post,
		"comments":           comments,
		"author_posts_total": authorPosts,
	})
}

// GetComments handles GET /posts/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comments, err := s.commentService.ListComments(ctx, id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(comments)
}

// CreatePostForm handles GET /create. It reports the available group
// choices for the form.
func (s *Server) CreatePostForm(c *fiber.Ctx) error {
	groups, err := s.groupRepo.List(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"groups": groups,
	})
}

// CreatePost handles POST /create. A valid submission redirects to the
// author's profile; invalid input mutates nothing.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req postForm
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	_, err := s.postService.CreatePost(ctx, service.CreatePostInput{
		AuthorID: userID,
		Text:     req.Text,
		GroupID:  req.GroupID,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	author, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Redirect("/profile/"+author.Username, fiber.StatusFound)
}

// EditPostForm handles GET /posts/:id/edit. A non-author is sent back to
// the post detail without an error.
func (s *Server) EditPostForm(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	post, err := s.postService.GetPostForEdit(ctx, id, userID)
	if errors.Is(err, service.ErrNotAuthor) {
		return c.Redirect(postDetailPath(id), fiber.StatusFound)
	}
	if err != nil {
		return respondServiceError(c, err)
	}

	groups, err := s.groupRepo.List(ctx)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"post":   post,
		"groups": groups,
	})
}

// EditPost handles POST /posts/:id/edit. Only the author may change a post;
// anyone else is redirected to the detail with nothing mutated.
func (s *Server) EditPost(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	var req postForm
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	_, err = s.postService.UpdatePost(ctx, service.UpdatePostInput{
		UserID:   userID,
		PostID:   id,
		Text:     req.Text,
		GroupID:  req.GroupID,
		ImageURL: req.ImageURL,
	})
	if errors.Is(err, service.ErrNotAuthor) {
		return c.Redirect(postDetailPath(id), fiber.StatusFound)
	}
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Redirect(postDetailPath(id), fiber.StatusFound)
}

// DeletePost handles POST /posts/:id/delete
func (s *Server) DeletePost(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	if err := s.postService.DeletePost(ctx, id, userID); err != nil {
		if errors.Is(err, service.ErrNotAuthor) {
			return c.Redirect(postDetailPath(id), fiber.StatusFound)
		}
		return respondServiceError(c, err)
	}

	author, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Redirect("/profile/"+author.Username, fiber.StatusFound)
}

func postDetailPath(id uint) string {
	return fmt.Sprintf("/posts/%d", id)
}
