package server

import (
	"errors"

	"quill/internal/models"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AddComment handles POST /posts/:id/comment. Both outcomes land back on the
// post detail: a valid comment is attached, an empty one mutates nothing.
func (s *Server) AddComment(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	var req struct {
		Text string `json:"text" form:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	_, err = s.commentService.AddComment(ctx, service.AddCommentInput{
		UserID: userID,
		PostID: id,
		Text:   req.Text,
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "VALIDATION_ERROR" {
			// Invalid form input lands back on the detail page.
			return c.Redirect(postDetailPath(id), fiber.StatusFound)
		}
		return respondServiceError(c, err)
	}

	return c.Redirect(postDetailPath(id), fiber.StatusFound)
}

// DeleteComment handles POST /posts/:id/comments/:commentId/delete
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	if err := s.commentService.DeleteComment(ctx, commentID, userID); err != nil {
		if errors.Is(err, service.ErrNotAuthor) {
			return c.Redirect(postDetailPath(id), fiber.StatusFound)
		}
		return respondServiceError(c, err)
	}

	return c.Redirect(postDetailPath(id), fiber.StatusFound)
}
