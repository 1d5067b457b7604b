package server

import (
	"github.com/gofiber/fiber/v2"
)

// LikePost handles GET /posts/:id/like. The toggle is idempotent: liking an
// already-liked post, or one's own post, changes nothing. The requester is
// sent back to where they came from via `next`.
func (s *Server) LikePost(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	if _, err := s.engagementService.LikePost(ctx, userID, id); err != nil {
		return respondServiceError(c, err)
	}

	return c.Redirect(safeNext(c, "/"), fiber.StatusFound)
}

// UnlikePost handles GET /posts/:id/unlike
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	if _, err := s.engagementService.UnlikePost(ctx, userID, id); err != nil {
		return respondServiceError(c, err)
	}

	return c.Redirect(safeNext(c, "/"), fiber.StatusFound)
}

// FollowAuthor handles GET /profile/:username/follow. Following yourself or
// an author you already follow changes nothing.
func (s *Server) FollowAuthor(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	if err := s.engagementService.FollowAuthor(ctx, userID, c.Params("username")); err != nil {
		return respondServiceError(c, err)
	}

	return c.Redirect("/follow", fiber.StatusFound)
}

// UnfollowAuthor handles GET /profile/:username/unfollow
func (s *Server) UnfollowAuthor(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	if err := s.engagementService.UnfollowAuthor(ctx, userID, c.Params("username")); err != nil {
		return respondServiceError(c, err)
	}

	return c.Redirect("/follow", fiber.StatusFound)
}
