package server

import (
	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Home handles GET /?page=&orderby=&q=
// The assembled page is served from the shared feed cache when fresh.
func (s *Server) Home(c *fiber.Ctx) error {
	ctx := c.Context()
	userID, _ := s.optionalUserID(c)

	feed, cached, err := s.feedService.Home(ctx,
		c.Query("page"), c.Query("orderby"), c.Query("q"), userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	if cached {
		c.Set("X-Cache", "HIT")
	} else {
		c.Set("X-Cache", "MISS")
	}
	return c.JSON(feed)
}

// SearchFeed handles GET /search?q=&page=
func (s *Server) SearchFeed(c *fiber.Ctx) error {
	ctx := c.Context()
	q := c.Query("q")
	if q == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Search query is required"))
	}

	userID, _ := s.optionalUserID(c)
	feed, err := s.feedService.Search(ctx, c.Query("page"), q, userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(feed)
}

// GroupFeed handles GET /group/:slug?page=
func (s *Server) GroupFeed(c *fiber.Ctx) error {
	ctx := c.Context()
	userID, _ := s.optionalUserID(c)

	feed, err := s.feedService.Group(ctx, c.Params("slug"), c.Query("page"), userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(feed)
}

// Profile handles GET /profile/:username?page=
func (s *Server) Profile(c *fiber.Ctx) error {
	ctx := c.Context()
	userID, _ := s.optionalUserID(c)

	feed, err := s.feedService.Profile(ctx, c.Params("username"), c.Query("page"), userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(feed)
}

// FollowedFeed handles GET /follow?page=
// Only posts by authors the requester follows appear here.
func (s *Server) FollowedFeed(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	feed, err := s.feedService.Followed(ctx, userID, c.Query("page"))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(feed)
}
