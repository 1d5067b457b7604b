package service

import (
	"context"

	"quill/internal/models"
	"quill/internal/observability"
	"quill/internal/repository"
)

// EngagementService holds the like and follow toggle rules. Both toggles are
// idempotent: duplicate requests and self-actions resolve to no-ops without
// surfacing an error.
type EngagementService struct {
	postRepo   repository.PostRepository
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

// NewEngagementService creates a new engagement service.
func NewEngagementService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
) *EngagementService {
	return &EngagementService{
		postRepo:   postRepo,
		userRepo:   userRepo,
		followRepo: followRepo,
	}
}

// LikePost records userID's like on postID. Liking your own post or a post
// you already liked is silently ignored. On a new like the post's persisted
// like count is recomputed.
func (s *EngagementService) LikePost(ctx context.Context, userID, postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	if post.AuthorID == userID {
		observability.EngagementToggles.WithLabelValues("like", "self_ignored").Inc()
		return post, nil
	}

	created, err := s.postRepo.Like(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if created {
		if err := s.postRepo.RecomputeLikesCount(ctx, postID); err != nil {
			return nil, err
		}
		observability.EngagementToggles.WithLabelValues("like", "created").Inc()
	} else {
		observability.EngagementToggles.WithLabelValues("like", "noop").Inc()
	}

	return s.postRepo.GetByID(ctx, postID, userID)
}

// UnlikePost removes userID's like if present, recomputing the count when a
// row was actually deleted.
func (s *EngagementService) UnlikePost(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, userID); err != nil {
		return nil, err
	}

	deleted, err := s.postRepo.Unlike(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if deleted {
		if err := s.postRepo.RecomputeLikesCount(ctx, postID); err != nil {
			return nil, err
		}
		observability.EngagementToggles.WithLabelValues("unlike", "deleted").Inc()
	} else {
		observability.EngagementToggles.WithLabelValues("unlike", "noop").Inc()
	}

	return s.postRepo.GetByID(ctx, postID, userID)
}

// FollowAuthor makes userID follow the author named username. Self-follow is
// silently ignored; a duplicate follow is a no-op.
func (s *EngagementService) FollowAuthor(ctx context.Context, userID uint, username string) error {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}

	if author.ID == userID {
		observability.EngagementToggles.WithLabelValues("follow", "self_ignored").Inc()
		return nil
	}

	created, err := s.followRepo.Follow(ctx, userID, author.ID)
	if err != nil {
		return err
	}
	if created {
		observability.EngagementToggles.WithLabelValues("follow", "created").Inc()
	} else {
		observability.EngagementToggles.WithLabelValues("follow", "noop").Inc()
	}
	return nil
}

// UnfollowAuthor removes the follow row if present, no-op otherwise.
func (s *EngagementService) UnfollowAuthor(ctx context.Context, userID uint, username string) error {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}

	deleted, err := s.followRepo.Unfollow(ctx, userID, author.ID)
	if err != nil {
		return err
	}
	if deleted {
		observability.EngagementToggles.WithLabelValues("unfollow", "deleted").Inc()
	} else {
		observability.EngagementToggles.WithLabelValues("unfollow", "noop").Inc()
	}
	return nil
}
