package service

import (
	"context"
	"testing"

	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestLikeOwnPostIsIgnored(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return &models.Post{ID: id, AuthorID: 1}, nil
	}
	liked := false
	repo.likeFn = func(_ context.Context, _, _ uint) (bool, error) {
		liked = true
		return true, nil
	}
	svc := NewEngagementService(repo, noopUserRepo(), noopFollowRepo())

	post, err := svc.LikePost(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.NotNil(t, post)
	assert.False(t, liked, "self-like must not touch the likes table")
}

func TestLikeRecomputesCountOnlyWhenCreated(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		created         bool
		expectRecompute bool
	}{
		{name: "new like", created: true, expectRecompute: true},
		{name: "duplicate like", created: false, expectRecompute: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := noopPostRepo()
			repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
				return &models.Post{ID: id, AuthorID: 1}, nil
			}
			repo.likeFn = func(_ context.Context, _, _ uint) (bool, error) {
				return tc.created, nil
			}
			recomputed := false
			repo.recomputeLikesCountFn = func(_ context.Context, _ uint) error {
				recomputed = true
				return nil
			}
			svc := NewEngagementService(repo, noopUserRepo(), noopFollowRepo())

			_, err := svc.LikePost(context.Background(), 2, 10)
			require.NoError(t, err)
			assert.Equal(t, tc.expectRecompute, recomputed)
		})
	}
}

func TestUnlikeWithoutPriorLikeIsNoop(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return &models.Post{ID: id, AuthorID: 1}, nil
	}
	repo.unlikeFn = func(_ context.Context, _, _ uint) (bool, error) {
		return false, nil
	}
	recomputed := false
	repo.recomputeLikesCountFn = func(_ context.Context, _ uint) error {
		recomputed = true
		return nil
	}
	svc := NewEngagementService(repo, noopUserRepo(), noopFollowRepo())

	_, err := svc.UnlikePost(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.False(t, recomputed)
}

func TestLikeMissingPost(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, _, _ uint) (*models.Post, error) {
		return nil, gorm.ErrRecordNotFound
	}
	svc := NewEngagementService(repo, noopUserRepo(), noopFollowRepo())

	_, err := svc.LikePost(context.Background(), 2, 999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFollowSelfIsIgnored(t *testing.T) {
	t.Parallel()

	users := noopUserRepo()
	users.getByUsernameFn = func(_ context.Context, username string) (*models.User, error) {
		return &models.User{ID: 1, Username: username}, nil
	}
	follows := noopFollowRepo()
	followed := false
	follows.followFn = func(_ context.Context, _, _ uint) (bool, error) {
		followed = true
		return true, nil
	}
	svc := NewEngagementService(noopPostRepo(), users, follows)

	require.NoError(t, svc.FollowAuthor(context.Background(), 1, "me"))
	assert.False(t, followed, "self-follow must not create an edge")
}

func TestFollowUnknownAuthor(t *testing.T) {
	t.Parallel()

	svc := NewEngagementService(noopPostRepo(), noopUserRepo(), noopFollowRepo())
	err := svc.FollowAuthor(context.Background(), 1, "nobody")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFollowThenUnfollow(t *testing.T) {
	t.Parallel()

	users := noopUserRepo()
	users.getByUsernameFn = func(_ context.Context, username string) (*models.User, error) {
		return &models.User{ID: 2, Username: username}, nil
	}

	edges := map[[2]uint]bool{}
	follows := noopFollowRepo()
	follows.followFn = func(_ context.Context, userID, authorID uint) (bool, error) {
		key := [2]uint{userID, authorID}
		if edges[key] {
			return false, nil
		}
		edges[key] = true
		return true, nil
	}
	follows.unfollowFn = func(_ context.Context, userID, authorID uint) (bool, error) {
		key := [2]uint{userID, authorID}
		if !edges[key] {
			return false, nil
		}
		delete(edges, key)
		return true, nil
	}
	svc := NewEngagementService(noopPostRepo(), users, follows)
	ctx := context.Background()

	require.NoError(t, svc.FollowAuthor(ctx, 1, "author"))
	require.NoError(t, svc.FollowAuthor(ctx, 1, "author"), "duplicate follow is a no-op")
	assert.Len(t, edges, 1)

	require.NoError(t, svc.UnfollowAuthor(ctx, 1, "author"))
	require.NoError(t, svc.UnfollowAuthor(ctx, 1, "author"), "unfollow without edge is a no-op")
	assert.Empty(t, edges)
}
