// Package service holds the domain rules layered between handlers and repositories.
package service

import (
	"context"
	"net/url"

	"quill/internal/cache"
	"quill/internal/models"
	"quill/internal/observability"
	"quill/internal/pagination"
	"quill/internal/repository"
)

// FeedPage is one assembled, paginated feed response.
type FeedPage struct {
	Posts   []*models.Post  `json:"posts"`
	Page    pagination.Page `json:"page"`
	OrderBy string          `json:"orderby"`
	Query   string          `json:"q,omitempty"`
}

// GroupFeed is a group's feed plus the group itself.
type GroupFeed struct {
	Group *models.Group `json:"group"`
	FeedPage
}

// ProfileFeed is an author's feed plus profile facts.
type ProfileFeed struct {
	Author     *models.User `json:"author"`
	PostsTotal int          `json:"posts_total"`
	Following  bool         `json:"following"`
	FeedPage
}

// FeedService assembles ordered, filtered, paginated post collections.
type FeedService struct {
	postRepo   repository.PostRepository
	groupRepo  repository.GroupRepository
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

// NewFeedService creates a new feed service.
func NewFeedService(
	postRepo repository.PostRepository,
	groupRepo repository.GroupRepository,
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
) *FeedService {
	return &FeedService{
		postRepo:   postRepo,
		groupRepo:  groupRepo,
		userRepo:   userRepo,
		followRepo: followRepo,
	}
}

// normalizeOrder maps the orderby query parameter onto a supported feed order.
func normalizeOrder(order string) string {
	switch order {
	case repository.OrderByLikesCount, repository.OrderByCommentsCount:
		return order
	default:
		return repository.OrderByPubDate
	}
}

// Home assembles the home feed page. The assembled payload is cached in Redis
// for cache.FeedTTL keyed by the normalized query; writes elsewhere never
// invalidate it, so responses may be up to the TTL stale. The per-user Liked
// flags are applied after loading so cached pages stay user-agnostic.
// Returns the page and whether it was served from cache.
func (s *FeedService) Home(ctx context.Context, rawPage, order, query string, currentUserID uint) (*FeedPage, bool, error) {
	order = normalizeOrder(order)

	params := url.Values{}
	if rawPage != "" {
		params.Set("page", rawPage)
	}
	if order != repository.OrderByPubDate {
		params.Set("orderby", order)
	}
	if query != "" {
		params.Set("q", query)
	}

	var feed FeedPage
	cached, err := cache.Aside(ctx, cache.FeedKey(params), &feed, cache.FeedTTL, func() error {
		assembled, err := s.assembleHome(ctx, rawPage, order, query)
		if err != nil {
			return err
		}
		feed = *assembled
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if cached {
		observability.FeedCacheHits.Inc()
	} else {
		observability.FeedCacheMisses.Inc()
	}

	if err := s.markLiked(ctx, currentUserID, feed.Posts); err != nil {
		return nil, false, err
	}
	return &feed, cached, nil
}

func (s *FeedService) assembleHome(ctx context.Context, rawPage, order, query string) (*FeedPage, error) {
	total, err := s.postRepo.CountAll(ctx, query)
	if err != nil {
		return nil, err
	}

	page := pagination.New(total, rawPage, pagination.PostsPerPage)
	posts, err := s.postRepo.List(ctx, order, query, page.Limit(), page.Offset())
	if err != nil {
		return nil, err
	}

	return &FeedPage{Posts: posts, Page: page, OrderBy: order, Query: query}, nil
}

// Search assembles the uncached search feed over post text.
func (s *FeedService) Search(ctx context.Context, rawPage, query string, currentUserID uint) (*FeedPage, error) {
	feed, err := s.assembleHome(ctx, rawPage, repository.OrderByPubDate, query)
	if err != nil {
		return nil, err
	}
	if err := s.markLiked(ctx, currentUserID, feed.Posts); err != nil {
		return nil, err
	}
	return feed, nil
}

// Group assembles the feed for one group, newest first.
func (s *FeedService) Group(ctx context.Context, slug, rawPage string, currentUserID uint) (*GroupFeed, error) {
	group, err := s.groupRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	total, err := s.postRepo.CountByGroup(ctx, group.ID)
	if err != nil {
		return nil, err
	}

	page := pagination.New(total, rawPage, pagination.PostsPerPage)
	posts, err := s.postRepo.ListByGroup(ctx, group.ID, page.Limit(), page.Offset())
	if err != nil {
		return nil, err
	}
	if err := s.markLiked(ctx, currentUserID, posts); err != nil {
		return nil, err
	}

	return &GroupFeed{
		Group:    group,
		FeedPage: FeedPage{Posts: posts, Page: page, OrderBy: repository.OrderByPubDate},
	}, nil
}

// Profile assembles an author's feed plus their post count and whether the
// current user follows them.
func (s *FeedService) Profile(ctx context.Context, username, rawPage string, currentUserID uint) (*ProfileFeed, error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	total, err := s.postRepo.CountByAuthor(ctx, author.ID)
	if err != nil {
		return nil, err
	}

	page := pagination.New(total, rawPage, pagination.PostsPerPage)
	posts, err := s.postRepo.ListByAuthor(ctx, author.ID, page.Limit(), page.Offset())
	if err != nil {
		return nil, err
	}
	if err := s.markLiked(ctx, currentUserID, posts); err != nil {
		return nil, err
	}

	following := false
	if currentUserID != 0 && currentUserID != author.ID {
		following, err = s.followRepo.IsFollowing(ctx, currentUserID, author.ID)
		if err != nil {
			return nil, err
		}
	}

	return &ProfileFeed{
		Author:     author,
		PostsTotal: total,
		Following:  following,
		FeedPage:   FeedPage{Posts: posts, Page: page, OrderBy: repository.OrderByPubDate},
	}, nil
}

// Followed assembles the follower feed: posts by authors the user follows.
func (s *FeedService) Followed(ctx context.Context, userID uint, rawPage string) (*FeedPage, error) {
	total, err := s.postRepo.CountFollowed(ctx, userID)
	if err != nil {
		return nil, err
	}

	page := pagination.New(total, rawPage, pagination.PostsPerPage)
	posts, err := s.postRepo.ListFollowed(ctx, userID, page.Limit(), page.Offset())
	if err != nil {
		return nil, err
	}
	if err := s.markLiked(ctx, userID, posts); err != nil {
		return nil, err
	}

	return &FeedPage{Posts: posts, Page: page, OrderBy: repository.OrderByPubDate}, nil
}

// markLiked sets the Liked flag on each post for the current user in one query.
func (s *FeedService) markLiked(ctx context.Context, userID uint, posts []*models.Post) error {
	if userID == 0 || len(posts) == 0 {
		return nil
	}

	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	likedIDs, err := s.postRepo.GetLikedPostIDs(ctx, userID, ids)
	if err != nil {
		return err
	}

	liked := make(map[uint]struct{}, len(likedIDs))
	for _, id := range likedIDs {
		liked[id] = struct{}{}
	}
	for _, p := range posts {
		_, p.Liked = liked[p.ID]
	}
	return nil
}
