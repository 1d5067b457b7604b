package service

import (
	"context"

	"quill/internal/models"

	"gorm.io/gorm"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn                 func(context.Context, *models.Post) error
	getByIDFn                func(context.Context, uint, uint) (*models.Post, error)
	listFn                   func(context.Context, string, string, int, int) ([]*models.Post, error)
	countAllFn               func(context.Context, string) (int, error)
	listByGroupFn            func(context.Context, uint, int, int) ([]*models.Post, error)
	countByGroupFn           func(context.Context, uint) (int, error)
	listByAuthorFn           func(context.Context, uint, int, int) ([]*models.Post, error)
	countByAuthorFn          func(context.Context, uint) (int, error)
	listFollowedFn           func(context.Context, uint, int, int) ([]*models.Post, error)
	countFollowedFn          func(context.Context, uint) (int, error)
	updateFn                 func(context.Context, *models.Post) error
	deleteFn                 func(context.Context, uint) error
	isLikedFn                func(context.Context, uint, uint) (bool, error)
	getLikedPostIDsFn        func(context.Context, uint, []uint) ([]uint, error)
	likeFn                   func(context.Context, uint, uint) (bool, error)
	unlikeFn                 func(context.Context, uint, uint) (bool, error)
	recomputeLikesCountFn    func(context.Context, uint) error
	recomputeCommentsCountFn func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, currentUserID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, currentUserID)
}
func (s *postRepoStub) List(ctx context.Context, order, query string, limit, offset int) ([]*models.Post, error) {
	return s.listFn(ctx, order, query, limit, offset)
}
func (s *postRepoStub) CountAll(ctx context.Context, query string) (int, error) {
	return s.countAllFn(ctx, query)
}
func (s *postRepoStub) ListByGroup(ctx context.Context, groupID uint, limit, offset int) ([]*models.Post, error) {
	return s.listByGroupFn(ctx, groupID, limit, offset)
}
func (s *postRepoStub) CountByGroup(ctx context.Context, groupID uint) (int, error) {
	return s.countByGroupFn(ctx, groupID)
}
func (s *postRepoStub) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Post, error) {
	return s.listByAuthorFn(ctx, authorID, limit, offset)
}
func (s *postRepoStub) CountByAuthor(ctx context.Context, authorID uint) (int, error) {
	return s.countByAuthorFn(ctx, authorID)
}
func (s *postRepoStub) ListFollowed(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return s.listFollowedFn(ctx, userID, limit, offset)
}
func (s *postRepoStub) CountFollowed(ctx context.Context, userID uint) (int, error) {
	return s.countFollowedFn(ctx, userID)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, postID)
}
func (s *postRepoStub) GetLikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error) {
	return s.getLikedPostIDsFn(ctx, userID, postIDs)
}
func (s *postRepoStub) Like(ctx context.Context, userID, postID uint) (bool, error) {
	return s.likeFn(ctx, userID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID uint) (bool, error) {
	return s.unlikeFn(ctx, userID, postID)
}
func (s *postRepoStub) RecomputeLikesCount(ctx context.Context, postID uint) error {
	return s.recomputeLikesCountFn(ctx, postID)
}
func (s *postRepoStub) RecomputeCommentsCount(ctx context.Context, postID uint) error {
	return s.recomputeCommentsCountFn(ctx, postID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:        func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:       func(_ context.Context, _, _ uint) (*models.Post, error) { return &models.Post{}, nil },
		listFn:          func(_ context.Context, _, _ string, _, _ int) ([]*models.Post, error) { return nil, nil },
		countAllFn:      func(_ context.Context, _ string) (int, error) { return 0, nil },
		listByGroupFn:   func(_ context.Context, _ uint, _, _ int) ([]*models.Post, error) { return nil, nil },
		countByGroupFn:  func(_ context.Context, _ uint) (int, error) { return 0, nil },
		listByAuthorFn:  func(_ context.Context, _ uint, _, _ int) ([]*models.Post, error) { return nil, nil },
		countByAuthorFn: func(_ context.Context, _ uint) (int, error) { return 0, nil },
		listFollowedFn:  func(_ context.Context, _ uint, _, _ int) ([]*models.Post, error) { return nil, nil },
		countFollowedFn: func(_ context.Context, _ uint) (int, error) { return 0, nil },
		updateFn:        func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn:        func(_ context.Context, _ uint) error { return nil },
		isLikedFn:       func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		getLikedPostIDsFn: func(_ context.Context, _ uint, _ []uint) ([]uint, error) {
			return nil, nil
		},
		likeFn:                   func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		unlikeFn:                 func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		recomputeLikesCountFn:    func(_ context.Context, _ uint) error { return nil },
		recomputeCommentsCountFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// groupRepoStub is a stub for repository.GroupRepository.
type groupRepoStub struct {
	createFn    func(context.Context, *models.Group) error
	getByIDFn   func(context.Context, uint) (*models.Group, error)
	getBySlugFn func(context.Context, string) (*models.Group, error)
	listFn      func(context.Context) ([]*models.Group, error)
}

func (s *groupRepoStub) Create(ctx context.Context, group *models.Group) error {
	return s.createFn(ctx, group)
}
func (s *groupRepoStub) GetByID(ctx context.Context, id uint) (*models.Group, error) {
	return s.getByIDFn(ctx, id)
}
func (s *groupRepoStub) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	return s.getBySlugFn(ctx, slug)
}
func (s *groupRepoStub) List(ctx context.Context) ([]*models.Group, error) {
	return s.listFn(ctx)
}

func noopGroupRepo() *groupRepoStub {
	return &groupRepoStub{
		createFn:  func(_ context.Context, _ *models.Group) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Group, error) { return &models.Group{ID: id}, nil },
		getBySlugFn: func(_ context.Context, _ string) (*models.Group, error) {
			return nil, gorm.ErrRecordNotFound
		},
		listFn: func(_ context.Context) ([]*models.Group, error) { return nil, nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn        func(context.Context, *models.User) error
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByIDCachedFn func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	updateFn        func(context.Context, *models.User) error
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByIDCached(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDCachedFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn:        func(_ context.Context, _ *models.User) error { return nil },
		getByIDFn:       func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByIDCachedFn: func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) {
			return nil, gorm.ErrRecordNotFound
		},
		updateFn: func(_ context.Context, _ *models.User) error { return nil },
	}
}

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	followFn         func(context.Context, uint, uint) (bool, error)
	unfollowFn       func(context.Context, uint, uint) (bool, error)
	isFollowingFn    func(context.Context, uint, uint) (bool, error)
	countFollowersFn func(context.Context, uint) (int, error)
}

func (s *followRepoStub) Follow(ctx context.Context, userID, authorID uint) (bool, error) {
	return s.followFn(ctx, userID, authorID)
}
func (s *followRepoStub) Unfollow(ctx context.Context, userID, authorID uint) (bool, error) {
	return s.unfollowFn(ctx, userID, authorID)
}
func (s *followRepoStub) IsFollowing(ctx context.Context, userID, authorID uint) (bool, error) {
	return s.isFollowingFn(ctx, userID, authorID)
}
func (s *followRepoStub) CountFollowers(ctx context.Context, authorID uint) (int, error) {
	return s.countFollowersFn(ctx, authorID)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		followFn:         func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		unfollowFn:       func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		isFollowingFn:    func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		countFollowersFn: func(_ context.Context, _ uint) (int, error) { return 0, nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getByIDFn    func(context.Context, uint) (*models.Comment, error)
	listByPostFn func(context.Context, uint) ([]*models.Comment, error)
	deleteFn     func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:     func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:    func(_ context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		listByPostFn: func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
	}
}
