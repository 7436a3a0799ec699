package service

import (
	"context"

	"quill/internal/models"
)

// Repository stubs with overridable function fields. Unset read methods
// return empty results; unset write methods succeed.

type userRepoStub struct {
	getByIDFn         func(ctx context.Context, id uint) (*models.User, error)
	getByIDWithRoleFn func(ctx context.Context, id uint) (*models.User, error)
	getByEmailFn      func(ctx context.Context, email string) (*models.User, error)
	getByUsernameFn   func(ctx context.Context, username string) (*models.User, error)
	createFn          func(ctx context.Context, user *models.User) error
	updateFn          func(ctx context.Context, user *models.User) error
	deleteFn          func(ctx context.Context, id uint) error
	listFn            func(ctx context.Context, limit, offset int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, models.NewNotFoundError("User", id)
}

func (s *userRepoStub) GetByIDWithRole(ctx context.Context, id uint) (*models.User, error) {
	if s.getByIDWithRoleFn != nil {
		return s.getByIDWithRoleFn(ctx, id)
	}
	return nil, models.NewNotFoundError("User", id)
}

func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.getByEmailFn != nil {
		return s.getByEmailFn(ctx, email)
	}
	return nil, nil
}

func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if s.getByUsernameFn != nil {
		return s.getByUsernameFn(ctx, username)
	}
	return nil, nil
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	if s.createFn != nil {
		return s.createFn(ctx, user)
	}
	user.ID = 1
	return nil
}

func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, user)
	}
	return nil
}

func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	if s.listFn != nil {
		return s.listFn(ctx, limit, offset)
	}
	return nil, nil
}

type roleRepoStub struct {
	getByIDFn     func(ctx context.Context, id uint) (*models.Role, error)
	getByNameFn   func(ctx context.Context, name string) (*models.Role, error)
	getDefaultFn  func(ctx context.Context) (*models.Role, error)
	updateFn      func(ctx context.Context, role *models.Role) error
	insertRolesFn func(ctx context.Context, table []models.RoleDefinition) error
}

func (s *roleRepoStub) GetByID(ctx context.Context, id uint) (*models.Role, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, models.NewNotFoundError("Role", id)
}

func (s *roleRepoStub) GetByName(ctx context.Context, name string) (*models.Role, error) {
	if s.getByNameFn != nil {
		return s.getByNameFn(ctx, name)
	}
	return nil, models.NewNotFoundError("Role", name)
}

func (s *roleRepoStub) GetDefault(ctx context.Context) (*models.Role, error) {
	if s.getDefaultFn != nil {
		return s.getDefaultFn(ctx)
	}
	return nil, models.NewNotFoundError("Role", "default")
}

func (s *roleRepoStub) Update(ctx context.Context, role *models.Role) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, role)
	}
	return nil
}

func (s *roleRepoStub) InsertRoles(ctx context.Context, table []models.RoleDefinition) error {
	if s.insertRolesFn != nil {
		return s.insertRolesFn(ctx, table)
	}
	return nil
}

type followRepoStub struct {
	followFn          func(ctx context.Context, followerID, followedID uint) error
	unfollowFn        func(ctx context.Context, followerID, followedID uint) error
	isFollowingFn     func(ctx context.Context, followerID, followedID uint) (bool, error)
	isFollowedByFn    func(ctx context.Context, userID, followerID uint) (bool, error)
	followersFn       func(ctx context.Context, userID uint, limit, offset int) ([]models.User, error)
	followingFn       func(ctx context.Context, userID uint, limit, offset int) ([]models.User, error)
	countFollowersFn  func(ctx context.Context, userID uint) (int64, error)
	countFollowingFn  func(ctx context.Context, userID uint) (int64, error)
	followedPostsFn   func(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error)
	reconcileSelfsFn  func(ctx context.Context) (int64, error)
}

func (s *followRepoStub) Follow(ctx context.Context, followerID, followedID uint) error {
	if s.followFn != nil {
		return s.followFn(ctx, followerID, followedID)
	}
	return nil
}

func (s *followRepoStub) Unfollow(ctx context.Context, followerID, followedID uint) error {
	if s.unfollowFn != nil {
		return s.unfollowFn(ctx, followerID, followedID)
	}
	return nil
}

func (s *followRepoStub) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	if s.isFollowingFn != nil {
		return s.isFollowingFn(ctx, followerID, followedID)
	}
	return false, nil
}

func (s *followRepoStub) IsFollowedBy(ctx context.Context, userID, followerID uint) (bool, error) {
	if s.isFollowedByFn != nil {
		return s.isFollowedByFn(ctx, userID, followerID)
	}
	return false, nil
}

func (s *followRepoStub) Followers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	if s.followersFn != nil {
		return s.followersFn(ctx, userID, limit, offset)
	}
	return nil, nil
}

func (s *followRepoStub) Following(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	if s.followingFn != nil {
		return s.followingFn(ctx, userID, limit, offset)
	}
	return nil, nil
}

func (s *followRepoStub) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	if s.countFollowersFn != nil {
		return s.countFollowersFn(ctx, userID)
	}
	return 0, nil
}

func (s *followRepoStub) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	if s.countFollowingFn != nil {
		return s.countFollowingFn(ctx, userID)
	}
	return 0, nil
}

func (s *followRepoStub) FollowedPosts(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error) {
	if s.followedPostsFn != nil {
		return s.followedPostsFn(ctx, userID, limit, offset)
	}
	return nil, nil
}

func (s *followRepoStub) ReconcileSelfFollows(ctx context.Context) (int64, error) {
	if s.reconcileSelfsFn != nil {
		return s.reconcileSelfsFn(ctx)
	}
	return 0, nil
}

type postRepoStub struct {
	createFn        func(ctx context.Context, post *models.Post) error
	getByIDFn       func(ctx context.Context, id uint) (*models.Post, error)
	getBySlugFn     func(ctx context.Context, slug string) (*models.Post, error)
	getByAuthorFn   func(ctx context.Context, authorID uint, limit, offset int) ([]*models.Post, error)
	listFn          func(ctx context.Context, limit, offset int) ([]*models.Post, error)
	countFn         func(ctx context.Context) (int64, error)
	countByAuthorFn func(ctx context.Context, authorID uint) (int64, error)
	updateFn        func(ctx context.Context, post *models.Post) error
	deleteFn        func(ctx context.Context, id uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	if s.createFn != nil {
		return s.createFn(ctx, post)
	}
	post.ID = 1
	return nil
}

func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, models.NewNotFoundError("Post", id)
}

func (s *postRepoStub) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	if s.getBySlugFn != nil {
		return s.getBySlugFn(ctx, slug)
	}
	return nil, models.NewNotFoundError("Post", slug)
}

func (s *postRepoStub) GetByAuthorID(ctx context.Context, authorID uint, limit, offset int) ([]*models.Post, error) {
	if s.getByAuthorFn != nil {
		return s.getByAuthorFn(ctx, authorID, limit, offset)
	}
	return nil, nil
}

func (s *postRepoStub) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	if s.listFn != nil {
		return s.listFn(ctx, limit, offset)
	}
	return nil, nil
}

func (s *postRepoStub) Count(ctx context.Context) (int64, error) {
	if s.countFn != nil {
		return s.countFn(ctx)
	}
	return 0, nil
}

func (s *postRepoStub) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	if s.countByAuthorFn != nil {
		return s.countByAuthorFn(ctx, authorID)
	}
	return 0, nil
}

func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, post)
	}
	return nil
}

func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

type commentRepoStub struct {
	createFn      func(ctx context.Context, comment *models.Comment) error
	getByIDFn     func(ctx context.Context, id uint) (*models.Comment, error)
	listByPostFn  func(ctx context.Context, postID uint, includeDisabled bool, limit, offset int) ([]*models.Comment, error)
	listFn        func(ctx context.Context, limit, offset int) ([]*models.Comment, error)
	countByPostFn func(ctx context.Context, postID uint, includeDisabled bool) (int64, error)
	setDisabledFn func(ctx context.Context, id uint, disabled bool) error
	deleteFn      func(ctx context.Context, id uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	if s.createFn != nil {
		return s.createFn(ctx, comment)
	}
	comment.ID = 1
	return nil
}

func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, models.NewNotFoundError("Comment", id)
}

func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint, includeDisabled bool, limit, offset int) ([]*models.Comment, error) {
	if s.listByPostFn != nil {
		return s.listByPostFn(ctx, postID, includeDisabled, limit, offset)
	}
	return nil, nil
}

func (s *commentRepoStub) List(ctx context.Context, limit, offset int) ([]*models.Comment, error) {
	if s.listFn != nil {
		return s.listFn(ctx, limit, offset)
	}
	return nil, nil
}

func (s *commentRepoStub) CountByPost(ctx context.Context, postID uint, includeDisabled bool) (int64, error) {
	if s.countByPostFn != nil {
		return s.countByPostFn(ctx, postID, includeDisabled)
	}
	return 0, nil
}

func (s *commentRepoStub) SetDisabled(ctx context.Context, id uint, disabled bool) error {
	if s.setDisabledFn != nil {
		return s.setDisabledFn(ctx, id, disabled)
	}
	return nil
}

func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

// Test fixtures.

func roleWith(perms ...models.Permission) *models.Role {
	r := &models.Role{ID: 1, Name: models.RoleUser}
	for _, p := range perms {
		r.AddPermission(p)
	}
	return r
}

func defaultRoleUser(id uint) *models.User {
	return &models.User{
		ID:   id,
		Role: roleWith(models.PermissionFollow, models.PermissionComment, models.PermissionWrite),
	}
}
