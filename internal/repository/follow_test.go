package repository

import (
	"context"
	"testing"
	"time"

	"quill/internal/cache"
	"quill/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewFollowRepository(db)

	alice := createTestUser(t, db, "alice", "alice@example.com")
	bob := createTestUser(t, db, "bob", "bob@example.com")

	require.NoError(t, repo.Follow(ctx, alice.ID, bob.ID))
	require.NoError(t, repo.Follow(ctx, alice.ID, bob.ID))

	var edges int64
	err := db.Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", alice.ID, bob.ID).
		Count(&edges).Error
	require.NoError(t, err)
	assert.Equal(t, int64(1), edges)

	following, err := repo.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)

	// Direction matters.
	following, err = repo.IsFollowing(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestIsFollowedBy(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewFollowRepository(db)

	alice := createTestUser(t, db, "alice", "alice@example.com")
	bob := createTestUser(t, db, "bob", "bob@example.com")

	require.NoError(t, repo.Follow(ctx, alice.ID, bob.ID))

	// alice -> bob: bob is followed by alice, not the other way around.
	followed, err := repo.IsFollowedBy(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, followed)

	followed, err = repo.IsFollowedBy(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, followed)

	// The mandatory self-follow makes everyone followed by themselves.
	followed, err = repo.IsFollowedBy(ctx, alice.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, followed)
}

func TestUnfollow(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewFollowRepository(db)

	alice := createTestUser(t, db, "alice", "alice@example.com")
	bob := createTestUser(t, db, "bob", "bob@example.com")

	require.NoError(t, repo.Follow(ctx, alice.ID, bob.ID))
	require.NoError(t, repo.Unfollow(ctx, alice.ID, bob.ID))

	following, err := repo.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)

	// Removing an edge that no longer exists is a no-op.
	require.NoError(t, repo.Unfollow(ctx, alice.ID, bob.ID))
}

func TestFollowersAndFollowing(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewFollowRepository(db)

	alice := createTestUser(t, db, "alice", "alice@example.com")
	bob := createTestUser(t, db, "bob", "bob@example.com")
	carol := createTestUser(t, db, "carol", "carol@example.com")

	require.NoError(t, repo.Follow(ctx, bob.ID, alice.ID))
	require.NoError(t, repo.Follow(ctx, carol.ID, alice.ID))
	require.NoError(t, repo.Follow(ctx, alice.ID, bob.ID))

	followers, err := repo.Followers(ctx, alice.ID, 10, 0)
	require.NoError(t, err)
	// bob, carol, plus alice's own self-follow.
	assert.Len(t, followers, 3)

	following, err := repo.Following(ctx, alice.ID, 10, 0)
	require.NoError(t, err)
	// bob plus self.
	assert.Len(t, following, 2)

	count, err := repo.CountFollowers(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	count, err = repo.CountFollowing(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestFollowedPosts(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	followRepo := NewFollowRepository(db)
	postRepo := NewPostRepository(db)

	alice := createTestUser(t, db, "alice", "alice@example.com")
	bob := createTestUser(t, db, "bob", "bob@example.com")
	carol := createTestUser(t, db, "carol", "carol@example.com")

	require.NoError(t, followRepo.Follow(ctx, alice.ID, bob.ID))

	makePost := func(authorID uint, title string, age time.Duration) {
		post := &models.Post{AuthorID: authorID}
		post.SetTitle(title)
		post.SetBody("body of " + title)
		require.NoError(t, postRepo.Create(ctx, post))
		require.NoError(t, db.Model(post).Update("created_at", time.Now().Add(-age)).Error)
	}

	makePost(alice.ID, "own post", 3*time.Hour)
	makePost(bob.ID, "followed post", 2*time.Hour)
	makePost(carol.ID, "unfollowed post", 1*time.Hour)

	feed, err := followRepo.FollowedPosts(ctx, alice.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, feed, 2)

	// Newest first; carol's post stays out, alice's own post rides in on the
	// self-follow edge.
	assert.Equal(t, "followed post", feed[0].Title)
	assert.Equal(t, "own post", feed[1].Title)
	assert.Equal(t, "bob", feed[0].Author.Username)
}

func TestFollowedPostsCached(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	followRepo := NewFollowRepository(db)
	postRepo := NewPostRepository(db)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(rdb)
	t.Cleanup(func() {
		cache.SetClient(nil)
		rdb.Close()
	})

	alice := createTestUser(t, db, "alice", "alice@example.com")
	bob := createTestUser(t, db, "bob", "bob@example.com")
	require.NoError(t, followRepo.Follow(ctx, alice.ID, bob.ID))

	post := &models.Post{AuthorID: bob.ID}
	post.SetTitle("cached post")
	post.SetBody("body")
	require.NoError(t, postRepo.Create(ctx, post))

	feed, err := followRepo.FollowedPosts(ctx, alice.ID, 20, 0)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.True(t, mr.Exists(cache.FeedKey(alice.ID, 20, 0)))

	// A raw delete bypasses invalidation, so the cached page keeps serving.
	require.NoError(t, db.Delete(&models.Post{}, post.ID).Error)
	cached, err := followRepo.FollowedPosts(ctx, alice.ID, 20, 0)
	require.NoError(t, err)
	assert.Len(t, cached, 1)
	assert.Equal(t, "cached post", cached[0].Title)

	// Changing the follow graph drops the follower's cached pages.
	carol := createTestUser(t, db, "carol", "carol@example.com")
	require.NoError(t, followRepo.Follow(ctx, alice.ID, carol.ID))
	assert.False(t, mr.Exists(cache.FeedKey(alice.ID, 20, 0)))

	fresh, err := followRepo.FollowedPosts(ctx, alice.ID, 20, 0)
	require.NoError(t, err)
	assert.Empty(t, fresh)
}

func TestReconcileSelfFollows(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewFollowRepository(db)

	alice := createTestUser(t, db, "alice", "alice@example.com")
	bob := createTestUser(t, db, "bob", "bob@example.com")

	// Simulate a legacy row missing its self-follow.
	require.NoError(t, db.
		Where("follower_id = ? AND followed_id = ?", bob.ID, bob.ID).
		Delete(&models.Follow{}).Error)

	repaired, err := repo.ReconcileSelfFollows(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), repaired)

	following, err := repo.IsFollowing(ctx, bob.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)

	// A second pass finds nothing to repair.
	repaired, err = repo.ReconcileSelfFollows(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), repaired)

	following, err = repo.IsFollowing(ctx, alice.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, following)
}
