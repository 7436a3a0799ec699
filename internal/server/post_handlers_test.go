package server

import (
	"fmt"
	"testing"

	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) createPost(t *testing.T, bearer, title, body string) map[string]interface{} {
	t.Helper()
	resp := e.request(t, "POST", "/api/posts", fiber.Map{
		"title": title,
		"body":  body,
	}, bearer)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	return decodeJSON(t, resp)
}

func TestCreatePostEndpoint(t *testing.T) {
	env := newTestEnv(t)
	_, bearer := env.createUser(t, "alice", models.RoleUser, true)

	t.Run("author gets the rendered and raw body back", func(t *testing.T) {
		post := env.createPost(t, bearer, "Hello World", `hi <script>alert(1)</script>there`)

		assert.Equal(t, "Hello World", post["title"])
		assert.Equal(t, "hello-world", post["slug"])
		assert.NotContains(t, post["body"], "<script>")
		assert.Equal(t, `hi <script>alert(1)</script>there`, post["raw_body"])
	})

	t.Run("anonymous caller gets the login redirect", func(t *testing.T) {
		resp := env.request(t, "POST", "/api/posts", fiber.Map{"title": "t", "body": "b"}, "")
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "/login", decodeJSON(t, resp)["redirect"])
	})

	t.Run("missing title rejected", func(t *testing.T) {
		resp := env.request(t, "POST", "/api/posts", fiber.Map{"body": "b"}, bearer)
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, decodeJSON(t, resp)["error"], "title")
	})
}

func TestGetPostEndpoint(t *testing.T) {
	env := newTestEnv(t)
	_, authorBearer := env.createUser(t, "alice", models.RoleUser, true)
	_, readerBearer := env.createUser(t, "bob", models.RoleUser, true)
	_, adminBearer := env.createUser(t, "root", models.RoleAdministrator, true)

	created := env.createPost(t, authorBearer, "Visibility", "raw content here")
	postPath := created["url"].(string)

	t.Run("anonymous readers see only the rendered body", func(t *testing.T) {
		resp := env.request(t, "GET", postPath, nil, "")
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := decodeJSON(t, resp)
		assert.Contains(t, body["body"], "raw content here")
		_, hasRaw := body["raw_body"]
		assert.False(t, hasRaw)
	})

	t.Run("other users see only the rendered body", func(t *testing.T) {
		resp := env.request(t, "GET", postPath, nil, readerBearer)
		body := decodeJSON(t, resp)
		_, hasRaw := body["raw_body"]
		assert.False(t, hasRaw)
	})

	t.Run("author and admin get the raw body", func(t *testing.T) {
		for _, bearer := range []string{authorBearer, adminBearer} {
			resp := env.request(t, "GET", postPath, nil, bearer)
			body := decodeJSON(t, resp)
			assert.Equal(t, "raw content here", body["raw_body"])
		}
	})

	t.Run("lookup by slug", func(t *testing.T) {
		resp := env.request(t, "GET", "/api/posts/by-slug/visibility", nil, "")
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "Visibility", decodeJSON(t, resp)["title"])
	})

	t.Run("missing post is 404", func(t *testing.T) {
		resp := env.request(t, "GET", "/api/posts/9999", nil, "")
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("non-numeric id is 400", func(t *testing.T) {
		resp := env.request(t, "GET", "/api/posts/abc", nil, "")
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestUpdatePostEndpoint(t *testing.T) {
	env := newTestEnv(t)
	_, authorBearer := env.createUser(t, "alice", models.RoleUser, true)
	_, otherBearer := env.createUser(t, "bob", models.RoleUser, true)
	_, adminBearer := env.createUser(t, "root", models.RoleAdministrator, true)

	created := env.createPost(t, authorBearer, "Original", "original body")
	postPath := created["url"].(string)

	t.Run("non-author forbidden", func(t *testing.T) {
		resp := env.request(t, "PUT", postPath, fiber.Map{
			"title": "Hijacked", "body": "x",
		}, otherBearer)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("author edits", func(t *testing.T) {
		resp := env.request(t, "PUT", postPath, fiber.Map{
			"title": "Revised", "body": "revised body",
		}, authorBearer)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := decodeJSON(t, resp)
		assert.Equal(t, "Revised", body["title"])
		assert.Equal(t, "revised", body["slug"])
	})

	t.Run("admin edits anyone's post", func(t *testing.T) {
		resp := env.request(t, "PUT", postPath, fiber.Map{
			"title": "Admin Edit", "body": "admin body",
		}, adminBearer)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}

func TestDeletePostEndpoint(t *testing.T) {
	env := newTestEnv(t)
	_, authorBearer := env.createUser(t, "alice", models.RoleUser, true)
	_, otherBearer := env.createUser(t, "bob", models.RoleUser, true)

	created := env.createPost(t, authorBearer, "Doomed", "body")
	postPath := created["url"].(string)

	t.Run("non-author forbidden", func(t *testing.T) {
		resp := env.request(t, "DELETE", postPath, nil, otherBearer)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("author deletes", func(t *testing.T) {
		resp := env.request(t, "DELETE", postPath, nil, authorBearer)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

		gone := env.request(t, "GET", postPath, nil, "")
		assert.Equal(t, fiber.StatusNotFound, gone.StatusCode)
	})
}

func TestListPostsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	alice, aliceBearer := env.createUser(t, "alice", models.RoleUser, true)
	_, bobBearer := env.createUser(t, "bob", models.RoleUser, true)

	env.createPost(t, aliceBearer, "Alice One", "body")
	env.createPost(t, aliceBearer, "Alice Two", "body")
	env.createPost(t, bobBearer, "Bob One", "body")

	t.Run("global listing with total", func(t *testing.T) {
		resp := env.request(t, "GET", "/api/posts?limit=2", nil, "")
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := decodeJSON(t, resp)
		assert.Len(t, body["posts"], 2)
		assert.Equal(t, float64(3), body["total"])
	})

	t.Run("per-author listing", func(t *testing.T) {
		resp := env.request(t, "GET", fmt.Sprintf("/api/users/%d/posts", alice.ID), nil, "")
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := decodeJSON(t, resp)
		assert.Len(t, body["posts"], 2)
		assert.Equal(t, float64(2), body["total"])
	})
}

func TestFeedEndpoint(t *testing.T) {
	env := newTestEnv(t)
	_, aliceBearer := env.createUser(t, "alice", models.RoleUser, true)
	bob, bobBearer := env.createUser(t, "bob", models.RoleUser, true)
	_, carolBearer := env.createUser(t, "carol", models.RoleUser, true)

	env.createPost(t, aliceBearer, "Alice Post", "body")
	env.createPost(t, bobBearer, "Bob Post", "body")
	env.createPost(t, carolBearer, "Carol Post", "body")

	follow := env.request(t, "POST", fmt.Sprintf("/api/users/%d/follow", bob.ID), nil, aliceBearer)
	require.Equal(t, fiber.StatusOK, follow.StatusCode)
	assert.Equal(t, true, decodeJSON(t, follow)["following"])

	t.Run("feed holds own and followed posts only", func(t *testing.T) {
		resp := env.request(t, "GET", "/api/feed", nil, aliceBearer)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := decodeJSON(t, resp)
		posts := body["posts"].([]interface{})
		require.Len(t, posts, 2)

		titles := make(map[string]bool)
		for _, p := range posts {
			titles[p.(map[string]interface{})["title"].(string)] = true
		}
		assert.True(t, titles["Alice Post"], "own post rides in on the self-follow")
		assert.True(t, titles["Bob Post"])
		assert.False(t, titles["Carol Post"])
	})

	t.Run("feed requires authentication", func(t *testing.T) {
		resp := env.request(t, "GET", "/api/feed", nil, "")
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}
