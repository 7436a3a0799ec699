package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"quill/internal/config"
	"quill/internal/mail"
	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/repository"
	"quill/internal/service"
	"quill/internal/token"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "Valid-Password-1!"

type testEnv struct {
	srv    *Server
	app    *fiber.App
	db     *gorm.DB
	sender *mail.LogSender
	codec  *token.Codec
}

// newTestEnv wires a Server over in-memory sqlite with provisioned roles.
// The Prometheus middleware is left out so repeated app construction does
// not clash on collector registration.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Role{}, &models.User{}, &models.Follow{}, &models.Post{}, &models.Comment{},
	))

	cfg := &config.Config{
		Port:               "8460",
		Env:                "test",
		TokenSecret:        "test-secret-which-is-long-enough",
		TokenTTLSeconds:    1800,
		TokenLeewaySeconds: 10,
		AdminEmail:         "admin@example.com",
		BaseURL:            "http://localhost:8460",
	}

	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	require.NoError(t, roleRepo.InsertRoles(context.Background(), models.DefaultRoleTable))

	codec := token.NewCodec(cfg.TokenSecret, cfg.TokenTTL(), cfg.TokenLeeway())
	sender := mail.NewLogSender()
	mailer := mail.NewQueue(nil, sender)

	s := &Server{
		config:      cfg,
		db:          db,
		codec:       codec,
		userRepo:    userRepo,
		roleRepo:    roleRepo,
		followRepo:  followRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
	}
	s.gate = middleware.NewGate(codec, userRepo.GetByIDWithRole)
	s.authService = service.NewAuthService(userRepo, roleRepo, codec, mailer, cfg.AdminEmail, cfg.BaseURL)
	s.userService = service.NewUserService(userRepo, roleRepo)
	s.followService = service.NewFollowService(followRepo, userRepo)
	s.postService = service.NewPostService(postRepo)
	s.commentService = service.NewCommentService(commentRepo, postRepo)

	app := fiber.New()
	s.SetupRoutes(app)

	return &testEnv{srv: s, app: app, db: db, sender: sender, codec: codec}
}

// createUser inserts a user holding the named role straight through the
// repository and returns them with a valid bearer token.
func (e *testEnv) createUser(t *testing.T, username, roleName string, confirmed bool) (*models.User, string) {
	t.Helper()

	role, err := e.srv.roleRepo.GetByName(context.Background(), roleName)
	require.NoError(t, err)

	user := &models.User{
		Username:      username,
		Email:         username + "@example.com",
		Confirmed:     confirmed,
		AcceptedTerms: true,
		RoleID:        role.ID,
		Role:          role,
	}
	require.NoError(t, user.SetPassword(testPassword))
	require.NoError(t, e.srv.userRepo.Create(context.Background(), user))

	bearer, err := e.codec.Issue(token.PurposeAPI, user.ID)
	require.NoError(t, err)
	return user, bearer
}

// request performs an in-process HTTP request against the app. body may be
// nil; bearer may be empty for anonymous calls.
func (e *testEnv) request(t *testing.T, method, path string, body interface{}, bearer string) *http.Response {
	t.Helper()

	var r io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body), "body: %s", raw)
	return body
}
