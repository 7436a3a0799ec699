package middleware

import (
	"context"
	"strings"

	"quill/internal/models"
	"quill/internal/token"

	"github.com/gofiber/fiber/v2"
)

// UserLoader resolves a user (with role preloaded) by id. Injected rather
// than importing the repository package directly to keep the gate free of
// storage concerns.
type UserLoader func(ctx context.Context, id uint) (*models.User, error)

// Gate is the authorization gate: it authenticates bearer tokens, resolves
// the acting user, and enforces capability checks. An unauthenticated caller
// gets a 401 with the login redirect and the intended destination; an
// authenticated caller with an insufficient role gets a plain 403.
type Gate struct {
	codec    *token.Codec
	loadUser UserLoader
}

// NewGate returns a Gate verifying API tokens with codec and resolving
// actors through loadUser.
func NewGate(codec *token.Codec, loadUser UserLoader) *Gate {
	return &Gate{codec: codec, loadUser: loadUser}
}

const (
	actorLocal  = "actor"
	userIDLocal = "userID"
)

// ActorFromCtx returns the acting user set by AuthRequired, or the anonymous
// actor when no authentication has happened on this request.
func ActorFromCtx(c *fiber.Ctx) models.Actor {
	if actor, ok := c.Locals(actorLocal).(*models.User); ok && actor != nil {
		return actor
	}
	return models.AnonymousUser{}
}

// UserFromCtx returns the authenticated user, or nil for anonymous requests.
func UserFromCtx(c *fiber.Ctx) *models.User {
	if actor, ok := c.Locals(actorLocal).(*models.User); ok {
		return actor
	}
	return nil
}

// UserIDFromCtx returns the authenticated user id, or 0.
func UserIDFromCtx(c *fiber.Ctx) uint {
	if id, ok := c.Locals(userIDLocal).(uint); ok {
		return id
	}
	return 0
}

// loginRedirect writes the 401 outcome for anonymous callers: redirect to
// login, remembering the intended destination.
func loginRedirect(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":    message,
		"code":     "UNAUTHORIZED",
		"redirect": "/login",
		"next":     c.OriginalURL(),
	})
}

// AuthRequired enforces authentication for protected routes. On success the
// resolved user (with role) is stored in locals for downstream guards.
func (g *Gate) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return loginRedirect(c, "Authorization header required")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return loginRedirect(c, "Invalid authorization header format")
		}

		claims, err := g.codec.Verify(parts[1], token.PurposeAPI)
		if err != nil {
			return loginRedirect(c, "Invalid or expired token")
		}

		user, err := g.loadUser(c.Context(), claims.UserID)
		if err != nil || user == nil {
			return loginRedirect(c, "Invalid or expired token")
		}

		c.Locals(userIDLocal, user.ID)
		c.Locals(actorLocal, user)

		// Sync to UserContext for logging in downstream services
		ctx := context.WithValue(c.UserContext(), UserIDKey, user.ID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// OptionalAuth resolves a bearer token when one is present but lets
// anonymous requests through. Public reads use this so authors and
// moderators see their extended representations without a separate route.
// A bad or stale token degrades the request to anonymous instead of
// rejecting it.
//
// A resolved-but-unconfirmed account is steered to the unconfirmed notice
// everywhere except under the exempt prefixes, which keep the confirmation
// workflow itself reachable.
func (g *Gate) OptionalAuth(exempt ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		parts := strings.Split(c.Get("Authorization"), " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Next()
		}
		claims, err := g.codec.Verify(parts[1], token.PurposeAPI)
		if err != nil {
			return c.Next()
		}
		user, err := g.loadUser(c.Context(), claims.UserID)
		if err != nil || user == nil {
			return c.Next()
		}

		if !user.Confirmed && !hasAnyPrefix(c.Path(), exempt) {
			return unconfirmedRedirect(c)
		}

		c.Locals(userIDLocal, user.ID)
		c.Locals(actorLocal, user)
		ctx := context.WithValue(c.UserContext(), UserIDKey, user.ID)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// ConfirmedRequired redirects accounts that never confirmed their email to
// the unconfirmed notice. Must run after AuthRequired; auth-workflow routes
// are mounted outside this guard so confirmation and resend stay reachable.
func (g *Gate) ConfirmedRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := UserFromCtx(c)
		if user != nil && !user.Confirmed {
			return unconfirmedRedirect(c)
		}
		return c.Next()
	}
}

func unconfirmedRedirect(c *fiber.Ctx) error {
	return c.Status(fiber.StatusSeeOther).JSON(fiber.Map{
		"error":    "Account is not confirmed",
		"code":     "UNCONFIRMED",
		"redirect": "/unconfirmed",
	})
}

// PermissionRequired rejects actors missing the capability bit. Anonymous
// callers get the login redirect; authenticated ones a 403.
func (g *Gate) PermissionRequired(perm models.Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := ActorFromCtx(c)
		if !actor.Can(perm) {
			if UserFromCtx(c) == nil {
				return loginRedirect(c, "Authentication required")
			}
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Insufficient permissions"))
		}
		return c.Next()
	}
}

// AdminRequired rejects non-administrators with 403.
func (g *Gate) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := ActorFromCtx(c)
		if !actor.IsAdministrator() {
			if UserFromCtx(c) == nil {
				return loginRedirect(c, "Authentication required")
			}
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}
