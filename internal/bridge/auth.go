package bridge

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/meetmind/meetmind/internal/logger"
)

// TokenHeader carries the shared bridge token.
const TokenHeader = "X-MeetMind-Token"

// Access controls which callers the bridge serves.
type Access struct {
	// AllowedOrigins are the browser origins allowed to call cross-origin,
	// typically the extension's "chrome-extension://<id>".
	AllowedOrigins []string
	// Token must be presented by every request. Empty disables the check.
	Token string
}

type accessGuard struct {
	origins map[string]bool
	token   []byte
}

func newAccessGuard(a Access) *accessGuard {
	g := &accessGuard{origins: make(map[string]bool), token: []byte(a.Token)}
	for _, o := range a.AllowedOrigins {
		g.origins[strings.TrimRight(o, "/")] = true
	}
	return g
}

// Require rejects requests from origins outside the allow list and requests
// without the shared token. Allowed origins get CORS headers; their preflight
// requests are answered here.
func (g *accessGuard) Require(c *fiber.Ctx) error {
	if origin := c.Get(fiber.HeaderOrigin); origin != "" {
		if !g.origins[origin] {
			logger.Debugf("bridge: rejected origin %q", origin)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"ok": false, "error": "origin not allowed"})
		}
		c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
		c.Vary(fiber.HeaderOrigin)
		if c.Method() == fiber.MethodOptions {
			c.Set(fiber.HeaderAccessControlAllowMethods, "GET,POST,PUT")
			c.Set(fiber.HeaderAccessControlAllowHeaders, "Content-Type,Authorization,"+TokenHeader)
			return c.SendStatus(fiber.StatusNoContent)
		}
	}

	if len(g.token) == 0 {
		return c.Next()
	}
	tok := g.extractToken(c)
	if tok == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "authentication required"})
	}
	if subtle.ConstantTimeCompare([]byte(tok), g.token) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "invalid token"})
	}
	return c.Next()
}

// extractToken reads the token header, a bearer Authorization header, or the
// "token" query parameter (EventSource cannot set headers).
func (g *accessGuard) extractToken(c *fiber.Ctx) string {
	if tok := c.Get(TokenHeader); tok != "" {
		return tok
	}
	if parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return c.Query("token")
}
