package web

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/corpsite/corpsite/internal/web/handler/login"
	"github.com/corpsite/corpsite/internal/web/session"
)

// protectedPrefixes are the back-office paths that need a login. The public
// catalogs stay open.
var protectedPrefixes = []string{"/dashboard", "/admin"} //nolint:gochecknoglobals

// AuthMiddleware is a Fiber middleware that sends anonymous requests for
// back-office pages to the login page.
func AuthMiddleware(c *fiber.Ctx) error {
	if !IsProtected(c) {
		return c.Next()
	}

	data, err := session.Read(c)
	if err != nil {
		log.Error().Err(err).Msg("failed to read session")
		return c.Redirect(login.Path)
	}

	if !data.LoggedIn() {
		return c.Redirect(login.Path)
	}

	return c.Next()
}

// IsProtected checks if the current request is for a back-office page.
func IsProtected(c *fiber.Ctx) bool {
	path := strings.ToLower(c.Path())

	for _, prefix := range protectedPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}

	return false
}
