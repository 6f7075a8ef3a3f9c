package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/corpsite/corpsite/internal/permission"
	"github.com/corpsite/corpsite/internal/web/session"
)

const (
	// LocalsUser holds the session.User of an authenticated request.
	LocalsUser = "CurrentUser"
	// LocalsPermissions holds the permission.Matrix of the current user.
	LocalsPermissions = "Permissions"
	// LocalsCan holds a func(section, action string) bool for templates.
	LocalsCan = "can"
)

// RequirePermission only lets requests through whose user's role grants
// action on section.
func RequirePermission(authService *Service, section permission.Section, action permission.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data, err := session.Read(c)
		if err != nil {
			log.Error().Err(err).Msg("failed to read session")
			return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
		}

		if !data.LoggedIn() {
			return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
		}

		allowed, err := authService.HasPermission(c.UserContext(), data.User.ID, section, action)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", data.User.ID).
				Str("permission", permission.Key(section, action)).
				Msg("failed to check permission")

			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		}

		if !allowed {
			log.Warn().Uint64("user_id", data.User.ID).
				Str("permission", permission.Key(section, action)).
				Msg("user lacks required permission")

			return c.Status(fiber.StatusForbidden).SendString("Forbidden: You don't have permission to access this resource")
		}

		return c.Next()
	}
}

// AddPermissionsToLocals puts the current user and their matrix into
// fiber.Locals for templates. Anonymous requests pass through untouched.
func AddPermissionsToLocals(authService *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data, err := session.Read(c)
		if err != nil || !data.LoggedIn() {
			return c.Next()
		}

		matrix, err := authService.Permissions(c.UserContext(), data.User.ID)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", data.User.ID).Msg("failed to get user permissions")
			return c.Next()
		}

		c.Locals(LocalsUser, data.User)
		c.Locals(LocalsPermissions, matrix)
		c.Locals(LocalsCan, func(section, action string) bool {
			return matrix.Has(permission.Section(section), permission.Action(action))
		})

		return c.Next()
	}
}

// Can reads the matrix stored by AddPermissionsToLocals.
func Can(c *fiber.Ctx, section permission.Section, action permission.Action) bool {
	m, ok := c.Locals(LocalsPermissions).(permission.Matrix)
	return ok && m.Has(section, action)
}
