package middleware

import (
	"volunteer-hub-system/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const SettingsLocal = "settings"

// SettingsMiddleware builds one read-through settings cache per request and
// threads it through c.Locals. The cache is request-scoped, never shared.
func SettingsMiddleware(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(SettingsLocal, services.NewSettingsCache(db))
		return c.Next()
	}
}

// SettingsFrom retrieves the request-scoped cache. Returns nil outside the
// middleware, callers fall back to defaults.
func SettingsFrom(c *fiber.Ctx) *services.SettingsCache {
	cache, _ := c.Locals(SettingsLocal).(*services.SettingsCache)
	return cache
}
