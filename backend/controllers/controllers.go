package controllers

import (
	"kitlab/backend/config"
	"kitlab/backend/engine"
	"kitlab/backend/store"
	"kitlab/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// base carries the dependencies every controller needs.
type base struct {
	Store  store.Store
	Engine *engine.Engine
	Cfg    *config.Config
}

// viewer derives the caller identity for the visibility filter. A missing or
// invalid token yields the anonymous viewer; routes that require auth say so
// via middleware, everything else lets the engine decide.
func (b *base) viewer(c *fiber.Ctx) engine.Viewer {
	userID, err := utils.ExtractUserIDFromToken(c, b.Cfg)
	if err != nil {
		return engine.Viewer{}
	}
	user, err := b.Store.GetUser(userID)
	if err != nil {
		return engine.Viewer{UserID: userID}
	}
	return engine.Viewer{UserID: userID, Admin: user.IsAdmin()}
}

// currentUserID reads the user ID stashed by the auth middleware.
func currentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}
