package controllers

import (
	"errors"
	"time"

	"kitlab/backend/config"
	"kitlab/backend/engine"
	"kitlab/backend/store"
	"kitlab/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type LessonsController struct {
	base
}

func NewLessonsController(s store.Store, eng *engine.Engine, cfg *config.Config) *LessonsController {
	return &LessonsController{base{Store: s, Engine: eng, Cfg: cfg}}
}

// GetLesson returns one lesson with its content, gated by the visibility
// filter. The caller's progress row rides along when one exists.
func (lc *LessonsController) GetLesson(c *fiber.Ctx) error {
	lessonID := c.Params("id")
	v := lc.viewer(c)

	lesson, err := lc.Store.GetLesson(lessonID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFound(c, "Lesson not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if err := lc.Engine.Filter.Lesson(v, lesson, time.Now()); err != nil {
		return utils.EngineError(c, err)
	}

	payload := fiber.Map{"lesson": lesson}
	if !v.Anonymous() {
		progress, err := lc.Store.GetProgress(v.UserID, lessonID)
		if err == nil {
			payload["progress"] = progress
		} else if !errors.Is(err, store.ErrNotFound) {
			return utils.InternalServerError(c, "Could not query database")
		}
	}

	return utils.Success(c, fiber.StatusOK, payload)
}

// StartLesson marks a lesson as in_progress for the caller.
func (lc *LessonsController) StartLesson(c *fiber.Ctx) error {
	progress, err := lc.Engine.Tracker.Start(currentUserID(c), c.Params("id"), time.Now())
	if err != nil {
		return utils.EngineError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"progress": progress})
}

// CompleteLesson records completion. Completing an already completed lesson
// answers with the original completion, unchanged.
func (lc *LessonsController) CompleteLesson(c *fiber.Ctx) error {
	progress, err := lc.Engine.Tracker.MarkComplete(currentUserID(c), c.Params("id"), time.Now())
	if err != nil {
		return utils.EngineError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"progress": progress})
}
