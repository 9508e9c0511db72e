package controllers

import (
	"errors"
	"time"

	"kitlab/backend/config"
	"kitlab/backend/engine"
	"kitlab/backend/models"
	"kitlab/backend/store"
	"kitlab/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type CoursesController struct {
	base
}

func NewCoursesController(s store.Store, eng *engine.Engine, cfg *config.Config) *CoursesController {
	return &CoursesController{base{Store: s, Engine: eng, Cfg: cfg}}
}

// Catalog is the storefront course overview: all kits, published official
// courses and public community courses, optionally narrowed to one kit.
// Browsing is open; opening a course is where the gate sits.
func (cc *CoursesController) Catalog(c *fiber.Ctx) error {
	kitID := c.Query("kit")

	kits, err := cc.Store.ListKits()
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	official, err := cc.Store.ListOfficialCourses(kitID, true)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	community, err := cc.Store.ListPublicCustomCourses(kitID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"kits":              kits,
		"official_courses":  official,
		"community_courses": community,
	})
}

// MyCourses lists the official courses the caller may actually open, using
// the batched entitlement lookup.
func (cc *CoursesController) MyCourses(c *fiber.Ctx) error {
	v := cc.viewer(c)
	now := time.Now()

	all, err := cc.Store.ListOfficialCourses("", true)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	visible, err := cc.Engine.Filter.VisibleOfficialCourses(v, all, now)
	if err != nil {
		return utils.EngineError(c, err)
	}

	created, err := cc.Store.ListCustomCoursesByCreator(v.UserID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"official_courses": visible,
		"created_courses":  created,
	})
}

// GetOfficialCourse returns one official course with its visible lessons and
// the caller's progress, or the typed denial the filter produced.
func (cc *CoursesController) GetOfficialCourse(c *fiber.Ctx) error {
	courseID := c.Params("id")
	v := cc.viewer(c)
	now := time.Now()

	course, err := cc.Store.GetOfficialCourse(courseID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if err := cc.Engine.Filter.OfficialCourse(v, course, now); err != nil {
		return utils.EngineError(c, err)
	}

	return cc.courseDetail(c, v, fiber.Map{"course": course}, courseID, models.CourseTypeOfficial, now)
}

// ListCommunityCourses lists published, public community courses for the
// shop. Open to everyone, including anonymous browsers.
func (cc *CoursesController) ListCommunityCourses(c *fiber.Ctx) error {
	courses, err := cc.Store.ListPublicCustomCourses(c.Query("kit"))
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"courses": courses})
}

// GetCommunityCourse opens one community course with lessons and progress.
func (cc *CoursesController) GetCommunityCourse(c *fiber.Ctx) error {
	courseID := c.Params("id")
	v := cc.viewer(c)
	now := time.Now()

	course, err := cc.Store.GetCustomCourse(courseID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if err := cc.Engine.Filter.CustomCourse(v, course, now); err != nil {
		return utils.EngineError(c, err)
	}

	return cc.courseDetail(c, v, fiber.Map{"course": course}, courseID, models.CourseTypeCustom, now)
}

// courseDetail attaches visible lessons and, for authenticated callers, the
// completion summary to an already-authorized course payload.
func (cc *CoursesController) courseDetail(c *fiber.Ctx, v engine.Viewer, payload fiber.Map, courseID, courseType string, now time.Time) error {
	lessons, err := cc.Store.ListLessons(courseID, courseType, false)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	visible, err := cc.Engine.Filter.VisibleLessons(v, courseID, courseType, lessons, now)
	if err != nil {
		return utils.EngineError(c, err)
	}
	payload["lessons"] = visible

	if !v.Anonymous() {
		completion, err := cc.Engine.Tracker.CourseCompletion(v.UserID, courseID, courseType)
		if err != nil {
			return utils.EngineError(c, err)
		}
		payload["progress"] = completion
	}

	return utils.Success(c, fiber.StatusOK, payload)
}
