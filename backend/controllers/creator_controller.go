package controllers

import (
	"encoding/json"
	"errors"
	"time"

	"kitlab/backend/config"
	"kitlab/backend/engine"
	"kitlab/backend/models"
	"kitlab/backend/store"
	"kitlab/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

// CreatorController manages a user's own custom courses. Creating one
// requires course_access on the chosen kit; editing requires being the
// creator.
type CreatorController struct {
	base
}

func NewCreatorController(s store.Store, eng *engine.Engine, cfg *config.Config) *CreatorController {
	return &CreatorController{base{Store: s, Engine: eng, Cfg: cfg}}
}

func (cr *CreatorController) MyCreatedCourses(c *fiber.Ctx) error {
	courses, err := cr.Store.ListCustomCoursesByCreator(currentUserID(c))
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"courses": courses})
}

type customCourseInput struct {
	KitID             string  `json:"kit_id"`
	Title             string  `json:"title"`
	Description       string  `json:"description"`
	Price             float64 `json:"price"`
	IsPublic          bool    `json:"is_public"`
	IsPublished       bool    `json:"is_published"`
	EstimatedDuration *int    `json:"estimated_duration"`
}

func (cr *CreatorController) CreateCourse(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var input customCourseInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.KitID == "" || input.Title == "" {
		return utils.BadRequest(c, "Kit and title are required")
	}

	verdict, err := cr.Engine.Resolver.Resolve(userID, input.KitID, models.PermissionCourseAccess, time.Now())
	if err != nil {
		return utils.EngineError(c, err)
	}
	if !verdict.Granted {
		return utils.Forbidden(c, "You do not have access to the selected kit")
	}

	course := models.CustomCourse{
		CreatorID:         userID,
		KitID:             input.KitID,
		Title:             input.Title,
		Description:       input.Description,
		Price:             input.Price,
		IsPublic:          input.IsPublic,
		IsPublished:       false, // drafts start unpublished
		EstimatedDuration: input.EstimatedDuration,
	}
	if err := cr.Store.CreateCustomCourse(&course); err != nil {
		return utils.InternalServerError(c, "Could not create course")
	}

	return utils.Success(c, fiber.StatusCreated, fiber.Map{"course": course})
}

func (cr *CreatorController) UpdateCourse(c *fiber.Ctx) error {
	userID := currentUserID(c)
	courseID := c.Params("id")

	course, err := cr.Store.GetCustomCourse(courseID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}
	if course.CreatorID != userID {
		// Hide other users' drafts entirely.
		return utils.NotFound(c, "Course not found")
	}

	var input customCourseInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Title != "" {
		course.Title = input.Title
	}
	if input.Description != "" {
		course.Description = input.Description
	}
	course.Price = input.Price
	course.IsPublic = input.IsPublic
	course.IsPublished = input.IsPublished
	course.EstimatedDuration = input.EstimatedDuration

	if err := cr.Store.UpdateCustomCourse(course); err != nil {
		return utils.InternalServerError(c, "Could not update course")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"course": course})
}

type lessonInput struct {
	Title             string          `json:"title"`
	ContentType       string          `json:"content_type"`
	Content           json.RawMessage `json:"content"`
	Component         string          `json:"component"`
	ComponentProps    json.RawMessage `json:"component_props"`
	OrderIndex        int             `json:"order_index"`
	EstimatedDuration *int            `json:"estimated_duration"`
	IsPublished       bool            `json:"is_published"`
}

// AddLesson appends a lesson to one of the caller's own custom courses.
func (cr *CreatorController) AddLesson(c *fiber.Ctx) error {
	userID := currentUserID(c)
	courseID := c.Params("id")

	course, err := cr.Store.GetCustomCourse(courseID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}
	if course.CreatorID != userID {
		return utils.NotFound(c, "Course not found")
	}

	var input lessonInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Title == "" {
		return utils.BadRequest(c, "Title is required")
	}

	lesson := models.Lesson{
		CourseID:          courseID,
		CourseType:        models.CourseTypeCustom,
		Title:             input.Title,
		ContentType:       input.ContentType,
		Content:           datatypes.JSON(input.Content),
		Component:         input.Component,
		ComponentProps:    datatypes.JSON(input.ComponentProps),
		OrderIndex:        input.OrderIndex,
		EstimatedDuration: input.EstimatedDuration,
		IsPublished:       input.IsPublished,
	}
	if err := cr.Store.CreateLesson(&lesson); err != nil {
		return utils.InternalServerError(c, "Could not create lesson")
	}

	return utils.Success(c, fiber.StatusCreated, fiber.Map{"lesson": lesson})
}
