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

// AdminController manages the official catalog and manual grants. All routes
// sit behind the admin middleware.
type AdminController struct {
	base
}

func NewAdminController(s store.Store, eng *engine.Engine, cfg *config.Config) *AdminController {
	return &AdminController{base{Store: s, Engine: eng, Cfg: cfg}}
}

type kitInput struct {
	Name                string   `json:"name"`
	Theme               string   `json:"theme"`
	Level               int      `json:"level"`
	Description         string   `json:"description"`
	AccessCode          string   `json:"access_code"`
	KitType             string   `json:"kit_type"`
	Price               float64  `json:"price"`
	PremiumUpgradePrice *float64 `json:"premium_upgrade_price"`
}

func (ad *AdminController) CreateKit(c *fiber.Ctx) error {
	var input kitInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Name == "" {
		return utils.BadRequest(c, "Name is required")
	}

	kitType := input.KitType
	if kitType == "" {
		kitType = models.KitTypeNormal
	}

	kit := models.Kit{
		Name:                input.Name,
		Theme:               input.Theme,
		Level:               input.Level,
		Description:         input.Description,
		AccessCode:          input.AccessCode,
		KitType:             kitType,
		Price:               input.Price,
		PremiumUpgradePrice: input.PremiumUpgradePrice,
	}
	if err := ad.Store.CreateKit(&kit); err != nil {
		return utils.InternalServerError(c, "Could not create kit")
	}

	return utils.Success(c, fiber.StatusCreated, fiber.Map{"kit": kit})
}

type officialCourseInput struct {
	KitID             string `json:"kit_id"`
	Title             string `json:"title"`
	Description       string `json:"description"`
	Theme             string `json:"theme"`
	Level             int    `json:"level"`
	EstimatedDuration *int   `json:"estimated_duration"`
}

func (ad *AdminController) CreateOfficialCourse(c *fiber.Ctx) error {
	var input officialCourseInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.KitID == "" || input.Title == "" {
		return utils.BadRequest(c, "Kit and title are required")
	}

	if _, err := ad.Store.GetKit(input.KitID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFound(c, "Kit not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	course := models.OfficialCourse{
		KitID:             input.KitID,
		Title:             input.Title,
		Description:       input.Description,
		Theme:             input.Theme,
		Level:             input.Level,
		EstimatedDuration: input.EstimatedDuration,
		IsPublished:       false, // new courses start as drafts
	}
	if err := ad.Store.CreateOfficialCourse(&course); err != nil {
		return utils.InternalServerError(c, "Could not create course")
	}

	return utils.Success(c, fiber.StatusCreated, fiber.Map{"course": course})
}

type publishInput struct {
	IsPublished bool `json:"is_published"`
}

func (ad *AdminController) SetCoursePublished(c *fiber.Ctx) error {
	var input publishInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	err := ad.Store.SetOfficialCoursePublished(c.Params("id"), input.IsPublished)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not update course")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":           c.Params("id"),
		"is_published": input.IsPublished,
	})
}

type adminLessonInput struct {
	Title             string          `json:"title"`
	ContentType       string          `json:"content_type"`
	Content           json.RawMessage `json:"content"`
	Component         string          `json:"component"`
	ComponentProps    json.RawMessage `json:"component_props"`
	OrderIndex        int             `json:"order_index"`
	EstimatedDuration *int            `json:"estimated_duration"`
	IsPublished       bool            `json:"is_published"`
}

// AddLesson appends a lesson to an official course.
func (ad *AdminController) AddLesson(c *fiber.Ctx) error {
	courseID := c.Params("id")

	if _, err := ad.Store.GetOfficialCourse(courseID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var input adminLessonInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Title == "" {
		return utils.BadRequest(c, "Title is required")
	}

	lesson := models.Lesson{
		CourseID:          courseID,
		CourseType:        models.CourseTypeOfficial,
		Title:             input.Title,
		ContentType:       input.ContentType,
		Content:           datatypes.JSON(input.Content),
		Component:         input.Component,
		ComponentProps:    datatypes.JSON(input.ComponentProps),
		OrderIndex:        input.OrderIndex,
		EstimatedDuration: input.EstimatedDuration,
		IsPublished:       input.IsPublished,
	}
	if err := ad.Store.CreateLesson(&lesson); err != nil {
		return utils.InternalServerError(c, "Could not create lesson")
	}

	return utils.Success(c, fiber.StatusCreated, fiber.Map{"lesson": lesson})
}

type grantInput struct {
	UserID         string     `json:"user_id"`
	KitID          string     `json:"kit_id"`
	PermissionType string     `json:"permission_type"`
	ExpiresAt      *time.Time `json:"expires_at"`
}

// Grant manually grants an entitlement, recorded as an admin_grant purchase.
func (ad *AdminController) Grant(c *fiber.Ctx) error {
	var input grantInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.UserID == "" || input.KitID == "" {
		return utils.BadRequest(c, "User and kit are required")
	}

	permissionType := input.PermissionType
	if permissionType == "" {
		permissionType = models.PermissionCourseAccess
	}
	if permissionType != models.PermissionCourseAccess && permissionType != models.PermissionCustomCourseCreation {
		return utils.BadRequest(c, "Unknown permission type")
	}

	result, err := ad.Engine.Granter.Grant(input.UserID, input.KitID, permissionType,
		input.ExpiresAt, 0, models.PaymentMethodAdminGrant)
	if err != nil {
		return utils.EngineError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"permission": result.Permission,
		"purchase":   result.Purchase,
	})
}
