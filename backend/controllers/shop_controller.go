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

// ShopController serves the storefront: kit browsing, purchases and access
// code redemption. Browsing is open to everyone; the purchased content
// itself is gated elsewhere.
type ShopController struct {
	base
}

func NewShopController(s store.Store, eng *engine.Engine, cfg *config.Config) *ShopController {
	return &ShopController{base{Store: s, Engine: eng, Cfg: cfg}}
}

func (sc *ShopController) ListKits(c *fiber.Ctx) error {
	kits, err := sc.Store.ListKits()
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"kits": kits})
}

// GetKit returns one kit with its published official courses, the public
// community courses built on it, and whether the caller already owns it.
func (sc *ShopController) GetKit(c *fiber.Ctx) error {
	kitID := c.Params("id")

	kit, err := sc.Store.GetKit(kitID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFound(c, "Kit not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	official, err := sc.Store.ListOfficialCourses(kitID, true)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	community, err := sc.Store.ListPublicCustomCourses(kitID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	hasAccess := false
	if v := sc.viewer(c); !v.Anonymous() {
		verdict, err := sc.Engine.Resolver.Resolve(v.UserID, kitID, models.PermissionCourseAccess, time.Now())
		if err != nil {
			return utils.EngineError(c, err)
		}
		hasAccess = verdict.Granted
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"kit":               kit,
		"official_courses":  official,
		"community_courses": community,
		"has_access":        hasAccess,
	})
}

type purchaseInput struct {
	Quantity int `json:"quantity"`
}

// PurchaseKit records a completed purchase: the entitlement grant is the
// authoritative step, the purchase row is the audit trail. No real payment
// is processed here.
func (sc *ShopController) PurchaseKit(c *fiber.Ctx) error {
	userID := currentUserID(c)
	kitID := c.Params("id")

	var input purchaseInput
	if err := c.BodyParser(&input); err != nil && len(c.Body()) > 0 {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	quantity := input.Quantity
	if quantity < 1 {
		quantity = 1
	}

	kit, err := sc.Store.GetKit(kitID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFound(c, "Kit not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	result, err := sc.Engine.Granter.Grant(userID, kitID, models.PermissionCourseAccess,
		nil, kit.Price*float64(quantity), models.PaymentMethodPurchase)
	if err != nil {
		return utils.EngineError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"kit_id":   kitID,
		"amount":   kit.Price * float64(quantity),
		"purchase": result.Purchase,
	})
}

type redeemInput struct {
	Code string `json:"code"`
}

// RedeemCode grants kit access for a printed access code, recorded as a
// zero-amount code_redemption purchase.
func (sc *ShopController) RedeemCode(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var input redeemInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Code == "" {
		return utils.BadRequest(c, "Access code is required")
	}

	kit, err := sc.Store.GetKitByAccessCode(input.Code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFound(c, "Invalid access code")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	result, err := sc.Engine.Granter.Grant(userID, kit.ID, models.PermissionCourseAccess,
		nil, 0, models.PaymentMethodCodeRedemption)
	if err != nil {
		return utils.EngineError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"kit":      kit,
		"purchase": result.Purchase,
	})
}

// MyPurchases lists the caller's purchase history.
func (sc *ShopController) MyPurchases(c *fiber.Ctx) error {
	purchases, err := sc.Store.ListPurchases(currentUserID(c))
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"purchases": purchases})
}
