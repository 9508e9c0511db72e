package routes

import (
	"kitlab/backend/config"
	"kitlab/backend/controllers"
	"kitlab/backend/engine"
	"kitlab/backend/middleware"
	"kitlab/backend/store"

	"github.com/gofiber/fiber/v2"
)

func SetupRoutes(app *fiber.App, s store.Store, eng *engine.Engine, cfg *config.Config) {
	// Auth routes
	authController := controllers.NewAuthController(s, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(cfg, s)

	// Shop routes: browsing is open, buying requires auth
	shopController := controllers.NewShopController(s, eng, cfg)
	app.Get("/api/shop/kits", shopController.ListKits)
	app.Get("/api/shop/kits/:id", shopController.GetKit)
	app.Post("/api/shop/kits/:id/purchase", authMiddleware, shopController.PurchaseKit)
	app.Post("/api/shop/redeem", authMiddleware, shopController.RedeemCode)
	app.Get("/api/shop/purchases", authMiddleware, shopController.MyPurchases)

	// Course routes: the catalog is open, course content is gated by the
	// visibility filter
	coursesController := controllers.NewCoursesController(s, eng, cfg)
	app.Get("/api/courses", coursesController.Catalog)
	app.Get("/api/courses/mine", authMiddleware, coursesController.MyCourses)
	app.Get("/api/courses/community", coursesController.ListCommunityCourses)
	app.Get("/api/courses/community/:id", coursesController.GetCommunityCourse)
	app.Get("/api/courses/official/:id", coursesController.GetOfficialCourse)

	// Lesson routes
	lessonsController := controllers.NewLessonsController(s, eng, cfg)
	app.Get("/api/lessons/:id", lessonsController.GetLesson)
	app.Post("/api/lessons/:id/start", authMiddleware, lessonsController.StartLesson)
	app.Post("/api/lessons/:id/complete", authMiddleware, lessonsController.CompleteLesson)

	// Custom course authoring
	creatorController := controllers.NewCreatorController(s, eng, cfg)
	myCourses := app.Group("/api/my/courses", authMiddleware)
	myCourses.Get("/", creatorController.MyCreatedCourses)
	myCourses.Post("/", creatorController.CreateCourse)
	myCourses.Put("/:id", creatorController.UpdateCourse)
	myCourses.Post("/:id/lessons", creatorController.AddLesson)

	// Admin routes
	adminController := controllers.NewAdminController(s, eng, cfg)
	admin := app.Group("/api/admin", adminMiddleware)
	admin.Post("/kits", adminController.CreateKit)
	admin.Post("/courses", adminController.CreateOfficialCourse)
	admin.Put("/courses/:id/publish", adminController.SetCoursePublished)
	admin.Post("/courses/:id/lessons", adminController.AddLesson)
	admin.Post("/grants", adminController.Grant)
}
