package routes

import (
	"training-portal/backend/config"
	"training-portal/backend/controllers"
	"training-portal/backend/middleware"
	"training-portal/backend/repository"
	"training-portal/backend/services"
	"training-portal/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, logger *utils.Logger) {
	// Stores and services
	catalogRepo := repository.NewCatalogRepository(db, logger)
	catalogService := services.NewCatalogService(catalogRepo, logger)
	progressService := services.NewProgressService(
		catalogRepo,
		repository.NewProgressRepository(db, logger),
		repository.NewQuizRepository(db, logger),
		cfg.CompletionPolicy,
		logger,
	)
	authService := services.NewAuthService(repository.NewLearnerRepository(db, logger), logger)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware()

	// Health
	healthController := controllers.NewHealthController(db, logger)
	app.Get("/api/health", healthController.Health)

	// Auth routes
	authController := controllers.NewAuthController(authService, cfg, logger)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Catalog routes
	trainingController := controllers.NewTrainingController(catalogService, progressService, cfg, logger)
	training := app.Group("/api/training")
	training.Get("/clients", trainingController.GetClients)
	training.Get("/clients/:slug", trainingController.GetClient)
	training.Get("/courses/:clientSlug", trainingController.GetCourses)
	training.Get("/course/:courseId", trainingController.GetCourse)

	// Progress routes
	training.Get("/progress", authMiddleware, trainingController.GetProgress)
	training.Get("/progress/modules", authMiddleware, trainingController.GetModuleProgress)
	training.Post("/progress/course", authMiddleware, trainingController.UpdateCourseProgress)
	training.Post("/progress/course/:courseId/recompute", authMiddleware, trainingController.RecomputeCourseProgress)
	training.Delete("/progress/course/:courseId", authMiddleware, trainingController.ResetCourseProgress)
	training.Post("/progress/module", authMiddleware, trainingController.UpdateModuleProgress)
	training.Delete("/progress/module/:moduleId", authMiddleware, trainingController.ResetModuleProgress)

	// Quiz routes
	training.Get("/quiz/results", authMiddleware, trainingController.GetQuizResults)
	training.Post("/quiz/results", authMiddleware, trainingController.SaveQuizResult)

	// Admin routes for the catalog
	adminController := controllers.NewAdminController(catalogService, cfg, logger)
	admin := training.Group("/admin", authMiddleware, adminMiddleware)
	admin.Post("/clients", adminController.CreateClient)
	admin.Put("/clients/:slug/deactivate", adminController.DeactivateClient)
	admin.Post("/clients/:slug/courses", adminController.CreateCourse)
	admin.Post("/courses/:courseId/modules", adminController.CreateModule)
}
