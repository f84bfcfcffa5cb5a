package controllers

import (
	"context"
	"time"

	"training-portal/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HealthController struct {
	DB  *gorm.DB
	log *utils.Logger
}

func NewHealthController(db *gorm.DB, baseLog *utils.Logger) *HealthController {
	return &HealthController{DB: db, log: baseLog.With("controller", "HealthController")}
}

// Health reports 503 when the database does not answer a ping within two
// seconds.
func (hc *HealthController) Health(c *fiber.Ctx) error {
	sqlDB, err := hc.DB.DB()
	if err != nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, "database handle unavailable")
	}
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		hc.log.Warn("health check failed", "error", err)
		return utils.Error(c, fiber.StatusServiceUnavailable, "database unreachable")
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
