package controllers

import (
	"training-portal/backend/config"
	"training-portal/backend/models"
	"training-portal/backend/services"
	"training-portal/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// AdminController exposes the catalog write path. Every route sits behind
// AuthMiddleware and AdminMiddleware.
type AdminController struct {
	Catalog *services.CatalogService
	Cfg     *config.Config
	log     *utils.Logger
}

func NewAdminController(catalog *services.CatalogService, cfg *config.Config, baseLog *utils.Logger) *AdminController {
	return &AdminController{Catalog: catalog, Cfg: cfg, log: baseLog.With("controller", "AdminController")}
}

type createClientRequest struct {
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Active *bool  `json:"active"`
}

type createCourseRequest struct {
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	Difficulty       models.Difficulty `json:"difficulty"`
	EstimatedMinutes int               `json:"estimated_minutes"`
	SortOrder        int               `json:"sort_order"`
	Active           *bool             `json:"active"`
}

type createModuleRequest struct {
	Title       string             `json:"title"`
	ContentType models.ContentType `json:"content_type"`
	ContentURL  string             `json:"content_url"`
	SortOrder   int                `json:"sort_order"`
}

// [+] CreateClient godoc
// @Summary Create a client
// @Tags admin
// @Accept json
// @Produce json
// @Param request body createClientRequest true "Client data"
// @Success 201 {object} models.Client
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /training/admin/clients [post]
func (ac *AdminController) CreateClient(c *fiber.Ctx) error {
	var req createClientRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	client := &models.Client{Name: req.Name, Slug: req.Slug, Active: activeOrDefault(req.Active)}
	if err := ac.Catalog.CreateClient(c.UserContext(), client); err != nil {
		return serviceError(c, ac.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(client)
}

func (ac *AdminController) DeactivateClient(c *fiber.Ctx) error {
	client, err := ac.Catalog.DeactivateClient(c.UserContext(), c.Params("slug"))
	if err != nil {
		return serviceError(c, ac.log, err)
	}
	if client == nil {
		return utils.NotFound(c, "Client not found")
	}
	return c.JSON(client)
}

func (ac *AdminController) CreateCourse(c *fiber.Ctx) error {
	var req createCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	course := &models.Course{
		Title:            req.Title,
		Description:      req.Description,
		Difficulty:       req.Difficulty,
		EstimatedMinutes: req.EstimatedMinutes,
		SortOrder:        req.SortOrder,
		Active:           activeOrDefault(req.Active),
	}
	if err := ac.Catalog.CreateCourse(c.UserContext(), c.Params("slug"), course); err != nil {
		return serviceError(c, ac.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(course)
}

func (ac *AdminController) CreateModule(c *fiber.Ctx) error {
	var req createModuleRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	module := &models.Module{
		Title:       req.Title,
		ContentType: req.ContentType,
		ContentURL:  req.ContentURL,
		SortOrder:   req.SortOrder,
	}
	if err := ac.Catalog.CreateModule(c.UserContext(), c.Params("courseId"), module); err != nil {
		return serviceError(c, ac.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(module)
}

func activeOrDefault(active *bool) bool {
	if active == nil {
		return true
	}
	return *active
}
