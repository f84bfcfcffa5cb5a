package controllers

import (
	"training-portal/backend/config"
	"training-portal/backend/middleware"
	"training-portal/backend/services"
	"training-portal/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type TrainingController struct {
	Catalog  *services.CatalogService
	Progress *services.ProgressService
	Cfg      *config.Config
	log      *utils.Logger
}

func NewTrainingController(catalog *services.CatalogService, progress *services.ProgressService, cfg *config.Config, baseLog *utils.Logger) *TrainingController {
	return &TrainingController{
		Catalog:  catalog,
		Progress: progress,
		Cfg:      cfg,
		log:      baseLog.With("controller", "TrainingController"),
	}
}

// The learner id never comes from a request body; these request types have
// no field for it.
type courseProgressRequest struct {
	CourseID string `json:"course_id"`
	services.CoursePatch
}

type moduleProgressRequest struct {
	ModuleID string `json:"module_id"`
	services.ModulePatch
}

// [+] GetClients godoc
// @Summary List active clients
// @Tags training
// @Produce json
// @Success 200 {array} models.Client
// @Failure 503 {object} utils.ErrorResponse
// @Router /training/clients [get]
func (tc *TrainingController) GetClients(c *fiber.Ctx) error {
	clients, err := tc.Catalog.GetActiveClients(c.UserContext())
	if err != nil {
		return serviceError(c, tc.log, err)
	}
	return c.JSON(clients)
}

func (tc *TrainingController) GetClient(c *fiber.Ctx) error {
	client, err := tc.Catalog.GetClientBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return serviceError(c, tc.log, err)
	}
	if client == nil {
		return utils.NotFound(c, "Client not found")
	}
	return c.JSON(client)
}

// [+] GetCourses godoc
// @Summary List active courses of a client
// @Description Unknown clients give an empty list
// @Tags training
// @Produce json
// @Param clientSlug path string true "Client slug"
// @Success 200 {array} models.Course
// @Router /training/courses/{clientSlug} [get]
func (tc *TrainingController) GetCourses(c *fiber.Ctx) error {
	courses, err := tc.Catalog.GetCoursesByClientSlug(c.UserContext(), c.Params("clientSlug"))
	if err != nil {
		return serviceError(c, tc.log, err)
	}
	return c.JSON(courses)
}

func (tc *TrainingController) GetCourse(c *fiber.Ctx) error {
	course, err := tc.Catalog.GetCourseWithModules(c.UserContext(), c.Params("courseId"))
	if err != nil {
		return serviceError(c, tc.log, err)
	}
	if course == nil {
		return utils.NotFound(c, "Course not found")
	}
	return c.JSON(course)
}

func (tc *TrainingController) GetProgress(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}
	rows, err := tc.Progress.GetUserCourseProgress(c.UserContext(), identity.LearnerID)
	if err != nil {
		return serviceError(c, tc.log, err)
	}
	return c.JSON(rows)
}

func (tc *TrainingController) GetModuleProgress(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}
	rows, err := tc.Progress.GetUserModuleProgress(c.UserContext(), identity.LearnerID)
	if err != nil {
		return serviceError(c, tc.log, err)
	}
	return c.JSON(rows)
}

// [+] UpdateCourseProgress godoc
// @Summary Record course progress for the caller
// @Description Creates or merges the caller's progress row for the course. Completion is never undone here.
// @Tags training
// @Accept json
// @Produce json
// @Param request body courseProgressRequest true "Course id and the fields to change"
// @Success 200 {object} models.CourseProgress
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /training/progress/course [post]
func (tc *TrainingController) UpdateCourseProgress(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}
	var req courseProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if req.CourseID == "" {
		return utils.ValidationError(c, map[string]string{"course_id": "required"})
	}

	row, err := tc.Progress.UpdateCourseProgress(c.UserContext(), identity.LearnerID, req.CourseID, req.CoursePatch)
	if err != nil {
		return serviceError(c, tc.log, err)
	}
	return c.JSON(row)
}

func (tc *TrainingController) UpdateModuleProgress(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}
	var req moduleProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if req.ModuleID == "" {
		return utils.ValidationError(c, map[string]string{"module_id": "required"})
	}

	row, err := tc.Progress.UpdateModuleProgress(c.UserContext(), identity.LearnerID, req.ModuleID, req.ModulePatch)
	if err != nil {
		return serviceError(c, tc.log, err)
	}
	return c.JSON(row)
}

func (tc *TrainingController) RecomputeCourseProgress(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}
	row, err := tc.Progress.RecomputeCourseProgress(c.UserContext(), identity.LearnerID, c.Params("courseId"))
	if err != nil {
		return serviceError(c, tc.log, err)
	}
	return c.JSON(row)
}

// ResetCourseProgress answers 204 whether or not a row existed.
func (tc *TrainingController) ResetCourseProgress(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}
	if _, err := tc.Progress.ResetCourseProgress(c.UserContext(), identity.LearnerID, c.Params("courseId")); err != nil {
		return serviceError(c, tc.log, err)
	}
	return utils.NoContent(c)
}

func (tc *TrainingController) ResetModuleProgress(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}
	if _, err := tc.Progress.ResetModuleProgress(c.UserContext(), identity.LearnerID, c.Params("moduleId")); err != nil {
		return serviceError(c, tc.log, err)
	}
	return utils.NoContent(c)
}

// [+] GetQuizResults godoc
// @Summary List the caller's quiz attempts, newest first
// @Tags training
// @Produce json
// @Success 200 {array} models.QuizResult
// @Failure 401 {object} utils.ErrorResponse
// @Router /training/quiz/results [get]
func (tc *TrainingController) GetQuizResults(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}
	results, err := tc.Progress.GetQuizResults(c.UserContext(), identity.LearnerID)
	if err != nil {
		return serviceError(c, tc.log, err)
	}
	return c.JSON(results)
}

func (tc *TrainingController) SaveQuizResult(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}
	var input services.QuizResultInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	result, err := tc.Progress.SaveQuizResult(c.UserContext(), identity.LearnerID, input)
	if err != nil {
		return serviceError(c, tc.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}
