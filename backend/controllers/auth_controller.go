package controllers

import (
	"training-portal/backend/config"
	"training-portal/backend/models"
	"training-portal/backend/services"
	"training-portal/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	Auth *services.AuthService
	Cfg  *config.Config
	log  *utils.Logger
}

func NewAuthController(auth *services.AuthService, cfg *config.Config, baseLog *utils.Logger) *AuthController {
	return &AuthController{Auth: auth, Cfg: cfg, log: baseLog.With("controller", "AuthController")}
}

// [+] Register godoc
// @Summary Register a new learner
// @Description Creates a learner account and returns a token for it
// @Tags auth
// @Accept json
// @Produce json
// @Param request body map[string]interface{} true "Username, email and password"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	type RegisterInput struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var input RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	learner, err := ac.Auth.Register(c.UserContext(), input.Username, input.Email, input.Password)
	if err != nil {
		return serviceError(c, ac.log, err)
	}
	return ac.issueToken(c, fiber.StatusCreated, learner)
}

// [+] Login godoc
// @Summary Learner login
// @Description Authenticate a learner and return a JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body map[string]interface{} true "Login credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	type LoginInput struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	var input LoginInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Username == "" || input.Password == "" {
		return utils.ValidationError(c, map[string]string{
			"username": "required",
			"password": "required",
		})
	}

	learner, err := ac.Auth.Login(c.UserContext(), input.Username, input.Password)
	if err != nil {
		return serviceError(c, ac.log, err)
	}
	return ac.issueToken(c, fiber.StatusOK, learner)
}

func (ac *AuthController) issueToken(c *fiber.Ctx, status int, learner *models.Learner) error {
	token, err := utils.GenerateJWTToken(learner.ID, learner.Role, ac.Cfg)
	if err != nil {
		ac.log.Error("could not sign token", "learner_id", learner.ID, "error", err)
		return utils.InternalServerError(c, "Could not generate token")
	}

	return c.Status(status).JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":       learner.ID,
			"username": learner.Username,
			"email":    learner.Email,
			"role":     learner.Role,
		},
	})
}
