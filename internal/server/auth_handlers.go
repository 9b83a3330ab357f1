package server

import (
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

type verifyEmailRequest struct {
	ID    *string `json:"id"`
	Token *string `json:"token"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh *string `json:"refresh"`
}

// Signup handles POST /api/users/user-creation
// @Summary User signup
// @Description Register an inactive account and send its verification email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.RegisterInput true "Signup request"
// @Success 201 {object} service.UserProfile
// @Failure 400 {object} object{username=[]string,email=[]string}
// @Router /users/user-creation [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	var req service.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Register(c.UserContext(), req)
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(service.ProfileOf(user))
}

// VerifyEmail handles POST /api/users/initial-email-verification
// @Summary Activate an account from its verification link
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{id=string,token=string} true "uid and token from the link"
// @Success 200 {object} service.TokenPair
// @Failure 400 {object} object{}
// @Failure 401 {object} object{}
// @Router /users/initial-email-verification [post]
func (s *Server) VerifyEmail(c *fiber.Ctx) error {
	var req verifyEmailRequest
	if err := c.BodyParser(&req); err != nil || req.ID == nil || req.Token == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{})
	}

	pair, err := s.userService.VerifyEmail(c.UserContext(), *req.ID, *req.Token)
	if err != nil {
		if models.HasCode(err, models.CodeUnauthenticated) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{})
		}
		return respond(c, err)
	}
	return c.JSON(pair)
}

// Login handles POST /api/users/token
// @Summary Obtain an access and refresh token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Credentials"
// @Success 200 {object} service.TokenPair
// @Failure 401 {object} models.ErrorResponse
// @Router /users/token/ [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	fields := map[string][]string{}
	if req.Email == "" {
		fields["email"] = []string{"This field may not be blank."}
	}
	if req.Password == "" {
		fields["password"] = []string{"This field may not be blank."}
	}
	if len(fields) > 0 {
		return respond(c, models.NewFieldErrors(fields))
	}

	pair, err := s.userService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(pair)
}

// Refresh handles POST /api/users/token/refresh
// @Summary Rotate a refresh token
// @Description The presented refresh token is blacklisted and a new pair is returned.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{refresh=string} true "Refresh token"
// @Success 200 {object} service.TokenPair
// @Failure 401 {object} models.ErrorResponse
// @Router /users/token/refresh/ [post]
func (s *Server) Refresh(c *fiber.Ctx) error {
	refresh, ok := s.refreshToken(c)
	if !ok {
		return nil
	}

	pair, err := s.tokens.Refresh(c.UserContext(), refresh)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(pair)
}

// Logout handles POST /api/users/token/blacklist
// @Summary Revoke a refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{refresh=string} true "Refresh token"
// @Success 200 {object} object{}
// @Failure 400 {object} models.ErrorResponse
// @Router /users/token/blacklist [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	refresh, ok := s.refreshToken(c)
	if !ok {
		return nil
	}

	if err := s.tokens.Blacklist(c.UserContext(), refresh); err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{})
}

// refreshToken reads the refresh field, writing a 400 when it is absent.
func (s *Server) refreshToken(c *fiber.Ctx) (string, bool) {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil || req.Refresh == nil || *req.Refresh == "" {
		_ = respond(c, models.NewFieldError("refresh", "This field is required."))
		return "", false
	}
	return *req.Refresh, true
}
