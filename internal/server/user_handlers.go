package server

import "github.com/gofiber/fiber/v2"

// GetUserProfile handles GET /api/users/:id
// @Summary Get a user's public profile
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} service.UserProfile
// @Failure 404 {object} models.MessageResponse
// @Security BearerAuth
// @Router /users/{id}/ [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	profile, err := s.userService.GetUser(c.UserContext(), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(profile)
}
