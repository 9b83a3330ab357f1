package server

import (
	"strconv"

	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// textResponse echoes the stored text of a created or updated post.
type textResponse struct {
	Text string `json:"text"`
}

// GetPosts handles GET /api/posts
// @Summary List posts
// @Description Newest first. Filter by author with user__id.
// @Tags posts
// @Produce json
// @Param user__id query int false "Author ID"
// @Success 200 {array} service.PostSummary
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/ [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	var ownerID uint
	if raw := c.Query("user__id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return respond(c, models.NewFieldError("user__id", "Enter a whole number."))
		}
		ownerID = uint(id)
	}

	posts, err := s.postService.ListPosts(c.UserContext(), ownerID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(posts)
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Param request body object{text=string} true "Post text"
// @Success 201 {object} textResponse
// @Failure 400 {object} object{text=[]string}
// @Security BearerAuth
// @Router /posts/ [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	text, err := parseText(c)
	if err != nil {
		return nil
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID: currentUserID(c),
		Text:   text,
	})
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(textResponse{Text: post.Text})
}

// GetPost handles GET /api/posts/:id
// @Summary Get a post with its comments and replies
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} service.PostTree
// @Failure 404 {object} models.MessageResponse
// @Security BearerAuth
// @Router /posts/{id}/ [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	tree, err := s.postService.GetPostTree(c.UserContext(), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(tree)
}

// GetPostBasic handles GET /api/posts/:id/basic
// @Summary Get a post without its comments
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} service.PostBasic
// @Failure 404 {object} models.MessageResponse
// @Security BearerAuth
// @Router /posts/{id}/basic/ [get]
func (s *Server) GetPostBasic(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPostBasic(c.UserContext(), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
// @Summary Replace the text of a post
// @Tags posts
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body object{text=string} true "New text"
// @Success 200 {object} textResponse
// @Failure 400 {object} object{text=[]string}
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.MessageResponse
// @Security BearerAuth
// @Router /posts/{id}/ [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}


	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		UserID: currentUserID(c),
		PostID: id,
		Text:   bodyText(c),
	})
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(textResponse{Text: post.Text})
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete a post with its comments and replies
// @Tags posts
// @Param id path int true "Post ID"
// @Success 204
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.MessageResponse
// @Security BearerAuth
// @Router /posts/{id}/ [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), service.DeletePostInput{
		UserID: currentUserID(c),
		PostID: id,
	}); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
