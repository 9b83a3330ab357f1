package server

import (
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// childResponse is returned for a created comment or reply.
type childResponse struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

// CreateComment handles POST /api/posts/:id/comments/add
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body object{text=string} true "Comment text"
// @Success 201 {object} childResponse
// @Failure 400 {object} object{text=[]string}
// @Failure 404 {object} models.MessageResponse
// @Security BearerAuth
// @Router /posts/{id}/comments/add/ [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}


	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID: currentUserID(c),
		PostID: postID,
		Text:   bodyText(c),
	})
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(childResponse{ID: comment.ID, Text: comment.Text})
}

// CreateReply handles POST /api/comments/:id/replies/add
// @Summary Reply to a comment
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "Comment ID"
// @Param request body object{text=string} true "Reply text"
// @Success 201 {object} childResponse
// @Failure 400 {object} object{text=[]string}
// @Failure 404 {object} models.MessageResponse
// @Security BearerAuth
// @Router /comments/{id}/replies/add/ [post]
func (s *Server) CreateReply(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}


	reply, err := s.replyService.CreateReply(c.UserContext(), service.CreateReplyInput{
		UserID:    currentUserID(c),
		CommentID: commentID,
		Text:      bodyText(c),
	})
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(childResponse{ID: reply.ID, Text: reply.Text})
}
