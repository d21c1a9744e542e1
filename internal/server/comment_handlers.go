package server

import (
	"courtside/internal/middleware"
	"courtside/internal/models"
	"courtside/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CommentRequest is the body for creating or editing a comment or reply.
type CommentRequest struct {
	Content string `json:"content"`
}

func (s *Server) parsePostAndComment(c *fiber.Ctx) (postID, commentID uint, err error) {
	if postID, err = s.parseID(c, "id"); err != nil {
		return 0, 0, err
	}
	if commentID, err = s.parseID(c, "commentId"); err != nil {
		return 0, 0, err
	}
	return postID, commentID, nil
}

func parseCommentBody(c *fiber.Ctx) (string, error) {
	var req CommentRequest
	if err := c.BodyParser(&req); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return "", errResponseWritten
	}
	return req.Content, nil
}

// GetComments godoc
// @Summary List comments
// @Description Sort tokens: created_at, updated_at, id, postcommentlike, postcommentreply; prefix with - for descending
// @Tags comments
// @Produce json
// @Param id path int true "Post ID"
// @Param sort query string false "Comma separated sort tokens"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (max 100)"
// @Param include_deleted query bool false "Moderators only"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page, err := parsePage(c)
	if err != nil {
		return nil
	}
	comments, total, err := s.commentService.ListComments(c.UserContext(), service.ListCommentsInput{
		PostID:         postID,
		Sort:           c.Query("sort"),
		Viewer:         middleware.Viewer(c),
		IncludeDeleted: s.includeDeleted(c),
		Page:           page,
	})
	if err != nil {
		return fail(c, err)
	}
	return renderPage(c, page, total, comments, commentView)
}

// CreateComment godoc
// @Summary Create comment
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body CommentRequest true "Comment"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	content, err := parseCommentBody(c)
	if err != nil {
		return nil
	}
	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID:  currentUser(c),
		PostID:  postID,
		Content: content,
	})
	if err != nil {
		return fail(c, err)
	}
	return renderOne(c, fiber.StatusCreated, comment, commentView)
}

// GetComment godoc
// @Summary Get comment
// @Tags comments
// @Produce json
// @Param id path int true "Post ID"
// @Param commentId path int true "Comment ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments/{commentId} [get]
func (s *Server) GetComment(c *fiber.Ctx) error {
	postID, commentID, err := s.parsePostAndComment(c)
	if err != nil {
		return nil
	}
	comment, err := s.commentService.GetComment(c.UserContext(), postID, commentID, middleware.Viewer(c))
	if err != nil {
		return fail(c, err)
	}
	return renderOne(c, fiber.StatusOK, comment, commentView)
}

// UpdateComment godoc
// @Summary Update comment
// @Description Only the author may edit a comment
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param commentId path int true "Comment ID"
// @Param request body CommentRequest true "Comment"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id}/comments/{commentId} [put]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	postID, commentID, err := s.parsePostAndComment(c)
	if err != nil {
		return nil
	}
	content, err := parseCommentBody(c)
	if err != nil {
		return nil
	}
	comment, err := s.commentService.UpdateComment(c.UserContext(), service.UpdateCommentInput{
		UserID:    currentUser(c),
		PostID:    postID,
		CommentID: commentID,
		Content:   content,
	})
	if err != nil {
		return fail(c, err)
	}
	return renderOne(c, fiber.StatusOK, comment, commentView)
}

// DeleteComment godoc
// @Summary Delete comment
// @Tags comments
// @Param id path int true "Post ID"
// @Param commentId path int true "Comment ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id}/comments/{commentId} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	postID, commentID, err := s.parsePostAndComment(c)
	if err != nil {
		return nil
	}
	if err := s.commentService.DeleteComment(c.UserContext(), currentUser(c), postID, commentID); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LikeComment godoc
// @Summary Like comment
// @Tags comments
// @Produce json
// @Param id path int true "Post ID"
// @Param commentId path int true "Comment ID"
// @Success 201 {object} map[string]interface{}
// @Security BearerAuth
// @Router /posts/{id}/comments/{commentId}/like [post]
func (s *Server) LikeComment(c *fiber.Ctx) error {
	postID, commentID, err := s.parsePostAndComment(c)
	if err != nil {
		return nil
	}
	comment, err := s.commentService.LikeComment(c.UserContext(), currentUser(c), postID, commentID)
	if err != nil {
		return fail(c, err)
	}
	return renderOne(c, fiber.StatusCreated, comment, commentView)
}

// UnlikeComment godoc
// @Summary Unlike comment
// @Tags comments
// @Produce json
// @Param id path int true "Post ID"
// @Param commentId path int true "Comment ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /posts/{id}/comments/{commentId}/like [delete]
func (s *Server) UnlikeComment(c *fiber.Ctx) error {
	postID, commentID, err := s.parsePostAndComment(c)
	if err != nil {
		return nil
	}
	comment, err := s.commentService.UnlikeComment(c.UserContext(), currentUser(c), postID, commentID)
	if err != nil {
		return fail(c, err)
	}
	return renderOne(c, fiber.StatusOK, comment, commentView)
}

// GetReplies godoc
// @Summary List replies
// @Tags comments
// @Produce json
// @Param id path int true "Post ID"
// @Param commentId path int true "Comment ID"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} map[string]interface{}
// @Router /posts/{id}/comments/{commentId}/replies [get]
func (s *Server) GetReplies(c *fiber.Ctx) error {
	postID, commentID, err := s.parsePostAndComment(c)
	if err != nil {
		return nil
	}
	page, err := parsePage(c)
	if err != nil {
		return nil
	}
	replies, total, err := s.commentService.ListReplies(c.UserContext(), postID, commentID, page)
	if err != nil {
		return fail(c, err)
	}
	return renderPage(c, page, total, replies, replyView)
}

// CreateReply godoc
// @Summary Reply to comment
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param commentId path int true "Comment ID"
// @Param request body CommentRequest true "Reply"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id}/comments/{commentId}/replies [post]
func (s *Server) CreateReply(c *fiber.Ctx) error {
	postID, commentID, err := s.parsePostAndComment(c)
	if err != nil {
		return nil
	}
	content, err := parseCommentBody(c)
	if err != nil {
		return nil
	}
	reply, err := s.commentService.CreateReply(c.UserContext(), service.CreateReplyInput{
		UserID:    currentUser(c),
		PostID:    postID,
		CommentID: commentID,
		Content:   content,
	})
	if err != nil {
		return fail(c, err)
	}
	return renderOne(c, fiber.StatusCreated, reply, replyView)
}
