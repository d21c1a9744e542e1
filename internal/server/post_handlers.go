package server

import (
	"courtside/internal/middleware"
	"courtside/internal/models"
	"courtside/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UpdatePostRequest is the body of PUT /posts/:id.
type UpdatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// GetPost godoc
// @Summary Get post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.postService.GetPost(c.UserContext(), id, middleware.Viewer(c))
	if err != nil {
		return fail(c, err)
	}
	return renderOne(c, fiber.StatusOK, post, postDetailView)
}

// UpdatePost godoc
// @Summary Update post
// @Description Only the author may edit a post
// @Tags posts
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body UpdatePostRequest true "Post"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req UpdatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		UserID:  currentUser(c),
		PostID:  id,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return fail(c, err)
	}
	return renderOne(c, fiber.StatusOK, post, postDetailView)
}

// DeletePost godoc
// @Summary Delete post
// @Description Authors and moderators may delete a post
// @Tags posts
// @Param id path int true "Post ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.postService.DeletePost(c.UserContext(), currentUser(c), id); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LikePost godoc
// @Summary Like post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 201 {object} map[string]interface{}
// @Security BearerAuth
// @Router /posts/{id}/like [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.postService.LikePost(c.UserContext(), currentUser(c), id)
	if err != nil {
		return fail(c, err)
	}
	return renderOne(c, fiber.StatusCreated, post, postListView)
}

// UnlikePost godoc
// @Summary Unlike post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /posts/{id}/like [delete]
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.postService.UnlikePost(c.UserContext(), currentUser(c), id)
	if err != nil {
		return fail(c, err)
	}
	return renderOne(c, fiber.StatusOK, post, postListView)
}

// GetPostStatuses godoc
// @Summary Post statuses
// @Description Display names are narrowed to the best match for Accept-Language
// @Tags posts
// @Produce json
// @Param Accept-Language header string false "Preferred languages"
// @Success 200 {array} map[string]interface{}
// @Router /post-statuses [get]
func (s *Server) GetPostStatuses(c *fiber.Ctx) error {
	statuses, err := s.statusService.PostStatuses(c.UserContext(), c.Get(fiber.HeaderAcceptLanguage))
	if err != nil {
		return fail(c, err)
	}
	return renderList(c, fiber.StatusOK, statuses, postStatusView)
}
