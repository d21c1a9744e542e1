package server

import (
	"courtside/internal/middleware"
	"courtside/internal/models"

	"github.com/gofiber/fiber/v2"
)

// FavoriteTeamRef is one element of the PUT /users/me/favorite-teams body.
type FavoriteTeamRef struct {
	ID uint `json:"id"`
}

// VisibilityRequest is the body of PUT /users/me/profile-visibility.
type VisibilityRequest struct {
	IsProfileVisible *bool `json:"is_profile_visible"`
}

// IntroductionRequest is the body of PUT /users/me/introduction.
type IntroductionRequest struct {
	Introduction *string `json:"introduction"`
}

func currentUser(c *fiber.Ctx) uint {
	return *middleware.Viewer(c)
}

// GetMe godoc
// @Summary Current user
// @Tags users
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/me [get]
func (s *Server) GetMe(c *fiber.Ctx) error {
	user, err := s.userService.Me(c.UserContext(), currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	return renderOne(c, fiber.StatusOK, user, meView)
}

// GetUserProfile godoc
// @Summary Public profile
// @Description Hidden profiles are only visible to their owner
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	user, err := s.userService.Profile(c.UserContext(), id, middleware.Viewer(c))
	if err != nil {
		return fail(c, err)
	}
	return renderOne(c, fiber.StatusOK, user, profileView)
}

// GetFavoriteTeams godoc
// @Summary Favorite teams
// @Tags users
// @Produce json
// @Success 200 {array} map[string]interface{}
// @Security BearerAuth
// @Router /users/me/favorite-teams [get]
func (s *Server) GetFavoriteTeams(c *fiber.Ctx) error {
	teams, err := s.teamService.FavoriteTeams(c.UserContext(), currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	return renderList(c, fiber.StatusOK, teams, teamView)
}

// PutFavoriteTeams godoc
// @Summary Replace favorite teams
// @Tags users
// @Accept json
// @Produce json
// @Param request body []FavoriteTeamRef true "Teams"
// @Success 201 {array} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/me/favorite-teams [put]
func (s *Server) PutFavoriteTeams(c *fiber.Ctx) error {
	var refs []FavoriteTeamRef
	if err := c.BodyParser(&refs); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	ids := make([]uint, 0, len(refs))
	for _, r := range refs {
		if r.ID == 0 {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid team ID"))
		}
		ids = append(ids, r.ID)
	}

	teams, err := s.teamService.ReplaceFavoriteTeams(c.UserContext(), currentUser(c), ids)
	if err != nil {
		return fail(c, err)
	}
	return renderList(c, fiber.StatusCreated, teams, teamView)
}

// AddFavoriteTeam godoc
// @Summary Add favorite team
// @Tags users
// @Produce json
// @Param teamId path int true "Team ID"
// @Success 201 {object} map[string]interface{}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/me/favorite-teams/{teamId} [post]
func (s *Server) AddFavoriteTeam(c *fiber.Ctx) error {
	teamID, err := s.parseID(c, "teamId")
	if err != nil {
		return nil
	}
	team, err := s.teamService.AddFavoriteTeam(c.UserContext(), currentUser(c), teamID)
	if err != nil {
		return fail(c, err)
	}
	return renderOne(c, fiber.StatusCreated, team, favoriteTeamView)
}

// RemoveFavoriteTeam godoc
// @Summary Remove favorite team
// @Tags users
// @Produce json
// @Param teamId path int true "Team ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/me/favorite-teams/{teamId} [delete]
func (s *Server) RemoveFavoriteTeam(c *fiber.Ctx) error {
	teamID, err := s.parseID(c, "teamId")
	if err != nil {
		return nil
	}
	team, err := s.teamService.RemoveFavoriteTeam(c.UserContext(), currentUser(c), teamID)
	if err != nil {
		return fail(c, err)
	}
	return renderOne(c, fiber.StatusOK, team, favoriteTeamView)
}

// PutProfileVisibility godoc
// @Summary Set profile visibility
// @Tags users
// @Accept json
// @Produce json
// @Param request body VisibilityRequest true "Visibility"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/me/profile-visibility [put]
func (s *Server) PutProfileVisibility(c *fiber.Ctx) error {
	var req VisibilityRequest
	if err := c.BodyParser(&req); err != nil || req.IsProfileVisible == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("is_profile_visible must be a boolean"))
	}
	user, err := s.userService.SetProfileVisibility(c.UserContext(), currentUser(c), *req.IsProfileVisible)
	if err != nil {
		return fail(c, err)
	}
	return renderOne(c, fiber.StatusCreated, user, meView)
}

// PutIntroduction godoc
// @Summary Set introduction
// @Tags users
// @Accept json
// @Produce json
// @Param request body IntroductionRequest true "Introduction"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/me/introduction [put]
func (s *Server) PutIntroduction(c *fiber.Ctx) error {
	var req IntroductionRequest
	if err := c.BodyParser(&req); err != nil || req.Introduction == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("introduction must be a string"))
	}
	user, err := s.userService.SetIntroduction(c.UserContext(), currentUser(c), *req.Introduction)
	if err != nil {
		return fail(c, err)
	}
	return renderOne(c, fiber.StatusCreated, user, meView)
}

// GetMyPosts godoc
// @Summary My posts
// @Tags users
// @Produce json
// @Param sort query string false "Comma separated sort tokens"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /users/me/posts [get]
func (s *Server) GetMyPosts(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return nil
	}
	posts, total, err := s.postService.ListUserPosts(c.UserContext(), currentUser(c), c.Query("sort"), page)
	if err != nil {
		return fail(c, err)
	}
	return renderPage(c, page, total, posts, postListView)
}

// GetMyComments godoc
// @Summary My comments
// @Description Live comments on live posts, newest first
// @Tags users
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /users/me/comments [get]
func (s *Server) GetMyComments(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return nil
	}
	comments, total, err := s.commentService.ListUserComments(c.UserContext(), currentUser(c), page)
	if err != nil {
		return fail(c, err)
	}
	return renderPage(c, page, total, comments, myCommentView)
}
