package server

import (
	"strconv"

	"courtside/internal/middleware"
	"courtside/internal/models"
	"courtside/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePostRequest is the body of POST /teams/:id/posts.
type CreatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// GetTeams godoc
// @Summary List teams
// @Tags teams
// @Produce json
// @Success 200 {array} map[string]interface{}
// @Router /teams [get]
func (s *Server) GetTeams(c *fiber.Ctx) error {
	teams, err := s.teamService.ListTeams(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return renderList(c, fiber.StatusOK, teams, teamView)
}

// GetTeam godoc
// @Summary Get team
// @Tags teams
// @Produce json
// @Param id path int true "Team ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.ErrorResponse
// @Router /teams/{id} [get]
func (s *Server) GetTeam(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	team, err := s.teamService.GetTeam(c.UserContext(), id, middleware.Viewer(c))
	if err != nil {
		return fail(c, err)
	}
	return renderOne(c, fiber.StatusOK, team, teamView)
}

// GetTeamGames godoc
// @Summary Team schedule
// @Tags teams
// @Produce json
// @Param id path int true "Team ID"
// @Param month query int false "Month 1-12; omit for the whole season"
// @Success 200 {array} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Router /teams/{id}/games [get]
func (s *Server) GetTeamGames(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	month := 0
	if raw := c.Query("month"); raw != "" {
		month, err = strconv.Atoi(raw)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid month. Use 1-12"))
		}
		if month == 0 {
			month = -1
		}
	}
	games, err := s.teamService.TeamGames(c.UserContext(), id, month)
	if err != nil {
		return fail(c, err)
	}
	return renderList(c, fiber.StatusOK, games, gameView)
}

// GetLastGames godoc
// @Summary Last games
// @Description The last n played games, or the first n scheduled games early in the season
// @Tags teams
// @Produce json
// @Param id path int true "Team ID"
// @Param n query int false "Number of games (1-82)" default(5)
// @Success 200 {array} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Router /teams/{id}/last-games [get]
func (s *Server) GetLastGames(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	n := 5
	if raw := c.Query("n"); raw != "" {
		if n, err = strconv.Atoi(raw); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid n value. n should be between 1 and 82"))
		}
	}
	games, err := s.teamService.LastGames(c.UserContext(), id, n)
	if err != nil {
		return fail(c, err)
	}
	return renderList(c, fiber.StatusOK, games, gameView)
}

// includeDeleted honors ?include_deleted only for moderators.
func (s *Server) includeDeleted(c *fiber.Ctx) bool {
	viewer := middleware.Viewer(c)
	if viewer == nil || !queryBool(c, "include_deleted") {
		return false
	}
	ok, err := s.userService.IsModerator(c.UserContext(), *viewer)
	return err == nil && ok
}

// GetTeamPosts godoc
// @Summary Team board
// @Description Posts of a team board. Sort tokens: created_at, updated_at, id, postlike, postcomment; prefix with - for descending
// @Tags posts
// @Produce json
// @Param id path int true "Team ID"
// @Param sort query string false "Comma separated sort tokens"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (max 100)"
// @Param include_deleted query bool false "Moderators only"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.ErrorResponse
// @Router /teams/{id}/posts [get]
func (s *Server) GetTeamPosts(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page, err := parsePage(c)
	if err != nil {
		return nil
	}
	posts, total, err := s.postService.ListTeamPosts(c.UserContext(), service.ListPostsInput{
		TeamID:         id,
		Sort:           c.Query("sort"),
		Viewer:         middleware.Viewer(c),
		IncludeDeleted: s.includeDeleted(c),
		Page:           page,
	})
	if err != nil {
		return fail(c, err)
	}
	return renderPage(c, page, total, posts, postListView)
}

// CreatePost godoc
// @Summary Create post
// @Tags posts
// @Accept json
// @Produce json
// @Param id path int true "Team ID"
// @Param request body CreatePostRequest true "Post"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /teams/{id}/posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	teamID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:  currentUser(c),
		TeamID:  teamID,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return fail(c, err)
	}
	return renderOne(c, fiber.StatusCreated, post, postDetailView)
}
