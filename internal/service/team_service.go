package service

import (
	"context"
	"time"

	"courtside/internal/cache"
	"courtside/internal/models"
	"courtside/internal/repository"
)

// MaxLastGames bounds the last-games window to one regular season.
const MaxLastGames = 82

type TeamService struct {
	teams repository.TeamRepository
	games repository.GameRepository
}

func NewTeamService(teams repository.TeamRepository, games repository.GameRepository) *TeamService {
	return &TeamService{teams: teams, games: games}
}

// ListTeams returns every team with its localized names.
func (s *TeamService) ListTeams(ctx context.Context) ([]models.Team, error) {
	var teams []models.Team
	err := cache.Aside(ctx, "teams", cache.TeamsKey, &teams, cache.TeamsTTL, func() error {
		var err error
		teams, err = s.teams.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return teams, nil
}

func (s *TeamService) GetTeam(ctx context.Context, teamID uint, viewer *uint) (*models.Team, error) {
	return s.teams.GetByID(ctx, teamID, viewer)
}

func (s *TeamService) FavoriteTeams(ctx context.Context, userID uint) ([]models.Team, error) {
	return s.teams.Favorites(ctx, userID)
}

// ReplaceFavoriteTeams makes teamIDs the user's exact favorite set.
func (s *TeamService) ReplaceFavoriteTeams(ctx context.Context, userID uint, teamIDs []uint) ([]models.Team, error) {
	seen := make(map[uint]struct{}, len(teamIDs))
	unique := make([]uint, 0, len(teamIDs))
	for _, id := range teamIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if err := s.teams.ReplaceFavorites(ctx, userID, unique); err != nil {
		return nil, err
	}
	return s.teams.Favorites(ctx, userID)
}

// AddFavoriteTeam adds a favorite and returns the team with liked set.
func (s *TeamService) AddFavoriteTeam(ctx context.Context, userID, teamID uint) (*models.Team, error) {
	if _, err := s.teams.GetByID(ctx, teamID, nil); err != nil {
		return nil, err
	}
	if err := s.teams.AddFavorite(ctx, userID, teamID); err != nil {
		return nil, err
	}
	return s.teams.GetByID(ctx, teamID, &userID)
}

// RemoveFavoriteTeam removes a favorite and returns the team with liked set.
func (s *TeamService) RemoveFavoriteTeam(ctx context.Context, userID, teamID uint) (*models.Team, error) {
	if _, err := s.teams.GetByID(ctx, teamID, nil); err != nil {
		return nil, err
	}
	removed, err := s.teams.RemoveFavorite(ctx, userID, teamID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, models.NewValidationError("Team is not a favorite")
	}
	return s.teams.GetByID(ctx, teamID, &userID)
}

// TeamGames returns the team's games in date order, optionally only those in
// the given month (1-12; 0 means the whole schedule).
func (s *TeamService) TeamGames(ctx context.Context, teamID uint, month int) ([]models.Game, error) {
	if month < 0 || month > 12 {
		return nil, models.NewValidationError("Invalid month. Use 1-12")
	}
	if _, err := s.teams.GetByID(ctx, teamID, nil); err != nil {
		return nil, err
	}
	games, err := s.games.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if month == 0 {
		return games, nil
	}
	filtered := make([]models.Game, 0, len(games))
	for _, g := range games {
		if g.GameDateEst.Month() == time.Month(month) {
			filtered = append(filtered, g)
		}
	}
	return filtered, nil
}

// LastGames returns the last n played games, most recent first. When fewer
// than n have been played it returns the first n games of the schedule instead.
func (s *TeamService) LastGames(ctx context.Context, teamID uint, n int) ([]models.Game, error) {
	if n < 1 || n > MaxLastGames {
		return nil, models.NewValidationError("Invalid n value. n should be between 1 and 82")
	}
	if _, err := s.teams.GetByID(ctx, teamID, nil); err != nil {
		return nil, err
	}
	games, err := s.games.LastPlayed(ctx, teamID, n)
	if err != nil {
		return nil, err
	}
	if len(games) >= n {
		return games, nil
	}
	return s.games.Earliest(ctx, teamID, n)
}
