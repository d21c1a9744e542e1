package service

import (
	"context"

	"courtside/internal/cache"
	"courtside/internal/models"
	"courtside/internal/repository"

	"golang.org/x/text/language"
)

type StatusService struct {
	lookup repository.LookupRepository
}

func NewStatusService(lookup repository.LookupRepository) *StatusService {
	return &StatusService{lookup: lookup}
}

func (s *StatusService) statuses(ctx context.Context) ([]models.PostStatus, error) {
	var statuses []models.PostStatus
	err := cache.Aside(ctx, "post_statuses", cache.PostStatusesKey, &statuses, cache.PostStatusesTTL, func() error {
		var err error
		statuses, err = s.lookup.PostStatuses(ctx)
		return err
	})
	return statuses, err
}

// PostStatuses returns every post status. When acceptLanguage is non-empty each
// status keeps only the display name best matching it; otherwise all are kept.
func (s *StatusService) PostStatuses(ctx context.Context, acceptLanguage string) ([]models.PostStatus, error) {
	statuses, err := s.statuses(ctx)
	if err != nil {
		return nil, err
	}
	if acceptLanguage == "" {
		return statuses, nil
	}
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return statuses, nil
	}

	for i := range statuses {
		statuses[i].DisplayNames = bestDisplayName(statuses[i].DisplayNames, prefs)
	}
	return statuses, nil
}

func bestDisplayName(names []models.PostStatusDisplayName, prefs []language.Tag) []models.PostStatusDisplayName {
	if len(names) <= 1 {
		return names
	}
	tags := make([]language.Tag, 0, len(names))
	index := make([]int, 0, len(names))
	for i, n := range names {
		if n.Language == nil {
			continue
		}
		tag, err := language.Parse(n.Language.Code)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		index = append(index, i)
	}
	if len(tags) == 0 {
		return names[:1]
	}
	_, i, _ := language.NewMatcher(tags).Match(prefs...)
	return []models.PostStatusDisplayName{names[index[i]]}
}
