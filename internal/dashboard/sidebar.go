package dashboard

import (
	"context"
	"log/slog"
	"sort"
)

// Sidebar is the filter sidebar model: the distinct store names and store
// categories available to filter on, plus the active selection.
type Sidebar struct {
	StoreNames      []string
	StoreCategories []string
	Active          Filters
}

type sidebarPayload struct {
	StoreNames      []string `json:"store_names"`
	StoreCategories []string `json:"store_categories"`
}

// LoadSidebar fetches the filter options through the versioned cache. A
// failed fetch degrades to an empty option list so the dashboard still
// renders; the active filters are echoed back regardless.
func (s *Service) LoadSidebar(ctx context.Context, userID string, active Filters) Sidebar {
	var payload sidebarPayload
	key, err := s.cache.BuildKey(ctx, keySidebar(userID))
	if err == nil {
		err = s.cache.FetchJSON(ctx, key, &payload, func(ctx context.Context) (interface{}, error) {
			return s.fetchSidebar(ctx)
		})
	}
	if err != nil {
		s.logger.Warn("sidebar options fetch failed", slog.String("error", err.Error()))
		return Sidebar{Active: active}
	}
	return Sidebar{
		StoreNames:      payload.StoreNames,
		StoreCategories: payload.StoreCategories,
		Active:          active,
	}
}

func (s *Service) fetchSidebar(ctx context.Context) (sidebarPayload, error) {
	names, err := s.api.StoreNames(ctx)
	if err != nil {
		return sidebarPayload{}, err
	}
	categories, err := s.api.StoreCategories(ctx)
	if err != nil {
		return sidebarPayload{}, err
	}
	payload := sidebarPayload{
		StoreNames:      names.StoreNames,
		StoreCategories: categories.StoreCategories,
	}
	sort.Strings(payload.StoreNames)
	sort.Strings(payload.StoreCategories)
	return payload, nil
}
