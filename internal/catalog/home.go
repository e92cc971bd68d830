package catalog

import (
	"slices"

	"cineverse/internal/models"
)

const HomeRowLimit = 10

// Home is the landing view: a rating-ordered row, one row per type, and the
// hero item featured on top.
type Home struct {
	Trending []models.ContentItem `json:"trending"`
	Movies   []models.ContentItem `json:"movies"`
	Anime    []models.ContentItem `json:"anime"`
	Hero     *models.ContentItem  `json:"hero"`
}

func Aggregate(all []models.ContentItem) Home {
	sorted := make([]models.ContentItem, len(all))
	copy(sorted, all)
	sortItems(sorted, SortRatingDesc)

	h := Home{
		Trending: slices.Clip(sorted[:min(HomeRowLimit, len(sorted))]),
		Movies:   ByType(all, models.ContentTypeMovie, HomeRowLimit),
		Anime:    ByType(all, models.ContentTypeAnime, HomeRowLimit),
	}
	if len(sorted) > 0 {
		hero := sorted[0]
		h.Hero = &hero
	}
	return h
}

// ByType keeps input order; it does not re-sort.
func ByType(all []models.ContentItem, t models.ContentType, limit int) []models.ContentItem {
	out := []models.ContentItem{}
	for _, it := range all {
		if limit > 0 && len(out) == limit {
			break
		}
		if it.Type == t {
			out = append(out, it)
		}
	}
	return out
}
