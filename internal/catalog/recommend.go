package catalog

import "cineverse/internal/models"

const DefaultRecommendLimit = 10

// Recommend picks items of the focal type other than the focal item itself,
// in input order. Callers wanting a ranking sort before calling.
func Recommend(all []models.ContentItem, focalID string, focalType models.ContentType, limit int) []models.ContentItem {
	if limit <= 0 {
		limit = DefaultRecommendLimit
	}
	out := make([]models.ContentItem, 0, min(limit, len(all)))
	for _, it := range all {
		if len(out) == limit {
			break
		}
		if it.Type != focalType || it.ID == focalID {
			continue
		}
		out = append(out, it)
	}
	return out
}
