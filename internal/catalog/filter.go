// Package catalog derives the views the client renders from an in-memory
// snapshot of the content collection. Nothing here mutates its input:
// every function returns freshly allocated slices and leaves the snapshot
// untouched.
package catalog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"cineverse/internal/models"
)

// All disables the genre or year predicate.
const All = "all"

type SortKey string

const (
	SortRatingDesc SortKey = "rating-desc"
	SortRatingAsc  SortKey = "rating-asc"
	SortYearDesc   SortKey = "year-desc"
	SortYearAsc    SortKey = "year-asc"
)

func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case "":
		return SortRatingDesc, nil
	case SortRatingDesc, SortRatingAsc, SortYearDesc, SortYearAsc:
		return k, nil
	default:
		return "", fmt.Errorf("invalid sort key %q", s)
	}
}

// Criteria is an immutable snapshot of the browse controls.
type Criteria struct {
	ContentType models.ContentType `json:"contentType,omitempty"`
	SearchText  string             `json:"searchText,omitempty"`
	Genre       string             `json:"genre,omitempty"`
	Year        string             `json:"year,omitempty"`
	SortKey     SortKey            `json:"sortKey,omitempty"`
}

// Normalize fills the "all" defaults and rejects unknown sort keys or types.
func (c Criteria) Normalize() (Criteria, error) {
	if c.Genre == "" {
		c.Genre = All
	}
	if c.Year == "" {
		c.Year = All
	}
	key, err := ParseSortKey(string(c.SortKey))
	if err != nil {
		return c, err
	}
	c.SortKey = key
	if c.ContentType != "" && !c.ContentType.Valid() {
		return c, fmt.Errorf("invalid content type %q", c.ContentType)
	}
	return c, nil
}

// Result is the ordered subset plus the filter options of the full section.
type Result struct {
	Items  []models.ContentItem `json:"items"`
	Genres []string             `json:"genres"`
	Years  []string             `json:"years"`
}

// Derive applies type scoping, search, genre and year predicates, then a
// stable sort. Genres and Years describe the scoped catalog, not the
// filtered result, so the option lists do not shrink while filtering.
func Derive(items []models.ContentItem, c Criteria) Result {
	scoped := make([]models.ContentItem, 0, len(items))
	for _, it := range items {
		if c.ContentType != "" && it.Type != c.ContentType {
			continue
		}
		scoped = append(scoped, it)
	}

	res := Result{
		Genres: distinctGenres(scoped),
		Years:  distinctYears(scoped),
		Items:  make([]models.ContentItem, 0, len(scoped)),
	}

	search := strings.ToLower(c.SearchText)
	for _, it := range scoped {
		if search != "" && !strings.Contains(strings.ToLower(it.Title), search) {
			continue
		}
		if c.Genre != "" && c.Genre != All && !contains(it.Genre, c.Genre) {
			continue
		}
		if c.Year != "" && c.Year != All && strconv.Itoa(it.Year) != c.Year {
			continue
		}
		res.Items = append(res.Items, it)
	}

	sortItems(res.Items, c.SortKey)
	return res
}

// sortItems sorts in place; callers pass a slice they own.
func sortItems(items []models.ContentItem, key SortKey) {
	if key == "" {
		key = SortRatingDesc
	}
	var less func(a, b *models.ContentItem) bool
	switch key {
	case SortRatingDesc:
		less = func(a, b *models.ContentItem) bool { return a.RatingOrZero() > b.RatingOrZero() }
	case SortRatingAsc:
		less = func(a, b *models.ContentItem) bool { return a.RatingOrZero() < b.RatingOrZero() }
	case SortYearDesc:
		less = func(a, b *models.ContentItem) bool { return a.Year > b.Year }
	case SortYearAsc:
		less = func(a, b *models.ContentItem) bool { return a.Year < b.Year }
	default:
		return
	}
	sort.SliceStable(items, func(i, j int) bool { return less(&items[i], &items[j]) })
}

func distinctGenres(items []models.ContentItem) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, it := range items {
		for _, g := range it.Genre {
			if _, ok := seen[g]; ok {
				continue
			}
			seen[g] = struct{}{}
			out = append(out, g)
		}
	}
	sort.Strings(out)
	return out
}

func distinctYears(items []models.ContentItem) []string {
	seen := make(map[int]struct{})
	years := []int{}
	for _, it := range items {
		if _, ok := seen[it.Year]; ok {
			continue
		}
		seen[it.Year] = struct{}{}
		years = append(years, it.Year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	out := make([]string, len(years))
	for i, y := range years {
		out[i] = strconv.Itoa(y)
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
