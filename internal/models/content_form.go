package models

import "strings"

// ContentForm is the admin upload/edit payload. Genre and tags travel as
// comma-separated strings and become lists in ToContent.
type ContentForm struct {
	Title        string      `json:"title" validate:"required,min=2,max=100"`
	Description  string      `json:"description" validate:"required,min=10"`
	Type         ContentType `json:"type" validate:"required,oneof=anime movie"`
	Year         int         `json:"year" validate:"min=1900,maxyear"`
	Rating       *float64    `json:"rating,omitempty" validate:"omitempty,gte=0,lte=10"`
	Duration     string      `json:"duration,omitempty"`
	Genre        string      `json:"genre"`
	Tags         string      `json:"tags"`
	PosterURL    string      `json:"posterUrl" validate:"required,url"`
	ThumbnailURL string      `json:"thumbnailUrl" validate:"required,url"`
	HeroURL      string      `json:"heroUrl,omitempty" validate:"omitempty,url"`
	VideoURL     string      `json:"videoUrl" validate:"required,url"`
	Episodes     []Episode   `json:"episodes,omitempty" validate:"omitempty,dive"`
}

// Normalize trims free text and drops episodes from movies, which are
// single-part by definition.
func (f *ContentForm) Normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.Duration = strings.TrimSpace(f.Duration)
	if f.Type != ContentTypeAnime {
		f.Episodes = nil
	}
}

// ToContent maps the form onto the persisted document shape.
func (f *ContentForm) ToContent(id string) ContentItem {
	var episodes []Episode
	if f.Type == ContentTypeAnime && len(f.Episodes) > 0 {
		episodes = make([]Episode, len(f.Episodes))
		copy(episodes, f.Episodes)
	}
	var rating *float64
	if f.Rating != nil {
		r := *f.Rating
		rating = &r
	}

	return ContentItem{
		ID:           id,
		Title:        f.Title,
		Description:  f.Description,
		Type:         f.Type,
		Genre:        SplitList(f.Genre),
		Tags:         SplitList(f.Tags),
		Year:         f.Year,
		Rating:       rating,
		Duration:     f.Duration,
		PosterURL:    f.PosterURL,
		ThumbnailURL: f.ThumbnailURL,
		HeroURL:      f.HeroURL,
		VideoURL:     f.VideoURL,
		Episodes:     episodes,
	}
}

// FormFromContent prefills the edit form from a stored item.
func FormFromContent(c ContentItem) ContentForm {
	return ContentForm{
		Title:        c.Title,
		Description:  c.Description,
		Type:         c.Type,
		Year:         c.Year,
		Rating:       c.Rating,
		Duration:     c.Duration,
		Genre:        strings.Join(c.Genre, ", "),
		Tags:         strings.Join(c.Tags, ", "),
		PosterURL:    c.PosterURL,
		ThumbnailURL: c.ThumbnailURL,
		HeroURL:      c.HeroURL,
		VideoURL:     c.VideoURL,
		Episodes:     c.Episodes,
	}
}

// SplitList turns "Action, Fantasy" into ["Action", "Fantasy"].
// Empty segments are dropped; the result is never nil.
func SplitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
