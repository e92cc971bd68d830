package models

type ContentType string

const (
	ContentTypeMovie ContentType = "movie"
	ContentTypeAnime ContentType = "anime"
)

func (t ContentType) Valid() bool {
	return t == ContentTypeMovie || t == ContentTypeAnime
}

type Episode struct {
	SeasonNumber  int    `json:"seasonNumber" bson:"seasonNumber" validate:"min=1"`
	EpisodeNumber int    `json:"episodeNumber" bson:"episodeNumber" validate:"min=1"`
	EpisodeCode   string `json:"episodeCode" bson:"episodeCode" validate:"required"`
	Title         string `json:"title" bson:"title" validate:"min=2"`
	VideoURL      string `json:"videoUrl" bson:"videoUrl" validate:"required,url"`
	ThumbnailURL  string `json:"thumbnailUrl" bson:"thumbnailUrl" validate:"required,url"`
}

// ContentItem is one catalog entry of the "content" collection.
type ContentItem struct {
	ID           string      `json:"id" bson:"_id,omitempty"`
	Title        string      `json:"title" bson:"title"`
	Description  string      `json:"description" bson:"description"`
	Type         ContentType `json:"type" bson:"type"`
	Genre        []string    `json:"genre" bson:"genre"`
	Tags         []string    `json:"tags" bson:"tags"`
	Year         int         `json:"year" bson:"year"`
	Rating       *float64    `json:"rating,omitempty" bson:"rating,omitempty"`
	Duration     string      `json:"duration,omitempty" bson:"duration,omitempty"`
	PosterURL    string      `json:"posterUrl" bson:"posterUrl"`
	ThumbnailURL string      `json:"thumbnailUrl" bson:"thumbnailUrl"`
	HeroURL      string      `json:"heroUrl,omitempty" bson:"heroUrl,omitempty"`
	VideoURL     string      `json:"videoUrl" bson:"videoUrl"`
	Episodes     []Episode   `json:"episodes,omitempty" bson:"episodes,omitempty"`
}

// RatingOrZero treats a missing rating as 0.
func (c *ContentItem) RatingOrZero() float64 {
	if c.Rating == nil {
		return 0
	}
	return *c.Rating
}

// MultiPart reports whether the item is played episode by episode;
// VideoURL is then only a fallback.
func (c *ContentItem) MultiPart() bool {
	return len(c.Episodes) > 0
}
