package models

import (
	"reflect"
	"testing"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"genres", "Action, Fantasy", []string{"Action", "Fantasy"}},
		{"tags with spaces", "demons, sword fight", []string{"demons", "sword fight"}},
		{"empty", "", []string{}},
		{"stray commas", " ,Drama,, ", []string{"Drama"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitList(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitList(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestContentForm_RoundTrip(t *testing.T) {
	rating := 8.5
	form := ContentForm{
		Title:        "Demon Slayer",
		Description:  "A boy becomes a demon slayer.",
		Type:         ContentTypeAnime,
		Year:         2019,
		Rating:       &rating,
		Genre:        "Action, Fantasy",
		Tags:         "demons, sword fight",
		PosterURL:    "https://img.test/p.jpg",
		ThumbnailURL: "https://img.test/t.jpg",
		VideoURL:     "https://video.test/v.mp4",
		Episodes: []Episode{
			{SeasonNumber: 1, EpisodeNumber: 1, EpisodeCode: "1x1", Title: "Cruelty"},
		},
	}

	item := form.ToContent("abc")
	if item.ID != "abc" {
		t.Errorf("ID = %q", item.ID)
	}
	if !reflect.DeepEqual(item.Genre, []string{"Action", "Fantasy"}) {
		t.Errorf("Genre = %#v", item.Genre)
	}
	if !reflect.DeepEqual(item.Tags, []string{"demons", "sword fight"}) {
		t.Errorf("Tags = %#v", item.Tags)
	}
	if len(item.Episodes) != 1 {
		t.Fatalf("Episodes = %d, want 1", len(item.Episodes))
	}

	// the stored item must not alias the form
	*form.Rating = 1
	form.Episodes[0].Title = "changed"
	if item.RatingOrZero() != 8.5 || item.Episodes[0].Title != "Cruelty" {
		t.Error("ToContent result aliases form data")
	}

	back := FormFromContent(item)
	if back.Genre != "Action, Fantasy" || back.Tags != "demons, sword fight" {
		t.Errorf("FormFromContent = %q / %q", back.Genre, back.Tags)
	}
}

func TestContentForm_MovieDropsEpisodes(t *testing.T) {
	form := ContentForm{
		Title:    "  Heat  ",
		Type:     ContentTypeMovie,
		Episodes: []Episode{{SeasonNumber: 1, EpisodeNumber: 1}},
	}
	form.Normalize()
	if form.Episodes != nil {
		t.Error("movie form should not keep episodes")
	}
	if form.Title != "Heat" {
		t.Errorf("Title = %q, want trimmed", form.Title)
	}
	if item := form.ToContent(""); item.MultiPart() {
		t.Error("movie should not be multi-part")
	}
}
