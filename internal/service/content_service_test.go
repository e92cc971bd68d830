package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"cineverse/internal/catalog"
	"cineverse/internal/models"
	"cineverse/internal/validation"
)

func ids(items []models.ContentItem) []string {
	out := make([]string, len(items))
	for i, c := range items {
		out[i] = c.ID
	}
	return out
}

func TestContentService_Browse(t *testing.T) {
	s := NewContentService(&fakeContent{items: sampleCatalog()})

	res, err := s.Browse(context.Background(), catalog.Criteria{ContentType: models.ContentTypeAnime})
	if err != nil {
		t.Fatalf("Browse: %v", err)
	}
	if want := []string{"a1", "a2"}; !reflect.DeepEqual(ids(res.Items), want) {
		t.Errorf("items = %v, want %v", ids(res.Items), want)
	}
	if want := []string{"2004", "2002"}; !reflect.DeepEqual(res.Years, want) {
		t.Errorf("years = %v, want %v", res.Years, want)
	}

	_, err = s.Browse(context.Background(), catalog.Criteria{SortKey: "title-asc"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bad sort err = %v, want ErrInvalidInput", err)
	}
}

func TestContentService_Home(t *testing.T) {
	s := NewContentService(&fakeContent{items: sampleCatalog()})
	h, err := s.Home(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if h.Hero == nil || h.Hero.ID != "m1" {
		t.Errorf("hero = %v, want m1", h.Hero)
	}
	if want := []string{"m1", "a1", "m2", "a2"}; !reflect.DeepEqual(ids(h.Trending), want) {
		t.Errorf("trending = %v, want %v", ids(h.Trending), want)
	}
}

func TestContentService_Watch(t *testing.T) {
	s := NewContentService(&fakeContent{items: sampleCatalog()})

	tests := []struct {
		name      string
		id        string
		episode   string
		wantIndex int
		wantVideo string
	}{
		{"second episode", "a1", "1", 1, "https://v.example.com/a1e2.mp4"},
		{"no param", "a1", "", 0, "https://v.example.com/a1e1.mp4"},
		{"out of range", "a1", "7", 0, "https://v.example.com/a1e1.mp4"},
		{"negative", "a1", "-1", 0, "https://v.example.com/a1e1.mp4"},
		{"garbage", "a1", "two", 0, "https://v.example.com/a1e1.mp4"},
		{"single part ignores episode", "m1", "3", 0, "https://v.example.com/m1.mp4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := s.Watch(context.Background(), tt.id, tt.episode)
			if err != nil {
				t.Fatalf("Watch: %v", err)
			}
			if v.EpisodeIndex != tt.wantIndex || v.VideoURL != tt.wantVideo {
				t.Errorf("got index %d video %q, want %d %q", v.EpisodeIndex, v.VideoURL, tt.wantIndex, tt.wantVideo)
			}
			for _, r := range v.Recommended {
				if r.ID == tt.id || r.Type != v.Content.Type {
					t.Errorf("recommended %s (%s) for %s", r.ID, r.Type, tt.id)
				}
			}
		})
	}

	if _, err := s.Watch(context.Background(), "missing", ""); !errors.Is(err, ErrContentNotFound) {
		t.Errorf("missing err = %v", err)
	}
}

func validContentForm() models.ContentForm {
	return models.ContentForm{
		Title:        "  Spirited Away ",
		Description:  "A girl wanders into a world of spirits.",
		Type:         models.ContentTypeMovie,
		Year:         2001,
		Rating:       ptr(8.6),
		Genre:        "Fantasy, , Animation",
		Tags:         "ghibli",
		PosterURL:    "https://img.example.com/p.jpg",
		ThumbnailURL: "https://img.example.com/t.jpg",
		VideoURL:     "https://v.example.com/sa.mp4",
		Episodes:     []models.Episode{{Title: "x"}},
	}
}

func TestContentService_Create(t *testing.T) {
	store := &fakeContent{}
	s := NewContentService(store)

	c, err := s.Create(context.Background(), validContentForm())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.ID == "" || c.Title != "Spirited Away" {
		t.Errorf("created %+v", c)
	}
	if want := []string{"Fantasy", "Animation"}; !reflect.DeepEqual(c.Genre, want) {
		t.Errorf("genre = %v, want %v", c.Genre, want)
	}
	if c.Episodes != nil {
		t.Errorf("movie kept episodes: %v", c.Episodes)
	}
}

func TestContentService_CreateInvalidWritesNothing(t *testing.T) {
	store := &fakeContent{}
	s := NewContentService(store)

	f := validContentForm()
	f.Title = "A"
	f.VideoURL = "not a url"

	_, err := s.Create(context.Background(), f)
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *validation.Error", err)
	}
	fields := verr.FieldMap()
	for _, k := range []string{"title", "videoUrl"} {
		if _, ok := fields[k]; !ok {
			t.Errorf("missing field error for %s: %v", k, fields)
		}
	}
	if store.inserts != 0 {
		t.Errorf("inserted %d items on invalid form", store.inserts)
	}
}

func TestContentService_UpdateAndDelete(t *testing.T) {
	store := &fakeContent{items: sampleCatalog()}
	s := NewContentService(store)

	f, err := s.EditForm(context.Background(), "m1")
	if err != nil {
		t.Fatal(err)
	}
	f.PosterURL = "https://img.example.com/p.jpg"
	f.ThumbnailURL = "https://img.example.com/t.jpg"
	f.Description = "Dreams within dreams within dreams."
	f.Title = "Inception (Remastered)"

	c, err := s.Update(context.Background(), "m1", *f)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if c.ID != "m1" || c.Title != "Inception (Remastered)" {
		t.Errorf("updated %+v", c)
	}

	if _, err := s.Update(context.Background(), "nope", *f); !errors.Is(err, ErrContentNotFound) {
		t.Errorf("update missing err = %v", err)
	}
	if err := s.Delete(context.Background(), "m1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(context.Background(), "m1"); !errors.Is(err, ErrContentNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestEpisodeIndex(t *testing.T) {
	tests := []struct {
		raw  string
		n    int
		want int
	}{
		{"0", 3, 0},
		{"2", 3, 2},
		{"3", 3, 0},
		{"", 3, 0},
		{"1", 0, 0},
	}
	for _, tt := range tests {
		if got := EpisodeIndex(tt.raw, tt.n); got != tt.want {
			t.Errorf("EpisodeIndex(%q, %d) = %d, want %d", tt.raw, tt.n, got, tt.want)
		}
	}
}
