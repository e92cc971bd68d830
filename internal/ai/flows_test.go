package ai

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"cineverse/internal/models"
)

type fakeModel struct {
	answer string
	err    error
	calls  int
	prompt string
}

func (m *fakeModel) Generate(ctx context.Context, prompt string, opts *GenerationOptions) (string, error) {
	m.calls++
	m.prompt = prompt
	return m.answer, m.err
}

func (m *fakeModel) Name() string { return "fake" }

func TestDecodeAnswer(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr bool
	}{
		{"plain", `{"description":"a"}`, "a", false},
		{"json fence", "```json\n{\"description\":\"b\"}\n```", "b", false},
		{"bare fence", "```\n{\"description\":\"c\"}\n```", "c", false},
		{"surrounding space", "  \n{\"description\":\"d\"}\n ", "d", false},
		{"empty", "   ", "", true},
		{"not json", "I think it is about ninjas", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out models.MetadataResult
			err := decodeAnswer(tt.text, &out)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if out.Description != tt.want {
				t.Errorf("description = %q, want %q", out.Description, tt.want)
			}
		})
	}
}

func TestFetchMetadata(t *testing.T) {
	m := &fakeModel{answer: "```json\n{\"duration\":\"1h 30m\",\"tags\":[\"ninja\",\" Ninja \",\"\",\"friendship\"],\"description\":\" A boy ninja. \"}\n```"}
	f := NewFlows(m)

	got, err := f.FetchMetadata(context.Background(), models.MetadataRequest{
		VideoURL: "https://video.example.com/naruto.mp4",
		Title:    "Naruto",
	})
	if err != nil {
		t.Fatalf("FetchMetadata: %v", err)
	}
	want := &models.MetadataResult{
		Duration:    "1h 30m",
		Tags:        []string{"ninja", "friendship"},
		Description: "A boy ninja.",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestFetchMetadata_Unavailable(t *testing.T) {
	tests := []struct {
		name  string
		flows *Flows
	}{
		{"no model", NewFlows(nil)},
		{"model error", NewFlows(&fakeModel{err: errors.New("timeout")})},
		{"bad json", NewFlows(&fakeModel{answer: "sorry"})},
		{"empty object", NewFlows(&fakeModel{answer: "{}"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.flows.FetchMetadata(context.Background(), models.MetadataRequest{VideoURL: "https://x.example.com", Title: "X"})
			if !errors.Is(err, ErrMetadataUnavailable) {
				t.Errorf("err = %v, want ErrMetadataUnavailable", err)
			}
		})
	}
}

func TestRecommendFromHistory_DropsUnknownWatchedAndDuplicates(t *testing.T) {
	m := &fakeModel{answer: `{"recommendations":["b","ghost","a","b","c"]}`}
	f := NewFlows(m)

	got, err := f.RecommendFromHistory(context.Background(), models.HistoryRecommendationRequest{
		ViewingHistory: []string{"a"},
		ContentTags: map[string][]string{
			"a": {"ninja"},
			"b": {"ninja", "action"},
			"c": {"romance"},
		},
	})
	if err != nil {
		t.Fatalf("RecommendFromHistory: %v", err)
	}
	if want := []string{"b", "c"}; !reflect.DeepEqual(got.Recommendations, want) {
		t.Errorf("recommendations = %v, want %v", got.Recommendations, want)
	}
	if m.calls != 1 {
		t.Errorf("model called %d times, want 1 (no retries)", m.calls)
	}
}

func TestRecommendFromHistory_Unavailable(t *testing.T) {
	f := NewFlows(&fakeModel{err: ErrRejected})
	_, err := f.RecommendFromHistory(context.Background(), models.HistoryRecommendationRequest{})
	if !errors.Is(err, ErrRecommendationsUnavailable) {
		t.Errorf("err = %v", err)
	}
}

func TestTagIndex(t *testing.T) {
	items := []models.ContentItem{
		{ID: "1", Genre: []string{"Action"}, Tags: []string{"ninja", "action"}},
		{ID: "2"},
	}
	got := TagIndex(items)
	if want := []string{"action", "ninja"}; !reflect.DeepEqual(got["1"], want) {
		t.Errorf("tags[1] = %v, want %v", got["1"], want)
	}
	if got["2"] == nil || len(got["2"]) != 0 {
		t.Errorf("tags[2] = %#v, want empty slice", got["2"])
	}
}
