package ai

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"cineverse/internal/logger"
	"cineverse/internal/metrics"
	"cineverse/internal/models"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

var (
	ErrMetadataUnavailable        = errors.New("metadata unavailable")
	ErrRecommendationsUnavailable = errors.New("recommendations unavailable")
)

const (
	flowMetadata = "metadata"
	flowHistory  = "history"
)

// Flows runs the prompts. A Flows with a nil model reports every flow as
// unavailable.
type Flows struct {
	model Model
}

func NewFlows(m Model) *Flows {
	return &Flows{model: m}
}

func (f *Flows) Enabled() bool {
	return f != nil && f.model != nil
}

const metadataPrompt = `You are an assistant that extracts metadata for a movie or anime catalog.

Video URL: %s
Title: %s

Reply with a single JSON object and nothing else:
{"duration": "<length in hours and minutes, e.g. 1h 30m>", "tags": ["<keyword>", ...], "description": "<one short paragraph>"}`

// FetchMetadata suggests duration, tags and a description for new content.
// Any failure is reported as ErrMetadataUnavailable.
func (f *Flows) FetchMetadata(ctx context.Context, req models.MetadataRequest) (*models.MetadataResult, error) {
	if !f.Enabled() {
		return nil, ErrMetadataUnavailable
	}

	var out models.MetadataResult
	prompt := fmt.Sprintf(metadataPrompt, req.VideoURL, req.Title)
	if err := f.run(ctx, flowMetadata, prompt, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetadataUnavailable, err)
	}

	out.Duration = strings.TrimSpace(out.Duration)
	out.Description = strings.TrimSpace(out.Description)
	out.Tags = cleanTags(out.Tags)
	if out.Description == "" && out.Duration == "" && len(out.Tags) == 0 {
		return nil, fmt.Errorf("%w: empty answer", ErrMetadataUnavailable)
	}
	return &out, nil
}

const historyPrompt = `You are an expert content recommendation system for a movies and anime catalog.

Based on the user's viewing history and the tags of every catalog item, recommend similar content
the user has not watched yet.

Viewing history (content ids, most recent first): %s
Content tags (content id -> tags): %s

Reply with a single JSON object and nothing else:
{"recommendations": ["<content id>", ...]}`

// RecommendFromHistory asks the model for ids similar to the viewing history.
// Ids that are not in ContentTags, already watched or repeated are dropped.
func (f *Flows) RecommendFromHistory(ctx context.Context, req models.HistoryRecommendationRequest) (*models.HistoryRecommendationResult, error) {
	if !f.Enabled() {
		return nil, ErrRecommendationsUnavailable
	}

	history, err := json.Marshal(req.ViewingHistory)
	if err != nil {
		return nil, err
	}
	tags, err := json.Marshal(req.ContentTags)
	if err != nil {
		return nil, err
	}

	var out models.HistoryRecommendationResult
	prompt := fmt.Sprintf(historyPrompt, history, tags)
	if err := f.run(ctx, flowHistory, prompt, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecommendationsUnavailable, err)
	}

	out.Recommendations = keepKnown(out.Recommendations, req)
	return &out, nil
}

func (f *Flows) run(ctx context.Context, flow, prompt string, dest any) error {
	start := time.Now()
	text, err := f.model.Generate(ctx, prompt, DefaultGenerationOptions())
	if err == nil {
		err = decodeAnswer(text, dest)
	}

	result := "success"
	switch {
	case errors.Is(err, ErrRejected):
		result = "rejected"
	case err != nil:
		result = "failure"
	}
	metrics.RecordAICall(flow, result, time.Since(start))

	if err != nil {
		logger.Get().WithFields(logrus.Fields{
			"flow":  flow,
			"model": f.model.Name(),
		}).WithError(err).Warn("ai flow failed")
	}
	return err
}

// decodeAnswer parses a JSON answer, tolerating a ``` fence around it.
func decodeAnswer(text string, dest any) error {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			// drop the language tag line, e.g. ```json
			s = s[nl+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("empty answer")
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return fmt.Errorf("decode answer: %w", err)
	}
	return nil
}

func cleanTags(tags []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		k := strings.ToLower(t)
		if t == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, t)
	}
	return out
}

func keepKnown(ids []string, req models.HistoryRecommendationRequest) []string {
	watched := make(map[string]bool, len(req.ViewingHistory))
	for _, id := range req.ViewingHistory {
		watched[id] = true
	}

	out := []string{}
	seen := map[string]bool{}
	for _, id := range ids {
		if _, known := req.ContentTags[id]; !known || watched[id] || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// TagIndex builds the contentTags input from catalog items; genres count as tags.
func TagIndex(items []models.ContentItem) map[string][]string {
	out := make(map[string][]string, len(items))
	for _, c := range items {
		tags := append(append([]string{}, c.Tags...), c.Genre...)
		tags = cleanTags(tags)
		sort.Strings(tags)
		out[c.ID] = tags
	}
	return out
}
