package service

import (
	"context"
	"fmt"

	"cineverse/internal/ai"
	"cineverse/internal/models"
	"cineverse/internal/validation"
)

// historyWindow bounds how much viewing history goes into the prompt.
const historyWindow = 20

type HistoryStore interface {
	Record(ctx context.Context, userID, contentID string, episodeIndex int) error
	Recent(ctx context.Context, userID string, limit int) ([]models.ViewingEvent, error)
}

// Flows is the AI surface the service needs.
type Flows interface {
	FetchMetadata(ctx context.Context, req models.MetadataRequest) (*models.MetadataResult, error)
	RecommendFromHistory(ctx context.Context, req models.HistoryRecommendationRequest) (*models.HistoryRecommendationResult, error)
}

type RecommendService struct {
	history HistoryStore
	content ContentStore
	flows   Flows
}

func NewRecommendService(h HistoryStore, c ContentStore, f Flows) *RecommendService {
	return &RecommendService{history: h, content: c, flows: f}
}

type ViewInput struct {
	ContentID    string `json:"contentId" validate:"required"`
	EpisodeIndex int    `json:"episodeIndex" validate:"min=0"`
}

// RecordView stores that uid opened the content. The episode index is
// clamped the same way the watch page clamps it.
func (s *RecommendService) RecordView(ctx context.Context, uid string, in ViewInput) error {
	if err := validation.Struct(&in); err != nil {
		return err
	}
	c, err := s.content.GetByID(ctx, in.ContentID)
	if err != nil {
		return fmt.Errorf("get content %s: %w", in.ContentID, err)
	}
	if c == nil {
		return ErrContentNotFound
	}

	idx := 0
	if c.MultiPart() && in.EpisodeIndex < len(c.Episodes) {
		idx = in.EpisodeIndex
	}
	return s.history.Record(ctx, uid, c.ID, idx)
}

// ForUser asks the model for items similar to what uid watched recently.
// An empty history yields an empty list without calling the model.
func (s *RecommendService) ForUser(ctx context.Context, uid string) ([]models.ContentItem, error) {
	events, err := s.history.Recent(ctx, uid, historyWindow)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if len(events) == 0 {
		return []models.ContentItem{}, nil
	}

	all, err := s.content.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}

	watched := make([]string, len(events))
	for i, ev := range events {
		watched[i] = ev.ContentID
	}

	res, err := s.flows.RecommendFromHistory(ctx, models.HistoryRecommendationRequest{
		ViewingHistory: watched,
		ContentTags:    ai.TagIndex(all),
	})
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.ContentItem, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}
	out := make([]models.ContentItem, 0, len(res.Recommendations))
	for _, id := range res.Recommendations {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// Metadata fills in duration, tags and description for the admin form.
func (s *RecommendService) Metadata(ctx context.Context, req models.MetadataRequest) (*models.MetadataResult, error) {
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}
	return s.flows.FetchMetadata(ctx, req)
}
