package service

import (
	"context"
	"errors"
	"fmt"

	"cineverse/internal/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type WatchlistStore interface {
	Add(ctx context.Context, userID, contentID string) error
	Remove(ctx context.Context, userID, contentID string) error
	ListByUser(ctx context.Context, userID string) ([]models.WatchlistEntry, error)
}

type WatchlistService struct {
	entries WatchlistStore
	content ContentStore
}

func NewWatchlistService(w WatchlistStore, c ContentStore) *WatchlistService {
	return &WatchlistService{entries: w, content: c}
}

// List returns the saved items, most recently added first. Entries whose
// content was deleted are skipped.
func (s *WatchlistService) List(ctx context.Context, uid string) ([]models.ContentItem, error) {
	entries, err := s.entries.ListByUser(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ContentID
	}
	found, err := s.content.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load watchlist content: %w", err)
	}

	byID := make(map[string]models.ContentItem, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}
	out := make([]models.ContentItem, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *WatchlistService) Add(ctx context.Context, uid, contentID string) error {
	c, err := s.content.GetByID(ctx, contentID)
	if err != nil {
		return fmt.Errorf("get content %s: %w", contentID, err)
	}
	if c == nil {
		return ErrContentNotFound
	}
	return s.entries.Add(ctx, uid, contentID)
}

func (s *WatchlistService) Remove(ctx context.Context, uid, contentID string) error {
	err := s.entries.Remove(ctx, uid, contentID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotInWatchlist
	}
	return err
}
