package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"cineverse/internal/models"
	"cineverse/internal/repository"

	"go.mongodb.org/mongo-driver/mongo"
)

type fakeContent struct {
	mu      sync.Mutex
	items   []models.ContentItem
	nextID  int
	inserts int
}

func (f *fakeContent) List(ctx context.Context, filter *repository.FieldFilter) ([]models.ContentItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.ContentItem{}
	for _, c := range f.items {
		if filter != nil && filter.Field == "type" && string(c.Type) != filter.Value {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeContent) GetByID(ctx context.Context, id string) (*models.ContentItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.items {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeContent) GetMany(ctx context.Context, ids []string) ([]models.ContentItem, error) {
	out := []models.ContentItem{}
	for _, id := range ids {
		c, _ := f.GetByID(ctx, id)
		if c != nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeContent) Insert(ctx context.Context, c *models.ContentItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.inserts++
	if c.ID == "" {
		c.ID = "new-" + strconv.Itoa(f.nextID)
	}
	f.items = append(f.items, *c)
	return nil
}

func (f *fakeContent) Replace(ctx context.Context, c *models.ContentItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == c.ID {
			f.items[i] = *c
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (f *fakeContent) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (f *fakeContent) Subscribe(ctx context.Context, filter *repository.FieldFilter) (*repository.Subscription, error) {
	return nil, errors.New("not supported")
}

type fakeUsers struct {
	mu    sync.Mutex
	byID  map[string]*models.UserProfile
	syncs int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[string]*models.UserProfile{}}
}

func (f *fakeUsers) FindByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) FindByID(ctx context.Context, id string) (*models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeUsers) Insert(ctx context.Context, u *models.UserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

// SyncProfile mirrors the $set / $setOnInsert upsert of the Mongo repository.
func (f *fakeUsers) SyncProfile(ctx context.Context, p models.ProfileSync) (*models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncs++
	u, ok := f.byID[p.ID]
	if !ok {
		for _, other := range f.byID {
			if other.Email == p.Email {
				return nil, mongo.CommandError{Code: 11000, Message: "E11000 duplicate key error collection: users index: email_1"}
			}
		}
		u = &models.UserProfile{ID: p.ID, Role: models.RoleUser, CreatedAt: time.Now()}
		f.byID[p.ID] = u
	}
	u.DisplayName = p.DisplayName
	u.Email = p.Email
	u.PhotoURL = p.PhotoURL
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) SetRole(ctx context.Context, id, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	u.Role = role
	return nil
}

type fakeRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func newFakeRevoker() *fakeRevoker {
	return &fakeRevoker{revoked: map[string]time.Duration{}}
}

func (f *fakeRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[jti] = ttl
	return nil
}

func (f *fakeRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.revoked[jti]
	return ok, nil
}

type fakeWatchlist struct {
	entries []models.WatchlistEntry
}

func (f *fakeWatchlist) Add(ctx context.Context, userID, contentID string) error {
	for _, e := range f.entries {
		if e.UserID == userID && e.ContentID == contentID {
			return nil
		}
	}
	f.entries = append(f.entries, models.WatchlistEntry{
		UserID:    userID,
		ContentID: contentID,
		AddedAt:   time.Now().Add(time.Duration(len(f.entries)) * time.Second),
	})
	return nil
}

func (f *fakeWatchlist) Remove(ctx context.Context, userID, contentID string) error {
	for i, e := range f.entries {
		if e.UserID == userID && e.ContentID == contentID {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (f *fakeWatchlist) ListByUser(ctx context.Context, userID string) ([]models.WatchlistEntry, error) {
	out := []models.WatchlistEntry{}
	for _, e := range f.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AddedAt.After(out[j].AddedAt) })
	return out, nil
}

type fakeHistory struct {
	events []models.ViewingEvent
}

func (f *fakeHistory) Record(ctx context.Context, userID, contentID string, episodeIndex int) error {
	f.events = append([]models.ViewingEvent{{
		UserID:       userID,
		ContentID:    contentID,
		EpisodeIndex: episodeIndex,
		ViewedAt:     time.Now(),
	}}, f.events...)
	return nil
}

func (f *fakeHistory) Recent(ctx context.Context, userID string, limit int) ([]models.ViewingEvent, error) {
	out := []models.ViewingEvent{}
	for _, ev := range f.events {
		if ev.UserID == userID && len(out) < limit {
			out = append(out, ev)
		}
	}
	return out, nil
}

type fakeFlows struct {
	recommend []string
	err       error
	lastReq   models.HistoryRecommendationRequest
	calls     int
}

func (f *fakeFlows) FetchMetadata(ctx context.Context, req models.MetadataRequest) (*models.MetadataResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.MetadataResult{Duration: "24m", Tags: []string{"ninja"}, Description: "A ninja story."}, nil
}

func (f *fakeFlows) RecommendFromHistory(ctx context.Context, req models.HistoryRecommendationRequest) (*models.HistoryRecommendationResult, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.HistoryRecommendationResult{Recommendations: f.recommend}, nil
}

func ptr(v float64) *float64 { return &v }

func sampleCatalog() []models.ContentItem {
	return []models.ContentItem{
		{ID: "m1", Title: "Inception", Type: models.ContentTypeMovie, Genre: []string{"Sci-Fi"}, Year: 2010, Rating: ptr(8.8), VideoURL: "https://v.example.com/m1.mp4"},
		{ID: "a1", Title: "Naruto", Type: models.ContentTypeAnime, Genre: []string{"Action"}, Tags: []string{"ninja"}, Year: 2002, Rating: ptr(8.4), VideoURL: "https://v.example.com/a1.mp4",
			Episodes: []models.Episode{
				{SeasonNumber: 1, EpisodeNumber: 1, EpisodeCode: "S1E1", Title: "Enter", VideoURL: "https://v.example.com/a1e1.mp4"},
				{SeasonNumber: 1, EpisodeNumber: 2, EpisodeCode: "S1E2", Title: "My Name", VideoURL: "https://v.example.com/a1e2.mp4"},
			}},
		{ID: "a2", Title: "Bleach", Type: models.ContentTypeAnime, Genre: []string{"Action"}, Year: 2004, VideoURL: "https://v.example.com/a2.mp4"},
		{ID: "m2", Title: "Up", Type: models.ContentTypeMovie, Genre: []string{"Animation"}, Year: 2009, Rating: ptr(8.3), VideoURL: "https://v.example.com/m2.mp4"},
	}
}
