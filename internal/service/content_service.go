package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"cineverse/internal/catalog"
	"cineverse/internal/models"
	"cineverse/internal/repository"
	"cineverse/internal/validation"

	"go.mongodb.org/mongo-driver/mongo"
)

// ContentStore is the slice of the content repository the services use.
type ContentStore interface {
	List(ctx context.Context, filter *repository.FieldFilter) ([]models.ContentItem, error)
	GetByID(ctx context.Context, id string) (*models.ContentItem, error)
	GetMany(ctx context.Context, ids []string) ([]models.ContentItem, error)
	Insert(ctx context.Context, c *models.ContentItem) error
	Replace(ctx context.Context, c *models.ContentItem) error
	Delete(ctx context.Context, id string) error
	Subscribe(ctx context.Context, filter *repository.FieldFilter) (*repository.Subscription, error)
}

type ContentService struct {
	content ContentStore
}

func NewContentService(c ContentStore) *ContentService {
	return &ContentService{content: c}
}

func typeFilter(t models.ContentType) *repository.FieldFilter {
	if t == "" {
		return nil
	}
	return &repository.FieldFilter{Field: "type", Value: string(t)}
}

// Browse loads the section and derives the catalog page for c.
func (s *ContentService) Browse(ctx context.Context, c catalog.Criteria) (catalog.Result, error) {
	c, err := c.Normalize()
	if err != nil {
		return catalog.Result{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	items, err := s.content.List(ctx, typeFilter(c.ContentType))
	if err != nil {
		return catalog.Result{}, fmt.Errorf("list content: %w", err)
	}
	return catalog.Derive(items, c), nil
}

func (s *ContentService) Home(ctx context.Context) (catalog.Home, error) {
	items, err := s.content.List(ctx, nil)
	if err != nil {
		return catalog.Home{}, fmt.Errorf("list content: %w", err)
	}
	return catalog.Aggregate(items), nil
}

func (s *ContentService) Get(ctx context.Context, id string) (*models.ContentItem, error) {
	c, err := s.content.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get content %s: %w", id, err)
	}
	if c == nil {
		return nil, ErrContentNotFound
	}
	return c, nil
}

// WatchView is everything the player page needs.
type WatchView struct {
	Content      *models.ContentItem  `json:"content"`
	EpisodeIndex int                  `json:"episodeIndex"`
	Episode      *models.Episode      `json:"episode,omitempty"`
	VideoURL     string               `json:"videoUrl"`
	Recommended  []models.ContentItem `json:"recommended"`
}

// EpisodeIndex parses the ?episode= parameter. Anything that is not a
// valid index of the episode list selects the first episode.
func EpisodeIndex(raw string, episodes int) int {
	i, err := strconv.Atoi(raw)
	if err != nil || i < 0 || i >= episodes {
		return 0
	}
	return i
}

func (s *ContentService) Watch(ctx context.Context, id, episodeParam string) (*WatchView, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	v := &WatchView{Content: c, VideoURL: c.VideoURL}
	if c.MultiPart() {
		v.EpisodeIndex = EpisodeIndex(episodeParam, len(c.Episodes))
		ep := c.Episodes[v.EpisodeIndex]
		v.Episode = &ep
		if ep.VideoURL != "" {
			v.VideoURL = ep.VideoURL
		}
	}

	same, err := s.content.List(ctx, typeFilter(c.Type))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.Type, err)
	}
	v.Recommended = catalog.Recommend(same, c.ID, c.Type, catalog.DefaultRecommendLimit)
	return v, nil
}

// Live subscribes to the section of type t ("" for the whole catalog).
func (s *ContentService) Live(ctx context.Context, t models.ContentType) (repository.Feed, error) {
	if t != "" && !t.Valid() {
		return nil, fmt.Errorf("%w: content type %q", ErrInvalidInput, t)
	}
	sub, err := s.content.Subscribe(ctx, typeFilter(t))
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// ================== ADMIN ==================

// AdminList returns the whole catalog, sorted the same way as the public pages.
func (s *ContentService) AdminList(ctx context.Context) ([]models.ContentItem, error) {
	items, err := s.content.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	return catalog.Derive(items, catalog.Criteria{SortKey: catalog.SortYearDesc}).Items, nil
}

// EditForm prefills the admin form for an existing item.
func (s *ContentService) EditForm(ctx context.Context, id string) (*models.ContentForm, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	f := models.FormFromContent(*c)
	return &f, nil
}

// Create validates the form and stores a new item. Validation failures are
// returned as *validation.Error and nothing is written.
func (s *ContentService) Create(ctx context.Context, f models.ContentForm) (*models.ContentItem, error) {
	f.Normalize()
	if err := validation.Struct(&f); err != nil {
		return nil, err
	}
	c := f.ToContent("")
	if err := s.content.Insert(ctx, &c); err != nil {
		return nil, fmt.Errorf("insert content: %w", err)
	}
	return &c, nil
}

func (s *ContentService) Update(ctx context.Context, id string, f models.ContentForm) (*models.ContentItem, error) {
	f.Normalize()
	if err := validation.Struct(&f); err != nil {
		return nil, err
	}
	c := f.ToContent(id)
	err := s.content.Replace(ctx, &c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrContentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("replace content %s: %w", id, err)
	}
	return &c, nil
}

func (s *ContentService) Delete(ctx context.Context, id string) error {
	err := s.content.Delete(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrContentNotFound
	}
	if err != nil {
		return fmt.Errorf("delete content %s: %w", id, err)
	}
	return nil
}
