package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"cineverse/internal/ai"
	"cineverse/internal/models"
	"cineverse/internal/repository"
	"cineverse/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/mongo"
)

type memContent struct {
	mu    sync.Mutex
	items []models.ContentItem
}

func (m *memContent) List(ctx context.Context, filter *repository.FieldFilter) ([]models.ContentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.ContentItem{}
	for _, c := range m.items {
		if filter != nil && filter.Field == "type" && string(c.Type) != filter.Value {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *memContent) GetByID(ctx context.Context, id string) (*models.ContentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.items {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memContent) GetMany(ctx context.Context, ids []string) ([]models.ContentItem, error) {
	out := []models.ContentItem{}
	for _, id := range ids {
		if c, _ := m.GetByID(ctx, id); c != nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memContent) Insert(ctx context.Context, c *models.ContentItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = "new-id"
	}
	m.items = append(m.items, *c)
	return nil
}

func (m *memContent) Replace(ctx context.Context, c *models.ContentItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == c.ID {
			m.items[i] = *c
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (m *memContent) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (m *memContent) Subscribe(ctx context.Context, filter *repository.FieldFilter) (*repository.Subscription, error) {
	return nil, errors.New("no change stream in tests")
}

type memUsers struct {
	mu   sync.Mutex
	byID map[string]*models.UserProfile
}

func (m *memUsers) FindByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) FindByID(ctx context.Context, id string) (*models.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *memUsers) Insert(ctx context.Context, u *models.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) SyncProfile(ctx context.Context, p models.ProfileSync) (*models.UserProfile, error) {
	return nil, errors.New("not used")
}

func (m *memUsers) SetRole(ctx context.Context, id, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	u.Role = role
	return nil
}

type memRevoker struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (m *memRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[jti] = true
	return nil
}

func (m *memRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revoked[jti], nil
}

type memWatchlist struct {
	mu      sync.Mutex
	entries []models.WatchlistEntry
}

func (m *memWatchlist) Add(ctx context.Context, userID, contentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.UserID == userID && e.ContentID == contentID {
			return nil
		}
	}
	m.entries = append([]models.WatchlistEntry{{UserID: userID, ContentID: contentID, AddedAt: time.Now()}}, m.entries...)
	return nil
}

func (m *memWatchlist) Remove(ctx context.Context, userID, contentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if e.UserID == userID && e.ContentID == contentID {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (m *memWatchlist) ListByUser(ctx context.Context, userID string) ([]models.WatchlistEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.WatchlistEntry{}
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

type memHistory struct {
	mu     sync.Mutex
	events []models.ViewingEvent
}

func (m *memHistory) Record(ctx context.Context, userID, contentID string, episodeIndex int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, models.ViewingEvent{UserID: userID, ContentID: contentID, EpisodeIndex: episodeIndex, ViewedAt: time.Now()})
	return nil
}

func (m *memHistory) Recent(ctx context.Context, userID string, limit int) ([]models.ViewingEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.ViewingEvent{}
	for i := len(m.events) - 1; i >= 0 && len(out) < limit; i-- {
		if m.events[i].UserID == userID {
			out = append(out, m.events[i])
		}
	}
	return out, nil
}

func rating(v float64) *float64 { return &v }

func testCatalog() []models.ContentItem {
	return []models.ContentItem{
		{ID: "m1", Title: "Inception", Type: models.ContentTypeMovie, Genre: []string{"Sci-Fi"}, Year: 2010, Rating: rating(8.8), VideoURL: "https://v.example.com/m1.mp4"},
		{ID: "a1", Title: "Naruto", Type: models.ContentTypeAnime, Genre: []string{"Action"}, Year: 2002, Rating: rating(8.4), VideoURL: "https://v.example.com/a1.mp4",
			Episodes: []models.Episode{
				{SeasonNumber: 1, EpisodeNumber: 1, EpisodeCode: "S1E1", Title: "Enter", VideoURL: "https://v.example.com/a1e1.mp4"},
				{SeasonNumber: 1, EpisodeNumber: 2, EpisodeCode: "S1E2", Title: "My Name", VideoURL: "https://v.example.com/a1e2.mp4"},
			}},
		{ID: "a2", Title: "Bleach", Type: models.ContentTypeAnime, Genre: []string{"Action"}, Year: 2004, VideoURL: "https://v.example.com/a2.mp4"},
	}
}

// testEnv is a full router over in-memory stores. AI flows are disabled.
type testEnv struct {
	router  chi.Router
	users   *memUsers
	content *memContent
}

func newTestEnv(t *testing.T, rateLimit int) *testEnv {
	t.Helper()

	content := &memContent{items: testCatalog()}
	users := &memUsers{byID: map[string]*models.UserProfile{}}
	revoker := &memRevoker{revoked: map[string]bool{}}

	authSvc := service.NewAuthService(users, revoker, "test-secret", time.Hour)
	contentSvc := service.NewContentService(content)
	watchSvc := service.NewWatchlistService(&memWatchlist{}, content)
	recSvc := service.NewRecommendService(&memHistory{}, content, ai.NewFlows(nil))

	r := NewRouter(Handlers{
		Auth:          NewAuthHandler(authSvc),
		Content:       NewContentHandler(contentSvc),
		Admin:         NewAdminHandler(contentSvc, recSvc),
		Me:            NewMeHandler(watchSvc, recSvc),
		Stream:        NewStreamHandler(contentSvc, []string{"*"}, 10*time.Millisecond),
		Authenticator: authSvc,
		Roles:         authSvc,
		CORSOrigins:   []string{"*"},
		AuthRateLimit: rateLimit,
	})
	return &testEnv{router: r, users: users, content: content}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rdr *strings.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rdr = strings.NewReader(string(b))
	} else {
		rdr = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// register creates an account and returns its token and uid.
func (e *testEnv) register(t *testing.T, email string) (string, string) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"displayName": "Test User",
		"email":       email,
		"password":    "secret123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body)
	}
	var sess service.Session
	decode(t, rec, &sess)
	return sess.Token, sess.User.ID
}

// adminToken registers an account, promotes it and logs in again so the
// token carries the admin role.
func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	_, uid := e.register(t, "admin@example.com")
	if err := e.users.SetRole(context.Background(), uid, models.RoleAdmin); err != nil {
		t.Fatal(err)
	}
	rec := e.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "admin@example.com",
		"password": "secret123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body)
	}
	var sess service.Session
	decode(t, rec, &sess)
	return sess.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}
