package handler

import (
	"net/http"
	"strings"

	"cineverse/internal/catalog"
	"cineverse/internal/models"
	"cineverse/internal/service"

	"github.com/go-chi/chi/v5"
)

type ContentHandler struct {
	svc *service.ContentService
}

func NewContentHandler(s *service.ContentService) *ContentHandler {
	return &ContentHandler{svc: s}
}

func urlParam(r *http.Request, key string) string {
	return strings.TrimSpace(chi.URLParam(r, key))
}

func criteriaFromQuery(r *http.Request) catalog.Criteria {
	q := r.URL.Query()
	return catalog.Criteria{
		ContentType: models.ContentType(q.Get("type")),
		SearchText:  q.Get("q"),
		Genre:       q.Get("genre"),
		Year:        q.Get("year"),
		SortKey:     catalog.SortKey(q.Get("sort")),
	}
}

// @Summary Browse the catalog
// @Description Filters and sorts one catalog section; genres and years list the options of the whole section.
// @Tags content
// @Produce json
// @Param type query string false "movie|anime (default: all)"
// @Param q query string false "title search, case-insensitive"
// @Param genre query string false "genre or all"
// @Param year query string false "year or all"
// @Param sort query string false "rating-desc|rating-asc|year-desc|year-asc"
// @Success 200 {object} catalog.Result
// @Failure 400 {object} errorResponse
// @Router /content [get]
func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Browse(r.Context(), criteriaFromQuery(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// @Summary Home page rows
// @Tags content
// @Produce json
// @Success 200 {object} catalog.Home
// @Router /content/home [get]
func (h *ContentHandler) Home(w http.ResponseWriter, r *http.Request) {
	home, err := h.svc.Home(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, home)
}

// @Summary Get content
// @Tags content
// @Produce json
// @Param id path string true "content id"
// @Success 200 {object} models.ContentItem
// @Failure 404 {object} errorResponse
// @Router /content/{id} [get]
func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// @Summary Watch page
// @Description Resolves the episode to play and the recommended items of the same type.
// @Tags content
// @Produce json
// @Param id path string true "content id"
// @Param episode query int false "episode index, defaults to 0"
// @Success 200 {object} service.WatchView
// @Failure 404 {object} errorResponse
// @Router /watch/{id} [get]
func (h *ContentHandler) Watch(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Watch(r.Context(), urlParam(r, "id"), r.URL.Query().Get("episode"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
