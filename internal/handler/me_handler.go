package handler

import (
	"net/http"

	"cineverse/internal/service"
)

type MeHandler struct {
	watchlist *service.WatchlistService
	recs      *service.RecommendService
}

func NewMeHandler(w *service.WatchlistService, r *service.RecommendService) *MeHandler {
	return &MeHandler{watchlist: w, recs: r}
}

// @Summary My watchlist
// @Tags me
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.ContentItem
// @Router /me/watchlist [get]
func (h *MeHandler) Watchlist(w http.ResponseWriter, r *http.Request) {
	items, err := h.watchlist.List(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type watchlistRequest struct {
	ContentID string `json:"contentId"`
}

// @Summary Save to watchlist
// @Tags me
// @Security BearerAuth
// @Accept json
// @Param body body watchlistRequest true "content"
// @Success 204
// @Failure 404 {object} errorResponse
// @Router /me/watchlist [post]
func (h *MeHandler) AddToWatchlist(w http.ResponseWriter, r *http.Request) {
	var req watchlistRequest
	if err := decodeJSON(w, r, &req); err != nil || req.ContentID == "" {
		writeError(w, http.StatusBadRequest, "contentId is required")
		return
	}
	if err := h.watchlist.Add(r.Context(), UserIDFromContext(r.Context()), req.ContentID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary Remove from watchlist
// @Tags me
// @Security BearerAuth
// @Param id path string true "content id"
// @Success 204
// @Failure 404 {object} errorResponse
// @Router /me/watchlist/{id} [delete]
func (h *MeHandler) RemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	if err := h.watchlist.Remove(r.Context(), UserIDFromContext(r.Context()), urlParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary Record a view
// @Tags me
// @Security BearerAuth
// @Accept json
// @Param body body service.ViewInput true "view"
// @Success 204
// @Router /me/history [post]
func (h *MeHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	var req service.ViewInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.recs.RecordView(r.Context(), UserIDFromContext(r.Context()), req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary Recommendations from viewing history
// @Tags me
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.ContentItem
// @Failure 503 {object} errorResponse
// @Router /me/recommendations [get]
func (h *MeHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	items, err := h.recs.ForUser(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}
