package handler

import (
	"net/http"

	"cineverse/internal/models"
	"cineverse/internal/service"
)

type AdminHandler struct {
	content *service.ContentService
	recs    *service.RecommendService
}

func NewAdminHandler(c *service.ContentService, r *service.RecommendService) *AdminHandler {
	return &AdminHandler{content: c, recs: r}
}

// @Summary List all content
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.ContentItem
// @Router /admin/content [get]
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.content.AdminList(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// @Summary Edit form
// @Description Returns the stored item as an admin form, genre and tags joined with ", ".
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "content id"
// @Success 200 {object} models.ContentForm
// @Failure 404 {object} errorResponse
// @Router /admin/content/{id}/form [get]
func (h *AdminHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	f, err := h.content.EditForm(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// @Summary Create content
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.ContentForm true "content"
// @Success 201 {object} models.ContentItem
// @Failure 400 {object} errorResponse
// @Router /admin/content [post]
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	var f models.ContentForm
	if err := decodeJSON(w, r, &f); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.content.Create(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// @Summary Replace content
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "content id"
// @Param body body models.ContentForm true "content"
// @Success 200 {object} models.ContentItem
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /admin/content/{id} [put]
func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	var f models.ContentForm
	if err := decodeJSON(w, r, &f); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.content.Update(r.Context(), urlParam(r, "id"), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// @Summary Delete content
// @Tags admin
// @Security BearerAuth
// @Param id path string true "content id"
// @Success 204
// @Failure 404 {object} errorResponse
// @Router /admin/content/{id} [delete]
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.content.Delete(r.Context(), urlParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary Auto-fetch metadata
// @Description Asks the language model for duration, tags and description of a video.
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.MetadataRequest true "video"
// @Success 200 {object} models.MetadataResult
// @Failure 503 {object} errorResponse
// @Router /admin/content/metadata [post]
func (h *AdminHandler) Metadata(w http.ResponseWriter, r *http.Request) {
	var req models.MetadataRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.recs.Metadata(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
