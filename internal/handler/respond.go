package handler

import (
	"errors"
	"io"
	"net/http"

	"cineverse/internal/ai"
	"cineverse/internal/logger"
	"cineverse/internal/service"
	"cineverse/internal/validation"

	"github.com/goccy/go-json"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error  string            `json:"error"`
	Detail string            `json:"detail,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}
		return err
	}
	return nil
}

// writeServiceError maps service and flow errors onto status codes.
// Anything unexpected is a load failure on reads and a write failure otherwise.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: verr.FieldMap()})
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidRole):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid input", Detail: err.Error()})
	case errors.Is(err, service.ErrContentNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrNotInWatchlist):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrTokenRevoked):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrFederationDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, ai.ErrMetadataUnavailable):
		writeError(w, http.StatusServiceUnavailable, "metadata unavailable")
	case errors.Is(err, ai.ErrRecommendationsUnavailable):
		writeError(w, http.StatusServiceUnavailable, "recommendations unavailable")
	default:
		msg := "write failed"
		if r.Method == http.MethodGet {
			msg = "load failed"
		}
		logger.Get().WithField("path", r.URL.Path).WithError(err).Error(msg)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msg, Detail: err.Error()})
	}
}
