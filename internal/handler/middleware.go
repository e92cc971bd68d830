package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cineverse/internal/logger"
	"cineverse/internal/metrics"
	"cineverse/internal/models"
	"cineverse/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

type ctxKey string

const ctxClaims ctxKey = "claims"

// Authenticator verifies bearer tokens.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*service.Claims, error)
}

// JWTAuth validates the bearer token and stores its claims in the context.
func JWTAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "missing or invalid Authorization header")
				return
			}

			claims, err := auth.Authenticate(r.Context(), tokenStr)
			if errors.Is(err, service.ErrTokenRevoked) {
				writeError(w, http.StatusUnauthorized, "token revoked")
				return
			}
			if err != nil {
				if !errors.Is(err, service.ErrInvalidToken) {
					logger.Get().WithError(err).Error("authenticate")
				}
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), ctxClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken reads the Authorization header, falling back to ?access_token=
// for websocket clients, which cannot set headers.
func bearerToken(r *http.Request) (string, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		tok, ok := strings.CutPrefix(h, "Bearer ")
		return tok, ok && tok != ""
	}
	if tok := r.URL.Query().Get("access_token"); tok != "" && r.Header.Get("Upgrade") != "" {
		return tok, true
	}
	return "", false
}

// RoleSource loads the stored profile, whose role is authoritative.
type RoleSource interface {
	Profile(ctx context.Context, uid string) (*models.UserProfile, error)
}

// AdminOnly lets a request through when the caller's stored profile has
// role == "admin". The role inside the token is not trusted, so promotions
// and demotions apply to tokens already issued.
func AdminOnly(users RoleSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid := UserIDFromContext(r.Context())
			if uid == "" {
				writeError(w, http.StatusForbidden, "admin only")
				return
			}
			u, err := users.Profile(r.Context(), uid)
			if errors.Is(err, service.ErrUserNotFound) {
				writeError(w, http.StatusForbidden, "admin only")
				return
			}
			if err != nil {
				writeServiceError(w, r, err)
				return
			}
			if !u.IsAdmin() {
				writeError(w, http.StatusForbidden, "admin only")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func ClaimsFromContext(ctx context.Context) *service.Claims {
	c, _ := ctx.Value(ctxClaims).(*service.Claims)
	return c
}

// UserIDFromContext returns the authenticated uid, or "".
func UserIDFromContext(ctx context.Context) string {
	if c := ClaimsFromContext(ctx); c != nil {
		return c.Subject
	}
	return ""
}

// RequestLogger logs one line per request.
func RequestLogger(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      statusOf(ww),
				"duration_ms": time.Since(start).Milliseconds(),
				"remote_addr": r.RemoteAddr,
				"request_id":  middleware.GetReqID(r.Context()),
			}).Info("HTTP request")
		})
	}
}

// Metrics records Prometheus request metrics labelled by route pattern.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		metrics.RecordAPIRequest(r.Method, route, strconv.Itoa(statusOf(ww)), time.Since(start))
	})
}

func statusOf(ww middleware.WrapResponseWriter) int {
	if ww.Status() == 0 {
		return http.StatusOK
	}
	return ww.Status()
}
