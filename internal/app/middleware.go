package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/finmate/finmate/internal/rest"
	"github.com/finmate/finmate/pkg/user"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const userIdHeader = "X-User-Id"

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies) {
	r.Use(requestLogger)
	r.Use(userResolver(deps.UserService))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, req)
		log.WithFields(log.Fields{
			"method":   req.Method,
			"path":     req.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Debug("Handled request")
	})
}

// userResolver propagates the X-User-Id header into the request context. Only user
// registration may be called without it.
func userResolver(userService user.Service) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			uid := req.Header.Get(userIdHeader)
			ctx := req.Context()

			if uid == "" {
				if isRegistration(req) {
					next.ServeHTTP(w, req)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				rest.WriteError(w, http.StatusUnauthorized, "Missing user", userIdHeader+" header is required")
				return
			}

			u, err := userService.GetUserByUid(ctx, uid)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				if errors.Is(err, user.ErrUserNotFound) {
					log.Debugf("user not found: %s", uid)
					rest.WriteError(w, http.StatusForbidden, "User not found", "")
					return
				}
				log.Errorf("failed to get user: %v", err)
				rest.WriteError(w, http.StatusInternalServerError, "Failed to resolve user", err.Error())
				return
			}
			log.Debugf("user found: %s", u.Uid)
			next.ServeHTTP(w, req.WithContext(user.WithUser(ctx, u)))
		})
	}
}

func isRegistration(req *http.Request) bool {
	return req.Method == http.MethodPost && req.URL.Path == "/api/user"
}
