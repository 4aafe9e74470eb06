package web

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"telegram-dance-technique/internal/infra/logging"
	"telegram-dance-technique/internal/usecase"
)

// Server is the admin HTTP API over the catalog and user base. The bot
// reads the catalog; this API is how catalog rows get in, and how
// subscriptions get flipped after an out-of-band payment.
type Server struct {
	catalogUC usecase.CatalogUseCase
	adminUC   usecase.AdminUseCase
	userUC    usecase.UserUseCase
	auth      *AuthManager
	adminKey  string
	log       *zerolog.Logger
}

func NewServer(
	catalogUC usecase.CatalogUseCase,
	adminUC usecase.AdminUseCase,
	userUC usecase.UserUseCase,
	auth *AuthManager,
	adminKey string,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		catalogUC: catalogUC,
		adminUC:   adminUC,
		userUC:    userUC,
		auth:      auth,
		adminKey:  adminKey,
		log:       logger,
	}
}

// Router builds the chi mux with all admin routes mounted.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(s.traceID)
	r.Use(s.requestLog)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(15 * time.Second))

	r.Post("/api/v1/auth/login", s.handleLogin)

	r.Group(func(pr chi.Router) {
		pr.Use(s.requireAdmin)

		pr.Post("/api/v1/auth/logout", s.handleLogout)
		pr.Get("/api/v1/stats", s.handleStats)

		pr.Get("/api/v1/programs", s.handleListPrograms)
		pr.Post("/api/v1/programs", s.handleCreateProgram)
		pr.Get("/api/v1/programs/{programID}/dances", s.handleListDances)
		pr.Post("/api/v1/dances", s.handleCreateDance)
		pr.Get("/api/v1/dances/{danceID}/figures", s.handleListFigures)
		pr.Post("/api/v1/figures", s.handleCreateFigure)
		pr.Get("/api/v1/authors", s.handleListAuthors)
		pr.Post("/api/v1/authors", s.handleCreateAuthor)
		pr.Post("/api/v1/figures/{figureID}/versions", s.handleCreateVersion)

		pr.Put("/api/v1/users/{tgID}/subscription", s.handleSetSubscription)
	})

	return r
}

// handleLogin exchanges the shared admin key for a short-lived session
// token. The key itself never travels on subsequent requests.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.adminKey == "" {
		http.Error(w, "admin API is not configured", http.StatusForbidden)
		return
	}
	var req struct {
		Secret string `json:"secret"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(s.adminKey)) != 1 {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	token, err := s.auth.Mint(w)
	if err != nil {
		http.Error(w, "failed to issue token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) traceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithTraceID(r.Context(), ulid.Make().String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logging.With(r.Context(), s.log).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("http_request")
	})
}
