package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"mosha-chat-backend/internal/infra/redis"
	"mosha-chat-backend/internal/usecase"
)

// submit rate limit per owner; the window resets on a fixed boundary.
const (
	submitRateLimit  = 30
	submitRateWindow = time.Minute
)

type Server struct {
	chatUC  usecase.ChatUseCase
	authUC  usecase.AuthUseCase
	limiter *redis.RateLimiter
	log     *zerolog.Logger
}

func NewServer(
	chatUC usecase.ChatUseCase,
	authUC usecase.AuthUseCase,
	limiter *redis.RateLimiter,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		chatUC:  chatUC,
		authUC:  authUC,
		limiter: limiter,
		log:     logger,
	}
}

// Router builds the HTTP surface. Submission carries its session token in the
// request body; the read endpoints expect a Bearer token.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("Mosha chat backend is running"))
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/mobile/verifyToken", s.verifyTokenHandler())
	r.Post("/verify-session", s.verifySessionHandler())

	r.Post("/chat", s.submitHandler())
	r.Group(func(r chi.Router) {
		r.Use(s.sessionAuth)
		r.Get("/chat/result/{requestID}", s.resultHandler())
		r.Get("/chat/getMessages", s.getMessagesHandler())
		r.Post("/chat/sendMessage", s.sendMessageHandler())
	})

	return r
}

// sessionAuth requires a valid Bearer session token and stores the resolved
// session on the request context.
func (s *Server) sessionAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing session token")
			return
		}
		sess, err := s.authUC.VerifySession(r.Context(), token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid session")
			return
		}
		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), token, sess)))
	})
}

func bearerToken(r *http.Request) string {
	hdr := r.Header.Get("Authorization")
	if hdr == "" {
		return ""
	}
	parts := strings.SplitN(hdr, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
