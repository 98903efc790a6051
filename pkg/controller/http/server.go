package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aoi-lab/chatkeeper/pkg/usecase"
	"github.com/aoi-lab/chatkeeper/pkg/utils/logging"
)

type Server struct {
	router             *chi.Mux
	slackSigningSecret string
}

type Options func(*Server)

// WithSlackSigningSecret enables the event webhook route with signature
// verification
func WithSlackSigningSecret(secret string) Options {
	return func(s *Server) {
		s.slackSigningSecret = secret
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	// Slack webhook endpoint - no session auth, uses signature verification
	if s.slackSigningSecret != "" {
		webhookHandler := NewSlackWebhookHandler(uc.Event)
		r.Route("/hooks/slack", func(r chi.Router) {
			r.Use(SlackSignatureMiddleware(s.slackSigningSecret))
			r.Post("/event", webhookHandler.ServeHTTP)
		})
	}

	// Install pages (if OAuth is configured)
	if uc.Auth != nil && uc.Auth.OAuthEnabled() {
		r.Get("/", installPageHandler(uc.Auth))
		r.Get("/slack", oauthCallbackHandler(uc.Auth))
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
