// Package httpapi is the REST transport: login, the caller's profile and
// balance, partial profile updates and avatar uploads.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/account"
	"github.com/dmitrijs2005/accountkeeper/internal/server/auth"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/users"
)

const shutdownTimeout = 10 * time.Second

// Account is the boundary the handlers call into. *account.Service
// implements it.
type Account interface {
	Authenticate(ctx context.Context, email, password string) (*auth.Session, error)
	VerifyToken(ctx context.Context, token string) (*models.User, bool)
	UpdateProfile(ctx context.Context, id string, in users.UpdateInput) (*models.PublicUser, error)
	GetBalanceView(user *models.User) string
	RequestAvatarUpload(ctx context.Context, id string) (*account.AvatarUpload, error)
	ConfirmAvatarUpload(ctx context.Context, id, key string) (*models.PublicUser, error)
	AvatarURL(ctx context.Context, user *models.User) (string, error)
}

type HTTPServer struct {
	address string
	handler http.Handler
	logger  logging.Logger
}

func NewHTTPServer(a string, l logging.Logger, acc Account, allowedOrigins []string) *HTTPServer {
	logger := l.With("module", "http_server")
	return &HTTPServer{
		address: a,
		handler: NewRouter(acc, allowedOrigins, logger),
		logger:  logger,
	}
}

// Handler exposes the router, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "error shutting down HTTP server", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// NewRouter builds the route table.
func NewRouter(acc Account, allowedOrigins []string, l logging.Logger) http.Handler {
	h := &handlers{acc: acc, logger: l}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(l))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.login)

		r.Route("/users", func(r chi.Router) {
			r.Use(authenticate(acc))
			r.Get("/me", h.getProfile)
			r.Get("/me/balance", h.getBalance)
			r.Put("/me", h.updateProfile)
			r.Post("/me/avatar", h.requestAvatarUpload)
			r.Put("/me/avatar", h.confirmAvatarUpload)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Route " + r.URL.Path + " not found"})
	})

	return r
}
