package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"storefront/backend/internal/config"
	authusecase "storefront/backend/internal/usecase/auth"
	productusecase "storefront/backend/internal/usecase/product"
	userusecase "storefront/backend/internal/usecase/user"
)

// Server wraps the HTTP server lifecycle.
type Server struct {
	httpServer       *http.Server
	router           *http.ServeMux
	authService      *authusecase.Service
	productService   *productusecase.Service
	userService      *userusecase.Service
	verifier         TokenVerifier
	metrics          *requestMetrics
	exposeResetToken bool
	addr             string
}

// NewServer constructs a new Server with configured dependencies.
func NewServer(
	cfg config.Config,
	authService *authusecase.Service,
	productService *productusecase.Service,
	userService *userusecase.Service,
	verifier TokenVerifier,
) *Server {
	mux := http.NewServeMux()
	addr := cfg.HTTPPort
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	srv := &Server{
		router:           mux,
		authService:      authService,
		productService:   productService,
		userService:      userService,
		verifier:         verifier,
		metrics:          &requestMetrics{},
		exposeResetToken: cfg.ExposeResetToken,
		addr:             addr,
	}

	handler := withLogging(srv.metrics.middleware(withCORS(mux, cfg.AllowedOrigins)))
	srv.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSec) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeoutSec) * time.Second,
	}
	srv.registerRoutes()
	return srv
}

// Start bootstraps the HTTP server on the configured address.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the underlying ServeMux; tests drive it directly.
func (s *Server) Router() *http.ServeMux {
	return s.router
}

// Addr returns the configured network address for the HTTP server.
func (s *Server) Addr() string {
	return s.addr
}
