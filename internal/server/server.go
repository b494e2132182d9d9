// Package server wires the dependency graph and the route table. It is the
// composition root: repositories, services, and handlers are all constructed
// here, and nowhere else holds the whole picture.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/noteful/internal/auth"
	"github.com/sakif/noteful/internal/handler"
	"github.com/sakif/noteful/internal/middleware"
	sqliteRepo "github.com/sakif/noteful/internal/repository/sqlite"
	"github.com/sakif/noteful/internal/service"
)

// Config holds everything the server needs that the process environment
// decides: where to listen, where the database lives, and the signing
// secret plus token lifetime for the auth stack. All of it is read-only
// after startup; no component reaches into the environment on its own.
type Config struct {
	Port        int
	DBPath      string
	JWTSecret   string
	TokenExpiry time.Duration
	BcryptCost  int // 0 means the default work factor
}

// Server owns the router and the database handle. The handle is closed
// during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database, assembles the dependency chain, and registers the
// routes. On any wiring failure the database is closed before returning.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes builds the middleware stack and the route table.
//
// Route map:
//
//	POST   /api/users          register (public)
//	POST   /api/login          local login → bearer token (public)
//	/api/notes, /api/folders, /api/tags
//	       GET / POST on the collection, GET / PUT / DELETE on /{id},
//	       all behind the bearer gate
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenExpiry)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()
	if s.config.BcryptCost > 0 {
		passwords = auth.NewPasswordServiceWithCost(s.config.BcryptCost)
	}

	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	noteService := service.NewNoteService(s.db, s.db, s.db, s.logger)
	folderService := service.NewFolderService(s.db, s.logger)
	tagService := service.NewTagService(s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	userHandler := handler.NewUserHandler(authService, s.logger)
	noteHandler := handler.NewNoteHandler(noteService, s.logger)
	folderHandler := handler.NewFolderHandler(folderService, s.logger)
	tagHandler := handler.NewTagHandler(tagService, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		// Public: registration and login.
		r.Post("/users", userHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)

		// Everything else requires a valid bearer token.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Route("/notes", func(r chi.Router) {
				r.Get("/", noteHandler.HandleList)
				r.Post("/", noteHandler.HandleCreate)
				r.Get("/{id}", noteHandler.HandleGet)
				r.Put("/{id}", noteHandler.HandleUpdate)
				r.Delete("/{id}", noteHandler.HandleDelete)
			})

			r.Route("/folders", func(r chi.Router) {
				r.Get("/", folderHandler.HandleList)
				r.Post("/", folderHandler.HandleCreate)
				r.Get("/{id}", folderHandler.HandleGet)
				r.Put("/{id}", folderHandler.HandleUpdate)
				r.Delete("/{id}", folderHandler.HandleDelete)
			})

			r.Route("/tags", func(r chi.Router) {
				r.Get("/", tagHandler.HandleList)
				r.Post("/", tagHandler.HandleCreate)
				r.Get("/{id}", tagHandler.HandleGet)
				r.Put("/{id}", tagHandler.HandleUpdate)
				r.Delete("/{id}", tagHandler.HandleDelete)
			})
		})
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, close
// the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
