package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/resume-analyzer/apiserver/config"
	"github.com/resume-analyzer/apiserver/internal/auth"
	"github.com/resume-analyzer/apiserver/internal/db"
	"github.com/resume-analyzer/apiserver/internal/handlers"
	"github.com/resume-analyzer/apiserver/internal/match"
	"github.com/resume-analyzer/apiserver/internal/mq"
	"github.com/resume-analyzer/apiserver/internal/services"
	"github.com/resume-analyzer/apiserver/internal/storage"
	"github.com/resume-analyzer/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	events     *mq.Events
}

// New constructs a Server with all dependencies wired. The object-store
// archive and the event bus are optional; everything else is required.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	jwtSecret := strings.TrimSpace(cfg.JWTSecret)
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	archive, err := storage.NewArchiveFromConfig(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if archive != nil {
		if err := archive.EnsureBucket(ctx); err != nil {
			_ = dbConn.Close()
			return nil, err
		}
	}

	events, err := mq.NewFromConfig(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	jobRepo := store.NewJobRepository(dbConn)
	resumeRepo := store.NewResumeRepository(dbConn)
	applicationRepo := store.NewApplicationRepository(dbConn)
	feedbackRepo := store.NewFeedbackRepository(dbConn)

	passwords := auth.NewPasswordService()
	tokens := auth.NewTokenService(jwtSecret)
	scorer := match.NewScorer(cfg.HuggingFace.APIKey, cfg.HuggingFace.SimilarityURL, cfg.HuggingFace.NerURL, logger)

	userService := services.NewUserService(userRepo, passwords, cfg.AdminEmail, cfg.AdminPassword)
	jobService := services.NewJobService(jobRepo)
	resumeService := services.NewResumeService(resumeRepo, scorer, archive, events, logger)
	applicationService := services.NewApplicationService(applicationRepo, jobRepo, resumeRepo, scorer, events, logger)
	feedbackService := services.NewFeedbackService(feedbackRepo)
	chatbotService := services.NewChatbotService(resumeRepo)

	authMiddleware := handlers.RequireAuth(tokens, userService, logger)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Healthz)
		r.Route("/auth", func(r chi.Router) {
			handlers.AuthRouter(r, userService, tokens, authMiddleware)
		})
		r.Route("/jobs", func(r chi.Router) {
			handlers.JobRouter(r, jobService, authMiddleware)
		})
		r.Route("/resume", func(r chi.Router) {
			handlers.ResumeRouter(r, resumeService, authMiddleware)
		})
		r.Route("/apply", func(r chi.Router) {
			handlers.ApplyRouter(r, applicationService, authMiddleware)
		})
		r.Route("/feedback", func(r chi.Router) {
			handlers.FeedbackRouter(r, feedbackService, authMiddleware)
		})
		r.Route("/admin", func(r chi.Router) {
			handlers.AdminRouter(r, userService, jobService, resumeService, applicationService, authMiddleware)
		})
		r.Route("/chatbot", func(r chi.Router) {
			handlers.ChatbotRouter(r, chatbotService, authMiddleware)
		})
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		events:     events,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.events != nil {
		_ = s.events.Close()
	}
	return s.httpServer.Close()
}
