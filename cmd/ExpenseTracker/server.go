package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sebuszqo/ExpenseTracker/internal/auth"
	"github.com/sebuszqo/ExpenseTracker/internal/config"
	"github.com/sebuszqo/ExpenseTracker/internal/contact"
	database "github.com/sebuszqo/ExpenseTracker/internal/db"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/application"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/infrastructure"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/interfaces"
	applog "github.com/sebuszqo/ExpenseTracker/internal/log"
	"github.com/sebuszqo/ExpenseTracker/internal/metrics"
	"github.com/sebuszqo/ExpenseTracker/internal/user"
)

// maxRequestBodyBytes caps every request body; the largest payload is a
// contact message of 2000 characters.
const maxRequestBodyBytes = 64 << 10

type Response struct {
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string, errors ...[]string) {
	payload := map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	}
	if len(errors) > 0 && len(errors[0]) > 0 {
		payload["errors"] = errors[0]
	}
	respondJSON(w, status, payload)
}

type Server struct {
	router          http.Handler
	db              *database.DBService
	metrics         *metrics.Metrics
	logger          *applog.Logger
	corsOrigins     []string
	authHandler     *auth.Handler
	authService     auth.Service
	userHandler     *user.Handler
	categoryHandler *interfaces.CategoryHandler
	movementHandler *interfaces.MovementHandler
	contactHandler  *contact.Handler
}

// NewServer wires every service on top of db. The returned server still
// needs RegisterRoutes.
func NewServer(cfg config.Config, db *database.DBService, notifier contact.Notifier, logger *applog.Logger) (*Server, error) {
	jwtManager, err := auth.NewJWTManager(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("could not create token manager: %w", err)
	}

	userService := user.NewUserService(user.NewUserRepository(db), cfg.BcryptCost, logger)
	authService := auth.NewAuthService(userService, jwtManager, cfg.JWTTTL, logger)

	categoryService := application.NewCategoryService(infrastructure.NewCategoryRepository(db), logger)
	movementService := application.NewMovementService(
		infrastructure.NewMovementRepository(db),
		categoryService,
		logger,
		application.WithAutoCategorize(cfg.AutoCategorize),
	)
	contactService := contact.NewService(contact.NewRepository(db), notifier, logger)

	m := metrics.New()
	m.RegisterDB(db.DB, string(db.Driver()))

	return &Server{
		db:              db,
		metrics:         m,
		logger:          logger,
		corsOrigins:     cfg.CORSAllowedOrigins,
		authHandler:     auth.NewHandler(authService),
		authService:     authService,
		userHandler:     user.NewHandler(userService),
		categoryHandler: interfaces.NewCategoryHandler(categoryService, respondJSON, respondError),
		movementHandler: interfaces.NewMovementHandler(movementService, respondJSON, respondError),
		contactHandler:  contact.NewHandler(contactService, respondJSON, respondError),
	}, nil
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(Response{Message: "Path not found"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	health := s.db.Health(r.Context())
	if health["status"] != "up" {
		s.logger.ErrorContext(r.Context(), "Readiness check failed", applog.FieldError, health["error"])
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

func (s *Server) RegisterRoutes() {
	protect := func(h http.Handler) http.Handler {
		return s.authService.JWTAccessTokenMiddleware()(h)
	}

	// Public routes
	publicRoutes := http.NewServeMux()
	publicRoutes.Handle("POST /api/register", http.HandlerFunc(s.userHandler.HandleRegister))
	publicRoutes.Handle("POST /api/auth/login", http.HandlerFunc(s.authHandler.HandleLogin))
	publicRoutes.Handle("POST /api/contact", http.HandlerFunc(s.contactHandler.HandleSubmit))
	publicRoutes.Handle("GET /api/ready", http.HandlerFunc(s.handleReady))

	// Protected routes (using JWT Access Token Middleware)
	protectedRoutes := http.NewServeMux()
	protectedRoutes.Handle("GET /api/protected/profile", protect(http.HandlerFunc(s.userHandler.HandleGetUserProfile)))
	protectedRoutes.Handle("PUT /api/protected/profile", protect(http.HandlerFunc(s.userHandler.HandleUpdateProfile)))
	protectedRoutes.Handle("DELETE /api/protected/profile", protect(http.HandlerFunc(s.userHandler.HandleDeleteAccount)))

	// CATEGORIES API
	protectedRoutes.Handle("GET /api/protected/categories", protect(http.HandlerFunc(s.categoryHandler.GetCategories)))
	protectedRoutes.Handle("POST /api/protected/categories", protect(http.HandlerFunc(s.categoryHandler.CreateCategory)))
	protectedRoutes.Handle("PUT /api/protected/categories/{categoryID}", protect(s.categoryHandler.PathParams(s.categoryHandler.UpdateCategory)))
	protectedRoutes.Handle("DELETE /api/protected/categories/{categoryID}", protect(s.categoryHandler.PathParams(s.categoryHandler.DeleteCategory)))

	// MOVEMENTS API
	protectedRoutes.Handle("GET /api/protected/movements", protect(http.HandlerFunc(s.movementHandler.GetMovements)))
	protectedRoutes.Handle("POST /api/protected/movements", protect(http.HandlerFunc(s.movementHandler.CreateMovement)))
	protectedRoutes.Handle("GET /api/protected/movements/{movementID}", protect(s.movementHandler.PathParams(s.movementHandler.GetMovement)))
	protectedRoutes.Handle("PUT /api/protected/movements/{movementID}", protect(s.movementHandler.PathParams(s.movementHandler.UpdateMovement)))
	protectedRoutes.Handle("DELETE /api/protected/movements/{movementID}", protect(s.movementHandler.PathParams(s.movementHandler.DeleteMovement)))

	// CONTACT API
	protectedRoutes.Handle("GET /api/protected/contact", protect(http.HandlerFunc(s.contactHandler.HandleList)))
	protectedRoutes.Handle("PATCH /api/protected/contact/{messageID}/read", protect(http.HandlerFunc(s.contactHandler.HandleMarkRead)))

	// Main router
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/api/", publicRoutes)
	mainRouter.Handle("/api/protected/", protectedRoutes)
	mainRouter.Handle("GET /metrics", s.metrics.Handler())
	mainRouter.Handle("/", http.HandlerFunc(notFoundHandler))

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	var handler http.Handler = mainRouter
	handler = middleware.RequestSize(maxRequestBodyBytes)(handler)
	handler = corsHandler(handler)
	handler = s.metrics.Middleware(handler)
	handler = middleware.Recoverer(handler)
	handler = applog.AccessLog(handler)
	handler = applog.Middleware(s.logger)(handler)
	handler = middleware.RequestID(handler)

	s.router = handler
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
