package api

import (
	"net/http"
	"time"

	"crackmehub/internal/api/handler"
	"crackmehub/internal/app/service"
	"crackmehub/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	authService *service.AuthService,
	userService *service.UserService,
	crackmeService *service.CrackmeService,
	solutionService *service.SolutionService,
	commentService *service.CommentService,
	ratingService *service.RatingService,
	moderationService *service.ModerationService,
	notificationService *service.NotificationService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Verifies the bearer token if present and puts claims in context.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(v1 chi.Router) {
		// Auth routes (public)
		authHandler := handler.NewAuthHandler(authService)
		v1.Group(func(publicAuth chi.Router) {
			authHandler.RegisterRoutes(publicAuth)
		})

		// Crackme routes (listing public, submission authenticated, moderation admin)
		crackmeHandler := handler.NewCrackmeHandler(crackmeService, solutionService, commentService, ratingService, moderationService)
		v1.Route("/crackmes", crackmeHandler.RegisterRoutes)

		// Solution routes (detail public, moderation admin)
		solutionHandler := handler.NewSolutionHandler(solutionService, moderationService)
		v1.Route("/solutions", solutionHandler.RegisterRoutes)

		// Recent-comments feed (public)
		commentHandler := handler.NewCommentHandler(commentService)
		v1.Route("/comments", commentHandler.RegisterRoutes)

		// User profile routes (public)
		userHandler := handler.NewUserHandler(userService, crackmeService, solutionService, commentService)
		v1.Route("/users", userHandler.RegisterRoutes)

		// Notification routes (authenticated)
		notificationHandler := handler.NewNotificationHandler(notificationService)
		v1.Route("/notifications", notificationHandler.RegisterRoutes)
	})

	return r
}
