package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/tennis-club/docs" // регистрирует swagger-спецификацию
	"github.com/Dosada05/tennis-club/handlers"
	"github.com/Dosada05/tennis-club/middleware"
	"github.com/Dosada05/tennis-club/models"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	allowedOrigins []string,
	logger *slog.Logger,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	matchHandler *handlers.MatchHandler,
	matchRequestHandler *handlers.MatchRequestHandler,
	progressionHandler *handlers.ProgressionHandler,
	notificationHandler *handlers.NotificationHandler,
	adminHandler *handlers.AdminHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret, logger)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	// Websocket: токен также принимается в ?token=
	router.With(authenticate).Get("/ws", webSocketHandler.ServeWs)

	router.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Use(chiMiddleware.Timeout(15 * time.Second))

		r.Route("/me", func(r chi.Router) {
			r.Get("/", userHandler.GetMe)
			r.Put("/avatar", userHandler.UploadAvatar)
			r.Get("/progress", progressionHandler.GetMyProgress)
			r.Get("/xp-transactions", progressionHandler.ListMyTransactions)
			r.Get("/achievements", progressionHandler.ListMyAchievements)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.ListUsers)
			r.Get("/{userID}", userHandler.GetUserByID)
		})

		r.Route("/matches", func(r chi.Router) {
			r.Get("/", matchHandler.ListMyMatches)
			r.Route("/{matchID}", func(r chi.Router) {
				r.Get("/", matchHandler.GetMatch)
				r.Post("/select-winner", matchHandler.SelectWinner)
				r.Post("/hide", matchHandler.HideMatch)
			})
		})

		r.Route("/match-requests", func(r chi.Router) {
			r.Post("/", matchRequestHandler.CreateRequest)
			r.Get("/incoming", matchRequestHandler.ListIncoming)
			r.Get("/outgoing", matchRequestHandler.ListOutgoing)
			r.Post("/{requestID}/accept", matchRequestHandler.AcceptRequest)
			r.Post("/{requestID}/decline", matchRequestHandler.DeclineRequest)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", notificationHandler.ListNotifications)
			r.Post("/read-all", notificationHandler.MarkAllRead)
			r.Post("/{notificationID}/read", notificationHandler.MarkRead)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleAdmin))
			r.Post("/players/{playerID}/activities", adminHandler.RecordActivity)
		})
	})
}
