package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/racquetline/racquet-system/handlers"
	"github.com/racquetline/racquet-system/middleware"
	"github.com/racquetline/racquet-system/models"
)

// SetupRoutes собирает всю HTTP-поверхность сервиса на переданном роутере.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	clubHandler *handlers.ClubHandler,
	courtHandler *handlers.CourtHandler,
	sportHandler *handlers.SportHandler,
	tournamentHandler *handlers.TournamentHandler,
	participantHandler *handlers.ParticipantHandler,
	matchHandler *handlers.MatchHandler,
	captureHandler *handlers.CaptureHandler,
	dashboardHandler *handlers.DashboardHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)
	scorers := middleware.Authorize(models.RoleReferee, models.RoleOrganizer, models.RoleAdmin)
	organizers := middleware.Authorize(models.RoleOrganizer, models.RoleAdmin)
	admins := middleware.Authorize(models.RoleAdmin)

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	// Аутентификация
	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Get("/confirm", authHandler.ConfirmEmail)
	})

	// Пользователи
	router.Route("/users", func(r chi.Router) {
		r.Get("/{userID}", userHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/me", userHandler.Me)
			r.Put("/me", userHandler.UpdateProfile)
			r.Post("/me/photo", userHandler.UploadPhoto)
		})
	})

	// Виды спорта и правила счёта
	router.Route("/sports", func(r chi.Router) {
		r.Get("/", sportHandler.List)
		r.Get("/{sportID}", sportHandler.GetByID)
		r.Get("/{sportID}/rules", sportHandler.Rules)
	})

	// Клубы и корты
	router.Route("/clubs", func(r chi.Router) {
		r.Get("/", clubHandler.List)
		r.Get("/{clubID}", clubHandler.GetByID)
		r.Get("/{clubID}/courts", clubHandler.ListCourts)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(organizers)
			r.Post("/", clubHandler.Create)
			r.Put("/{clubID}", clubHandler.Update)
			r.Post("/{clubID}/logo", clubHandler.UploadLogo)
			r.Delete("/{clubID}", clubHandler.Delete)
			r.Post("/{clubID}/courts", clubHandler.CreateCourt)
		})
	})

	router.Route("/courts", func(r chi.Router) {
		r.Get("/{courtID}", courtHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(organizers)
			r.Put("/{courtID}", courtHandler.Update)
			r.Delete("/{courtID}", courtHandler.Delete)
		})
	})

	// Турниры
	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.List)
		r.Get("/{tournamentID}", tournamentHandler.GetByID)
		r.Get("/{tournamentID}/participants", participantHandler.ListByTournament)
		r.Get("/{tournamentID}/matches", matchHandler.ListByTournament)

		// Заявки подают сами игроки
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/{tournamentID}/participants", participantHandler.Register)
			r.Delete("/{tournamentID}/participants", participantHandler.Withdraw)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(organizers)
			r.Post("/", tournamentHandler.Create)
			r.Put("/{tournamentID}", tournamentHandler.Update)
			r.Put("/{tournamentID}/status", tournamentHandler.ChangeStatus)
			r.Post("/{tournamentID}/logo", tournamentHandler.UploadLogo)
			r.Delete("/{tournamentID}", tournamentHandler.Delete)
			r.Post("/{tournamentID}/matches", matchHandler.Create)
		})
	})

	// Матчи и сессии ведения счёта
	router.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", matchHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(organizers)
			r.Post("/{matchID}/cancel", matchHandler.Cancel)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(scorers)
			r.Post("/{matchID}/sessions", captureHandler.StartSession)
			r.Get("/{matchID}/sessions/active", captureHandler.GetActiveByMatch)
		})
	})

	router.Route("/sessions", func(r chi.Router) {
		r.Get("/{sessionID}", captureHandler.GetSession)
		r.Get("/{sessionID}/events", captureHandler.ListEvents)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(scorers)
			r.Post("/{sessionID}/rallies", captureHandler.RecordRally)
			r.Post("/{sessionID}/timeouts", captureHandler.RecordTimeout)
			r.Post("/{sessionID}/appeals", captureHandler.RecordAppeal)
			r.Post("/{sessionID}/technicals", captureHandler.RecordTechnical)
		})
	})

	// Дашборды
	router.Route("/dashboard", func(r chi.Router) {
		r.Use(authenticate)

		r.Group(func(r chi.Router) {
			r.Use(admins)
			r.Get("/stats", dashboardHandler.Stats)
		})

		r.Group(func(r chi.Router) {
			r.Use(organizers)
			r.Get("/organizer", dashboardHandler.OrganizerStats)
		})
	})

	// Live-подписки
	router.Route("/ws", func(r chi.Router) {
		r.Get("/matches/{matchID}", webSocketHandler.ServeMatch)
		r.Get("/tournaments/{tournamentID}", webSocketHandler.ServeTournament)
	})
}
