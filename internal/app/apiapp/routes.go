package apiapp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ivankudzin/matrimony/internal/config"
	authsvc "github.com/ivankudzin/matrimony/internal/services/auth"
	chatsvc "github.com/ivankudzin/matrimony/internal/services/chat"
	interactionsvc "github.com/ivankudzin/matrimony/internal/services/interactions"
	matchessvc "github.com/ivankudzin/matrimony/internal/services/matches"
	prefsvc "github.com/ivankudzin/matrimony/internal/services/preferences"
	profilesvc "github.com/ivankudzin/matrimony/internal/services/profiles"
	searchsvc "github.com/ivankudzin/matrimony/internal/services/search"
	"github.com/ivankudzin/matrimony/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService        *authsvc.Service
	ProfileService     *profilesvc.Service
	PreferenceService  *prefsvc.Service
	MatchService       *matchessvc.Service
	SearchService      *searchsvc.Service
	InteractionService *interactionsvc.Service
	ChatService        *chatsvc.Service
	Health             *handlers.HealthHandler
	Metrics            http.Handler
	Realtime           http.Handler
	Logger             *zap.Logger
	Config             config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.AuthService)
	profileHandler := handlers.NewProfileHandler(deps.ProfileService)
	preferenceHandler := handlers.NewPreferenceHandler(deps.PreferenceService)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchService)
	searchHandler := handlers.NewSearchHandler(deps.SearchService)
	interactionsHandler := handlers.NewInteractionsHandler(deps.InteractionService)
	chatHandler := handlers.NewChatHandler(deps.ChatService)
	adminHandler := handlers.NewAdminHandler(deps.ProfileService, deps.Logger)

	healthHandler := deps.Health
	if healthHandler == nil {
		healthHandler = handlers.NewHealthHandler()
	}
	r.Get("/healthz", healthHandler.Get)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}
	if deps.Realtime != nil {
		r.Handle("/socket.io/", deps.Realtime)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if !deps.Config.IsProduction() {
				r.Post("/dev-login", authHandler.DevLogin)
			}
			r.Post("/refresh", authHandler.Refresh)
			r.With(AuthMiddleware(deps.AuthService, deps.Logger)).Post("/logout", authHandler.Logout)
			r.With(AuthMiddleware(deps.AuthService, deps.Logger)).Post("/logout-all", authHandler.LogoutAll)
		})

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(deps.AuthService, deps.Logger))

			r.Route("/profiles", func(r chi.Router) {
				r.Post("/", profileHandler.Create)
				r.Get("/me", profileHandler.GetMine)
				r.Put("/me", profileHandler.UpdateMine)
				r.Put("/me/privacy", profileHandler.UpdatePrivacy)
				r.Get("/{ref}", profileHandler.Get)
				r.Get("/{ref}/view", profileHandler.View)
			})

			r.Get("/preferences", preferenceHandler.Get)
			r.Put("/preferences", preferenceHandler.Put)

			r.Route("/matches", func(r chi.Router) {
				r.Get("/", matchesHandler.List)
				r.Get("/suggestions", matchesHandler.Suggestions)
				r.Post("/calculate/{ref}", matchesHandler.Calculate)
				r.Put("/{id}/status", matchesHandler.UpdateStatus)
			})

			r.Route("/search", func(r chi.Router) {
				r.Get("/basic", searchHandler.Basic)
				r.Post("/advanced", searchHandler.Advanced)
				r.Get("/by-id/{ref}", searchHandler.ByID)
				r.Get("/recommendations", searchHandler.Recommendations)
			})

			r.Route("/interactions", func(r chi.Router) {
				r.Post("/interest/{profileID}", interactionsHandler.SendInterest)
				r.Put("/interest/{interactionID}", interactionsHandler.RespondInterest)
				r.Get("/interests/sent", interactionsHandler.SentInterests)
				r.Get("/interests/received", interactionsHandler.ReceivedInterests)

				r.Post("/shortlist/{profileID}", interactionsHandler.AddShortlist)
				r.Delete("/shortlist/{profileID}", interactionsHandler.RemoveShortlist)
				r.Get("/shortlists", interactionsHandler.Shortlists)

				r.Post("/favorite/{profileID}", interactionsHandler.AddFavorite)
				r.Delete("/favorite/{profileID}", interactionsHandler.RemoveFavorite)
				r.Get("/favorites", interactionsHandler.Favorites)

				r.Post("/block/{profileID}", interactionsHandler.Block)
				r.Delete("/block/{profileID}", interactionsHandler.Unblock)
				r.Get("/blocked", interactionsHandler.Blocked)
			})

			r.Route("/chat", func(r chi.Router) {
				r.Get("/conversations", chatHandler.Conversations)
				r.Post("/send", chatHandler.Send)
				r.Put("/mark-read/{chatID}", chatHandler.MarkRead)
				r.Get("/{userID}", chatHandler.Messages)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(RequireRole("admin"))
				r.Put("/profiles/{ref}/verification", adminHandler.SetVerification)
				r.Put("/profiles/{ref}/premium", adminHandler.SetPremium)
			})
		})
	})
}
