package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AnkurSaini200/Cupid/internal/realtime"
	authsvc "github.com/AnkurSaini200/Cupid/internal/services/auth"
	chatsvc "github.com/AnkurSaini200/Cupid/internal/services/chat"
	hmusvc "github.com/AnkurSaini200/Cupid/internal/services/hmu"
	matchessvc "github.com/AnkurSaini200/Cupid/internal/services/matches"
	swipesvc "github.com/AnkurSaini200/Cupid/internal/services/swipes"
	userssvc "github.com/AnkurSaini200/Cupid/internal/services/users"
	"github.com/AnkurSaini200/Cupid/internal/transport/http/handlers"
)

type Dependencies struct {
	Verifier        *authsvc.Verifier
	SwipeService    *swipesvc.Service
	MatchService    *matchessvc.Service
	ChatService     *chatsvc.Service
	HMUService      *hmusvc.Service
	UserService     *userssvc.Service
	RealtimeHandler *realtime.Handler
	Logger          *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	swipeHandler := handlers.NewSwipeHandler(deps.SwipeService)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchService)
	messagesHandler := handlers.NewMessagesHandler(deps.ChatService)
	communitiesHandler := handlers.NewCommunitiesHandler(deps.ChatService)
	hmuHandler := handlers.NewHMUHandler(deps.HMUService)
	usersHandler := handlers.NewUsersHandler(deps.UserService)
	authMW := AuthMiddleware(deps.Verifier, deps.Logger)

	r.Get("/healthz", healthHandler.Get)

	if deps.RealtimeHandler != nil {
		r.Handle("/ws", deps.RealtimeHandler)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(authMW)

		r.Post("/swipes", swipeHandler.Handle)
		r.Get("/matches", matchesHandler.List)
		r.Post("/unmatch", matchesHandler.Unmatch)

		r.Get("/users/{userID}", usersHandler.Projection)

		r.Post("/messages", messagesHandler.Send)
		r.Get("/conversations", messagesHandler.ListConversations)
		r.Get("/conversations/{conversationID}/messages", messagesHandler.ListMessages)
		r.Post("/messages/read", messagesHandler.MarkRead)

		r.Post("/communities/{communityID}/messages", communitiesHandler.Send)
		r.Get("/communities/{communityID}/messages", communitiesHandler.ListMessages)

		r.Route("/hmu", func(r chi.Router) {
			r.Post("/", hmuHandler.Create)
			r.Get("/", hmuHandler.Feed)
			r.Get("/mine", hmuHandler.Mine)
			r.Post("/{postID}/responses", hmuHandler.Respond)
			r.Get("/{postID}/responses", hmuHandler.ListResponses)
			r.Delete("/{postID}", hmuHandler.Delete)
		})
	})
}
