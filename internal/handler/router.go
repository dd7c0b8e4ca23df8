package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	characterHandler "github.com/anthonytapias/charmefy/internal/handler/character"
	chatHandler "github.com/anthonytapias/charmefy/internal/handler/chat"
	recentHandler "github.com/anthonytapias/charmefy/internal/handler/recent"
	middlewarePkg "github.com/anthonytapias/charmefy/internal/middleware"
	characterModel "github.com/anthonytapias/charmefy/internal/model/character"
	"github.com/anthonytapias/charmefy/internal/service/ai"
	"github.com/anthonytapias/charmefy/internal/service/conversation"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(characters characterModel.Store, convSvc *conversation.Service, aiSvc *ai.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		characterHandler.New(characters).RegisterRoutes(api)
		recentHandler.New(convSvc).RegisterRoutes(api)
	})

	// The chat websocket lives outside /api; its URL is derived client
	// side from the page origin.
	chatHandler.New(convSvc, aiSvc, characters).RegisterRoutes(r)

	return r
}
