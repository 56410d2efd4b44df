package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/shree/backend/internal/handler/chat"
	"github.com/zhouzirui/shree/backend/internal/handler/persona"
	"github.com/zhouzirui/shree/backend/internal/handler/speech"
	"github.com/zhouzirui/shree/backend/internal/handler/stream"
	middlewarePkg "github.com/zhouzirui/shree/backend/internal/middleware"
	personaModel "github.com/zhouzirui/shree/backend/internal/model/persona"
	"github.com/zhouzirui/shree/backend/internal/service/assistant"
	"github.com/zhouzirui/shree/backend/pkg/utils"
)

// RouterConfig holds HTTP-level settings.
type RouterConfig struct {
	CORSOrigin string
}

// NewRouter wires HTTP routes to core services.
func NewRouter(personas personaModel.Store, sessions *assistant.Manager, cfg RouterConfig, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(cfg.CORSOrigin))

	personaHandler := persona.New(personas)
	chatHandler := chat.New(sessions, logger)
	streamHandler := stream.New(sessions, 0, logger)
	speechHandler := speech.NewWebSocketHandler(sessions, logger)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		personaHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
		streamHandler.RegisterRoutes(api)
		speechHandler.RegisterWebSocketRoutes(api)
	})

	return r
}
