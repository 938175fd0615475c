package handler

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/assistentes/backend/internal/handler/chat"
	"github.com/zhouzirui/assistentes/backend/internal/handler/history"
	"github.com/zhouzirui/assistentes/backend/internal/handler/persona"
	middlewarePkg "github.com/zhouzirui/assistentes/backend/internal/middleware"
	personaModel "github.com/zhouzirui/assistentes/backend/internal/model/persona"
	chatService "github.com/zhouzirui/assistentes/backend/internal/service/chat"
	"github.com/zhouzirui/assistentes/backend/pkg/utils"
)

// Options configures cross-cutting router behavior.
type Options struct {
	Logger         zerolog.Logger
	AllowedOrigins []string
	// Static is served at / when non-nil.
	Static fs.FS
}

// NewRouter wires HTTP routes to core services.
func NewRouter(personas personaModel.Store, chatSvc *chatService.Service, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.Logger(opts.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.Metrics)
	r.Use(middlewarePkg.CORS(opts.AllowedOrigins))

	personaHandler := persona.New(personas)
	chatHandler := chat.New(chatSvc)
	historyHandler := history.New(chatSvc)

	r.Route("/api", func(api chi.Router) {
		personaHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
		historyHandler.RegisterRoutes(api)

		api.NotFound(func(w http.ResponseWriter, r *http.Request) {
			utils.RespondError(w, http.StatusNotFound, "Rota não encontrada.")
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	if opts.Static != nil {
		r.Handle("/*", http.FileServer(http.FS(opts.Static)))
	}

	return r
}
