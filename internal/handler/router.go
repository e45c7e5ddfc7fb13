package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/shetkarimitra/advisor/internal/handler/chat"
	"github.com/shetkarimitra/advisor/internal/middleware"
	chatService "github.com/shetkarimitra/advisor/internal/service/chat"
	"github.com/shetkarimitra/advisor/pkg/utils"
)

// Info describes the running backend for the health endpoint.
type Info struct {
	Responder string `json:"responder"`
	Store     string `json:"store"`
}

// NewRouter wires HTTP routes to core services.
func NewRouter(logger zerolog.Logger, chatSvc *chatService.Service, info Info) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	chatHandler := chat.New(chatSvc)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]any{
				"status":    "ok",
				"responder": info.Responder,
				"store":     info.Store,
			})
		})

		chatHandler.RegisterRoutes(api)
	})

	return r
}
