package server

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/quenchapp/quench/internal/config"
	"github.com/quenchapp/quench/internal/handlers"
	"github.com/quenchapp/quench/internal/middleware"
	"github.com/quenchapp/quench/internal/repository"
)

type Server struct {
	router *chi.Mux
	config config.Config
}

func New(database *sql.DB, cfg config.Config) *Server {
	plantRepo := repository.NewPlantRepository(database)

	plantHandler := handlers.NewPlantHandler(plantRepo)
	icalHandler := handlers.NewICalHandler(plantRepo, cfg.APIToken)

	router := chi.NewRouter()

	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Compress(5))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	router.Get("/ical", icalHandler.Feed)

	router.Group(func(r chi.Router) {
		r.Use(middleware.APITokenAuth(cfg.APIToken))

		r.Get("/api/plants", plantHandler.List)
		r.Post("/api/plants", plantHandler.Create)
		r.Put("/api/plants/{id}", plantHandler.Update)
		r.Delete("/api/plants/{id}", plantHandler.Delete)
		r.Post("/api/plants/{id}/water", plantHandler.Water)
	})

	return &Server{
		router: router,
		config: cfg,
	}
}

func (server *Server) Start() error {
	address := ":" + server.config.Port
	slog.Info("starting server", "address", address)
	return http.ListenAndServe(address, server.router)
}

func (server *Server) Handler() http.Handler {
	return server.router
}
