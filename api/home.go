package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/rishugupta23/word-guessing-game/utils"
)

// NewRouter wires every route of the web binding.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         60 * 15,
	}))

	// Serve JS and CSS
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(utils.Static()))))

	r.Get("/", h.GameplayHandler)
	r.Get("/healthz", HealthHandler)
	r.Get("/ws", h.WebSocketHandler)

	r.Route("/api", func(rr chi.Router) {
		rr.Get("/state", h.StateHandler)
		rr.Post("/new", h.NewGameHandler)
		rr.Post("/guess", h.GuessHandler)
		rr.Post("/reveal", h.RevealHandler)
	})

	return r
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
