package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"linkstash/internal/handlers"
	"linkstash/internal/middlewares"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	r.Use(middlewares.RateLimit)
	r.Use(middlewares.Instrument)

	ph := handlers.NewPageHandler(s.identity)
	r.HandleFunc("/", ph.Landing).Methods("GET")
	r.HandleFunc("/login", ph.Login).Methods("GET")
	r.HandleFunc("/health", ph.Health).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	s.registerAuthRoutes(r)
	s.registerBookmarkRoutes(r)

	return r
}

func (s *Server) registerAuthRoutes(r *mux.Router) {
	ah := handlers.NewAuthHandler(s.identity, s.registry)

	r.HandleFunc("/auth/{provider}", ah.ProviderAuth).Methods("GET")
	r.HandleFunc("/auth/{provider}/callback", ah.ProviderCallback).Methods("GET")
	r.HandleFunc("/logout", ah.Logout).Methods("POST")
}

func (s *Server) registerBookmarkRoutes(r *mux.Router) {
	bh := handlers.NewBookmarkHandler(s.identity, s.registry, s.store)

	r.HandleFunc("/bookmarks", bh.GetBookmarks).Methods("GET")
	r.HandleFunc("/bookmarks", bh.SaveBookmark).Methods("POST")
	r.HandleFunc("/bookmarks/events", bh.Events).Methods("GET")
	r.HandleFunc("/bookmarks/{id}/delete", bh.DeleteBookmark).Methods("POST")
}
