package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(r *mux.Router) {
	// Recipe API
	r.HandleFunc("/api/recipes", s.handleListRecipes).Methods(http.MethodGet)
	r.HandleFunc("/api/recipe", s.handleCreateRecipe).Methods(http.MethodPost)
	r.HandleFunc("/api/recipe/search", s.handleSearchRecipes).Methods(http.MethodPost)
	r.HandleFunc("/api/recipe/{id}", s.handleGetRecipe).Methods(http.MethodGet)
	r.HandleFunc("/api/recipe/{id}", s.handleUpdateRecipe).Methods(http.MethodPut)
	r.HandleFunc("/api/recipe/{id}", s.handleDeleteRecipe).Methods(http.MethodDelete)

	// System
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
}
