package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/inovacc/cookbook/internal/model"
	"github.com/inovacc/cookbook/internal/store"
)

// maxBody caps the size of a recipe request body.
const maxBody = 1 << 20

// errorResponse is the error envelope of every failed request.
type errorResponse struct {
	Error         string   `json:"error"`
	InvalidFields []string `json:"invalidFields,omitempty"`
}

// handleListRecipes returns every recipe in creation order.
func (s *Server) handleListRecipes(w http.ResponseWriter, _ *http.Request) {
	recipes, err := s.store.List()
	if err != nil {
		s.internalError(w, "list recipes", err)
		return
	}

	s.metrics.recipes.Set(float64(len(recipes)))
	writeJSON(w, http.StatusOK, recipes)
}

// handleSearchRecipes returns the recipes whose name contains the
// requested recipename, ignoring case.
func (s *Server) handleSearchRecipes(w http.ResponseWriter, r *http.Request) {
	var query struct {
		Name string `json:"recipename"`
	}

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&query); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed search: " + err.Error()})
		return
	}

	if strings.TrimSpace(query.Name) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "search needs a name", InvalidFields: []string{"recipename"}})
		return
	}

	recipes, err := s.store.List()
	if err != nil {
		s.internalError(w, "search recipes", err)
		return
	}

	found := make([]model.Recipe, 0, len(recipes))

	for _, recipe := range recipes {
		if recipe.NameMatches(query.Name) {
			found = append(found, recipe)
		}
	}

	writeJSON(w, http.StatusOK, found)
}

func (s *Server) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	recipe, err := s.store.Get(mux.Vars(r)["id"])
	if err != nil {
		s.storeError(w, "get recipe", err)
		return
	}

	writeJSON(w, http.StatusOK, recipe)
}

// handleCreateRecipe stores a new recipe. The server assigns the ID and
// both date fields.
func (s *Server) handleCreateRecipe(w http.ResponseWriter, r *http.Request) {
	recipe, ok := decodeRecipe(w, r)
	if !ok {
		return
	}

	if recipe.ID != "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "a new recipe must not carry an id", InvalidFields: []string{"_id"}})
		return
	}

	if invalid := validateRecipe(recipe); len(invalid) > 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid recipe", InvalidFields: invalid})
		return
	}

	now := s.now().Format(model.ServerTimeLayout)
	recipe.CreatedDate = now
	recipe.LastUpdatedDate = now

	created, err := s.store.Create(recipe)
	if err != nil {
		s.internalError(w, "create recipe", err)
		return
	}

	s.log.Info("recipe created", slog.String("id", created.ID), slog.String("name", created.Name))
	writeJSON(w, http.StatusCreated, created)
}

// handleUpdateRecipe replaces a whole recipe. The creation date is kept
// when the body leaves it out.
func (s *Server) handleUpdateRecipe(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	recipe, ok := decodeRecipe(w, r)
	if !ok {
		return
	}

	if invalid := validateRecipe(recipe); len(invalid) > 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid recipe", InvalidFields: invalid})
		return
	}

	current, err := s.store.Get(id)
	if err != nil {
		s.storeError(w, "update recipe", err)
		return
	}

	if recipe.CreatedDate == "" {
		recipe.CreatedDate = current.CreatedDate
	}

	recipe.LastUpdatedDate = s.now().Format(model.ServerTimeLayout)

	updated, err := s.store.Replace(id, recipe)
	if err != nil {
		s.storeError(w, "update recipe", err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.store.Delete(id); err != nil {
		s.storeError(w, "delete recipe", err)
		return
	}

	s.log.Info("recipe deleted", slog.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}

// handleHealth reports whether the database answers.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if err := s.store.Ping(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// validateRecipe returns the wire names of the fields that fail validation.
func validateRecipe(r model.Recipe) []string {
	var invalid []string

	if strings.TrimSpace(r.Name) == "" {
		invalid = append(invalid, "recipename")
	}

	if !model.ValidRating(r.Rating) {
		invalid = append(invalid, "rating")
	}

	if r.PrepTime < 0 {
		invalid = append(invalid, "preptime")
	}

	if r.CookTime < 0 {
		invalid = append(invalid, "cooktime")
	}

	if r.Servings < 0 {
		invalid = append(invalid, "servings")
	}

	return invalid
}

func decodeRecipe(w http.ResponseWriter, r *http.Request) (model.Recipe, bool) {
	var recipe model.Recipe

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&recipe); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed recipe: " + err.Error()})
		return model.Recipe{}, false
	}

	return recipe, true
}

func (s *Server) storeError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}

	s.internalError(w, op, err)
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.log.Error("request failed", slog.String("op", op), slog.Any("error", err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
