package gateway

import (
	"context"
	"fmt"

	"github.com/inovacc/cookbook/internal/model"
)

// Gateway is the remote recipe resource. Implementations must be safe for
// concurrent use; calls resolve independently with no ordering guarantee
// between unrelated operations.
type Gateway interface {
	// Create stores a new recipe. The recipe must not carry an ID.
	Create(ctx context.Context, recipe model.Recipe) error

	// ReadAll returns every recipe in server order, each with its ID set.
	ReadAll(ctx context.Context) ([]model.Recipe, error)

	// Update replaces the whole record stored under id.
	Update(ctx context.Context, id string, recipe model.Recipe) error

	// Delete removes the record stored under id.
	Delete(ctx context.Context, id string) error
}

// Getter is implemented by gateways that can fetch one record directly.
type Getter interface {
	Get(ctx context.Context, id string) (model.Recipe, error)
}

// Searcher is implemented by gateways that filter by name on the server.
type Searcher interface {
	Search(ctx context.Context, query string) ([]model.Recipe, error)
}

// Search returns the recipes whose name contains query, ignoring case,
// in server order. Gateways without Searcher are filtered after ReadAll.
func Search(ctx context.Context, gw Gateway, query string) ([]model.Recipe, error) {
	if s, ok := gw.(Searcher); ok {
		return s.Search(ctx, query)
	}

	recipes, err := gw.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	return filterByName(recipes, query), nil
}

func filterByName(recipes []model.Recipe, query string) []model.Recipe {
	out := make([]model.Recipe, 0, len(recipes))

	for _, r := range recipes {
		if r.NameMatches(query) {
			out = append(out, r)
		}
	}

	return out
}

// Find returns the recipe with the given id, using Get when the gateway
// supports it and scanning ReadAll otherwise.
func Find(ctx context.Context, gw Gateway, id string) (model.Recipe, error) {
	if g, ok := gw.(Getter); ok {
		return g.Get(ctx, id)
	}

	recipes, err := gw.ReadAll(ctx)
	if err != nil {
		return model.Recipe{}, err
	}

	for _, r := range recipes {
		if r.ID == id {
			return r, nil
		}
	}

	return model.Recipe{}, fmt.Errorf("recipe %s: %w", id, ErrNotFound)
}
