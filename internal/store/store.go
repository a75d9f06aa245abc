package store

import (
	"errors"
	"fmt"

	"github.com/inovacc/cookbook/internal/model"
)

// ErrNotFound is returned when no recipe has the requested ID.
var ErrNotFound = errors.New("recipe not found")

// Backend names a storage engine.
type Backend string

const (
	BackendBolt   Backend = "bolt"
	BackendSQLite Backend = "sqlite"
)

// Store defines the recipe persistence used by the API server.
// List returns recipes in insertion order.
type Store interface {
	Ping() error
	List() ([]model.Recipe, error)
	Get(id string) (model.Recipe, error)

	// Create stores r under a fresh ID and returns the stored record.
	Create(r model.Recipe) (model.Recipe, error)

	// Replace overwrites the record stored under id, keeping its position.
	Replace(id string, r model.Recipe) (model.Recipe, error)

	Delete(id string) error
	Close() error
}

// Open opens the store for backend at path, creating it if needed.
func Open(backend Backend, path string) (Store, error) {
	switch backend {
	case BackendBolt, "":
		return NewBolt(path)
	case BackendSQLite:
		return NewSQLite(path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
