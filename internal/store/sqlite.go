package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/inovacc/cookbook/internal/model"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Compile-time interface check.
var _ Store = (*SQLite)(nil)

// SQLite implements Store on a SQLite database file.
type SQLite struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLite opens or creates a SQLite database at path and migrates it.
func NewSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	// WAL journal, wait up to 5s on a locked database.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := NewMigrator(db).MigrateUp(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Ping checks if the database is accessible.
func (s *SQLite) Ping() error {
	return s.db.Ping()
}

func (s *SQLite) List() ([]model.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT data FROM recipes ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing recipes: %w", err)
	}
	defer rows.Close()

	recipes := make([]model.Recipe, 0)

	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning recipe: %w", err)
		}

		var r model.Recipe
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return nil, err
		}

		recipes = append(recipes, r)
	}

	return recipes, rows.Err()
}

func (s *SQLite) Get(id string) (model.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data string

	err := s.db.QueryRow(`SELECT data FROM recipes WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Recipe{}, ErrNotFound
	}

	if err != nil {
		return model.Recipe{}, fmt.Errorf("getting recipe: %w", err)
	}

	var r model.Recipe
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return model.Recipe{}, err
	}

	return r, nil
}

func (s *SQLite) Create(r model.Recipe) (model.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = uuid.New().String()

	data, err := json.Marshal(r)
	if err != nil {
		return model.Recipe{}, err
	}

	if _, err := s.db.Exec(`INSERT INTO recipes (id, data) VALUES (?, ?)`, r.ID, string(data)); err != nil {
		return model.Recipe{}, fmt.Errorf("inserting recipe: %w", err)
	}

	return r, nil
}

func (s *SQLite) Replace(id string, r model.Recipe) (model.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = id

	data, err := json.Marshal(r)
	if err != nil {
		return model.Recipe{}, err
	}

	res, err := s.db.Exec(`UPDATE recipes SET data = ? WHERE id = ?`, string(data), id)
	if err != nil {
		return model.Recipe{}, fmt.Errorf("updating recipe: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return model.Recipe{}, ErrNotFound
	}

	return r, nil
}

func (s *SQLite) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting recipe: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return nil
}
