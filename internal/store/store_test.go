package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/inovacc/cookbook/internal/model"
)

func setupTestDB(t *testing.T, backend Backend) (Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "cookbook-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	db, err := Open(backend, filepath.Join(tmpDir, "nested", "test.db"))
	if err != nil {
		_ = os.RemoveAll(tmpDir)

		t.Fatalf("failed to create test database: %v", err)
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			t.Logf("failed to close database: %v", err)
		}

		_ = os.RemoveAll(tmpDir)
	}

	return db, cleanup
}

var backends = []Backend{BackendBolt, BackendSQLite}

func forEachBackend(t *testing.T, fn func(t *testing.T, db Store)) {
	t.Helper()

	for _, backend := range backends {
		t.Run(string(backend), func(t *testing.T) {
			db, cleanup := setupTestDB(t, backend)
			defer cleanup()

			fn(t, db)
		})
	}
}

func TestStore_Ping(t *testing.T) {
	forEachBackend(t, func(t *testing.T, db Store) {
		if err := db.Ping(); err != nil {
			t.Errorf("Ping() error = %v, want nil", err)
		}
	})
}

func TestStore_CreateAndGet(t *testing.T) {
	forEachBackend(t, func(t *testing.T, db Store) {
		created, err := db.Create(model.Recipe{
			Name:        "Pancakes",
			Servings:    4,
			Calories:    model.Float(350),
			Ingredients: []model.Ingredient{{Amount: model.Float(2), Measurement: "cups", Name: "flour"}},
			Steps:       []model.Step{{Number: 1, Text: "Mix"}},
			Extra:       map[string]json.RawMessage{"tags": json.RawMessage(`["breakfast"]`)},
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		if created.ID == "" {
			t.Fatal("Create() returned a record without an ID")
		}

		got, err := db.Get(created.ID)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}

		if got.Name != "Pancakes" || got.Servings != 4 || *got.Calories != 350 {
			t.Errorf("Get() = %+v, want the created recipe", got)
		}

		if len(got.Ingredients) != 1 || got.Ingredients[0].String() != "2 cups of flour" {
			t.Errorf("Get() ingredients = %v", got.Ingredients)
		}

		if string(got.Extra["tags"]) != `["breakfast"]` {
			t.Errorf("Get() extra = %s, want unknown fields preserved", got.Extra["tags"])
		}
	})
}

func TestStore_ListKeepsInsertionOrder(t *testing.T) {
	forEachBackend(t, func(t *testing.T, db Store) {
		empty, err := db.List()
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}

		if empty == nil || len(empty) != 0 {
			t.Errorf("List() on empty store = %#v, want empty non-nil slice", empty)
		}

		names := []string{"Soup", "Apple pie", "Bread"}

		var ids []string

		for _, name := range names {
			r, err := db.Create(model.Recipe{Name: name})
			if err != nil {
				t.Fatalf("Create(%s) error = %v", name, err)
			}

			ids = append(ids, r.ID)
		}

		// Replacing the first record must not move it to the end.
		if _, err := db.Replace(ids[0], model.Recipe{Name: "Tomato soup", Rating: 4}); err != nil {
			t.Fatalf("Replace() error = %v", err)
		}

		all, err := db.List()
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}

		want := []string{"Tomato soup", "Apple pie", "Bread"}
		if len(all) != len(want) {
			t.Fatalf("List() returned %d recipes, want %d", len(all), len(want))
		}

		for i, r := range all {
			if r.Name != want[i] || r.ID != ids[i] {
				t.Errorf("List()[%d] = %s (%s), want %s (%s)", i, r.Name, r.ID, want[i], ids[i])
			}
		}
	})
}

func TestStore_ReplaceKeepsID(t *testing.T) {
	forEachBackend(t, func(t *testing.T, db Store) {
		r, err := db.Create(model.Recipe{Name: "Bread"})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		replaced, err := db.Replace(r.ID, model.Recipe{ID: "something-else", Name: "Rye bread"})
		if err != nil {
			t.Fatalf("Replace() error = %v", err)
		}

		if replaced.ID != r.ID {
			t.Errorf("Replace() ID = %s, want %s", replaced.ID, r.ID)
		}

		if _, err := db.Get("something-else"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get(something-else) error = %v, want ErrNotFound", err)
		}
	})
}

func TestStore_NotFound(t *testing.T) {
	forEachBackend(t, func(t *testing.T, db Store) {
		if _, err := db.Get("missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get() error = %v, want ErrNotFound", err)
		}

		if _, err := db.Replace("missing", model.Recipe{Name: "x"}); !errors.Is(err, ErrNotFound) {
			t.Errorf("Replace() error = %v, want ErrNotFound", err)
		}

		if err := db.Delete("missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Delete() error = %v, want ErrNotFound", err)
		}
	})
}

func TestStore_Delete(t *testing.T) {
	forEachBackend(t, func(t *testing.T, db Store) {
		a, _ := db.Create(model.Recipe{Name: "A"})
		b, _ := db.Create(model.Recipe{Name: "B"})

		if err := db.Delete(a.ID); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}

		all, err := db.List()
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}

		if len(all) != 1 || all[0].ID != b.ID {
			t.Errorf("List() after delete = %v, want only %s", all, b.ID)
		}

		if _, err := db.Get(a.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get() deleted record error = %v, want ErrNotFound", err)
		}
	})
}

func TestStore_Reopen(t *testing.T) {
	for _, backend := range backends {
		t.Run(string(backend), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "reopen.db")

			db, err := Open(backend, path)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}

			r, err := db.Create(model.Recipe{Name: "Persisted"})
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}

			if err := db.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}

			db, err = Open(backend, path)
			if err != nil {
				t.Fatalf("reopen error = %v", err)
			}
			defer func() { _ = db.Close() }()

			got, err := db.Get(r.ID)
			if err != nil {
				t.Fatalf("Get() after reopen error = %v", err)
			}

			if got.Name != "Persisted" {
				t.Errorf("Get() after reopen = %s, want Persisted", got.Name)
			}
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, err := Open("mongo", filepath.Join(t.TempDir(), "x")); err == nil {
		t.Error("Open(mongo) error = nil, want error")
	}
}
