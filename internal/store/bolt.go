package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/inovacc/cookbook/internal/model"
	"go.etcd.io/bbolt"
)

const (
	boltBucketRecipes = "recipes" // key: sequence -> Recipe JSON
	boltBucketIDs     = "ids"     // key: recipe ID -> sequence
)

// Compile-time interface check.
var _ Store = (*Bolt)(nil)

type Bolt struct {
	storage *bbolt.DB
}

// NewBolt opens or creates a Bolt database at path.
func NewBolt(path string) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	instance, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	if err := instance.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(boltBucketRecipes)); err != nil {
			return err
		}

		if _, err := tx.CreateBucketIfNotExists([]byte(boltBucketIDs)); err != nil {
			return err
		}

		return nil
	}); err != nil {
		_ = instance.Close()

		return nil, err
	}

	return &Bolt{storage: instance}, nil
}

// Close closes the database.
func (b *Bolt) Close() error {
	return b.storage.Close()
}

func (b *Bolt) Ping() error {
	return b.storage.View(func(tx *bbolt.Tx) error {
		return nil
	})
}

func (b *Bolt) List() ([]model.Recipe, error) {
	recipes := make([]model.Recipe, 0)

	err := b.storage.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(boltBucketRecipes)).ForEach(func(_, v []byte) error {
			var r model.Recipe
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}

			recipes = append(recipes, r)

			return nil
		})
	})

	return recipes, err
}

func (b *Bolt) Get(id string) (model.Recipe, error) {
	var r model.Recipe

	err := b.storage.View(func(tx *bbolt.Tx) error {
		key := tx.Bucket([]byte(boltBucketIDs)).Get([]byte(id))
		if key == nil {
			return ErrNotFound
		}

		data := tx.Bucket([]byte(boltBucketRecipes)).Get(key)
		if data == nil {
			return ErrNotFound
		}

		return json.Unmarshal(data, &r)
	})

	return r, err
}

func (b *Bolt) Create(r model.Recipe) (model.Recipe, error) {
	r.ID = uuid.New().String()

	data, err := json.Marshal(r)
	if err != nil {
		return model.Recipe{}, err
	}

	err = b.storage.Update(func(tx *bbolt.Tx) error {
		var (
			recipes = tx.Bucket([]byte(boltBucketRecipes))
			ids     = tx.Bucket([]byte(boltBucketIDs))
		)

		seq, err := recipes.NextSequence()
		if err != nil {
			return err
		}

		key := seqKey(seq)

		if err := recipes.Put(key, data); err != nil {
			return err
		}

		return ids.Put([]byte(r.ID), key)
	})
	if err != nil {
		return model.Recipe{}, err
	}

	return r, nil
}

func (b *Bolt) Replace(id string, r model.Recipe) (model.Recipe, error) {
	r.ID = id

	data, err := json.Marshal(r)
	if err != nil {
		return model.Recipe{}, err
	}

	err = b.storage.Update(func(tx *bbolt.Tx) error {
		key := tx.Bucket([]byte(boltBucketIDs)).Get([]byte(id))
		if key == nil {
			return ErrNotFound
		}

		return tx.Bucket([]byte(boltBucketRecipes)).Put(key, data)
	})
	if err != nil {
		return model.Recipe{}, err
	}

	return r, nil
}

func (b *Bolt) Delete(id string) error {
	return b.storage.Update(func(tx *bbolt.Tx) error {
		ids := tx.Bucket([]byte(boltBucketIDs))

		key := ids.Get([]byte(id))
		if key == nil {
			return ErrNotFound
		}

		if err := tx.Bucket([]byte(boltBucketRecipes)).Delete(key); err != nil {
			return err
		}

		return ids.Delete([]byte(id))
	})
}

// seqKey encodes n so that byte order matches insertion order.
func seqKey(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)

	return b
}
