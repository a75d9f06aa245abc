// Package collection keeps the client's copy of the recipe list in step with
// the server: the in-memory collection, per-card UI state, the refresh
// protocol run after mutations, and the optimistic rating update.
package collection

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/inovacc/cookbook/internal/model"
)

// ErrStoreClosed is returned for work that reaches a store after Close.
var ErrStoreClosed = errors.New("recipe store closed")

// UIState is the ephemeral per-card state the browser shows.
type UIState struct {
	IngredientsVisible bool
	StepsVisible       bool
	CardLoading        bool
}

// Store owns the recipe collection and the UI state keyed by recipe ID.
//
// Every field below is an immutable snapshot swapped under mu, so values
// handed out by the accessors never change underneath a caller.
type Store struct {
	log *slog.Logger

	// ctx is the liveness token; it is cancelled by Close.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	recipes []model.Recipe
	ui      map[string]UIState
	ratings map[string]int
	stale   bool
	gen     uint64
	closed  bool
	subs    []chan struct{}
}

// NewStore returns an empty store marked stale.
func NewStore(log *slog.Logger) *Store {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Store{
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
		ui:      map[string]UIState{},
		ratings: map[string]int{},
		stale:   true,
	}
}

// Recipes returns the collection in server order.
func (s *Store) Recipes() []model.Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.recipes)
}

// Recipe returns the recipe with the given ID.
func (s *Store) Recipe(id string) (model.Recipe, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.recipes {
		if r.ID == id {
			return r.Clone(), true
		}
	}

	return model.Recipe{}, false
}

// Stale reports whether the collection may be behind the server.
func (s *Store) Stale() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.stale
}

// UIState returns the card state for id; unknown IDs get the zero value.
func (s *Store) UIState(id string) UIState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.ui[id]
}

// ToggleIngredients flips the ingredient list of a card and returns the new value.
func (s *Store) ToggleIngredients(id string) bool {
	st := s.updateUI(id, func(st UIState) UIState {
		st.IngredientsVisible = !st.IngredientsVisible
		return st
	})

	return st.IngredientsVisible
}

// ToggleSteps flips the step list of a card and returns the new value.
func (s *Store) ToggleSteps(id string) bool {
	st := s.updateUI(id, func(st UIState) UIState {
		st.StepsVisible = !st.StepsVisible
		return st
	})

	return st.StepsVisible
}

// DisplayedRating is the rating shown on the card for id: the last rating
// the user picked, or the stored one when there is none.
func (s *Store) DisplayedRating(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n, ok := s.ratings[id]; ok {
		return n
	}

	for _, r := range s.recipes {
		if r.ID == id {
			return r.Rating
		}
	}

	return 0
}

// Subscribe returns a channel that receives a value after each collection
// replacement. Signals coalesce. The channel is closed by Close.
func (s *Store) Subscribe() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan struct{}, 1)
	if s.closed {
		close(ch)
		return ch
	}

	s.subs = append(s.subs, ch)

	return ch
}

// Close tears the store down. Fetches still running are cancelled and their
// results are dropped. Close is idempotent.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.closed = true
	s.cancel()

	for _, ch := range s.subs {
		close(ch)
	}

	s.subs = nil
	s.log.Debug("collection: store closed")
}

// Closed reports whether Close has been called.
func (s *Store) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.closed
}

// Wait blocks until background work started for this store has returned.
func (s *Store) Wait() {
	s.wg.Wait()
}

// begin registers a unit of background work. It fails once the store is closed.
func (s *Store) begin() (done func(), err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	s.wg.Add(1)

	return s.wg.Done, nil
}

// markStale flags the collection and returns the new generation.
func (s *Store) markStale() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stale = true
	s.gen++

	return s.gen
}

func (s *Store) generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.gen
}

// replace swaps in a freshly fetched collection. Stale is cleared only when
// nothing was marked stale since startGen; the return value says whether it
// was. Card state and rating overrides for vanished IDs are dropped.
func (s *Store) replace(recipes []model.Recipe, startGen uint64) (current bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, ErrStoreClosed
	}

	next := make([]model.Recipe, len(recipes))
	ids := make(map[string]model.Recipe, len(recipes))

	for i, r := range recipes {
		next[i] = r.Clone()
		ids[r.ID] = next[i]
	}

	ui := make(map[string]UIState, len(s.ui))
	for id, st := range s.ui {
		if _, ok := ids[id]; ok {
			ui[id] = st
		}
	}

	ratings := make(map[string]int, len(s.ratings))
	for id, n := range s.ratings {
		if r, ok := ids[id]; ok && r.Rating != n {
			ratings[id] = n
		}
	}

	s.recipes = next
	s.ui = ui
	s.ratings = ratings

	current = s.gen == startGen
	if current {
		s.stale = false
	}

	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}

	return current, nil
}

func (s *Store) updateUI(id string, fn func(UIState) UIState) UIState {
	s.mu.Lock()
	defer s.mu.Unlock()

	ui := maps.Clone(s.ui)
	st := fn(ui[id])
	ui[id] = st
	s.ui = ui

	return st
}

func (s *Store) setCardLoading(id string, loading bool) {
	s.updateUI(id, func(st UIState) UIState {
		st.CardLoading = loading
		return st
	})
}

func (s *Store) setDisplayedRating(id string, rating int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ratings := maps.Clone(s.ratings)
	ratings[id] = rating
	s.ratings = ratings
}
