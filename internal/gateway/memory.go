package gateway

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/inovacc/cookbook/internal/model"
)

// Op names a gateway operation.
type Op string

const (
	OpCreate  Op = "create"
	OpReadAll Op = "read all"
	OpUpdate  Op = "update"
	OpDelete  Op = "delete"
)

// Compile-time interface checks.
var (
	_ Gateway = (*Memory)(nil)
	_ Getter  = (*Memory)(nil)
)

// UpdateCall records the arguments of one Update.
type UpdateCall struct {
	ID     string
	Recipe model.Recipe
}

// Memory is an in-process Gateway. It keeps recipes in insertion order,
// counts calls, and lets callers inject errors or hold operations open to
// simulate latency. Safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	recipes []model.Recipe
	calls   map[Op]int
	updates []UpdateCall
	creates []model.Recipe
	errs    map[Op]error
	holds   map[Op]chan struct{}
}

// NewMemory creates a Memory gateway seeded with the given recipes.
// Seeds without an ID get one assigned.
func NewMemory(seed ...model.Recipe) *Memory {
	m := &Memory{
		calls: make(map[Op]int),
		errs:  make(map[Op]error),
		holds: make(map[Op]chan struct{}),
	}

	for _, r := range seed {
		r = r.Clone()
		if r.ID == "" {
			r.ID = uuid.NewString()
		}

		m.recipes = append(m.recipes, r)
	}

	return m
}

// SetError makes every later call of op fail with err. A nil err clears it.
func (m *Memory) SetError(op Op, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err == nil {
		delete(m.errs, op)
		return
	}

	m.errs[op] = err
}

// Hold makes later calls of op block until the returned release function is
// called. A held call ignores its context, like a response already on the
// wire. Release is idempotent.
func (m *Memory) Hold(op Op) (release func()) {
	ch := make(chan struct{})

	m.mu.Lock()
	m.holds[op] = ch
	m.mu.Unlock()

	var once sync.Once

	return func() {
		once.Do(func() {
			m.mu.Lock()
			if m.holds[op] == ch {
				delete(m.holds, op)
			}
			m.mu.Unlock()

			close(ch)
		})
	}
}

// Calls returns how many times op has been invoked.
func (m *Memory) Calls(op Op) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.calls[op]
}

// Updates returns the recorded Update calls in order.
func (m *Memory) Updates() []UpdateCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]UpdateCall, len(m.updates))
	copy(out, m.updates)

	return out
}

// Creates returns the recipes passed to Create in order.
func (m *Memory) Creates() []model.Recipe {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Recipe, len(m.creates))
	copy(out, m.creates)

	return out
}

// enter counts the call, waits on any hold, then returns the injected error.
func (m *Memory) enter(op Op) error {
	m.mu.Lock()
	m.calls[op]++
	hold := m.holds[op]
	m.mu.Unlock()

	if hold != nil {
		<-hold
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.errs[op]
}

// Create appends a recipe with a fresh ID.
func (m *Memory) Create(_ context.Context, recipe model.Recipe) error {
	if err := m.enter(OpCreate); err != nil {
		return err
	}

	if recipe.ID != "" {
		return &RejectedError{Op: string(OpCreate), Status: http.StatusBadRequest, Message: "new recipe must not carry an id"}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.creates = append(m.creates, recipe.Clone())

	stored := recipe.Clone()
	stored.ID = uuid.NewString()
	m.recipes = append(m.recipes, stored)

	return nil
}

// ReadAll returns copies of every stored recipe.
func (m *Memory) ReadAll(_ context.Context) ([]model.Recipe, error) {
	if err := m.enter(OpReadAll); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Recipe, len(m.recipes))
	for i, r := range m.recipes {
		out[i] = r.Clone()
	}

	return out, nil
}

// Get returns one recipe by id.
func (m *Memory) Get(_ context.Context, id string) (model.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.index(id); i >= 0 {
		return m.recipes[i].Clone(), nil
	}

	return model.Recipe{}, notFound("get", id)
}

// Search filters the stored recipes by name.
func (m *Memory) Search(_ context.Context, query string) ([]model.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	found := filterByName(m.recipes, query)
	for i := range found {
		found[i] = found[i].Clone()
	}

	return found, nil
}

// Update replaces the stored record; the stored ID is kept.
func (m *Memory) Update(_ context.Context, id string, recipe model.Recipe) error {
	if err := m.enter(OpUpdate); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.updates = append(m.updates, UpdateCall{ID: id, Recipe: recipe.Clone()})

	i := m.index(id)
	if i < 0 {
		return notFound(string(OpUpdate), id)
	}

	stored := recipe.Clone()
	stored.ID = id
	m.recipes[i] = stored

	return nil
}

// Delete removes the record, keeping the order of the rest.
func (m *Memory) Delete(_ context.Context, id string) error {
	if err := m.enter(OpDelete); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return notFound(string(OpDelete), id)
	}

	m.recipes = append(m.recipes[:i:i], m.recipes[i+1:]...)

	return nil
}

func (m *Memory) index(id string) int {
	for i, r := range m.recipes {
		if r.ID == id {
			return i
		}
	}

	return -1
}

func notFound(op, id string) error {
	return &RejectedError{Op: op, Status: http.StatusNotFound, Message: fmt.Sprintf("recipe %s does not exist", id)}
}
