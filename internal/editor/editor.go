// Package editor holds the editable state of a single recipe draft and
// turns it into the payload sent to the recipe API.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/inovacc/cookbook/internal/gateway"
	"github.com/inovacc/cookbook/internal/model"
	"github.com/inovacc/cookbook/internal/notify"
)

var (
	// ErrIndexOutOfRange is returned when a list operation addresses a
	// position that does not exist.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrSubmitInProgress is returned by Submit while an earlier submit has
	// not finished.
	ErrSubmitInProgress = errors.New("submit already in progress")
)

// IngredientEntry is one row of the ingredient list. Key identifies the row
// across additions and removals of its siblings.
type IngredientEntry struct {
	Key string
	model.Ingredient
}

// StepEntry is one row of the step list. Steps are numbered on submission.
type StepEntry struct {
	Key  string
	Text string
}

// Editor owns one draft. All methods are safe for concurrent use.
//
// Lists are replaced, never written in place, so slices returned by
// Ingredients and Steps stay valid after later edits.
type Editor struct {
	gw       gateway.Gateway
	notifier notify.Notifier
	log      *slog.Logger

	mu          sync.Mutex
	initial     *model.Recipe
	original    *model.Recipe
	scalars     model.Recipe
	ingredients []IngredientEntry
	steps       []StepEntry
	loading     bool
}

// New returns an editor holding an empty new-recipe draft.
func New(gw gateway.Gateway, n notify.Notifier, log *slog.Logger) *Editor {
	if n == nil {
		n = notify.Discard
	}

	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	e := &Editor{gw: gw, notifier: n, log: log}
	e.Initialize(nil)

	return e
}

// Initialize loads a draft. A draft with an ID is edited: its scalars,
// ingredients and step texts are copied in. Without one the editor starts a
// new recipe with one blank step and one empty ingredient.
func (e *Editor) Initialize(draft *model.Recipe) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.reset(draft)
}

func (e *Editor) reset(draft *model.Recipe) {
	if draft != nil {
		c := draft.Clone()
		e.initial = &c
	} else {
		e.initial = nil
	}

	if draft == nil || !draft.Persisted() {
		e.original = nil
		e.scalars = model.Recipe{}
		e.ingredients = []IngredientEntry{newIngredient()}
		e.steps = []StepEntry{newStep("")}

		return
	}

	orig := draft.Clone()
	e.original = &orig
	e.scalars = scalarsOf(orig)

	e.ingredients = make([]IngredientEntry, len(orig.Ingredients))
	for i, ing := range orig.Ingredients {
		e.ingredients[i] = IngredientEntry{Key: uuid.NewString(), Ingredient: ing.Clone()}
	}

	e.steps = make([]StepEntry, len(orig.Steps))
	for i, s := range orig.Steps {
		e.steps[i] = newStep(s.Text)
	}
}

// Cancel throws away every change since the last Initialize. Nothing is sent.
func (e *Editor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.reset(e.initial)
	e.log.Debug("editor: draft discarded")
}

// UpdateScalar sets one top-level field from user input. Numeric fields
// that do not parse are rejected with a *FieldError and keep their value.
func (e *Editor) UpdateScalar(field Field, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.scalars

	switch field {
	case FieldName:
		next.Name = value
	case FieldAuthor:
		next.Author = value
	case FieldPrepTime, FieldCookTime, FieldServings:
		n, err := parseNumber(field, value)
		if err != nil {
			return err
		}

		switch field {
		case FieldPrepTime:
			next.PrepTime = n
		case FieldCookTime:
			next.CookTime = n
		default:
			next.Servings = n
		}
	case FieldCalories:
		n, err := parseOptional(field, value)
		if err != nil {
			return err
		}

		next.Calories = n
	default:
		return fmt.Errorf("unknown field %q", field)
	}

	e.scalars = next

	return nil
}

// UpdateIngredient sets one key of the ingredient at index.
func (e *Editor) UpdateIngredient(index int, key IngredientKey, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if index < 0 || index >= len(e.ingredients) {
		return fmt.Errorf("ingredient %d: %w", index, ErrIndexOutOfRange)
	}

	entry := e.ingredients[index]

	switch key {
	case KeyAmount:
		n, err := parseOptional(Field(fmt.Sprintf("ingredients[%d].amount", index)), value)
		if err != nil {
			return err
		}

		entry.Amount = n
	case KeyMeasurement:
		entry.Measurement = value
	case KeyName:
		entry.Name = value
	default:
		return fmt.Errorf("unknown ingredient key %q", key)
	}

	next := slices.Clone(e.ingredients)
	next[index] = entry
	e.ingredients = next

	return nil
}

// UpdateStep sets the text of the step at index.
func (e *Editor) UpdateStep(index int, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if index < 0 || index >= len(e.steps) {
		return fmt.Errorf("step %d: %w", index, ErrIndexOutOfRange)
	}

	next := slices.Clone(e.steps)
	next[index].Text = value
	e.steps = next

	return nil
}

// AddIngredient appends an empty ingredient.
func (e *Editor) AddIngredient() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ingredients = append(slices.Clip(e.ingredients), newIngredient())
}

// AddStep appends a blank step.
func (e *Editor) AddStep() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.steps = append(slices.Clip(e.steps), newStep(""))
}

// RemoveIngredient deletes the ingredient at index; later entries move up.
func (e *Editor) RemoveIngredient(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if index < 0 || index >= len(e.ingredients) {
		return fmt.Errorf("ingredient %d: %w", index, ErrIndexOutOfRange)
	}

	e.ingredients = slices.Delete(slices.Clone(e.ingredients), index, index+1)

	return nil
}

// RemoveStep deletes the step at index; later steps move up.
func (e *Editor) RemoveStep(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if index < 0 || index >= len(e.steps) {
		return fmt.Errorf("step %d: %w", index, ErrIndexOutOfRange)
	}

	e.steps = slices.Delete(slices.Clone(e.steps), index, index+1)

	return nil
}

// BuildSubmission returns the record that Submit would send.
func (e *Editor) BuildSubmission() model.Recipe {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.build()
}

func (e *Editor) build() model.Recipe {
	var out model.Recipe
	if e.original != nil {
		out = e.original.Clone()
	}

	out.Name = e.scalars.Name
	out.Author = e.scalars.Author
	out.PrepTime = e.scalars.PrepTime
	out.CookTime = e.scalars.CookTime
	out.Servings = e.scalars.Servings
	out.Calories = nil

	if e.scalars.Calories != nil {
		out.Calories = model.Float(*e.scalars.Calories)
	}

	out.Ingredients = make([]model.Ingredient, 0, len(e.ingredients))
	for _, entry := range e.ingredients {
		if entry.IsEmpty() {
			continue
		}

		out.Ingredients = append(out.Ingredients, entry.Ingredient.Clone())
	}

	out.Steps = make([]model.Step, 0, len(e.steps))
	for _, s := range e.steps {
		if s.Text == "" {
			continue
		}

		out.Steps = append(out.Steps, model.Step{Number: len(out.Steps) + 1, Text: s.Text})
	}

	return out
}

// Submit sends the draft: Update when editing a stored recipe, Create
// otherwise. Loading is set for the duration of the call. The outcome is
// reported to the notifier; failures are also returned. There is no retry.
func (e *Editor) Submit(ctx context.Context) (model.Recipe, error) {
	e.mu.Lock()
	if e.loading {
		e.mu.Unlock()
		return model.Recipe{}, ErrSubmitInProgress
	}

	e.loading = true
	rec := e.build()
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.loading = false
		e.mu.Unlock()
	}()

	eventType := notify.EventCreated
	if rec.Persisted() {
		eventType = notify.EventUpdated
	}

	e.log.Debug("editor: submitting", slog.String("type", eventType), slog.String("id", rec.ID))

	var err error
	if rec.Persisted() {
		err = e.gw.Update(ctx, rec.ID, rec)
	} else {
		err = e.gw.Create(ctx, rec)
	}

	event := notify.NewEvent(eventType).WithRecipe(rec.DisplayName(), rec.ID)

	if err != nil {
		e.log.Warn("editor: submit failed", slog.String("recipe", rec.DisplayName()), slog.Any("error", err))
		e.notifier.Notify(ctx, event.WithError(err.Error()).WithTransient(gateway.IsTransient(err)))

		return rec, fmt.Errorf("save %s: %w", rec.DisplayName(), err)
	}

	e.notifier.Notify(ctx, event)

	return rec, nil
}

// Draft returns the current scalar fields together with the unfiltered
// lists, steps numbered by position.
func (e *Editor) Draft() model.Recipe {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := e.scalars.Clone()

	out.Ingredients = make([]model.Ingredient, len(e.ingredients))
	for i, entry := range e.ingredients {
		out.Ingredients[i] = entry.Ingredient.Clone()
	}

	out.Steps = make([]model.Step, len(e.steps))
	for i, s := range e.steps {
		out.Steps[i] = model.Step{Number: i + 1, Text: s.Text}
	}

	return out
}

// Ingredients returns a copy of the ingredient rows.
func (e *Editor) Ingredients() []IngredientEntry {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]IngredientEntry, len(e.ingredients))
	for i, entry := range e.ingredients {
		out[i] = IngredientEntry{Key: entry.Key, Ingredient: entry.Ingredient.Clone()}
	}

	return out
}

// Steps returns a copy of the step rows.
func (e *Editor) Steps() []StepEntry {
	e.mu.Lock()
	defer e.mu.Unlock()

	return slices.Clone(e.steps)
}

// Loading reports whether a submit is in flight.
func (e *Editor) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.loading
}

// Editing reports whether the draft is a stored recipe.
func (e *Editor) Editing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.original != nil
}

func newIngredient() IngredientEntry {
	return IngredientEntry{Key: uuid.NewString()}
}

func newStep(text string) StepEntry {
	return StepEntry{Key: uuid.NewString(), Text: text}
}

// scalarsOf keeps the identity and top-level fields of r, without its lists.
func scalarsOf(r model.Recipe) model.Recipe {
	out := r.Clone()
	out.Ingredients = nil
	out.Steps = nil

	return out
}
