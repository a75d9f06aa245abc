package editor

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/inovacc/cookbook/internal/gateway"
	"github.com/inovacc/cookbook/internal/model"
	"github.com/inovacc/cookbook/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	timeout = time.Second
	tick    = 5 * time.Millisecond
)

type eventLog struct {
	mu     sync.Mutex
	events []*notify.Event
}

func (l *eventLog) Notify(_ context.Context, e *notify.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) all() []*notify.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*notify.Event(nil), l.events...)
}

func storedRecipe() model.Recipe {
	return model.Recipe{
		ID:       "r1",
		Name:     "Pancakes",
		Author:   "Ana",
		PrepTime: 10,
		CookTime: 15,
		Servings: 4,
		Rating:   3,
		Ingredients: []model.Ingredient{
			{Amount: model.Float(2), Measurement: "cups", Name: "flour"},
			{Name: "salt"},
		},
		Steps: []model.Step{
			{Number: 1, Text: "Mix"},
			{Number: 2, Text: "Fry"},
		},
		CreatedDate: "2024.01.02 03:04:05",
		Extra:       map[string]json.RawMessage{"origin": json.RawMessage(`"grandma"`)},
	}
}

func TestInitialize_New(t *testing.T) {
	e := New(gateway.NewMemory(), nil, nil)

	assert.False(t, e.Editing())
	require.Len(t, e.Ingredients(), 1)
	require.Len(t, e.Steps(), 1)
	assert.True(t, e.Ingredients()[0].IsEmpty())
	assert.Empty(t, e.Steps()[0].Text)

	d := e.Draft()
	assert.Empty(t, d.Name)
	assert.Empty(t, d.ID)
	assert.Zero(t, d.Servings)
	assert.Nil(t, d.Calories)
}

func TestInitialize_DraftWithoutIDStartsFresh(t *testing.T) {
	e := New(gateway.NewMemory(), nil, nil)
	e.Initialize(&model.Recipe{Name: "Unsaved"})

	assert.False(t, e.Editing())
	assert.Empty(t, e.ScalarValue(FieldName))
	assert.Len(t, e.Steps(), 1)
}

func TestInitialize_Edit(t *testing.T) {
	r := storedRecipe()
	e := New(gateway.NewMemory(), nil, nil)
	e.Initialize(&r)

	assert.True(t, e.Editing())
	assert.Equal(t, "Pancakes", e.ScalarValue(FieldName))
	assert.Equal(t, "10", e.ScalarValue(FieldPrepTime))

	steps := e.Steps()
	require.Len(t, steps, 2)
	assert.Equal(t, "Mix", steps[0].Text)
	assert.Equal(t, "Fry", steps[1].Text)

	ings := e.Ingredients()
	require.Len(t, ings, 2)
	assert.Equal(t, r.Ingredients[0], ings[0].Ingredient)
	assert.Equal(t, r.Ingredients[1], ings[1].Ingredient)

	// The caller's record is not shared with the editor.
	r.Ingredients[0].Name = "sugar"
	assert.Equal(t, "flour", e.Ingredients()[0].Name)
}

func TestBuildSubmission_RenumbersSteps(t *testing.T) {
	e := New(gateway.NewMemory(), nil, nil)
	e.AddStep()
	e.AddStep()
	e.AddStep()

	for i, text := range []string{"", "Boil water", "", "Add salt"} {
		require.NoError(t, e.UpdateStep(i, text))
	}

	got := e.BuildSubmission().Steps
	want := []model.Step{{Number: 1, Text: "Boil water"}, {Number: 2, Text: "Add salt"}}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("steps mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildSubmission_DropsEmptyIngredients(t *testing.T) {
	tests := []struct {
		name string
		key  IngredientKey
		val  string
		kept bool
	}{
		{"all empty", KeyName, "", false},
		{"zero amount only", KeyAmount, "0", false},
		{"amount only", KeyAmount, "3", true},
		{"measurement only", KeyMeasurement, "pinch", true},
		{"name only", KeyName, "pepper", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(gateway.NewMemory(), nil, nil)
			require.NoError(t, e.UpdateIngredient(0, tt.key, tt.val))

			got := e.BuildSubmission().Ingredients
			if !tt.kept {
				assert.Empty(t, got)
				return
			}

			require.Len(t, got, 1)
			assert.Equal(t, e.Ingredients()[0].Ingredient, got[0], "kept verbatim")
		})
	}
}

func TestBuildSubmission_PreservesServerOwnedFields(t *testing.T) {
	r := storedRecipe()
	e := New(gateway.NewMemory(), nil, nil)
	e.Initialize(&r)

	require.NoError(t, e.UpdateScalar(FieldName, "Crepes"))

	got := e.BuildSubmission()
	assert.Equal(t, "r1", got.ID)
	assert.Equal(t, "Crepes", got.Name)
	assert.Equal(t, 3, got.Rating)
	assert.Equal(t, r.CreatedDate, got.CreatedDate)
	assert.Equal(t, r.Extra, got.Extra)
}

func TestAddThenRemoveRestoresList(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, e *Editor)
	}{
		{
			name: "empty lists",
			setup: func(t *testing.T, e *Editor) {
				require.NoError(t, e.RemoveIngredient(0))
				require.NoError(t, e.RemoveStep(0))
			},
		},
		{
			name:  "fresh draft",
			setup: func(*testing.T, *Editor) {},
		},
		{
			name: "single entries",
			setup: func(t *testing.T, e *Editor) {
				require.NoError(t, e.UpdateIngredient(0, KeyName, "eggs"))
				require.NoError(t, e.UpdateStep(0, "Whisk"))
			},
		},
		{
			name: "several entries",
			setup: func(t *testing.T, e *Editor) {
				require.NoError(t, e.UpdateIngredient(0, KeyName, "eggs"))
				e.AddIngredient()
				require.NoError(t, e.UpdateIngredient(1, KeyAmount, "1.5"))
				e.AddIngredient()
				require.NoError(t, e.UpdateIngredient(2, KeyMeasurement, "cup"))
				require.NoError(t, e.UpdateStep(0, "Whisk"))
				e.AddStep()
				e.AddStep()
				require.NoError(t, e.UpdateStep(2, "Bake"))
			},
		},
		{
			name: "stored recipe",
			setup: func(_ *testing.T, e *Editor) {
				r := storedRecipe()
				e.Initialize(&r)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(gateway.NewMemory(), nil, nil)
			tt.setup(t, e)

			ingredients := e.Ingredients()
			e.AddIngredient()
			require.NoError(t, e.RemoveIngredient(len(ingredients)))

			if diff := cmp.Diff(ingredients, e.Ingredients()); diff != "" {
				t.Errorf("ingredients changed (-before +after):\n%s", diff)
			}

			steps := e.Steps()
			e.AddStep()
			require.NoError(t, e.RemoveStep(len(steps)))

			if diff := cmp.Diff(steps, e.Steps()); diff != "" {
				t.Errorf("steps changed (-before +after):\n%s", diff)
			}
		})
	}
}

func TestRemoveShiftsAndKeepsKeys(t *testing.T) {
	e := New(gateway.NewMemory(), nil, nil)
	e.AddStep()
	e.AddStep()

	for i, text := range []string{"a", "b", "c"} {
		require.NoError(t, e.UpdateStep(i, text))
	}

	before := e.Steps()
	require.NoError(t, e.RemoveStep(1))

	after := e.Steps()
	require.Len(t, after, 2)
	assert.Equal(t, before[0], after[0])
	assert.Equal(t, before[2], after[1], "later entries move up with their key")
}

func TestOutOfRange(t *testing.T) {
	e := New(gateway.NewMemory(), nil, nil)

	assert.ErrorIs(t, e.RemoveIngredient(1), ErrIndexOutOfRange)
	assert.ErrorIs(t, e.RemoveStep(-1), ErrIndexOutOfRange)
	assert.ErrorIs(t, e.UpdateStep(5, "x"), ErrIndexOutOfRange)
	assert.ErrorIs(t, e.UpdateIngredient(2, KeyName, "x"), ErrIndexOutOfRange)
}

func TestSnapshotsAreNotAliased(t *testing.T) {
	e := New(gateway.NewMemory(), nil, nil)
	require.NoError(t, e.UpdateIngredient(0, KeyAmount, "2"))
	require.NoError(t, e.UpdateStep(0, "first"))

	ings := e.Ingredients()
	steps := e.Steps()

	require.NoError(t, e.UpdateIngredient(0, KeyAmount, "7"))
	require.NoError(t, e.UpdateStep(0, "changed"))
	e.AddStep()

	assert.Equal(t, 2.0, *ings[0].Amount)
	assert.Equal(t, "first", steps[0].Text)
	assert.Len(t, steps, 1)

	// Writing into a snapshot does not reach the editor.
	steps[0].Text = "mutated"
	assert.Equal(t, "changed", e.Steps()[0].Text)
}

func TestUpdateScalar_RejectsNonNumeric(t *testing.T) {
	e := New(gateway.NewMemory(), nil, nil)
	require.NoError(t, e.UpdateScalar(FieldServings, "4"))

	tests := []struct {
		field Field
		value string
	}{
		{FieldServings, "four"},
		{FieldPrepTime, "NaN"},
		{FieldCookTime, "-5"},
		{FieldCalories, "lots"},
	}

	for _, tt := range tests {
		t.Run(string(tt.field)+"="+tt.value, func(t *testing.T) {
			err := e.UpdateScalar(tt.field, tt.value)

			var fe *FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.field, fe.Field)
		})
	}

	assert.Equal(t, "4", e.ScalarValue(FieldServings), "previous value kept")

	var fe *FieldError
	require.ErrorAs(t, e.UpdateIngredient(0, KeyAmount, "a bit"), &fe)
}

func TestUpdateScalar_Values(t *testing.T) {
	e := New(gateway.NewMemory(), nil, nil)

	require.NoError(t, e.UpdateScalar(FieldAuthor, "Bo"))
	require.NoError(t, e.UpdateScalar(FieldCookTime, " 12.5 "))
	require.NoError(t, e.UpdateScalar(FieldCalories, "300"))

	got := e.BuildSubmission()
	assert.Equal(t, "Bo", got.Author)
	assert.Equal(t, 12.5, got.CookTime)
	require.NotNil(t, got.Calories)
	assert.Equal(t, 300.0, *got.Calories)

	require.NoError(t, e.UpdateScalar(FieldCalories, ""))
	assert.Nil(t, e.BuildSubmission().Calories)

	assert.Error(t, e.UpdateScalar(Field("color"), "red"))
}

func TestSubmit_NewCallsCreateOnly(t *testing.T) {
	mem := gateway.NewMemory()
	events := &eventLog{}
	e := New(mem, events, nil)
	require.NoError(t, e.UpdateScalar(FieldName, "Soup"))

	rec, err := e.Submit(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rec.ID)

	assert.Equal(t, 1, mem.Calls(gateway.OpCreate))
	assert.Equal(t, 0, mem.Calls(gateway.OpUpdate))
	assert.False(t, e.Loading())

	got := events.all()
	require.Len(t, got, 1)
	assert.Equal(t, notify.EventCreated, got[0].Type)
	assert.Equal(t, "Soup", got[0].Recipe)
	assert.True(t, got[0].Success)
}

func TestSubmit_EditCallsUpdateOnly(t *testing.T) {
	r := storedRecipe()
	mem := gateway.NewMemory(r)
	events := &eventLog{}
	e := New(mem, events, nil)
	e.Initialize(&r)
	require.NoError(t, e.UpdateStep(1, "Fry both sides"))

	_, err := e.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, mem.Calls(gateway.OpCreate))
	require.Len(t, mem.Updates(), 1)

	call := mem.Updates()[0]
	assert.Equal(t, "r1", call.ID)
	assert.Equal(t, "Fry both sides", call.Recipe.Steps[1].Text)
	assert.Equal(t, r.Extra, call.Recipe.Extra)

	require.Len(t, events.all(), 1)
	assert.Equal(t, notify.EventUpdated, events.all()[0].Type)
}

func TestSubmit_FailureClearsLoading(t *testing.T) {
	mem := gateway.NewMemory()
	boom := &gateway.TransientError{Op: "create", Err: errors.New("connection refused")}
	mem.SetError(gateway.OpCreate, boom)

	events := &eventLog{}
	e := New(mem, events, nil)

	_, err := e.Submit(context.Background())
	require.ErrorIs(t, err, boom)
	assert.False(t, e.Loading())

	got := events.all()
	require.Len(t, got, 1)
	assert.False(t, got[0].Success)
	assert.True(t, got[0].Transient)
	assert.Equal(t, 1, mem.Calls(gateway.OpCreate), "no retry")
}

func TestSubmit_InProgress(t *testing.T) {
	mem := gateway.NewMemory()
	release := mem.Hold(gateway.OpCreate)
	e := New(mem, nil, nil)

	done := make(chan error, 1)
	go func() {
		_, err := e.Submit(context.Background())
		done <- err
	}()

	require.Eventually(t, e.Loading, timeout, tick)

	_, err := e.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitInProgress)

	release()
	require.NoError(t, <-done)
	assert.False(t, e.Loading())
	assert.Equal(t, 1, mem.Calls(gateway.OpCreate))
}

func TestCancel(t *testing.T) {
	r := storedRecipe()
	mem := gateway.NewMemory(r)
	e := New(mem, nil, nil)
	e.Initialize(&r)

	require.NoError(t, e.UpdateScalar(FieldName, "Waffles"))
	require.NoError(t, e.RemoveStep(0))
	e.AddIngredient()

	e.Cancel()

	assert.Equal(t, "Pancakes", e.ScalarValue(FieldName))
	assert.Len(t, e.Steps(), 2)
	assert.Len(t, e.Ingredients(), 2)
	assert.Equal(t, 0, mem.Calls(gateway.OpUpdate))
	assert.Equal(t, 0, mem.Calls(gateway.OpCreate))
}
