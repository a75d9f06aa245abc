package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/inovacc/cookbook/internal/editor"
	"github.com/inovacc/cookbook/internal/model"
)

// ingredientSep separates amount, measurement and name on one form line.
const ingredientSep = "|"

// RecipeFormValues are the string inputs of the interactive recipe form.
// Ingredients hold one "amount | measurement | name" row per line and
// steps one instruction per line.
type RecipeFormValues struct {
	Name        string
	Author      string
	PrepTime    string
	CookTime    string
	Servings    string
	Calories    string
	Ingredients string
	Steps       string
	Save        bool

	// loaded holds the values as read from the editor. Apply leaves fields
	// that still match it untouched.
	loaded *RecipeFormValues
}

// FormValuesFromEditor fills the form from the editor's current draft.
func FormValuesFromEditor(ed *editor.Editor) *RecipeFormValues {
	v := &RecipeFormValues{
		Name:     ed.ScalarValue(editor.FieldName),
		Author:   ed.ScalarValue(editor.FieldAuthor),
		PrepTime: ed.ScalarValue(editor.FieldPrepTime),
		CookTime: ed.ScalarValue(editor.FieldCookTime),
		Servings: ed.ScalarValue(editor.FieldServings),
		Calories: ed.ScalarValue(editor.FieldCalories),
		Save:     true,
	}

	var rows []string

	for _, e := range ed.Ingredients() {
		if !e.IsEmpty() {
			rows = append(rows, FormatIngredientLine(e.Ingredient))
		}
	}

	v.Ingredients = strings.Join(rows, "\n")

	var steps []string

	for _, s := range ed.Steps() {
		if strings.TrimSpace(s.Text) != "" {
			steps = append(steps, s.Text)
		}
	}

	v.Steps = strings.Join(steps, "\n")

	loaded := *v
	v.loaded = &loaded

	return v
}

// NewRecipeForm builds the huh form bound to v.
func NewRecipeForm(v *RecipeFormValues, editing bool) *huh.Form {
	title := "New recipe"
	if editing {
		title = "Edit recipe"
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&v.Name).Validate(requireText),
			huh.NewInput().Title("Author").Value(&v.Author),
			huh.NewInput().Title("Prep time (minutes)").Value(&v.PrepTime).Validate(validateNumber),
			huh.NewInput().Title("Cook time (minutes)").Value(&v.CookTime).Validate(validateNumber),
			huh.NewInput().Title("Servings").Value(&v.Servings).Validate(validateNumber),
			huh.NewInput().Title("Calories").Description("optional").Value(&v.Calories).Validate(validateNumber),
		).Title(title),
		huh.NewGroup(
			huh.NewText().
				Title("Ingredients").
				Description("one per line: amount | measurement | name").
				Lines(8).
				Value(&v.Ingredients).
				Validate(validateIngredients),
			huh.NewText().
				Title("Steps").
				Description("one per line, in order").
				Lines(8).
				Value(&v.Steps),
		),
		huh.NewGroup(
			huh.NewConfirm().Title("Save recipe?").Affirmative("Save").Negative("Discard").Value(&v.Save),
		),
	).WithTheme(huh.ThemeCharm())
}

// Apply writes the form values into the editor's draft. The ingredient and
// step lists are resized to match the form, keeping existing entries in place.
// For values from FormValuesFromEditor only the fields changed since then
// are written, so untouched entries keep their exact text.
func (v *RecipeFormValues) Apply(ed *editor.Editor) error {
	loaded := v.loaded
	if loaded == nil {
		loaded = &RecipeFormValues{}
	}

	changed := func(cur, old string) bool {
		return v.loaded == nil || cur != old
	}

	scalars := []struct {
		field    editor.Field
		value    string
		original string
	}{
		{editor.FieldName, v.Name, loaded.Name},
		{editor.FieldAuthor, v.Author, loaded.Author},
		{editor.FieldPrepTime, v.PrepTime, loaded.PrepTime},
		{editor.FieldCookTime, v.CookTime, loaded.CookTime},
		{editor.FieldServings, v.Servings, loaded.Servings},
		{editor.FieldCalories, v.Calories, loaded.Calories},
	}

	for _, s := range scalars {
		if !changed(s.value, s.original) {
			continue
		}

		if err := ed.UpdateScalar(s.field, s.value); err != nil {
			return err
		}
	}

	if changed(v.Ingredients, loaded.Ingredients) {
		if err := applyIngredients(ed, nonBlankLines(v.Ingredients)); err != nil {
			return err
		}
	}

	if changed(v.Steps, loaded.Steps) {
		if err := applySteps(ed, nonBlankLines(v.Steps)); err != nil {
			return err
		}
	}

	return nil
}

func applyIngredients(ed *editor.Editor, rows []string) error {
	resize(len(ed.Ingredients()), len(rows), ed.AddIngredient, ed.RemoveIngredient)

	for i, row := range rows {
		amount, measurement, name := ParseIngredientLine(row)

		for _, kv := range []struct {
			key   editor.IngredientKey
			value string
		}{
			{editor.KeyAmount, amount},
			{editor.KeyMeasurement, measurement},
			{editor.KeyName, name},
		} {
			if err := ed.UpdateIngredient(i, kv.key, kv.value); err != nil {
				return fmt.Errorf("ingredient line %d: %w", i+1, err)
			}
		}
	}

	return nil
}

func applySteps(ed *editor.Editor, steps []string) error {
	resize(len(ed.Steps()), len(steps), ed.AddStep, ed.RemoveStep)

	for i, text := range steps {
		if err := ed.UpdateStep(i, text); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}

	return nil
}

// RunRecipeForm shows the form for the editor's current draft and applies
// the answers. It reports false, and resets the editor, when the user
// discards or aborts.
func RunRecipeForm(ctx context.Context, ed *editor.Editor, accessible bool) (bool, error) {
	v := FormValuesFromEditor(ed)

	form := NewRecipeForm(v, ed.Editing()).WithAccessible(accessible)
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			ed.Cancel()
			return false, nil
		}

		return false, err
	}

	if !v.Save {
		ed.Cancel()
		return false, nil
	}

	if err := v.Apply(ed); err != nil {
		return false, err
	}

	return true, nil
}

// ParseIngredientLine splits "amount | measurement | name". Two parts are
// read as amount and name; a single part is the name.
func ParseIngredientLine(line string) (amount, measurement, name string) {
	parts := strings.Split(line, ingredientSep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	switch len(parts) {
	case 1:
		return "", "", parts[0]
	case 2:
		return parts[0], "", parts[1]
	default:
		return parts[0], parts[1], strings.Join(parts[2:], " "+ingredientSep+" ")
	}
}

// FormatIngredientLine is the inverse of ParseIngredientLine.
func FormatIngredientLine(i model.Ingredient) string {
	return strings.Join([]string{editor.FormatAmount(i), i.Measurement, i.Name}, " "+ingredientSep+" ")
}

func resize(have, want int, add func(), remove func(int) error) {
	for ; have < want; have++ {
		add()
	}

	for ; have > want; have-- {
		_ = remove(have - 1)
	}
}

func nonBlankLines(s string) []string {
	var out []string

	for line := range strings.Lines(s) {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}

	return out
}

func requireText(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}

	return nil
}

func validateNumber(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return errors.New("must be a number")
	}

	if n < 0 {
		return errors.New("must not be negative")
	}

	return nil
}

func validateIngredients(s string) error {
	for i, line := range nonBlankLines(s) {
		amount, _, _ := ParseIngredientLine(line)
		if err := validateNumber(amount); err != nil {
			return fmt.Errorf("line %d: amount %w", i+1, err)
		}
	}

	return nil
}
