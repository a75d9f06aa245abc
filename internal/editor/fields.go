package editor

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/inovacc/cookbook/internal/model"
)

// Field names a top-level recipe field the form can edit.
type Field string

const (
	FieldName     Field = "name"
	FieldAuthor   Field = "author"
	FieldPrepTime Field = "prepTime"
	FieldCookTime Field = "cookTime"
	FieldServings Field = "servings"
	FieldCalories Field = "calories"
)

// Fields lists the editable scalar fields in form order.
var Fields = []Field{FieldName, FieldAuthor, FieldPrepTime, FieldCookTime, FieldServings, FieldCalories}

// IngredientKey names one part of an ingredient row.
type IngredientKey string

const (
	KeyAmount      IngredientKey = "amount"
	KeyMeasurement IngredientKey = "measurement"
	KeyName        IngredientKey = "name"
)

// FieldError reports input that could not be stored in a field.
type FieldError struct {
	Field Field
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: invalid value %q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// ScalarValue returns the current value of field formatted for display in
// a form input. Zero numbers and absent calories come back empty.
func (e *Editor) ScalarValue(field Field) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch field {
	case FieldName:
		return e.scalars.Name
	case FieldAuthor:
		return e.scalars.Author
	case FieldPrepTime:
		return formatNumber(e.scalars.PrepTime)
	case FieldCookTime:
		return formatNumber(e.scalars.CookTime)
	case FieldServings:
		return formatNumber(e.scalars.Servings)
	case FieldCalories:
		if e.scalars.Calories == nil {
			return ""
		}

		return strconv.FormatFloat(*e.scalars.Calories, 'f', -1, 64)
	}

	return ""
}

// FormatAmount renders an optional ingredient amount for a form input.
func FormatAmount(i model.Ingredient) string {
	if i.Amount == nil {
		return ""
	}

	return strconv.FormatFloat(*i.Amount, 'f', -1, 64)
}

func formatNumber(n float64) string {
	if n == 0 {
		return ""
	}

	return strconv.FormatFloat(n, 'f', -1, 64)
}

// parseNumber reads a required numeric field. Blank input means zero.
func parseNumber(field Field, value string) (float64, error) {
	n, err := parseOptional(field, value)
	if err != nil || n == nil {
		return 0, err
	}

	return *n, nil
}

// parseOptional reads an optional numeric field. Blank input means absent.
func parseOptional(field Field, value string) (*float64, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return nil, nil
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, &FieldError{Field: field, Value: value, Err: fmt.Errorf("not a number")}
	}

	if math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, &FieldError{Field: field, Value: value, Err: fmt.Errorf("not a finite number")}
	}

	if n < 0 {
		return nil, &FieldError{Field: field, Value: value, Err: fmt.Errorf("must not be negative")}
	}

	return &n, nil
}
