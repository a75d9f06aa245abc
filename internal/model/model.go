package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRating is returned when a rating falls outside MinRating..MaxRating.
var ErrInvalidRating = errors.New("rating must be between 0 and 5")

const (
	MinRating = 0
	MaxRating = 5
)

// ServerTimeLayout is the format of the server-owned date fields.
const ServerTimeLayout = "2006.01.02 15:04:05"

// Recipe is a single cookbook entry as exchanged with the recipe API.
type Recipe struct {
	// ID is assigned by the server and never changes once set
	ID string `json:"_id,omitempty" yaml:"id,omitempty"`

	// Name is the display name of the recipe
	Name string `json:"recipename" yaml:"name"`

	// Author is who wrote the recipe
	Author string `json:"author" yaml:"author"`

	// PrepTime is the preparation time in minutes
	PrepTime float64 `json:"preptime" yaml:"prepTime"`

	// CookTime is the cooking time in minutes
	CookTime float64 `json:"cooktime" yaml:"cookTime"`

	// Servings is how many people the recipe feeds
	Servings float64 `json:"servings" yaml:"servings"`

	// Rating is the number of stars, 0 through 5
	Rating int `json:"rating" yaml:"rating"`

	// Calories is optional
	Calories *float64 `json:"calories,omitempty" yaml:"calories,omitempty"`

	Ingredients []Ingredient `json:"ingredients,omitempty" yaml:"ingredients,omitempty"`
	Steps       []Step       `json:"steps,omitempty" yaml:"steps,omitempty"`

	// CreatedDate and LastUpdatedDate are owned by the server
	CreatedDate     string `json:"createdDate,omitempty" yaml:"createdDate,omitempty"`
	LastUpdatedDate string `json:"lastUpdatedDate,omitempty" yaml:"lastUpdatedDate,omitempty"`

	// Extra holds wire fields this client does not model. They are written
	// back untouched so a full-replace update does not lose them.
	Extra map[string]json.RawMessage `json:"-" yaml:"-"`
}

// Ingredient is one line of a recipe's ingredient list.
type Ingredient struct {
	// Amount is nil when left empty
	Amount      *float64 `json:"amount,omitempty" yaml:"amount,omitempty"`
	Measurement string   `json:"measurement,omitempty" yaml:"measurement,omitempty"`
	Name        string   `json:"name" yaml:"name"`
}

// Step is one numbered instruction.
type Step struct {
	Number int    `json:"number" yaml:"number"`
	Text   string `json:"text" yaml:"text"`
}

// knownFields lists every wire key mapped onto a Recipe field.
var knownFields = []string{
	"_id", "recipename", "author", "preptime", "cooktime", "servings",
	"rating", "calories", "ingredients", "steps", "createdDate", "lastUpdatedDate",
}

// recipeWire has Recipe's layout without its methods, so the codec can use
// the default encoding for the modelled fields.
type recipeWire Recipe

// MarshalJSON encodes the recipe and merges back any Extra fields.
func (r Recipe) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(recipeWire(r))
	if err != nil {
		return nil, err
	}

	if len(r.Extra) == 0 {
		return data, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}

	for k, v := range r.Extra {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}

	return json.Marshal(merged)
}

// UnmarshalJSON decodes the recipe, keeping unknown fields in Extra.
func (r *Recipe) UnmarshalJSON(data []byte) error {
	var w recipeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}

	for _, k := range knownFields {
		delete(all, k)
	}

	w.Extra = nil
	if len(all) > 0 {
		w.Extra = all
	}

	*r = Recipe(w)

	return nil
}

// DisplayName returns the name shown to the user in messages.
func (r Recipe) DisplayName() string {
	if r.Name == "" {
		return "Untitled recipe"
	}

	return r.Name
}

// NameMatches reports whether query occurs in the recipe name, ignoring
// case. A blank query matches nothing.
func (r Recipe) NameMatches(query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return false
	}

	return strings.Contains(strings.ToLower(r.Name), strings.ToLower(query))
}

// Persisted reports whether the server has assigned an ID.
func (r Recipe) Persisted() bool {
	return r.ID != ""
}

// Clone returns a copy that shares no slices, maps or pointers with r.
func (r Recipe) Clone() Recipe {
	out := r

	if r.Calories != nil {
		c := *r.Calories
		out.Calories = &c
	}

	if r.Ingredients != nil {
		out.Ingredients = make([]Ingredient, len(r.Ingredients))
		for i, ing := range r.Ingredients {
			out.Ingredients[i] = ing.Clone()
		}
	}

	if r.Steps != nil {
		out.Steps = make([]Step, len(r.Steps))
		copy(out.Steps, r.Steps)
	}

	if r.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(r.Extra))
		for k, v := range r.Extra {
			out.Extra[k] = v
		}
	}

	return out
}

// WithRating returns a copy of r with only the rating replaced.
func (r Recipe) WithRating(rating int) Recipe {
	out := r.Clone()
	out.Rating = rating

	return out
}

// ValidRating reports whether n is an allowed star rating.
func ValidRating(n int) bool {
	return n >= MinRating && n <= MaxRating
}

// CheckRating returns ErrInvalidRating wrapped with the offending value.
func CheckRating(n int) error {
	if !ValidRating(n) {
		return fmt.Errorf("%w: got %d", ErrInvalidRating, n)
	}

	return nil
}

// Clone returns a copy of the ingredient with its own Amount pointer.
func (i Ingredient) Clone() Ingredient {
	if i.Amount != nil {
		a := *i.Amount
		i.Amount = &a
	}

	return i
}

// IsEmpty reports whether name, measurement and amount are all empty or
// zero. Such entries are never sent to the server.
func (i Ingredient) IsEmpty() bool {
	return i.Name == "" && i.Measurement == "" && (i.Amount == nil || *i.Amount == 0)
}

// String renders the ingredient the way the recipe card lists it.
func (i Ingredient) String() string {
	s := i.Name
	if i.Measurement != "" {
		s = i.Measurement + " of " + s
	}

	if i.Amount != nil {
		s = fmt.Sprintf("%g %s", *i.Amount, s)
	}

	return s
}

// Float returns a pointer to v, for optional numeric fields.
func Float(v float64) *float64 {
	return &v
}
