package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/inovacc/cookbook/internal/model"
	"github.com/inovacc/cookbook/internal/notify"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by --output.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

func checkOutput(format string) error {
	switch format {
	case outputTable, outputJSON, outputYAML:
		return nil
	}

	return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
}

// writeStructured writes v as indented JSON or YAML.
func writeStructured(w io.Writer, format string, v any) error {
	if format == outputYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}

		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}

	return nil
}

// printRecipes writes the collection in the requested format.
func printRecipes(w io.Writer, recipes []model.Recipe, format string, plain bool) error {
	if format != outputTable {
		if recipes == nil {
			recipes = []model.Recipe{}
		}

		return writeStructured(w, format, recipes)
	}

	if len(recipes) == 0 {
		_, _ = fmt.Fprintln(w, "No recipes yet.")
		_, _ = fmt.Fprintln(w, "Create one with: cookbook create --name <name>")

		return nil
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	starStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	idStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	if plain {
		headerStyle = lipgloss.NewStyle()
		starStyle = lipgloss.NewStyle()
		idStyle = lipgloss.NewStyle()
	}

	const maxName = 30

	nameWidth, authorWidth := len("NAME"), len("AUTHOR")

	for _, r := range recipes {
		nameWidth = max(nameWidth, min(len([]rune(r.DisplayName())), maxName))
		authorWidth = max(authorWidth, min(len([]rune(r.Author)), 20))
	}

	_, _ = fmt.Fprintf(w, "%s  %s  %s  %s  %s\n",
		headerStyle.Render(padRight("ID", 36)),
		headerStyle.Render(padRight("NAME", nameWidth)),
		headerStyle.Render(padRight("AUTHOR", authorWidth)),
		headerStyle.Render(padRight("RATING", 6)),
		headerStyle.Render("TIME"),
	)
	_, _ = fmt.Fprintln(w, strings.Repeat("-", 36+nameWidth+authorWidth+24))

	for _, r := range recipes {
		_, _ = fmt.Fprintf(w, "%s  %s  %s  %s  %s\n",
			idStyle.Render(padRight(r.ID, 36)),
			padRight(truncateString(r.DisplayName(), maxName), nameWidth),
			padRight(truncateString(r.Author, 20), authorWidth),
			starStyle.Render(padRight(notify.Stars(r.Rating), 6)),
			formatMinutes(r.PrepTime+r.CookTime),
		)
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Total: %d recipes\n", len(recipes))

	return nil
}

// printRecipe writes one recipe in the requested format.
func printRecipe(w io.Writer, r model.Recipe, format string) error {
	if format != outputTable {
		return writeStructured(w, format, r)
	}

	calories := ""
	if r.Calories != nil {
		calories = strconv.FormatFloat(*r.Calories, 'f', -1, 64)
	}

	printInfoBox(w, r.DisplayName(), []boxItem{
		{"ID", r.ID},
		{"Author", r.Author},
		{"Rating", notify.Stars(r.Rating)},
		{"Prep time", formatMinutes(r.PrepTime)},
		{"Cook time", formatMinutes(r.CookTime)},
		{"Servings", formatQuantity(r.Servings)},
		{"Calories", calories},
		{"Created", r.CreatedDate},
		{"Updated", r.LastUpdatedDate},
	})

	if len(r.Ingredients) > 0 {
		_, _ = fmt.Fprintln(w, "\nIngredients:")

		for _, ing := range r.Ingredients {
			_, _ = fmt.Fprintf(w, "  - %s\n", ing.String())
		}
	}

	if len(r.Steps) > 0 {
		_, _ = fmt.Fprintln(w, "\nSteps:")

		for _, st := range r.Steps {
			_, _ = fmt.Fprintf(w, "  %d. %s\n", st.Number, st.Text)
		}
	}

	return nil
}

// formatMinutes renders a duration in minutes, empty for zero.
func formatMinutes(m float64) string {
	if m <= 0 {
		return ""
	}

	if m >= 60 {
		h := int(m) / 60
		rest := m - float64(h*60)

		if rest == 0 {
			return fmt.Sprintf("%dh", h)
		}

		return fmt.Sprintf("%dh %gm", h, rest)
	}

	return fmt.Sprintf("%gm", m)
}

func formatQuantity(n float64) string {
	if n == 0 {
		return ""
	}

	return strconv.FormatFloat(n, 'f', -1, 64)
}
