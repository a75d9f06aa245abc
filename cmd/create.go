package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/inovacc/cookbook/internal/cli"
	"github.com/inovacc/cookbook/internal/editor"
	"github.com/inovacc/cookbook/internal/gateway"
	"github.com/inovacc/cookbook/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// recipeFlags are the field flags shared by create and edit.
type recipeFlags struct {
	name        string
	author      string
	prepTime    string
	cookTime    string
	servings    string
	calories    string
	ingredients []string
	steps       []string
	interactive bool
}

func (f *recipeFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.name, "name", "", "Recipe name")
	fs.StringVar(&f.author, "author", "", "Recipe author")
	fs.StringVar(&f.prepTime, "prep", "", "Preparation time in minutes")
	fs.StringVar(&f.cookTime, "cook", "", "Cooking time in minutes")
	fs.StringVar(&f.servings, "servings", "", "Number of servings")
	fs.StringVar(&f.calories, "calories", "", "Calories (optional)")
	fs.StringArrayVar(&f.ingredients, "ingredient", nil, `Ingredient as "amount | measurement | name" (repeatable)`)
	fs.StringArrayVar(&f.steps, "step", nil, "Instruction step, in order (repeatable)")
	fs.BoolVarP(&f.interactive, "interactive", "i", false, "Fill the recipe in an interactive form")
}

// apply overlays the flags that were set onto v.
func (f *recipeFlags) apply(fs *pflag.FlagSet, v *cli.RecipeFormValues) {
	set := func(name string, dst *string, val string) {
		if fs.Changed(name) {
			*dst = val
		}
	}

	set("name", &v.Name, f.name)
	set("author", &v.Author, f.author)
	set("prep", &v.PrepTime, f.prepTime)
	set("cook", &v.CookTime, f.cookTime)
	set("servings", &v.Servings, f.servings)
	set("calories", &v.Calories, f.calories)

	if fs.Changed("ingredient") {
		v.Ingredients = strings.Join(f.ingredients, "\n")
	}

	if fs.Changed("step") {
		v.Steps = strings.Join(f.steps, "\n")
	}
}

var (
	createFlags recipeFlags
	editFlags   recipeFlags
)

var createCmd = &cobra.Command{
	Use:     "create",
	Aliases: []string{"add", "new"},
	Short:   "Create a recipe",
	Long: `Create a recipe from flags, or with --interactive in a form.

Examples:
  cookbook create --name "Pancakes" --servings 4 \
    --ingredient "2 | cups | flour" --ingredient "2 | eggs" \
    --step "Mix everything" --step "Fry in a hot pan"
  cookbook create -i`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !createFlags.interactive && !cmd.Flags().Changed("name") {
			return errors.New("a recipe needs a name: pass --name or use --interactive")
		}

		c := newClient(cmd.OutOrStdout(), true)
		defer c.Close()

		ed := c.editor()
		ed.Initialize(nil)

		return runEditor(cmd, ed, &createFlags)
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a recipe",
	Long: `Edit a recipe. Only the fields given as flags change; --ingredient and
--step replace the whole list. With --interactive the current values are
shown in a form.

Examples:
  cookbook edit 3f2a... --author "Ann"
  cookbook edit 3f2a... -i`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient(cmd.OutOrStdout(), true)
		defer c.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout())
		defer cancel()

		r, err := gateway.Find(ctx, c.gw, args[0])
		if err != nil {
			return err
		}

		ed := c.editor()
		ed.Initialize(&r)

		return runEditor(cmd, ed, &editFlags)
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(editCmd)

	createFlags.register(createCmd.Flags())
	editFlags.register(editCmd.Flags())
}

// runEditor fills the draft from flags and, when asked, the form, then
// submits it.
func runEditor(cmd *cobra.Command, ed *editor.Editor, f *recipeFlags) error {
	v := cli.FormValuesFromEditor(ed)
	f.apply(cmd.Flags(), v)

	if err := v.Apply(ed); err != nil {
		return err
	}

	if f.interactive {
		if !isTerminal(os.Stdin) {
			return errors.New("--interactive needs a terminal")
		}

		saved, err := cli.RunRecipeForm(cmd.Context(), ed, false)
		if err != nil {
			return err
		}

		if !saved {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Discarded.")
			return nil
		}
	}

	rec, err := submit(cmd.Context(), ed)
	if err != nil {
		return err
	}

	logger.Debug("recipe saved", "name", rec.DisplayName(), "id", rec.ID)

	return nil
}

func submit(ctx context.Context, ed *editor.Editor) (model.Recipe, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout())
	defer cancel()

	return ed.Submit(ctx)
}
