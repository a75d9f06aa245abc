package cmd

import (
	"fmt"
	"strconv"

	"github.com/inovacc/cookbook/internal/gateway"
	"github.com/inovacc/cookbook/internal/model"
	"github.com/spf13/cobra"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm", "remove"},
	Short:   "Delete a recipe",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient(cmd.OutOrStdout(), true)
		defer c.Close()

		r, err := loadRecipe(cmd, c, args[0])
		if err != nil {
			return err
		}

		if !deleteYes && !promptConfirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete %q? [y/N]: ", r.DisplayName())) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}

		return c.reconciler.Delete(cmd.Context(), r)
	},
}

var rateCmd = &cobra.Command{
	Use:   "rate <id> <0-5>",
	Short: "Rate a recipe",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("rating %q: %w", args[1], model.ErrInvalidRating)
		}

		if err := model.CheckRating(n); err != nil {
			return err
		}

		c := newClient(cmd.OutOrStdout(), true)
		defer c.Close()

		r, err := loadRecipe(cmd, c, args[0])
		if err != nil {
			return err
		}

		return c.rater.Select(cmd.Context(), r, n)
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(rateCmd)

	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip confirmation prompt")
}

// loadRecipe fetches the collection and returns the recipe with id.
func loadRecipe(cmd *cobra.Command, c *client, id string) (model.Recipe, error) {
	if err := c.load(cmd.Context()); err != nil {
		return model.Recipe{}, fmt.Errorf("failed to load recipes: %w", err)
	}

	r, ok := c.store.Recipe(id)
	if !ok {
		return model.Recipe{}, fmt.Errorf("recipe %s: %w", id, gateway.ErrNotFound)
	}

	return r, nil
}
