package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/inovacc/cookbook/internal/gateway"
	"github.com/spf13/cobra"
)

var outputFormat string

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all recipes",
	Long: `List every recipe in the collection, in the order the server returns them.

Examples:
  cookbook list
  cookbook list --output json
  cookbook list -o yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkOutput(outputFormat); err != nil {
			return err
		}

		c := newClient(cmd.ErrOrStderr(), false)
		defer c.Close()

		if err := c.load(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load recipes: %w", err)
		}

		out := cmd.OutOrStdout()

		return printRecipes(out, c.store.Recipes(), outputFormat, plainOutput(out))
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one recipe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkOutput(outputFormat); err != nil {
			return err
		}

		c := newClient(cmd.ErrOrStderr(), false)
		defer c.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout())
		defer cancel()

		r, err := gateway.Find(ctx, c.gw, args[0])
		if err != nil {
			return err
		}

		return printRecipe(cmd.OutOrStdout(), r, outputFormat)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <name>",
	Short: "Find recipes by name",
	Long: `List the recipes whose name contains the given text, ignoring case.

Examples:
  cookbook search soup
  cookbook search "apple pie" -o json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkOutput(outputFormat); err != nil {
			return err
		}

		if strings.TrimSpace(args[0]) == "" {
			return errors.New("search needs a name")
		}

		c := newClient(cmd.ErrOrStderr(), false)
		defer c.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout())
		defer cancel()

		found, err := gateway.Search(ctx, c.gw, args[0])
		if err != nil {
			return fmt.Errorf("failed to search recipes: %w", err)
		}

		out := cmd.OutOrStdout()

		if len(found) == 0 && outputFormat == outputTable {
			_, _ = fmt.Fprintf(out, "No recipes match %q.\n", args[0])
			return nil
		}

		return printRecipes(out, found, outputFormat, plainOutput(out))
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(searchCmd)

	for _, c := range []*cobra.Command{listCmd, showCmd, searchCmd} {
		c.Flags().StringVarP(&outputFormat, "output", "o", outputTable, "Output format: table, json or yaml")
	}
}
