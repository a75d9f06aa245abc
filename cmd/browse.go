package cmd

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/inovacc/cookbook/internal/cli"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse recipes interactively",
	Long: `Open an interactive recipe browser.

Keys:
  i        show or hide ingredients
  s        show or hide steps
  0-5      rate the selected recipe
  d        delete the selected recipe (asks first)
  r        refresh
  /        filter by name
  q, esc   quit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
			return errors.New("browse needs a terminal; use 'cookbook list' instead")
		}

		c := newClient(cmd.OutOrStdout(), false)
		defer c.Close()

		m := cli.NewBrowser(cmd.Context(), c.store, c.reconciler, c.rater)

		p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
		c.dispatcher.Register(cli.NewProgramSender(p))

		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("browser: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
