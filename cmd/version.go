package cmd

import (
	"fmt"
	"runtime"

	"github.com/inovacc/cookbook/internal/application"
	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X github.com/inovacc/cookbook/cmd.version=...".
var (
	version = "dev"
	commit  = "none"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s) %s/%s %s\n",
			application.AppName, version, commit, runtime.GOOS, runtime.GOARCH, runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = version
}
