package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/inovacc/cookbook/internal/application"
	"github.com/inovacc/cookbook/internal/model"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	configFile string
	noColor    bool

	// cfg and logger are set by the root command's pre-run.
	cfg    = model.DefaultConfig()
	logger = slog.New(slog.DiscardHandler)
)

var rootCmd = &cobra.Command{
	Use:   application.AppName,
	Short: "A recipe collection client",
	Long: `Cookbook manages a recipe collection kept by a recipe API server.

List, create, edit, rate and delete recipes from the command line, browse
them interactively, or run the recipe API server itself with 'cookbook serve'.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, err := configFilePath(configFile)
		if err != nil {
			return err
		}

		c, err := loadConfig(path, cmd.Flags())
		if err != nil {
			return err
		}

		cfg = c
		logger = setupLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())

		logger.Debug("configuration loaded",
			slog.String("file", path),
			slog.String("endpoint", cfg.Endpoint),
			slog.String("storage", cfg.Storage))

		return nil
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}

// GetRootCmd returns the root command for introspection purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default is config.yaml in the cookbook config directory)")
	flags.String("endpoint", "", "Base URL of the recipe API")
	flags.Duration("timeout", 0, "Timeout for a single API request")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("log-format", "", "Log format: text or json")
	flags.BoolVar(&noColor, "no-color", false, "Disable colored output")
}

// setupLogger creates a configured slog.Logger
func setupLogger(levelStr, format string, w io.Writer) *slog.Logger {
	var level slog.Level

	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// plainOutput reports whether styling should be left out of output to w.
func plainOutput(w io.Writer) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return true
	}

	f, ok := w.(*os.File)

	return !ok || !isTerminal(f)
}

// requestTimeout returns the configured API timeout, or the default.
func requestTimeout() time.Duration {
	if cfg.Timeout > 0 {
		return cfg.Timeout
	}

	return model.DefaultConfig().Timeout
}
