package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/inovacc/cookbook/internal/server"
	"github.com/inovacc/cookbook/internal/store"
	"github.com/spf13/cobra"
)

var (
	serveAddr    string
	serveStorage string
	serveDataDir string
	serveOrigins []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the recipe API server",
	Long: `Run the recipe API server that the other commands talk to.

Recipes are kept in a local database under the data directory, either a
bbolt file (default) or SQLite. The server stops on Ctrl+C or SIGTERM.

Routes:
  GET    /api/recipes
  POST   /api/recipe
  GET    /api/recipe/{id}
  PUT    /api/recipe/{id}
  DELETE /api/recipe/{id}
  GET    /health
  GET    /metrics`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8080)")
	serveCmd.Flags().StringVar(&serveStorage, "storage", "", "Database engine: bolt or sqlite (default from config)")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "", "Directory for the database file (default from config)")
	serveCmd.Flags().StringSliceVar(&serveOrigins, "allowed-origin", nil, "CORS origin allowed to call the API (repeatable, default any)")
}

func runServe(cmd *cobra.Command, args []string) error {
	c := cfg

	if serveAddr != "" {
		c.ServerAddr = serveAddr
	}

	if serveStorage != "" {
		c.Storage = strings.ToLower(serveStorage)
	}

	if serveDataDir != "" {
		dir, err := expandPath(serveDataDir)
		if err != nil {
			return err
		}

		c.DataDir = dir
	}

	if err := validateConfig(c); err != nil {
		return err
	}

	dbPath := c.DatabasePath()

	db, err := store.Open(store.Backend(c.Storage), dbPath)
	if err != nil {
		return fmt.Errorf("failed to open %s database %s: %w", c.Storage, dbPath, err)
	}

	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("failed to close database", slog.Any("error", err))
		}
	}()

	srvLogger := logger
	if !logger.Enabled(cmd.Context(), slog.LevelInfo) {
		srvLogger = setupLogger("info", c.LogFormat, cmd.ErrOrStderr())
	}

	srvLogger.Info("database opened",
		slog.String("storage", c.Storage),
		slog.String("path", filepath.Clean(dbPath)))

	srv := server.New(server.Config{Addr: c.ServerAddr, AllowedOrigins: serveOrigins}, db, server.WithLogger(srvLogger))

	return srv.Start(cmd.Context())
}
