package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/inovacc/cookbook/internal/application"
	"github.com/inovacc/cookbook/internal/model"
	"github.com/inovacc/cookbook/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// envPrefix is prepended to every config key read from the environment,
// e.g. COOKBOOK_ENDPOINT.
const envPrefix = "COOKBOOK"

// flagKeys maps persistent flag names to config keys.
var flagKeys = map[string]string{
	"endpoint":   "endpoint",
	"timeout":    "timeout",
	"log-level":  "log_level",
	"log-format": "log_format",
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect cookbook configuration",
	Long: `Commands for inspecting cookbook configuration.

Settings are read, lowest priority first, from built-in defaults, the config
file, COOKBOOK_* environment variables and command-line flags.`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}

		_, err = cmd.OutOrStdout().Write(data)

		return err
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configFilePath(configFile)
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}

// configFilePath returns explicit when set, otherwise config.yaml in the
// application directory.
func configFilePath(explicit string) (string, error) {
	if explicit != "" {
		return expandPath(explicit)
	}

	path, err := application.ConfigFile()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}

	return path, nil
}

// loadConfig merges defaults, the config file at path, the environment and
// any flags in flags that were set. A missing file is not an error.
func loadConfig(path string, flags *pflag.FlagSet) (model.Config, error) {
	v := viper.New()

	def := model.DefaultConfig()
	v.SetDefault("endpoint", def.Endpoint)
	v.SetDefault("timeout", def.Timeout)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_format", def.LogFormat)
	v.SetDefault("server_addr", def.ServerAddr)
	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("storage", def.Storage)
	v.SetDefault("slack_webhook", "")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")

			if err := v.ReadInConfig(); err != nil {
				return model.Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return model.Config{}, fmt.Errorf("failed to stat config %s: %w", path, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return model.Config{}, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var c model.Config
	if err := v.Unmarshal(&c); err != nil {
		return model.Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := validateConfig(c); err != nil {
		return model.Config{}, err
	}

	return c, nil
}

func validateConfig(c model.Config) error {
	if c.Endpoint == "" {
		return errors.New("config: endpoint must not be empty")
	}

	if c.Timeout < 0 {
		return errors.New("config: timeout must not be negative")
	}

	switch store.Backend(c.Storage) {
	case store.BackendBolt, store.BackendSQLite:
	default:
		return fmt.Errorf("config: unknown storage %q (want bolt or sqlite)", c.Storage)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q (want text or json)", c.LogFormat)
	}

	return nil
}
