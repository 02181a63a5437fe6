package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tailored-agentic-units/router/kernel"
	"github.com/tailored-agentic-units/router/observability"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:          "router",
	Short:        "Conversational request router",
	Long:         "Router classifies each request as a question, code or text, hands it to a language model handler and saves generated code and text to files.",
	Version:      version,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "Config file (.json, .yaml or .toml)")
	flags.String("env-file", ".env", "Environment file loaded before startup")
	flags.StringP("model", "m", "", "Model override")
	flags.String("provider", "", "Provider override")
	flags.String("artifacts-dir", "", "Directory generated files are written to")
	flags.Bool("per-run", false, "Write each run's files to <artifacts-dir>/<run id>/")
	flags.String("log-level", "warn", "Log level (debug, info, warn, error)")
	flags.String("log-format", "text", "Log format (text or json)")

	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("env_file", flags.Lookup("env-file"))
	_ = viper.BindPFlag("model", flags.Lookup("model"))
	_ = viper.BindPFlag("provider", flags.Lookup("provider"))
	_ = viper.BindPFlag("artifacts_dir", flags.Lookup("artifacts-dir"))
	_ = viper.BindPFlag("per_run", flags.Lookup("per-run"))
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("log_format", flags.Lookup("log-format"))
}

func initConfig() {
	viper.SetEnvPrefix("ROUTER")
	viper.AutomaticEnv()

	if err := godotenv.Load(viper.GetString("env_file")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: failed to load env file: %v\n", err)
	}
}

// loadConfig layers the config file, then flags and ROUTER_* variables, over
// the defaults.
func loadConfig() (*kernel.Config, error) {
	cfg := kernel.DefaultConfig()
	if path := viper.GetString("config"); path != "" {
		loaded, err := kernel.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	var overrides kernel.Config
	overrides.Agent.Model = viper.GetString("model")
	overrides.Agent.Provider = viper.GetString("provider")
	overrides.Artifacts.Dir = viper.GetString("artifacts_dir")
	overrides.Artifacts.PerRun = viper.GetBool("per_run")
	overrides.Concurrency = viper.GetInt("concurrency")
	cfg.Merge(&overrides)

	return &cfg, nil
}

func newLogger() (*slog.Logger, error) {
	level, err := observability.ParseLevel(viper.GetString("log_level"))
	if err != nil {
		return nil, err
	}
	return observability.NewLogger(os.Stderr, level, viper.GetString("log_format"))
}

// newKernel builds a Kernel from the layered configuration. The caller
// closes it.
func newKernel(opts ...kernel.Option) (*kernel.Kernel, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := newLogger()
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	opts = append([]kernel.Option{kernel.WithLogger(logger)}, opts...)
	k, err := kernel.New(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create router: %w", err)
	}
	return k, nil
}
