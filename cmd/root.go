package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"urzis-pass/internal/api"
	"urzis-pass/internal/config"
	"urzis-pass/internal/session"
	"urzis-pass/internal/storage"
)

var (
	cfgFile      string
	outputFormat string
	logLevel     string

	cfg      *config.Config
	provider storage.Provider
	store    *session.Store
	client   *api.Client
)

var rootCmd = &cobra.Command{
	Use:           "urzis",
	Short:         "URZIS PASS door access client",
	Long:          `A command-line client for the URZIS PASS door access service: sign in, open doors, manage users and read the event log.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch outputFormat {
		case "table", "json", "yaml":
		default:
			return fmt.Errorf("unknown output format %q (table, json or yaml)", outputFormat)
		}

		var err error
		cfg, err = config.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		logger := initLogger(cfg)

		provider, err = storage.NewProvider(&cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to open session storage: %w", err)
		}

		store = session.NewStore(provider)
		client = api.New(store,
			api.WithTimeout(cfg.Timeout()),
			api.WithUserAgent(cfg.UserAgent),
			api.WithLogger(logger),
		)

		// Seed the server from config on first use
		if cfg.ServerURL != "" && !store.Read(cmd.Context()).Configured() {
			if err := store.WriteServerURL(cmd.Context(), cfg.ServerURL); err != nil {
				return err
			}
		}
		return nil
	},
}

// closeProvider runs after every command, including ones that failed.
func closeProvider() {
	if provider != nil {
		provider.Close()
		provider = nil
	}
}

// initLogger writes to stderr so that command output on stdout stays parseable.
func initLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToUpper(cfg.LogLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN", "WARNING":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
		fmt.Fprintf(os.Stderr, "Invalid log level %q, defaulting to WARN\n", cfg.LogLevel)
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(cfg.LogFormat, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logger initialized", "level", level.String())
	return logger
}

// errorHint suggests the next step for errors the user can act on.
func errorHint(err error) string {
	switch {
	case errors.Is(err, api.ErrServerURLNotConfigured):
		return "Set the server with 'urzis server set <url>'."
	case errors.Is(err, api.ErrNotAuthenticated), errors.Is(err, api.ErrSessionExpired):
		return "Sign in with 'urzis login'."
	}
	return ""
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if hint := errorHint(err); hint != "" {
			fmt.Fprintln(os.Stderr, hint)
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnFinalize(closeProvider)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.urzis/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, json or yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
}
