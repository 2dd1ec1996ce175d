//go:build linux
// +build linux

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"lazyportlist/internal/config"
	"lazyportlist/internal/firewalld"
	"lazyportlist/internal/gmp"
	"lazyportlist/internal/logger"
	"lazyportlist/internal/ui"
	"lazyportlist/internal/version"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	dryRun     bool
	noColor    bool
)

var rootCmd = &cobra.Command{
	Use:           "lazyportlist",
	Short:         "Terminal console for scanner port lists",
	Long:          "Browse, edit, import and export the port lists of a vulnerability manager, optionally seeding ranges from local firewalld zones.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runConsole,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and exit",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/lazyportlist/config.toml)")
	flags.StringVar(&logLevel, "log-level", "", "set log level (debug|info|warn|error)")
	flags.BoolVarP(&dryRun, "dry-run", "n", false, "show changes without applying")
	flags.BoolVar(&noColor, "no-color", false, "disable color output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(backupsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the config and installs the logger. The --log-level flag wins
// over the config file.
func setup() (config.Config, error) {
	if configPath != "" {
		if err := os.Setenv("LAZYPORTLIST_CONFIG", configPath); err != nil {
			return config.Config{}, err
		}
	}
	cfg, warnings, path, found, loadErr := config.Load()

	level := logLevel
	if level == "" {
		level = cfg.Advanced.LogLevel
	}
	if err := logger.Init(level); err != nil {
		return cfg, err
	}
	if loadErr != nil {
		return cfg, fmt.Errorf("load config: %w", loadErr)
	}
	if found {
		slog.Info("config loaded", "path", path)
	}
	for _, w := range warnings {
		slog.Warn("config", "path", path, "warning", w)
	}
	return cfg, nil
}

func connect(ctx context.Context, cfg config.Config) (*gmp.Client, error) {
	client, err := gmp.NewClient(gmp.Options{
		BaseURL:            cfg.Server.URL,
		Username:           cfg.Server.Username,
		Password:           cfg.Server.Password,
		Timeout:            cfg.Server.Timeout(),
		InsecureSkipVerify: cfg.Server.InsecureSkipVerify,
	})
	if err != nil {
		return nil, err
	}
	if err := client.Login(ctx); err != nil {
		return nil, fmt.Errorf("login to %s: %w", cfg.Server.URL, err)
	}
	return client, nil
}

func runConsole(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	defer logger.Close()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Logout()

	// firewalld only feeds range seeding; the console works without it.
	var zones ui.ZoneSource
	fw, err := firewalld.NewClient()
	if err != nil {
		slog.Warn("firewalld unavailable, zone seeding disabled", "error", err)
	} else {
		defer fw.Close()
		zones = fw
	}

	slog.Info("starting", "version", version.String(), "server", client.BaseURL(), "dry_run", dryRun)
	return ui.RunWithContext(ctx, client, zones, ui.Options{
		DryRun:             dryRun,
		NoColor:            noColor,
		BackupBeforeCommit: cfg.Behavior.BackupBeforeCommit,
		IdleTimeout:        cfg.Behavior.IdleTimeout(),
	})
}
