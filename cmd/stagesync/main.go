package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sjhan/stagesync/internal/config"
	"github.com/sjhan/stagesync/internal/gitrepo"
	"github.com/sjhan/stagesync/internal/hook"
	"github.com/sjhan/stagesync/internal/report"
	"github.com/sjhan/stagesync/internal/sync"
	"github.com/sjhan/stagesync/internal/watch"
)

var (
	// Set by goreleaser
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// Global flags
	cfgFile   string
	rootDir   string
	logLevel  string
	logFormat string
	dryRun    bool
	force     bool
	uninstall bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stagesync",
	Short: "Synchronize staged project folders into the root publishing layout",
	Long: `stagesync mirrors the latest content of the staging folders (S1_기획 through
S5_배포) into the flattened root layout: frontend content into pages/ and the
remaining areas into api/.

It is meant to run as a git pre-commit hook so the published tree always
reflects whichever staging folders are present. Files are copied only when
the source is newer than the destination; nothing is ever deleted.`,
	SilenceUsage: true,
	RunE:         runSync,
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one synchronization of the staging folders",
	Long: `Sync walks every stage folder in table order and recursively copies each
mapped area folder onto its destination. Missing stage or area folders are
skipped silently; existing destination files are left alone unless the source
is strictly newer.`,
	RunE: runSync,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the staging folders and re-sync on changes",
	Long: `Watch performs an initial sync, then observes the existing stage folders and
re-runs the synchronization after changes settle. Stop with Ctrl-C.`,
	RunE: runWatch,
}

var installHookCmd = &cobra.Command{
	Use:   "install-hook",
	Short: "Install the git pre-commit hook",
	Long: `Install-hook writes a pre-commit hook that runs 'stagesync sync' and stages
the synced output before every commit. An existing foreign hook is backed up
unless --force is given.`,
	RunE: runInstallHook,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("stagesync %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "optional mapping override file (built-in table is used when unset)")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "project root (default: enclosing git repository, else working directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	// Sync flags, mirrored on the bare root command
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be copied without writing anything")
	syncCmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be copied without writing anything")

	// Hook flags
	installHookCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing hook without backup")
	installHookCmd.Flags().BoolVar(&uninstall, "uninstall", false, "remove the hook installed by stagesync")

	// Add commands
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(installHookCmd)
	rootCmd.AddCommand(versionCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx, cancel := setupSignalHandler()
	defer cancel()

	logger := setupLogger()

	cfg, err := loadConfig(ctx, logger)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	printer := report.NewPrinter(os.Stdout)
	printer.Header("stagesync")

	engine := sync.NewEngine(cfg, logger, dryRun)
	stats, err := engine.Run(ctx)
	if err != nil {
		logger.Error("sync failed", "error", err)
		return err
	}

	printer.Summary(stats)
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := setupSignalHandler()
	defer cancel()

	logger := setupLogger()

	cfg, err := loadConfig(ctx, logger)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	engine := sync.NewEngine(cfg, logger, dryRun)
	watcher := watch.New(cfg, logger, func(ctx context.Context) {
		stats, err := engine.Run(ctx)
		if err != nil {
			logger.Error("sync failed", "error", err)
			return
		}
		logger.Info("sync complete", "copied", stats.Copied, "skipped", stats.Skipped)
	})

	return watcher.Run(ctx)
}

func runInstallHook(cmd *cobra.Command, args []string) error {
	ctx, cancel := setupSignalHandler()
	defer cancel()

	logger := setupLogger()

	cfg, err := loadConfig(ctx, logger)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if uninstall {
		if err := hook.Uninstall(cfg.Root); err != nil {
			return err
		}
		fmt.Println("pre-commit hook removed")
		return nil
	}

	hookPath, err := hook.Install(cfg.Root, cfg.DestRoots(), force)
	if err != nil {
		return err
	}

	fmt.Println("pre-commit hook installed")
	fmt.Printf("  path: %s\n", hookPath)
	fmt.Println("  it runs 'stagesync sync' and stages the synced output on every commit")
	fmt.Println("  bypass with 'git commit --no-verify', remove with 'stagesync install-hook --uninstall'")
	return nil
}

func setupLogger() *slog.Logger {
	// Parse log level
	var level slog.Level
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	// Create handler based on format
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	if logFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}

func loadConfig(ctx context.Context, logger *slog.Logger) (*config.Config, error) {
	root := rootDir
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}

		if found, err := gitrepo.FindRoot(ctx, cwd); err == nil {
			root = found
		} else {
			logger.Debug("no git repository found, using working directory", "dir", cwd)
			root = cwd
		}
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}

	if cfgFile == "" {
		cfg := config.Default(root)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		logger.Debug("using built-in mapping table", "root", root)
		return cfg, nil
	}

	logger.Info("loading mapping override", "path", cfgFile)
	cfg, err := config.Load(cfgFile, root)
	if err != nil {
		return nil, err
	}

	logger.Debug("configuration loaded",
		"root", cfg.Root,
		"stages", len(cfg.Stages),
		"areas", len(cfg.Areas))

	return cfg, nil
}

func setupSignalHandler() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	return ctx, cancel
}
