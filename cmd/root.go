// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"cinebox/internal/config"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagLanguage string
	flagNoSubs   bool
	flagQuality  string
	flagMPV      string
	flagRestart  bool
	flagJSON     bool
	flagDebug    bool
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

// logger writes to stderr until the player takes over the terminal.
var logger hclog.Logger = hclog.NewNullLogger()

var rootCmd = &cobra.Command{
	Use:   "cinebox [slug|url]",
	Short: "Play movies from your catalog in mpv with a terminal control surface",
	Long: `cinebox plays movies from a "My Movies" sheet (CSV file or HTTPS export)
or from a direct URL. Playback runs in mpv; the terminal becomes the control
surface with tap zones, drag-to-seek, skip buttons, speed menu and fullscreen.`,
	Args:              cobra.MaximumNArgs(1),
	PersistentPreRunE: loadConfig,
	RunE:              playRun,
	SilenceUsage:      true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagLanguage, "language", "l", "", "Subtitle language (default: english)")
	rootCmd.PersistentFlags().BoolVarP(&flagNoSubs, "no-subs", "n", false, "Disable subtitles")
	rootCmd.PersistentFlags().StringVarP(&flagQuality, "quality", "q", "", "Maximum stream quality: 360 | 480 | 720 | 1080 | auto")
	rootCmd.PersistentFlags().StringVar(&flagMPV, "mpv", "", "Path to the mpv binary")
	rootCmd.PersistentFlags().BoolVar(&flagRestart, "restart", false, "Start from the beginning instead of the saved position")
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "Print catalog or stream metadata as JSON instead of playing")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "cinebox %s\n", Version)
	},
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg = applyFlags(loaded)

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger = newLogger(cmd.ErrOrStderr())
	logger.Debug("configuration loaded", "quality", cfg.Quality, "mpv", cfg.MPVPath, "history", cfg.History)
	return nil
}

func applyFlags(c *config.Config) *config.Config {
	if flagMPV != "" {
		c.MPVPath = flagMPV
	}
	if flagQuality != "" {
		c.Quality = flagQuality
	}
	if flagLanguage != "" {
		c.SubsLanguage = flagLanguage
	}
	if flagDebug {
		c.Debug = true
	}
	return c
}

func newLogger(w io.Writer) hclog.Logger {
	level := hclog.Warn
	if cfg != nil && cfg.Debug {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "cinebox",
		Level:  level,
		Output: w,
	})
}

// fileLogger redirects logging to the log file while the player owns the
// terminal. The returned func closes the file.
func fileLogger() (hclog.Logger, func(), error) {
	path, err := config.LogPath()
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, nil, fmt.Errorf("creating log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return newLogger(f), func() { f.Close() }, nil
}
