// Package cli implements the vibe command tree.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tessro/vibe/internal/config"
	verrors "github.com/tessro/vibe/internal/errors"
	"github.com/tessro/vibe/internal/log"
)

// annotationQuietLog marks commands that own the terminal; their logs go
// only to log.file.
const annotationQuietLog = "vibe/quiet-log"

var (
	cfgFile string
	jsonOut bool
	verbose bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "vibe",
	Short: "Shuffle your YouTube playlists by mood",
	Long: `Vibe signs in to your YouTube account, fetches a playlist or your own
uploads, tags each video with a mood from its title and description, and
plays random picks from the mood you choose.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfig(); err != nil {
			return err
		}
		return initLogging(cmd)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.config/vibe/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func initConfig() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", verrors.ErrInvalidConfig, err)
	}

	return nil
}

func initLogging(cmd *cobra.Command) error {
	var out io.Writer = os.Stderr
	if cmd.Annotations[annotationQuietLog] != "" {
		out = io.Discard
	}
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	log.Configure(log.Config{
		Level:  level,
		Format: cfg.Log.Format,
		Output: out,
	})
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if JSONOutput() {
			_ = printJSON(map[string]string{"error": err.Error()})
		} else {
			fmt.Fprintln(os.Stderr, verrors.Format(err))
		}
		os.Exit(1)
	}
}

// Config returns the loaded configuration.
func Config() *config.Config {
	return cfg
}

// JSONOutput returns true if JSON output is requested.
func JSONOutput() bool {
	return jsonOut
}

// Verbose returns true if verbose output is requested.
func Verbose() bool {
	return verbose
}
