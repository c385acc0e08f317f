package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/obentoo/srcsync/internal/common/config"
	"github.com/obentoo/srcsync/internal/common/logger"
	"github.com/obentoo/srcsync/internal/common/output"
	"github.com/obentoo/srcsync/internal/recipe"
	"github.com/obentoo/srcsync/internal/step"
	"github.com/spf13/cobra"
)

// Process exit codes
const (
	exitOK        = 0
	exitFailure   = 1
	exitSyncError = 2
	exitBuildErr  = 3
)

var (
	verbose     bool
	quiet       bool
	noColor     bool
	configPath  string
	recipesPath string
	gitClient   string
)

var rootCmd = &cobra.Command{
	Use:   "srcsync",
	Short: "Keep pinned source checkouts built and installed",
	Long: `srcsync keeps a source checkout at a pinned revision and, when syncing
changes the checkout, runs the recipe's configure/build/install commands in it.

The built-in recipe keeps LVM2 at v2_02_103 in /usr/local/lvm2 and installs
a statically linked device-mapper.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Configure logging based on flags
		if verbose {
			logger.SetVerbose(true)
		}
		if quiet {
			logger.SetQuiet(true)
		}
		if noColor {
			output.NoColor()
		}
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output, including build command output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/srcsync/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&recipesPath, "recipes", "", "TOML recipe file (default: built-in lvm2 recipe)")
	rootCmd.PersistentFlags().StringVar(&gitClient, "git-client", "", "Git client: exec or go-git")
}

// loadSettings reads the config file, applies flag overrides and loads recipes
func loadSettings() (*config.Config, *recipe.Set, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	if recipesPath != "" {
		cfg.Recipes = recipesPath
	}
	if gitClient != "" {
		cfg.Git.Client = gitClient
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	if cfg.Log.File {
		if err := logger.EnableFileLogging(); err != nil {
			logger.Warn("file logging disabled: %v", err)
		}
	}

	path, err := cfg.RecipesPath()
	if err != nil {
		return nil, nil, err
	}
	if path == "" {
		return cfg, recipe.DefaultSet(), nil
	}

	set, err := recipe.LoadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("loading recipes: %w", err)
	}
	return cfg, set, nil
}

// exitCode maps an error to the process exit status, keeping sync and
// build failures distinguishable for the caller
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, step.ErrSync):
		return exitSyncError
	case errors.Is(err, step.ErrBuild):
		return exitBuildErr
	default:
		return exitFailure
	}
}

// osExit is replaced in tests
var osExit = os.Exit

// exit closes the log file and ends the process with code
func exit(code int) {
	logger.Close()
	osExit(code)
}

// interruptContext is cancelled on SIGINT or SIGTERM, which stops the
// running build command
func interruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func main() {
	ctx, stop := interruptContext(context.Background())
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		exit(exitFailure)
	}
	exit(exitOK)
}
