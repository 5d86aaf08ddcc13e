package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ethicslab/aigov/internal/config"
	"github.com/ethicslab/aigov/internal/library"
)

var (
	// Global flags
	dryRun  bool
	verbose bool
	output  string
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "aigov",
	Short: "AI governance documentation toolkit",
	Long: `aigov manages a library of AI governance documentation: model cards,
data cards, framework checklists, and guides.

Get Started:
  init         Scaffold a governance library in the current directory
  card new     Generate a model or data card

Core Commands:
  card         Author, inspect, and validate cards
  checklist    Materialize and track framework checklists
  index        Rebuild the catalog and search index
  search       Search the library
  links        Check the library link graph
  bundle       Export or import a compliance bundle
  probe        Run live safety probes against a Gemini model
  browse       Browse the library in a terminal UI
  audit        Show the audit trail

Plain Markdown files with YAML frontmatter are the source of truth.
The catalog and search index are derived and can be rebuilt at any
time with 'aigov index'.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Assigned here rather than in the rootCmd literal to avoid an
	// initialization cycle through flagChanged.
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		syncConfigFlagToEnv()
		resolveGlobalFlags()
	}

	// Global flags available to all commands
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Show what would happen without executing")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format (json, table, yaml)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: .aigov/config.yaml, then ~/.aigov/config.yaml)")
}

// GetDryRun returns the dry-run flag value for use by subcommands.
func GetDryRun() bool {
	return dryRun
}

// GetVerbose returns the verbose flag value for use by subcommands.
func GetVerbose() bool {
	return verbose
}

// GetOutput returns the output format for use by subcommands.
func GetOutput() string {
	return output
}

// GetConfigFile returns the config file path for use by subcommands.
func GetConfigFile() string {
	return cfgFile
}

// VerbosePrintf prints only when verbose mode is enabled.
func VerbosePrintf(format string, args ...interface{}) {
	if verbose {
		fmt.Printf(format, args...)
	}
}

func syncConfigFlagToEnv() {
	path := strings.TrimSpace(GetConfigFile())
	if path == "" {
		return
	}
	_ = os.Setenv("AIGOV_CONFIG", path)
}

// flagChanged reports whether a persistent flag was set explicitly on the
// command line.
func flagChanged(name string) bool {
	return rootCmd.PersistentFlags().Changed(name)
}

// resolveGlobalFlags fills unset global flags from the environment and
// config files. Explicit flags always win.
func resolveGlobalFlags() {
	rc := config.Resolve("", "", false)
	if !flagChanged("output") {
		if v, ok := rc.Output.Value.(string); ok && v != "" {
			output = v
		}
	}
	if !flagChanged("verbose") {
		if v, ok := rc.Verbose.Value.(bool); ok && v {
			verbose = true
		}
	}
}

// discoverLibrary locates the governance library. A library root set via
// AIGOV_LIBRARY or a config file wins over walking up from the working
// directory.
func discoverLibrary() (*library.Library, error) {
	start := ""
	rc := config.Resolve("", "", false)
	if root, ok := rc.Library.Value.(string); ok {
		start = strings.TrimSpace(root)
	}
	if start == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		start = cwd
	}

	lib, err := library.Discover(start)
	if errors.Is(err, library.ErrNotALibrary) {
		return nil, fmt.Errorf("%w; run 'aigov init' first", err)
	}
	return lib, err
}
