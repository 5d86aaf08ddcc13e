package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ethicslab/aigov/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View aigov configuration.

Configuration priority (highest to lowest):
  1. Command-line flags
  2. Environment variables (AIGOV_*)
  3. Project config (.aigov/config.yaml)
  4. Home config (~/.aigov/config.yaml)
  5. Defaults

Environment variables:
  AIGOV_CONFIG                 - Explicit config file path (overrides the project config location)
  AIGOV_OUTPUT                 - Default output format (table, json, yaml)
  AIGOV_LIBRARY                - Library root (overrides working-directory discovery)
  AIGOV_VERBOSE                - Enable verbose output (true/1)
  AIGOV_PROBE_MODEL            - Gemini model for safety probes
  AIGOV_PROBE_BLOCK_THRESHOLD  - Safety filter threshold (low, medium, high, none)
  GEMINI_API_KEY               - API key for 'aigov probe run'

Examples:
  aigov config show
  aigov config show -o json`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show resolved configuration with sources",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	flagOutput := ""
	if flagChanged("output") {
		flagOutput = GetOutput()
	}
	resolved := config.Resolve(flagOutput, "", flagChanged("verbose") && GetVerbose())

	switch GetOutput() {
	case "json":
		data, err := json.MarshalIndent(resolved, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		fmt.Println(string(data))
		return nil

	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		return enc.Encode(resolved)

	default:
		printResolvedConfig(resolved)
		return nil
	}
}

func printResolvedConfig(resolved *config.ResolvedConfig) {
	fmt.Println("aigov configuration")
	fmt.Println("===================")
	fmt.Println()

	fmt.Println("Config files:")
	home, _ := os.UserHomeDir()
	homeConfig := filepath.Join(home, ".aigov", "config.yaml")
	if _, err := os.Stat(homeConfig); err == nil {
		fmt.Printf("  ✓ Home:    %s\n", homeConfig)
	} else {
		fmt.Printf("  ✗ Home:    %s (not found)\n", homeConfig)
	}

	cwd, _ := os.Getwd()
	projectConfig := filepath.Join(cwd, ".aigov", "config.yaml")
	if override := os.Getenv("AIGOV_CONFIG"); override != "" {
		projectConfig = override
	}
	if _, err := os.Stat(projectConfig); err == nil {
		fmt.Printf("  ✓ Project: %s\n", projectConfig)
	} else {
		fmt.Printf("  ✗ Project: %s (not found)\n", projectConfig)
	}

	fmt.Println()
	fmt.Println("Resolved values:")
	fmt.Printf("  output:      %v  (from %s)\n", resolved.Output.Value, resolved.Output.Source)
	fmt.Printf("  library:     %v  (from %s)\n", libraryDisplay(resolved), resolved.Library.Source)
	fmt.Printf("  verbose:     %v  (from %s)\n", resolved.Verbose.Value, resolved.Verbose.Source)
	fmt.Printf("  probe.model: %v  (from %s)\n", resolved.ProbeModel.Value, resolved.ProbeModel.Source)

	fmt.Println()
	fmt.Println("Environment variables (if set):")
	envVars := []string{
		"AIGOV_CONFIG",
		"AIGOV_OUTPUT",
		"AIGOV_LIBRARY",
		"AIGOV_VERBOSE",
		"AIGOV_PROBE_MODEL",
		"AIGOV_PROBE_BLOCK_THRESHOLD",
	}
	found := false
	for _, name := range envVars {
		if v := os.Getenv(name); v != "" {
			fmt.Printf("  %s=%s\n", name, v)
			found = true
		}
	}
	if os.Getenv("GEMINI_API_KEY") != "" {
		fmt.Println("  GEMINI_API_KEY=(set)")
		found = true
	}
	if !found {
		fmt.Println("  (none)")
	}
}

// libraryDisplay renders the resolved library root, which is empty when
// discovery from the working directory applies.
func libraryDisplay(resolved *config.ResolvedConfig) string {
	if v, ok := resolved.Library.Value.(string); ok && v != "" {
		return v
	}
	return "(discovered from cwd)"
}
