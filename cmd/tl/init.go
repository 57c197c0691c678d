package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/textlab/textlab/internal/config"
)

var initForce bool

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Write a default config file to --config or the default location.

Examples:
  tl init
  tl init --config ./textlab.yml --force`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.Path()
	}
	if path == "" {
		exitWithError(ExitConfigError, "cannot determine config location; pass --config")
	}
	if _, err := os.Stat(path); err == nil && !initForce {
		exitWithError(ExitConfigError, "config already exists: %s (use --force to overwrite)", path)
	}

	cfg := config.Defaults()
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if err := cfg.Save(path); err != nil {
		exitWithError(ExitConfigError, "writing config: %v", err)
	}

	if humanOutput {
		outputHuman("Wrote config to %s\n", path)
		return nil
	}
	return outputJSON(StatusResponse{Status: "created", Path: path})
}
