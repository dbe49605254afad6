// Copyright (c) 2025 Wayfare
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the Wayfare CLI application.
// It implements subcommands for account management, travel search, and booking
// using the Cobra CLI framework. The package handles command parsing, execution,
// and provides a rich terminal UI with spinners and tables.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wayfare/cli/internal/backend"
	"wayfare/cli/internal/config"
)

var (
	showVersion bool
)

// rootCmd represents the base command when called without any subcommands.
// It serves as the entry point for the Wayfare CLI application.
var rootCmd = &cobra.Command{
	Use:           "wayfare",
	Short:         "Wayfare CLI for searching and booking trips",
	Long:          `Wayfare is a command-line client for the Wayfare travel service. Search destinations, compare flights and hotels, and book trips without leaving the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			ctx := cmd.Context()
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			be := backend.New(cfg.APIBaseURL)
			backendVersion, err := be.GetVersion(ctx)
			if err != nil {
				backendVersion = "unknown"
			}

			fmt.Printf("wayfare %s\nbackend %s\n", Version, backendVersion)
			return nil
		}
		// If no flag is set, show help
		return cmd.Help()
	},
}

// Execute runs the CLI application.
// It executes the root command and handles any errors that occur during execution.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI and backend version information")
}
