// Copyright (c) 2025 Wayfare
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"wayfare/cli/internal/config"
)

var (
	configAPIURL   string
	configLogLevel string
	configCurrency string
)

// configCmd shows the active CLI settings or updates them. Settings live in
// the XDG config dir as plain JSON; secrets never go there.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change CLI settings",
	Long: `The config command shows the active CLI settings. With flags it
updates them instead. Settings are stored in the XDG config directory;
session tokens are kept separately in the OS keychain.

The WAYFARE_API_URL environment variable overrides the configured API URL
without changing the stored value.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		changed := false
		if cmd.Flags().Changed("api-url") {
			cfg.APIBaseURL = strings.TrimRight(configAPIURL, "/")
			changed = true
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = configLogLevel
			changed = true
		}
		if cmd.Flags().Changed("currency") {
			cfg.Currency = strings.ToUpper(configCurrency)
			changed = true
		}

		if changed {
			if err := config.Save(cfg); err != nil {
				return fmt.Errorf("save configuration: %w", err)
			}
			fmt.Println("✅ Settings saved")
		}

		pterm.Println()
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ API URL:   ") + pterm.NewStyle(pterm.FgCyan).Sprint(cfg.APIBaseURL))
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Log level: ") + pterm.NewStyle(pterm.FgCyan).Sprint(cfg.LogLevel))
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Currency:  ") + pterm.NewStyle(pterm.FgCyan).Sprint(cfg.Currency))
		pterm.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().StringVar(&configAPIURL, "api-url", "", "Wayfare API base URL")
	configCmd.Flags().StringVar(&configLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	configCmd.Flags().StringVar(&configCurrency, "currency", "", "Preferred display currency (ISO 4217)")
}
