// Copyright (c) 2025 Pgbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"
	"strings"

	"pgbridge/internal/keychain"
	"pgbridge/internal/logging"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// dbinfoCmd represents the dbinfo command for displaying database connection information.
// It shows the current connection string with the password masked for security.
var dbinfoCmd = &cobra.Command{
	Use:   "dbinfo",
	Short: "Show current database connection string",
	Long: `The dbinfo command displays the currently configured database connection string (DSN)
with the password masked for security. This helps verify which database you're connected to
without exposing sensitive credentials.

The password in the DSN will be replaced with *** for security.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		// Try to get DSN from env vars first
		dsn := ""
		if env := os.Getenv("PGBRIDGE_DSN"); strings.TrimSpace(env) != "" {
			dsn = strings.TrimSpace(env)
			pterm.Println("Using DSN from PGBRIDGE_DSN environment variable")
			pterm.Println()
		} else if env := os.Getenv("DATABASE_URL"); strings.TrimSpace(env) != "" {
			dsn = strings.TrimSpace(env)
			pterm.Println("Using DSN from DATABASE_URL environment variable")
			pterm.Println()
		}

		// Fallback to keychain
		if strings.TrimSpace(dsn) == "" {
			km, err := keychain.GetManager()
			if err != nil {
				pterm.Println("❌ Secure storage is not available on this system")
				pterm.Println("   Set PGBRIDGE_DSN or DATABASE_URL instead")
				return err
			}

			dsn, err = km.LoadDBDSN()
			if err != nil || strings.TrimSpace(dsn) == "" {
				pterm.Println("⚠️  No database connection configured")
				pterm.Println("   Please run: pgbridge connect")
				return nil
			}
			pterm.Println("Using DSN from OS keychain")
			pterm.Println()
		}

		// Display the connection info with credentials masked
		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Database Connection")).
			WithLeftPadding(1).
			WithRightPadding(1).
			Println(logging.Mask(dsn))
		pterm.Println()
		pterm.Println("To update this connection, run: pgbridge connect")
		pterm.Println()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbinfoCmd)
}
