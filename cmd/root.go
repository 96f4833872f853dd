// Copyright (c) 2025 Pgbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for pgbridge.
// It implements subcommands for configuring, inspecting and exercising a
// PostgreSQL connection using the Cobra CLI framework.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	showVersion bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "pgbridge",
	Short:         "PostgreSQL client bridge with typed parameter binding",
	Long:          `pgbridge is a command-line PostgreSQL client that binds call arguments to typed wire parameters and decodes result rows back into native values.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("pgbridge %s\n", Version)
			return nil
		}
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
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show version information")
}
