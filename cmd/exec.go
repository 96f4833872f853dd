// Copyright (c) 2025 Pgbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os"
	"time"

	"pgbridge/internal/logging"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// execCmd represents the exec command for running a SQL statement that does
// not return rows, such as INSERT, UPDATE, DELETE or DDL.
var execCmd = &cobra.Command{
	Use:   "exec <sql> [param...]",
	Short: "Run a SQL statement and report the affected row count",
	Long: `The exec command runs the given SQL statement against the configured database
and reports how many rows were affected. Use it for INSERT, UPDATE, DELETE and
DDL statements; use 'pgbridge query' for statements that return rows. Additional
arguments are bound to $1, $2, ... placeholders as text parameters.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		client, err := openClient(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		stopSpinner := startInlineSpinner(os.Stdout, "executing statement",
			[]string{"-", "\\", "|", "/"}, 100*time.Millisecond)

		start := time.Now()
		affected, err := client.Exec(ctx, args[0], sqlParams(args[1:])...)
		elapsed := time.Since(start)
		stopSpinner()

		if err != nil {
			fmt.Println("❌ " + logging.PresentError("statement failed", err))
			return err
		}

		pterm.Printf("✅ %d row(s) affected in %s\n", affected, elapsed.Round(time.Millisecond))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(execCmd)
}
