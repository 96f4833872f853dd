// Copyright (c) 2025 Pgbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"pgbridge/internal/config"
	"pgbridge/internal/logging"
	"pgbridge/pgclient"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// queryCmd represents the query command for running a SQL statement and
// rendering the result rows as a table.
var queryCmd = &cobra.Command{
	Use:   "query <sql> [param...]",
	Short: "Run a SQL query and display the result rows",
	Long: `The query command runs the given SQL statement against the configured database
and renders the result rows as a table. Columns appear in the order the server
returned them. Additional arguments are bound to $1, $2, ... placeholders as
text parameters.

The connection is taken from PGBRIDGE_DSN, DATABASE_URL, or the OS keychain
entry saved by 'pgbridge connect'.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		client, err := openClient(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		// Hide the cursor while the spinner animates
		cursor.Hide()
		defer cursor.Show()

		stopSpinner := startInlineSpinner(os.Stdout, "running query",
			[]string{"-", "\\", "|", "/"}, 100*time.Millisecond)

		start := time.Now()
		result, err := client.Query(ctx, args[0], sqlParams(args[1:])...)
		elapsed := time.Since(start)
		stopSpinner()

		if err != nil {
			fmt.Println("❌ " + logging.PresentError("query failed", err))
			return err
		}

		renderResult(result)
		pterm.Printf("%d row(s) in %s\n", len(result.Rows), elapsed.Round(time.Millisecond))
		return nil
	},
}

// openClient resolves the configured DSN and establishes a connection,
// bounded by the configured connect timeout.
func openClient(ctx context.Context) (*pgclient.Client, error) {
	dsnStr, err := resolveDSN()
	if err != nil {
		pterm.Println("❌ " + err.Error())
		return nil, err
	}

	cfg, _ := config.Load()
	dialCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.ConnectTimeoutSeconds)*time.Second)
	defer cancel()

	client, err := pgclient.Connect(dialCtx, pgclient.Options{DSN: dsnStr})
	if err != nil {
		pterm.Println("❌ " + logging.PresentError("connection failed", err))
		return nil, err
	}
	return client, nil
}

// renderResult prints the result rows as a table in server column order.
func renderResult(result *pgclient.Result) {
	if len(result.Columns) == 0 {
		return
	}

	data := pterm.TableData{result.Columns}
	for _, row := range result.Rows {
		line := make([]string, len(result.Columns))
		for i, col := range result.Columns {
			line[i] = formatCell(row[col])
		}
		data = append(data, line)
	}

	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		// Fall back to plain output if the terminal renderer fails
		for _, line := range data {
			fmt.Println(line)
		}
	}
}

// sqlParams converts trailing CLI arguments into bindable text parameters.
func sqlParams(args []string) []any {
	if len(args) == 0 {
		return nil
	}
	params := make([]any, len(args))
	for i, a := range args {
		params[i] = a
	}
	return params
}

// formatCell renders a decoded host value for terminal display.
func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case []byte:
		return "\\x" + hex.EncodeToString(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func init() {
	rootCmd.AddCommand(queryCmd)
}
