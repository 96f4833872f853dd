// Package main is the entry point for the pgbridge CLI.
// It wires the PostgreSQL binding into a small set of commands for
// configuring, inspecting and exercising a database connection.
package main

import (
	"pgbridge/cmd"
)

func main() {
	cmd.Execute()
}
