// Package main is the entry point for the Wayfare CLI application.
// It provides travel search and booking from the terminal.
package main

import (
	"wayfare/cli/cmd"
)

// main is the entry point for the Wayfare CLI application.
// It initializes and executes the command-line interface.
func main() {
	cmd.Execute()
}
