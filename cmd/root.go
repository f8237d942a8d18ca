// Package cmd is the reference CLI: parse, emit and validate
// subcommands over a cobra root — colored status lines via fatih/color,
// one cobra.Command per verb, flags bound in each command's init.
package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Exit codes for the CLI.
const (
	ExitOK               = 0
	ExitValidationErrors = 1
	ExitParseErrors      = 2
	ExitIOError          = 3
)

var rootCmd = &cobra.Command{
	Use:   "zmklayout",
	Short: "Parse, emit and validate ZMK keymap layouts",
	Long:  "zmklayout converts between .keymap (Devicetree) and JSON layout documents, and validates layout models against the core rule set.",
}

// Execute runs the CLI, the entrypoint's only job.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
		os.Exit(ExitIOError)
	}
}

func init() {
	rootCmd.AddCommand(parseCmd, emitCmd, validateCmd)
}

func readInput(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return raw, nil
}

func writeOutput(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
