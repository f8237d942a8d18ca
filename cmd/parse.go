package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/zmk-layout/layout/dtast"
	"github.com/zmk-layout/layout/extract"
	"github.com/zmk-layout/layout/layout"
)

var parseCmd = &cobra.Command{
	Use:   "parse <in.keymap> <out.json>",
	Short: "Parse a .keymap file into a JSON layout document",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		raw, err := readInput(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
			os.Exit(ExitIOError)
		}

		roots, perrs := dtast.Parse(raw)
		for _, e := range perrs {
			fmt.Fprintln(os.Stderr, color.YellowString("parse:"), e.Error())
		}

		defines := extract.HarvestDefines(roots)
		data, diags := extract.Extract(roots, raw, defines)
		for _, d := range diags {
			fmt.Fprintln(os.Stderr, color.YellowString("extract:"), d.String())
		}

		out, err := layout.DumpJSON(data)
		if err != nil {
			fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
			os.Exit(ExitParseErrors)
		}
		if err := writeOutput(args[1], out); err != nil {
			fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
			os.Exit(ExitIOError)
		}
		color.Green("parsed %s -> %s", args[0], args[1])
		if len(perrs) > 0 {
			os.Exit(ExitParseErrors)
		}
	},
}
