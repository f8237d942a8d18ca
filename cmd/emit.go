package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/zmk-layout/layout/export"
	"github.com/zmk-layout/layout/layout"
)

var emitIncludeHeaders bool

var emitCmd = &cobra.Command{
	Use:   "emit <in.json> <out.keymap>",
	Short: "Emit a JSON layout document as a .keymap file",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		raw, err := readInput(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
			os.Exit(ExitIOError)
		}

		data, err := layout.LoadJSON(raw, false)
		if err != nil {
			fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
			os.Exit(ExitParseErrors)
		}

		out, err := export.NewKeymapBuilder(data, nil).WithHeaders(emitIncludeHeaders).Generate()
		if err != nil {
			fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
			os.Exit(ExitParseErrors)
		}

		if err := writeOutput(args[1], []byte(out)); err != nil {
			fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
			os.Exit(ExitIOError)
		}
		color.Green("emitted %s -> %s", args[0], args[1])
	},
}

func init() {
	emitCmd.Flags().BoolVar(&emitIncludeHeaders, "headers", true, "include license banner, includes and key-position header")
}
