package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/zmk-layout/layout/layout"
	"github.com/zmk-layout/layout/validate"
)

var validateMaxKeys int

var validateCmd = &cobra.Command{
	Use:   "validate <in.json>",
	Short: "Validate a JSON layout document against the core rule set",
	Args:  cobra.ExactArgs(1),
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

		summary := validate.New(data).All(validateMaxKeys).Collect()
		for _, w := range summary.Warnings {
			fmt.Fprintln(os.Stderr, color.YellowString("warning:"), w)
		}
		for _, e := range summary.Errors {
			fmt.Fprintln(os.Stderr, color.RedString("error:"), e)
		}

		if !summary.IsValid() {
			os.Exit(ExitValidationErrors)
		}
		color.Green("%s is valid", args[0])
	},
}

func init() {
	validateCmd.Flags().IntVar(&validateMaxKeys, "max-keys", 80, "maximum bindings per layer before a warning is raised")
}
