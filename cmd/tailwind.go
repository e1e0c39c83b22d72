package cmd

import (
	"fmt"

	"github.com/conneroisu/vedit/internal/tailwind"
	"github.com/spf13/cobra"
)

var tailwindCmd = &cobra.Command{
	Use:     "tailwind PROPERTY VALUE",
	Aliases: []string{"tw"},
	Short:   "Map a CSS property and value to a Tailwind utility class",
	Long: `Print the utility class for a camelCase or kebab-case CSS property and a
value. Values off the spacing scale fail so they can be kept inline.

Examples:
  vedit tailwind marginTop 16px      # mt-4
  vedit tailwind font-weight 700     # font-bold
  vedit tailwind color '#3b82f6'     # text-[#3b82f6]`,
	Args: cobra.ExactArgs(2),
	RunE: runTailwind,
}

func init() {
	rootCmd.AddCommand(tailwindCmd)
}

func runTailwind(cmd *cobra.Command, args []string) error {
	property := tailwind.ToCamelCase(args[0])
	class, ok := tailwind.MapToUtilityClass(property, args[1])
	if !ok {
		return fmt.Errorf("no utility class for %s: %s", args[0], args[1])
	}
	fmt.Fprintln(cmd.OutOrStdout(), class)
	return nil
}
