package cmd

import (
	"fmt"
	"text/tabwriter"

	veditErrors "github.com/conneroisu/vedit/internal/errors"
	"github.com/conneroisu/vedit/internal/jsx"
	"github.com/spf13/cobra"
)

var locateFlags *StandardFlags

var locateCmd = &cobra.Command{
	Use:     "locate FILE",
	Aliases: []string{"l"},
	Short:   "Show the JSX element at a source line",
	Long: `Find the element whose opening tag is on --line, looking back a few
lines when the line holds no tag, and print its span.

Examples:
  vedit locate src/App.tsx --line 12
  vedit locate src/App.tsx --line 12 -o yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runLocate,
}

// locateOutput is the printed form of a jsx.Location, with 1-based lines.
type locateOutput struct {
	File           string `json:"file" yaml:"file"`
	Tag            string `json:"tag" yaml:"tag"`
	StartLine      int    `json:"startLine" yaml:"startLine"`
	EndLine        int    `json:"endLine" yaml:"endLine"`
	ClosingTagLine int    `json:"closingTagLine,omitempty" yaml:"closingTagLine,omitempty"`
	SelfClosing    bool   `json:"selfClosing" yaml:"selfClosing"`
	OpeningTag     string `json:"openingTag" yaml:"openingTag"`
	Content        string `json:"content,omitempty" yaml:"content,omitempty"`
}

func init() {
	rootCmd.AddCommand(locateCmd)

	locateFlags = AddStandardFlags(locateCmd, "output")
	locateCmd.Flags().IntVarP(&locateFlags.Line, "line", "n", 0, "1-based line of the element's opening tag")
	locateCmd.MarkFlagRequired("line")
}

func newLocateOutput(file string, loc jsx.Location) locateOutput {
	out := locateOutput{
		File:        file,
		Tag:         loc.TagName,
		StartLine:   loc.StartLine + 1,
		EndLine:     loc.EndLine + 1,
		SelfClosing: loc.SelfClosing(),
		OpeningTag:  loc.OpeningTag,
		Content:     loc.ElementContent,
	}
	if !out.SelfClosing {
		out.ClosingTagLine = loc.ClosingTagLine + 1
	}
	return out
}

func runLocate(cmd *cobra.Command, args []string) error {
	if err := locateFlags.ValidateFlags(); err != nil {
		return err
	}
	if locateFlags.Line <= 0 {
		return fmt.Errorf("--line must be a positive line number")
	}

	source, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}

	loc := jsx.FindElementInText(string(source), locateFlags.Line)
	if !loc.Found() {
		return veditErrors.NewLocateError(args[0], locateFlags.Line)
	}

	out := newLocateOutput(args[0], loc)
	if locateFlags.OutputFormat != FormatTable {
		return writeStructured(cmd.OutOrStdout(), locateFlags.OutputFormat, out)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Tag:\t<%s>\n", out.Tag)
	fmt.Fprintf(w, "Opening tag:\t%d-%d\n", out.StartLine, out.EndLine)
	if out.SelfClosing {
		fmt.Fprintf(w, "Closing tag:\tself-closing\n")
	} else {
		fmt.Fprintf(w, "Closing tag:\t%d\n", out.ClosingTagLine)
	}
	if locateFlags.Verbose {
		fmt.Fprintf(w, "Source:\t%s\n", out.OpeningTag)
	}
	return w.Flush()
}
