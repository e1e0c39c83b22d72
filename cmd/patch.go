package cmd

import (
	"fmt"
	"os"

	veditErrors "github.com/conneroisu/vedit/internal/errors"
	"github.com/conneroisu/vedit/internal/logging"
	"github.com/conneroisu/vedit/internal/patch"
	"github.com/conneroisu/vedit/internal/types"
	"github.com/spf13/cobra"
)

var patchFlags *StandardFlags

var patchCmd = &cobra.Command{
	Use:   "patch FILE",
	Short: "Apply style changes to the element at a source line",
	Long: `Apply style changes to the JSX element whose opening tag is on --line.
Changes are a JSON array of {"property","oldValue","newValue"} objects,
optionally with "useTailwind" and "tailwindClass". The property
"textContent" replaces the element's text.

Without --write the patched source is printed; with --write the file is
updated in place. A partially applied patch is reported on stderr.

Examples:
  vedit patch src/App.tsx --line 12 --changes changes.json
  echo '[{"property":"marginTop","oldValue":"","newValue":"16px","useTailwind":true}]' |
    vedit patch src/App.tsx --line 12 --changes - -w`,
	Args: cobra.ExactArgs(1),
	RunE: runPatch,
}

func init() {
	rootCmd.AddCommand(patchCmd)

	patchFlags = AddStandardFlags(patchCmd, "source", "output")
	patchCmd.MarkFlagRequired("line")
	patchCmd.MarkFlagRequired("changes")
}

func runPatch(cmd *cobra.Command, args []string) error {
	if err := patchFlags.ValidateFlags(); err != nil {
		return err
	}
	if patchFlags.Line <= 0 {
		return fmt.Errorf("--line must be a positive line number")
	}

	file := args[0]
	source, err := readInput(cmd, file)
	if err != nil {
		return err
	}

	var changes []types.StyleChange
	if err := readJSONFile(cmd, patchFlags.Changes, &changes); err != nil {
		return err
	}
	if len(changes) == 0 {
		return fmt.Errorf("no changes in %s", patchFlags.Changes)
	}

	generator := patch.NewGenerator(logging.Nop())
	result := generator.GenerateSearchReplaceEdit(string(source), "", changes, file, patchFlags.Line)

	return reportPatch(cmd, file, result)
}

func reportPatch(cmd *cobra.Command, file string, result patch.Result) error {
	switch {
	case result.Location == nil:
		return veditErrors.NewLocateError(file, patchFlags.Line)
	case !result.Success:
		return veditErrors.NewPatchError(veditErrors.ErrCodeOperationFailed, result.Error).
			WithLocation(file, result.Location.StartLine+1)
	}

	stderr := cmd.ErrOrStderr()
	for _, failed := range result.Failed {
		fmt.Fprintf(stderr, "skipped %s: %s\n", failed.Change, failed.Reason)
	}

	if patchFlags.Write {
		info, err := os.Stat(file)
		if err != nil {
			return err
		}
		if err := os.WriteFile(file, []byte(result.UpdatedCode), info.Mode().Perm()); err != nil {
			return fmt.Errorf("failed to write %s: %w", file, err)
		}
	}

	out := cmd.OutOrStdout()
	switch {
	case patchFlags.OutputFormat != FormatTable:
		return writeStructured(out, patchFlags.OutputFormat, result)
	case patchFlags.Write:
		if !patchFlags.Quiet {
			fmt.Fprintf(out, "Patched %s (%d edits applied)\n", file, result.Applied)
		}
		return nil
	default:
		_, err := fmt.Fprint(out, result.UpdatedCode)
		return err
	}
}
