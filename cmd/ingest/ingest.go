// Package ingest implements the import command: preview a statement and
// commit the proposed decisions in one atomic batch.
package ingest

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rafaelvasco/dindinho/cmd/preview"
	"github.com/rafaelvasco/dindinho/cmd/root"
	"github.com/rafaelvasco/dindinho/internal/models"
)

var (
	importAll bool
	strict    bool
)

// Cmd represents the ingest command.
var Cmd = &cobra.Command{
	Use:   "ingest <statement.csv>",
	Short: "Import a statement, applying the proposed action for every row",
	Long: `Ingest runs the same pipeline as preview and then commits the proposed
decisions atomically: new rows become expenses, duplicates are skipped,
ignore-list matches are suppressed and subscription matches extend their
subscription history.`,
	Args: cobra.ExactArgs(1),
	RunE: ingestFunc,
}

func init() {
	Cmd.Flags().BoolVar(&importAll, "import-all", false,
		"Import every row, overriding duplicate and ignore proposals")
	Cmd.Flags().BoolVar(&strict, "strict", false,
		"Abort without committing when any row fails to parse")
}

func ingestFunc(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	imp := root.App.Importer()
	previewResult, err := imp.Preview(cmd.Context(), raw)
	if err != nil {
		return err
	}
	preview.Render(cmd, previewResult)

	if strict && len(previewResult.RowErrors) > 0 {
		return fmt.Errorf("%d row(s) failed to parse, aborting (strict mode)", len(previewResult.RowErrors))
	}

	decisions := previewResult.Decisions
	if importAll {
		for i := range decisions {
			decisions[i].UserAction = models.ActionImport
		}
	}

	result, err := imp.Commit(cmd.Context(), decisions)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nImported %d expense(s), ignored %d, skipped %d.\n",
		result.Created, result.Ignored, result.Skipped)
	for _, conflict := range result.Conflicts {
		fmt.Fprintf(out, "  conflict: %v\n", conflict)
	}
	return nil
}
