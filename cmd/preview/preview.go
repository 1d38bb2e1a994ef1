// Package preview implements the dry-run command: parse and reconcile a
// statement without touching persisted state.
package preview

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rafaelvasco/dindinho/cmd/root"
	"github.com/rafaelvasco/dindinho/internal/currencyutils"
	"github.com/rafaelvasco/dindinho/internal/dateutils"
	"github.com/rafaelvasco/dindinho/internal/importer"
	"github.com/rafaelvasco/dindinho/internal/models"
)

var asJSON bool

// Cmd represents the preview command.
var Cmd = &cobra.Command{
	Use:   "preview <statement.csv>",
	Short: "Parse a statement and show what an import would do",
	Long: `Preview detects the statement dialect, parses every row and shows the
proposed action for each one: import, duplicate, ignored or subscription
match. Nothing is persisted.`,
	Args: cobra.ExactArgs(1),
	RunE: previewFunc,
}

func init() {
	Cmd.Flags().BoolVar(&asJSON, "json", false, "Print the preview as JSON")
}

func previewFunc(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	result, err := root.App.Importer().Preview(cmd.Context(), raw)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	Render(cmd, result)
	return nil
}

// Render prints a preview result as a review table.
func Render(cmd *cobra.Command, result *importer.PreviewResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Dialect: %s\n\n", result.Dialect)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tAMOUNT\tDESCRIPTION\tACTION\tCATEGORY\tNOTES")
	for _, d := range result.Decisions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			dateutils.FormatBrazilianDate(d.Transaction.Date),
			currencyutils.FormatBRL(d.Transaction.AmountCents),
			d.Transaction.Description,
			d.Effective(),
			d.Category,
			notes(d))
	}
	w.Flush()

	if len(result.RowErrors) > 0 {
		fmt.Fprintf(out, "\n%d row(s) could not be parsed:\n", len(result.RowErrors))
		for _, re := range result.RowErrors {
			fmt.Fprintf(out, "  row %d: %v\n", re.Row, re.Err)
		}
	}
}

func notes(d models.ImportDecision) string {
	switch {
	case d.CardPayment:
		return "card bill payment"
	case d.AmountVaries:
		return "amount changed"
	case d.ProposedAction == models.ActionIgnoredMatch && d.MatchedIgnoreScope == models.IgnoreScopeOneTime:
		return "one-time ignore"
	case d.ProposedAction == models.ActionSubscriptionMatch:
		return "subscription: " + d.SubscriptionRef
	}
	return ""
}
