// Package categorize implements re-categorization of stored expenses.
package categorize

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rafaelvasco/dindinho/cmd/root"
	"github.com/rafaelvasco/dindinho/internal/models"
	"github.com/rafaelvasco/dindinho/internal/textutils"
)

// Cmd represents the categorize command.
var Cmd = &cobra.Command{
	Use:   "categorize [description...]",
	Short: "Re-run categorization over uncategorized expenses",
	Long: `Without arguments, categorize sends every stored expense still labeled
with the generic category, and not confirmed by you, back through the
classification service. Confirmed categories are never touched.

With arguments, each one is classified as a standalone description and the
result printed, without touching stored expenses.`,
	RunE: categorizeFunc,
}

func categorizeFunc(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if len(args) > 0 {
		return categorizeAdHoc(cmd, args)
	}

	s := root.App.Store()

	expenses, err := s.Expenses(ctx)
	if err != nil {
		return err
	}

	var pending []models.ImportDecision
	var ids []string
	for _, e := range expenses {
		if e.CategoryConfirmed || e.Category != models.CategoryOther {
			continue
		}
		pending = append(pending, models.ImportDecision{
			Transaction: models.ParsedTransaction{
				Date:                  e.Date,
				Description:           e.Description,
				NormalizedDescription: e.NormalizedDescription,
				AmountCents:           e.AmountCents,
			},
			ProposedAction: models.ActionImport,
		})
		ids = append(ids, e.ID)
	}

	if len(pending) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to categorize.")
		return nil
	}

	if err := root.App.Categorizer().Categorize(ctx, pending); err != nil {
		return err
	}

	updated := 0
	for i, d := range pending {
		if d.Category == "" || d.Category == models.CategoryOther {
			continue
		}
		if err := s.UpdateExpenseCategory(ctx, ids[i], d.Category, false); err != nil {
			return err
		}
		updated++
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Categorized %d of %d expense(s).\n", updated, len(pending))
	return nil
}

// categorizeAdHoc classifies the given descriptions and prints the result.
func categorizeAdHoc(cmd *cobra.Command, descriptions []string) error {
	decisions := make([]models.ImportDecision, len(descriptions))
	for i, desc := range descriptions {
		decisions[i] = models.ImportDecision{
			Transaction: models.ParsedTransaction{
				Description:           desc,
				NormalizedDescription: textutils.NormalizeDescription(desc),
			},
			ProposedAction: models.ActionImport,
		}
	}

	if err := root.App.Categorizer().Categorize(cmd.Context(), decisions); err != nil {
		return err
	}
	for i, d := range decisions {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", descriptions[i], d.Category)
	}
	return nil
}
