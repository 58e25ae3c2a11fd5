package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/gaiac/internal/config"
	"github.com/leapstack-labs/gaiac/pkg/ism"
)

// NewMergeCommand creates the merge command.
func NewMergeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "merge <candidates.json>",
		Short: "Merge and normalize candidate interfaces",
		Long: `Decode a candidate document, merge duplicate interfaces and
normalize the result into a stable semantic model. The normalized
model is printed as JSON; diagnostics go to stderr in table mode.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ConfigFromContext(cmd.Context())

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			candidates, pending, err := ism.DecodeCandidates(data)
			if err != nil {
				return fmt.Errorf("decode candidates: %w", err)
			}

			mergeOpts := cfg.MergeOptions()
			interfaces, diag := ism.NewMerger(mergeOpts).Merge(candidates)

			doc := ism.Document{Interfaces: interfaces, Pending: pending}
			doc, normDiag := ism.NewNormalizer(mergeOpts.Tables).Normalize(doc)
			diag.Extend(normDiag)

			if cfg.Output == config.OutputJSON {
				out := struct {
					Document    ism.Document    `json:"document"`
					Diagnostics ism.Diagnostics `json:"diagnostics"`
				}{doc, diag}
				if err := renderJSON(cmd.OutOrStdout(), out); err != nil {
					return err
				}
			} else {
				if err := renderJSON(cmd.OutOrStdout(), doc); err != nil {
					return err
				}
				renderDiagnostics(cmd.ErrOrStderr(), diag)
			}

			if diag.HasErrors() {
				return fmt.Errorf("%d structural error(s)", len(diag.Errors))
			}
			return nil
		},
	}
}
