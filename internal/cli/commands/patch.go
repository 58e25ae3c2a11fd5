package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/gaiac/internal/config"
	"github.com/leapstack-labs/gaiac/pkg/gaia"
)

// NewPatchCommand creates the patch command.
func NewPatchCommand() *cobra.Command {
	var (
		dryRun       bool
		skipValidate bool
		patchVersion string
		outFile      string
	)

	cmd := &cobra.Command{
		Use:   "patch <graph.json> <patch.json>",
		Short: "Apply a structured patch to a Gaia graph",
		Long: `Apply a patch document to an existing graph. Sections are applied
in a fixed order: edge removals, node removals, node additions, edge
additions, node updates. The patched graph is validated before the
payload is produced.

With --dry-run, the new graph is computed and validated but no
payload is produced. With --out, the payload is written to a file
instead of stdout.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ConfigFromContext(cmd.Context())

			graphData, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			var g gaia.Graph
			if err := json.Unmarshal(graphData, &g); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			patchData, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[1], err)
			}
			var p gaia.Patch
			if err := json.Unmarshal(patchData, &p); err != nil {
				return fmt.Errorf("parse %s: %w", args[1], err)
			}

			result := gaia.Apply(g, p, gaia.ApplyOptions{
				DryRun:       dryRun,
				SkipValidate: skipValidate,
				Version:      patchVersion,
			})

			if outFile != "" && result.OK && result.Payload != "" {
				if err := os.WriteFile(outFile, []byte(result.Payload), 0644); err != nil {
					return fmt.Errorf("write %s: %w", outFile, err)
				}
			}

			if cfg.Output == config.OutputJSON {
				if err := renderJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
			} else {
				renderPatchResult(cmd, result)
			}

			if !result.OK {
				return fmt.Errorf("patch failed with %d error(s)", len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute and validate without producing a payload")
	cmd.Flags().BoolVar(&skipValidate, "skip-validate", false, "Skip validation of the patched graph")
	cmd.Flags().StringVar(&patchVersion, "version", "", "Opaque version echoed in the result")
	cmd.Flags().StringVar(&outFile, "out", "", "File to write the patched graph payload to")
	return cmd
}

func renderPatchResult(cmd *cobra.Command, result gaia.PatchResult) {
	w := cmd.OutOrStdout()

	status := "ok"
	if !result.OK {
		status = "failed"
	}
	_, _ = fmt.Fprintf(w, "patch %s: %d node(s), %d edge(s)\n",
		status, len(result.GraphNew.Nodes), len(result.GraphNew.Edges))

	renderValidation(w, "patched graph", gaia.ValidationResult{
		OK:       result.OK,
		Errors:   result.Errors,
		Warnings: result.Warnings,
	})
}
