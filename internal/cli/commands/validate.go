package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/gaiac/internal/config"
	"github.com/leapstack-labs/gaiac/pkg/gaia"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <graph.json>...",
		Short: "Validate Gaia graphs against the shared rule set",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ConfigFromContext(cmd.Context())

			type report struct {
				Source string                `json:"source"`
				Result gaia.ValidationResult `json:"result"`
			}

			reports := make([]report, 0, len(args))
			failed := 0
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}

				var g gaia.Graph
				if err := json.Unmarshal(data, &g); err != nil {
					return fmt.Errorf("parse %s: %w", path, err)
				}

				result := gaia.Validate(g)
				if !result.OK {
					failed++
				}
				reports = append(reports, report{Source: path, Result: result})
			}

			if cfg.Output == config.OutputJSON {
				if err := renderJSON(cmd.OutOrStdout(), reports); err != nil {
					return err
				}
			} else {
				for _, r := range reports {
					renderValidation(cmd.OutOrStdout(), r.Source, r.Result)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d graph(s) failed validation", failed)
			}
			return nil
		},
	}
}
