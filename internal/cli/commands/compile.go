package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/gaiac/internal/config"
	"github.com/leapstack-labs/gaiac/internal/pipeline"
	"github.com/leapstack-labs/gaiac/pkg/gaia"
)

// NewCompileCommand creates the compile command.
func NewCompileCommand() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "compile <candidates.json>...",
		Short: "Compile candidate interfaces to Gaia graphs",
		Long: `Run the full pipeline over one or more candidate documents:
decode, merge duplicates, normalize and compile each surviving
interface to a Gaia graph.

With --out-dir, each valid graph payload is written to
<dir>/<interface_id>.json.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ConfigFromContext(cmd.Context())
			log := LoggerFromContext(cmd.Context())

			inputs := make([]pipeline.Input, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				inputs = append(inputs, pipeline.Input{Name: path, Data: data})
			}

			opts := pipeline.Options{
				Logger: log,
				Merge:  cfg.MergeOptions(),
				Compile: gaia.CompileOptions{
					Engine: cfg.Compile.Engine,
					PSM:    cfg.Compile.PSM,
				},
			}

			results, err := pipeline.Run(cmd.Context(), inputs, opts)
			if err != nil {
				return err
			}

			if outDir != "" {
				if err := writeGraphs(outDir, results); err != nil {
					return err
				}
			}

			if cfg.Output == config.OutputJSON {
				if err := renderJSON(cmd.OutOrStdout(), results); err != nil {
					return err
				}
			} else {
				renderCompileSummary(cmd, results)
			}

			if failed := countFailed(results); failed > 0 {
				return fmt.Errorf("%d interface(s) failed validation", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory to write graph payloads to")
	return cmd
}

func writeGraphs(dir string, results []pipeline.Result) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	for _, res := range results {
		for _, g := range res.Graphs {
			if !g.Validation.OK {
				continue
			}
			path := filepath.Join(dir, g.InterfaceID+".json")
			if err := os.WriteFile(path, []byte(g.Payload), 0644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
		}
	}
	return nil
}

func renderCompileSummary(cmd *cobra.Command, results []pipeline.Result) {
	w := cmd.OutOrStdout()

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Source", "Interface ID", "Name", "Nodes", "Edges", "Status"})
	for _, res := range results {
		for _, g := range res.Graphs {
			status := "ok"
			if !g.Validation.OK {
				status = fmt.Sprintf("%d error(s)", len(g.Validation.Errors))
			}
			t.AppendRow(table.Row{
				res.Source, g.InterfaceID, g.InterfaceName,
				len(g.Graph.Nodes), len(g.Graph.Edges), status,
			})
		}
	}
	t.Render()

	for _, res := range results {
		renderDiagnostics(w, res.Diagnostics)
		for _, g := range res.Graphs {
			if !g.Validation.OK {
				renderValidation(w, g.InterfaceID, g.Validation)
			}
		}
	}
}

func countFailed(results []pipeline.Result) int {
	failed := 0
	for _, res := range results {
		for _, g := range res.Graphs {
			if !g.Validation.OK {
				failed++
			}
		}
	}
	return failed
}
