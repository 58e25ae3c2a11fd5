package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/gaiac/pkg/gaia"
	"github.com/leapstack-labs/gaiac/pkg/ism"
)

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// renderDiagnostics prints fixups, warnings and errors as one table,
// worst first.
func renderDiagnostics(w io.Writer, diag ism.Diagnostics) {
	if len(diag.Errors) == 0 && len(diag.Warnings) == 0 && len(diag.Fixups) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Severity", "Message"})
	for _, msg := range diag.Errors {
		t.AppendRow(table.Row{"error", msg})
	}
	for _, msg := range diag.Warnings {
		t.AppendRow(table.Row{"warning", msg})
	}
	for _, msg := range diag.Fixups {
		t.AppendRow(table.Row{"fixup", msg})
	}
	t.Render()
}

// renderValidation prints the rule violations of one graph.
func renderValidation(w io.Writer, name string, result gaia.ValidationResult) {
	if result.OK && len(result.Warnings) == 0 {
		_, _ = fmt.Fprintf(w, "%s: ok\n", name)
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(name)
	t.AppendHeader(table.Row{"Severity", "Path", "Reason"})
	for _, e := range result.Errors {
		t.AppendRow(table.Row{"error", e.Path, e.Reason})
	}
	for _, warning := range result.Warnings {
		t.AppendRow(table.Row{"warning", "", warning})
	}
	t.Render()
}
