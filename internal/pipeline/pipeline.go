// Package pipeline runs the full document flow: decode candidate
// interfaces, merge duplicates, normalize the resulting model and
// compile each interface to a Gaia graph.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/gaiac/pkg/gaia"
	"github.com/leapstack-labs/gaiac/pkg/ism"
)

// defaultConcurrency bounds the document fan-out when Options leaves it
// unset.
const defaultConcurrency = 4

// Input is one raw candidate document.
type Input struct {
	// Name identifies the document in logs and results, usually a file
	// path.
	Name string
	// Data is the raw JSON payload.
	Data []byte
}

// Options configure a pipeline run. The zero value is usable.
type Options struct {
	Logger  *slog.Logger
	Merge   ism.MergeOptions
	Compile gaia.CompileOptions

	// Concurrency bounds how many documents are processed at once.
	Concurrency int
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (o Options) concurrency() int {
	if o.Concurrency > 0 {
		return o.Concurrency
	}
	return defaultConcurrency
}

// CompiledGraph is one interface lowered to a Gaia graph together with
// its validation verdict and serialized payload.
type CompiledGraph struct {
	InterfaceID   string                `json:"interface_id"`
	InterfaceName string                `json:"interface_name"`
	Graph         gaia.Graph            `json:"graph"`
	Validation    gaia.ValidationResult `json:"validation"`
	Payload       string                `json:"payload,omitempty"`
}

// Result is the outcome for one input document.
type Result struct {
	TraceID     string          `json:"trace_id"`
	Source      string          `json:"source"`
	Document    ism.Document    `json:"document"`
	Diagnostics ism.Diagnostics `json:"diagnostics"`
	Graphs      []CompiledGraph `json:"graphs"`
}

// Run processes the inputs concurrently and returns one result per
// input, in input order. A document whose candidates fail validation
// still yields a result carrying the diagnostics; only undecodable
// input is an error.
func Run(ctx context.Context, inputs []Input, opts Options) ([]Result, error) {
	log := opts.logger()

	results := make([]Result, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.concurrency())

	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := runOne(input, opts, log)
			if err != nil {
				return fmt.Errorf("%s: %w", input.Name, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RunOne processes a single document.
func RunOne(ctx context.Context, input Input, opts Options) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return runOne(input, opts, opts.logger())
}

func runOne(input Input, opts Options, log *slog.Logger) (Result, error) {
	traceID := uuid.NewString()
	log = log.With("trace_id", traceID, "source", input.Name)

	candidates, pending, err := ism.DecodeCandidates(input.Data)
	if err != nil {
		return Result{}, fmt.Errorf("decode candidates: %w", err)
	}
	log.Debug("decoded candidates", "count", len(candidates), "pending", len(pending))

	merger := ism.NewMerger(opts.Merge)
	interfaces, diag := merger.Merge(candidates)
	log.Debug("merged candidates", "interfaces", len(interfaces), "warnings", len(diag.Warnings))

	doc := ism.Document{
		Interfaces: interfaces,
		Pending:    pending,
	}

	normalizer := ism.NewNormalizer(opts.Merge.Tables)
	doc, normDiag := normalizer.Normalize(doc)
	diag.Extend(normDiag)

	if diag.HasErrors() {
		log.Warn("document has structural errors", "errors", len(diag.Errors))
	}

	graphs := make([]CompiledGraph, 0, len(doc.Interfaces))
	for _, iface := range doc.Interfaces {
		graph, validation := gaia.Compile(iface, opts.Compile)

		compiled := CompiledGraph{
			InterfaceID:   iface.ID,
			InterfaceName: iface.Name,
			Graph:         graph,
			Validation:    validation,
		}

		if validation.OK {
			payload, err := graph.Payload()
			if err != nil {
				return Result{}, fmt.Errorf("serialize graph %s: %w", iface.ID, err)
			}
			compiled.Payload = payload
			log.Info("compiled interface",
				"interface_id", iface.ID,
				"interface_name", iface.Name,
				"nodes", len(graph.Nodes),
				"edges", len(graph.Edges))
		} else {
			log.Error("interface failed validation",
				"interface_id", iface.ID,
				"errors", len(validation.Errors))
		}

		graphs = append(graphs, compiled)
	}

	return Result{
		TraceID:     traceID,
		Source:      input.Name,
		Document:    doc,
		Diagnostics: diag,
		Graphs:      graphs,
	}, nil
}
