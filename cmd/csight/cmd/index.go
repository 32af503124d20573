package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	qerrors "github.com/csight/csight/internal/errors"
	"github.com/csight/csight/internal/source"
	"github.com/csight/csight/internal/store"
)

// parserExport is the JSON the external C parser emits.
type parserExport struct {
	Functions []parserFunction `json:"functions"`
	Includes  []parserInclude  `json:"includes"`
}

type parserFunction struct {
	Name      string   `json:"name"`
	File      string   `json:"file"`
	StartLine int      `json:"start_line"`
	EndLine   int      `json:"end_line"`
	Snippet   string   `json:"snippet"`
	Calls     []string `json:"calls"`
}

type parserInclude struct {
	File     string   `json:"file"`
	Includes []string `json:"includes"`
}

func (f parserFunction) toStoreFunction() *store.Function {
	return &store.Function{
		Name:      f.Name,
		FilePath:  f.File,
		StartLine: f.StartLine,
		EndLine:   f.EndLine,
		Snippet:   f.Snippet,
	}
}

func newIndexCmd() *cobra.Command {
	var skipVectors bool

	cmd := &cobra.Command{
		Use:   "index <parser-export.json>",
		Short: "Load a parser export into the graph and vector stores",
		Long: `Load the C parser's JSON export into csight's stores: function
definitions and call edges into the graph database, include edges
into the dependency graph, and function snippets into the vector
index (requires the embedding model to be running).

Example:
  csight index build/csight-export.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, args[0], skipVectors)
		},
	}

	cmd.Flags().BoolVar(&skipVectors, "skip-vectors", false, "Skip embedding (graph data only)")
	return cmd
}

func runIndex(cmd *cobra.Command, exportPath string, skipVectors bool) error {
	data, err := os.ReadFile(exportPath)
	if err != nil {
		return fmt.Errorf("read parser export: %w", err)
	}
	var export parserExport
	if err := json.Unmarshal(data, &export); err != nil {
		return fmt.Errorf("parse parser export: %w", err)
	}

	p, err := openPipeline()
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), qerrors.FormatForCLI(err))
		return err
	}
	defer p.close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	// Graph data first; it has no external dependency.
	var calls int
	for _, fn := range export.Functions {
		if err := p.graph.AddFunction(ctx, fn.toStoreFunction()); err != nil {
			return err
		}
		for _, callee := range fn.Calls {
			if err := p.graph.AddCall(ctx, fn.Name, callee); err != nil {
				return err
			}
			calls++
		}
	}
	var includes int
	for _, inc := range export.Includes {
		for _, dst := range inc.Includes {
			if err := p.graph.AddInclude(ctx, inc.File, dst); err != nil {
				return err
			}
			includes++
		}
	}
	fmt.Fprintf(out, "graph: %d functions, %d calls, %d includes\n",
		len(export.Functions), calls, includes)

	if skipVectors {
		return nil
	}

	embedded, err := p.embedFunctions(ctx, export.Functions)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), qerrors.FormatForCLI(err))
		return err
	}
	if err := p.vectors.Save(p.cfg.VectorIndexPath(p.root)); err != nil {
		return fmt.Errorf("save vector index: %w", err)
	}
	fmt.Fprintf(out, "vectors: %d functions embedded\n", embedded)
	return nil
}

func (p *pipeline) embedFunctions(ctx context.Context, fns []parserFunction) (int, error) {
	embedded := 0
	for _, fn := range fns {
		if fn.Snippet == "" {
			continue
		}
		vec, err := p.embedder.Embed(ctx, fn.Snippet)
		if err != nil {
			return embedded, err
		}
		id := source.UnitID{Path: fn.File, Symbol: fn.Name}.String()
		if err := p.vectors.Add(ctx, []string{id}, [][]float32{vec}); err != nil {
			return embedded, err
		}
		embedded++
	}
	return embedded, nil
}
