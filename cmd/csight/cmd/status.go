package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	qerrors "github.com/csight/csight/internal/errors"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show index and source status",
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
	p, err := openPipeline()
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), qerrors.FormatForCLI(err))
		return err
	}
	defer p.close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "project root: %s\n", p.root)

	stats, err := p.graph.Stats(cmd.Context())
	if err != nil {
		fmt.Fprintf(out, "graph store:  unavailable (%v)\n", err)
	} else {
		fmt.Fprintf(out, "graph store:  %d functions, %d calls, %d includes\n",
			stats.Functions, stats.Calls, stats.Includes)
	}
	fmt.Fprintf(out, "vector index: %d vectors (%d dimensions)\n",
		p.vectors.Count(), p.vectors.Dimensions())

	fmt.Fprintln(out, "sources:")
	fmt.Fprintf(out, "  vector      enabled=%v top_k=%d\n", p.cfg.Query.Vector.Enable, p.cfg.Query.Vector.TopK)
	fmt.Fprintf(out, "  call_graph  enabled=%v top_k=%d\n", p.cfg.Query.CallGraph.Enable, p.cfg.Query.CallGraph.TopK)
	fmt.Fprintf(out, "  dependency  enabled=%v top_k=%d\n", p.cfg.Query.Dependency.Enable, p.cfg.Query.Dependency.TopK)
	fmt.Fprintf(out, "cache: enabled=%v ttl=%s max_entries=%d\n",
		p.cfg.Cache.Enable, p.cfg.Cache.TTL, p.cfg.Cache.MaxEntries)
	return nil
}
