package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	qerrors "github.com/csight/csight/internal/errors"
	"github.com/csight/csight/internal/query"
)

type searchOptions struct {
	limit  int
	format string // "text" or "json"
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Retrieve ranked code context without the language model",
		Long: `Run the retrieval pipeline and print the ranked context directly,
skipping answer generation. Useful for inspecting what the engine
would feed the model.

Examples:
  csight search "parse_header"
  csight search "who calls free_buf" --limit 10 --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum results (default from config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	return cmd
}

func runSearch(cmd *cobra.Command, text string, opts searchOptions) error {
	p, err := openPipeline()
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), qerrors.FormatForCLI(err))
		return err
	}
	defer p.close()

	req := buildRequest(p.cfg, text)
	if opts.limit > 0 {
		req.FinalTopK = opts.limit
	}

	result, err := p.engine.AnswerContext(cmd.Context(), req)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), qerrors.FormatForCLI(err))
		return err
	}

	out := cmd.OutOrStdout()
	if opts.format == "json" {
		return json.NewEncoder(out).Encode(searchOutput(result))
	}

	fmt.Fprint(out, result.ContextString())
	fmt.Fprintf(out, "\n%d results in %s (confidence %.0f%%)\n",
		len(result.Candidates), result.Elapsed.Round(1e6), result.Confidence*100)
	for _, o := range result.Outcomes {
		fmt.Fprintf(out, "  %-12s %-8s %d hits\n", o.Kind, o.Status, o.Hits)
	}
	return nil
}

// searchResult is the JSON shape of one ranked unit.
type searchResult struct {
	Unit    string  `json:"unit"`
	Score   float64 `json:"score"`
	Sources int     `json:"sources"`
	Snippet string  `json:"snippet,omitempty"`
}

type searchResponse struct {
	Results    []searchResult         `json:"results"`
	Outcomes   []query.OutcomeSummary `json:"outcomes"`
	Confidence float64                `json:"confidence"`
	FromCache  bool                   `json:"from_cache"`
}

func searchOutput(result *query.RankedResult) searchResponse {
	resp := searchResponse{
		Results:    make([]searchResult, 0, len(result.Candidates)),
		Outcomes:   result.Outcomes,
		Confidence: result.Confidence,
		FromCache:  result.FromCache,
	}
	for _, fc := range result.Candidates {
		resp.Results = append(resp.Results, searchResult{
			Unit:    fc.Unit.String(),
			Score:   fc.FinalScore,
			Sources: fc.SourceCount(),
			Snippet: fc.Snippet(),
		})
	}
	return resp
}
