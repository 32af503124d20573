package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/csight/csight/internal/answer"
	qerrors "github.com/csight/csight/internal/errors"
)

func newAskCmd() *cobra.Command {
	var showContext bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question about the codebase",
		Long: `Ask a natural language question about the indexed C codebase.

Retrieves context from all enabled sources, ranks it, and asks the
configured language model for an answer. When the model is not
running the raw context is printed instead.

Examples:
  csight ask "how does parse_header work?"
  csight ask "who calls free_buf?"
  csight ask "what does src/parser.c include?" --show-context`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			return runAsk(cmd, question, showContext)
		},
	}

	cmd.Flags().BoolVar(&showContext, "show-context", false, "Print the retrieved context before the answer")
	return cmd
}

func runAsk(cmd *cobra.Command, question string, showContext bool) error {
	p, err := openPipeline()
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), qerrors.FormatForCLI(err))
		return err
	}
	defer p.close()

	result, err := p.engine.AnswerContext(cmd.Context(), buildRequest(p.cfg, question))
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), qerrors.FormatForCLI(err))
		return err
	}

	out := cmd.OutOrStdout()
	if showContext {
		fmt.Fprintln(out, "--- context ---")
		fmt.Fprintln(out, result.ContextString())
		fmt.Fprintln(out, "---------------")
	}

	responder := answer.NewResponder(answer.Config{
		Host:        p.cfg.LLM.Endpoint,
		Model:       p.cfg.LLM.Model,
		Temperature: p.cfg.LLM.Temperature,
		Timeout:     p.cfg.LLM.Timeout,
	}, nil)

	ans, err := responder.Respond(cmd.Context(), question, result)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), qerrors.FormatForCLI(err))
		return err
	}

	fmt.Fprintln(out, ans.Text)
	if ans.Confidence < 1.0 {
		fmt.Fprintf(out, "\n(confidence %.0f%%: some sources did not contribute)\n", ans.Confidence*100)
	}
	return nil
}
