// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/bioexplorer/internal/chat"
	"github.com/pdiddy/bioexplorer/internal/metrics"
	"github.com/pdiddy/bioexplorer/internal/search"
	"github.com/pdiddy/bioexplorer/pkg/types"
)

var askCmd = &cobra.Command{
	Use:   "ask [question...]",
	Short: "Ask the research assistant a question",
	Long: `Ask sends a question to the retrieval backend and prints the grounded
answer with its citations. Facet flags narrow the evidence the answer may use.

Without a question, ask starts an interactive session that keeps one
conversation until EOF. Type /sources to list the last answer's citations
again, /clear to start over and /quit to leave.`,
	RunE: runAsk,
}

func init() {
	addFilterFlags(askCmd)
	askCmd.Flags().Int("top-k", 0, "citations to retrieve per answer (default chat.top_k)")
	askCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	filters, err := filtersFromFlags(cmd, nil)
	if err != nil {
		return err
	}

	cfg := explorerConfig(viper.GetViper())
	backend, err := newBackend(cfg)
	if err != nil {
		return err
	}

	topK := cfg.Chat.TopK
	if k, _ := cmd.Flags().GetInt("top-k"); k > 0 {
		topK = k
	}
	sess := chat.NewSession(backend, chat.WithTopK(topK), chat.WithLogger(logger))
	sess.SetFilters(filters)

	asJSON, _ := cmd.Flags().GetBool("json")
	if len(args) > 0 {
		return askOnce(cmd.Context(), sess, strings.Join(args, " "), asJSON, os.Stdout)
	}
	return askLoop(cmd.Context(), sess, os.Stdin, os.Stdout)
}

func askOnce(ctx context.Context, sess *chat.Session, question string, asJSON bool, w io.Writer) error {
	resp, err := sess.Ask(ctx, question)
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}
	if asJSON {
		return search.FormatJSON(resp, w)
	}
	formatAnswer(resp, w)
	return nil
}

func askLoop(ctx context.Context, sess *chat.Session, r io.Reader, w io.Writer) error {
	fmt.Fprintf(w, "Session %s. /sources repeats citations, /clear resets, /quit exits.\n", sess.ID)
	sc := bufio.NewScanner(r)
	for {
		fmt.Fprint(w, "> ")
		if !sc.Scan() {
			fmt.Fprintln(w)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/clear":
			sess.History.Clear()
			fmt.Fprintln(w, "History cleared.")
			continue
		case "/sources":
			if last, ok := sess.History.Last(); ok {
				formatSources(last.Citations, w)
			} else {
				fmt.Fprintln(w, "Nothing asked yet.")
			}
			continue
		}

		resp, err := sess.Ask(ctx, line)
		switch {
		case errors.Is(err, types.ErrQueryTooShort):
			fmt.Fprintln(w, "Please ask a longer question.")
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(w, "Error: %v\n", err)
		default:
			formatAnswer(resp, w)
		}
	}
}

// formatAnswer prints an answer, its numbered citations and a metrics line.
func formatAnswer(resp *types.ChatResponse, w io.Writer) {
	fmt.Fprintf(w, "%s\n", strings.TrimSpace(resp.Answer))
	formatSources(resp.Citations, w)
	if sum, ok := metrics.Extract(resp.Metrics); ok {
		fmt.Fprintf(w, "\nGrounded %d%%, %d retrieved, %.0f ms\n",
			sum.GroundedPercent(), sum.RetrievedK, sum.LatencyMS)
		if d := sum.Diversity(); d.Distinct > 0 {
			fmt.Fprintf(w, "Evidence from %s\n", d)
		}
	}
	fmt.Fprintln(w)
}

func formatSources(citations []types.Citation, w io.Writer) {
	if len(citations) == 0 {
		return
	}
	fmt.Fprintln(w, "\nSources")
	for i, c := range citations {
		id := c.SourceID
		if c.OSDRID != "" {
			id = c.OSDRID
		}
		title := c.Title
		if title == "" {
			title = c.Section
		}
		fmt.Fprintf(w, "  [%d] %-12s %s\n", i+1, id, title)
	}
}
