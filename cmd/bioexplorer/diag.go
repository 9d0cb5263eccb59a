// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/bioexplorer/internal/normalize"
	"github.com/pdiddy/bioexplorer/internal/oracle"
	"github.com/pdiddy/bioexplorer/internal/search"
	"github.com/pdiddy/bioexplorer/pkg/types"
)

// previewValues bounds the embedding values printed by diag emb.
const previewValues = 8

var errNoDiagnostics = errors.New("diagnostics need the live retrieval backend; turn mock mode off")

var diagCmd = &cobra.Command{
	Use:   "diag",
	Short: "Inspect the retrieval backend's embedding and retrieval stages",
}

var diagEmbCmd = &cobra.Command{
	Use:   "emb <text...>",
	Short: "Embed text with the backend's retrieval model",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDiagEmb,
}

var diagRetrievalCmd = &cobra.Command{
	Use:   "retrieval <query...>",
	Short: "List the chunks retrieved for a query without generating an answer",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDiagRetrieval,
}

func init() {
	diagEmbCmd.Flags().Bool("json", false, "output as JSON")
	diagRetrievalCmd.Flags().Int("top-k", types.DefaultDiagTopK, "chunks to retrieve")
	diagRetrievalCmd.Flags().Bool("json", false, "output as JSON")
	diagCmd.AddCommand(diagEmbCmd, diagRetrievalCmd)
	rootCmd.AddCommand(diagCmd)
}

func diagnostics() (oracle.Diagnostics, error) {
	backend, err := newBackend(explorerConfig(viper.GetViper()))
	if err != nil {
		return nil, err
	}
	d, ok := backend.(oracle.Diagnostics)
	if !ok {
		return nil, errNoDiagnostics
	}
	return d, nil
}

func runDiagEmb(cmd *cobra.Command, args []string) error {
	d, err := diagnostics()
	if err != nil {
		return err
	}
	resp, err := d.Embedding(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("embedding: %w", err)
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return search.FormatJSON(resp, os.Stdout)
	}
	formatEmbedding(resp, os.Stdout)
	return nil
}

func runDiagRetrieval(cmd *cobra.Command, args []string) error {
	d, err := diagnostics()
	if err != nil {
		return err
	}
	topK, _ := cmd.Flags().GetInt("top-k")
	resp, err := d.Retrieval(cmd.Context(), strings.Join(args, " "), topK)
	if err != nil {
		return fmt.Errorf("retrieval: %w", err)
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return search.FormatJSON(resp, os.Stdout)
	}
	formatRetrieval(resp, os.Stdout)
	return nil
}

func formatEmbedding(resp *types.EmbeddingResponse, w io.Writer) {
	fmt.Fprintf(w, "Dimension: %d\n", resp.Dimension)
	n := min(len(resp.Embedding), previewValues)
	vals := make([]string, n)
	for i, v := range resp.Embedding[:n] {
		vals[i] = fmt.Sprintf("%.4f", v)
	}
	more := ""
	if len(resp.Embedding) > n {
		more = ", ..."
	}
	fmt.Fprintf(w, "Values:    [%s%s]\n", strings.Join(vals, ", "), more)
}

func formatRetrieval(resp *types.RetrievalResponse, w io.Writer) {
	fmt.Fprintf(w, "%d chunks of %d found for %q\n", len(resp.Chunks), resp.TotalFound, resp.Query)
	for i, c := range resp.Chunks {
		fmt.Fprintf(w, "\n[%d] %s  %s  score %.2f\n", i+1, c.SourceID, c.Section, normalize.CitationScore(c))
		if snip := strings.TrimSpace(c.Snippet); snip != "" {
			fmt.Fprintf(w, "    %s\n", normalize.Truncate(snip, 160))
		}
	}
}
