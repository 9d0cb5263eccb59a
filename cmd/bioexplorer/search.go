// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/bioexplorer/internal/search"
	"github.com/pdiddy/bioexplorer/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search studies by free text and facets",
	Long: `Search runs one page of results. A free-text query of at least three
characters runs a semantic search with a grounded answer; facet flags alone
run a structured document search.

Examples:
  bioexplorer search bone density in microgravity
  bioexplorer search --species "Mus musculus" --page 2
  bioexplorer search radiation --year-from 2015 --save radiation.yaml`,
	RunE: runSearch,
}

func init() {
	addFilterFlags(searchCmd)
	searchCmd.Flags().Int("page", types.DefaultPage, "result page (1-based)")
	searchCmd.Flags().Int("page-size", 0, "results per page (default search.page_size)")
	searchCmd.Flags().Bool("json", false, "output as JSON")
	searchCmd.Flags().String("save", "", "save filters and results to a query file")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	filters, err := filtersFromFlags(cmd, args)
	if err != nil {
		return err
	}

	cfg := explorerConfig(viper.GetViper())
	svc, err := newService(cfg, nil)
	if err != nil {
		return err
	}

	resp, err := svc.Search(cmd.Context(), filters)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if path, _ := cmd.Flags().GetString("save"); path != "" {
		if err := search.WriteQueryFile(path, search.NewQueryFile(filters, resp)); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved %d studies to %s\n", len(resp.Studies), path)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return search.FormatJSON(resp, os.Stdout)
	}
	if resp.Answer != "" {
		fmt.Fprintf(os.Stdout, "%s\n\n", resp.Answer)
	}
	search.FormatTable(resp, os.Stdout)
	return nil
}
