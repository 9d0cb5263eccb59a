// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/bioexplorer/internal/export"
	"github.com/pdiddy/bioexplorer/internal/search"
	"github.com/pdiddy/bioexplorer/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export [query...]",
	Short: "Export search results as CSV, JSON, YAML, CSL-YAML or XLSX",
	Long: `Export writes studies in an interchange format. Studies come from a saved
query file (--from) or from a fresh search built from the query words and
facet flags. With --rerun the saved file's filters are searched again.

Examples:
  bioexplorer export --from radiation.yaml --format csl --out refs.csl.yaml
  bioexplorer export --from radiation.yaml --rerun --format json
  bioexplorer export --species "Mus musculus" --format xlsx --out mice.xlsx`,
	RunE: runExport,
}

func init() {
	addFilterFlags(exportCmd)
	exportCmd.Flags().Int("page", types.DefaultPage, "result page (1-based)")
	exportCmd.Flags().Int("page-size", 0, "results per page (default search.page_size)")
	exportCmd.Flags().String("format", string(export.FormatCSV), "csv, json, yaml, csl or xlsx")
	exportCmd.Flags().String("from", "", "export studies from a saved query file")
	exportCmd.Flags().Bool("rerun", false, "with --from, search the saved filters again")
	exportCmd.Flags().StringP("out", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("format")
	format, err := export.ParseFormat(name)
	if err != nil {
		return err
	}
	out, _ := cmd.Flags().GetString("out")
	if format == export.FormatXLSX && out == "" {
		return fmt.Errorf("xlsx export needs --out")
	}

	studies, err := exportStudies(cmd, args)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(os.Stdout)
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}
		defer f.Close()
		w = bufio.NewWriter(f)
	}
	if err := export.Write(w, format, studies); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if out != "" {
		fmt.Fprintf(os.Stderr, "Exported %d studies to %s\n", len(studies), out)
	}
	return nil
}

func exportStudies(cmd *cobra.Command, args []string) ([]types.Study, error) {
	var filters types.SearchFilters
	if from, _ := cmd.Flags().GetString("from"); from != "" {
		qf, err := search.ReadQueryFile(from)
		if err != nil {
			return nil, err
		}
		if rerun, _ := cmd.Flags().GetBool("rerun"); !rerun {
			return qf.Studies, nil
		}
		filters = qf.Filters.ToFilters()
	} else {
		var err error
		if filters, err = filtersFromFlags(cmd, args); err != nil {
			return nil, err
		}
	}
	if search.Mode(filters) == types.ModeEmpty {
		return nil, fmt.Errorf("nothing to export: give a query, a facet flag or --from")
	}

	svc, err := newService(explorerConfig(viper.GetViper()), nil)
	if err != nil {
		return nil, err
	}
	resp, err := svc.Search(cmd.Context(), filters)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return resp.Studies, nil
}
