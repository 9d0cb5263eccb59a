// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/bioexplorer/internal/search"
)

var kpiCmd = &cobra.Command{
	Use:   "kpi",
	Short: "Show corpus totals: studies, years, missions and species",
	RunE:  runKpi,
}

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "List the facet values the backend knows about",
	RunE:  runFilters,
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the retrieval backend is reachable",
	RunE:  runHealth,
}

func init() {
	kpiCmd.Flags().Bool("json", false, "output as JSON")
	filtersCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(kpiCmd, filtersCmd, healthCmd)
}

func runKpi(cmd *cobra.Command, args []string) error {
	svc, err := newService(explorerConfig(viper.GetViper()), nil)
	if err != nil {
		return err
	}
	k, err := svc.Kpi(cmd.Context())
	if err != nil {
		return fmt.Errorf("kpi: %w", err)
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return search.FormatJSON(k, os.Stdout)
	}
	fmt.Fprintf(os.Stdout, "%-16s %d\n", "Studies:", k.TotalStudies)
	fmt.Fprintf(os.Stdout, "%-16s %s\n", "Years covered:", k.YearsCovered)
	fmt.Fprintf(os.Stdout, "%-16s %d\n", "Missions:", k.TotalMissions)
	fmt.Fprintf(os.Stdout, "%-16s %d\n", "Species:", k.TotalSpecies)
	return nil
}

func runFilters(cmd *cobra.Command, args []string) error {
	svc, err := newService(explorerConfig(viper.GetViper()), nil)
	if err != nil {
		return err
	}
	fv, err := svc.FilterValues(cmd.Context())
	if err != nil {
		return fmt.Errorf("filter values: %w", err)
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return search.FormatJSON(fv, os.Stdout)
	}
	fmt.Fprintf(os.Stdout, "%d documents, %d chunks\n\n", fv.TotalDocuments, fv.TotalChunks)
	fmt.Fprintf(os.Stdout, "Tags:         %s\n", strings.Join(fv.Tags, ", "))
	fmt.Fprintf(os.Stdout, "Categories:   %s\n", strings.Join(fv.Categories, ", "))
	fmt.Fprintf(os.Stdout, "Source types: %s\n", strings.Join(fv.SourceTypes, ", "))
	return nil
}

func runHealth(cmd *cobra.Command, args []string) error {
	svc, err := newService(explorerConfig(viper.GetViper()), nil)
	if err != nil {
		return err
	}
	h, err := svc.Health(cmd.Context())
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}
	fmt.Fprintf(os.Stdout, "%s: %s\n", h.Status, h.Message)
	return nil
}
