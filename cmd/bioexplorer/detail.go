// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/bioexplorer/internal/search"
)

var detailCmd = &cobra.Command{
	Use:   "detail <study-id>",
	Short: "Show one study with its abstract and related studies",
	Long: `Detail looks a study up by id. Studies from a saved query file (--from)
are served without a backend call; others are reconstructed from the backend,
and fall back to placeholder data when search.fallback_to_fixtures is set.`,
	Args: cobra.ExactArgs(1),
	RunE: runDetail,
}

func init() {
	detailCmd.Flags().String("from", "", "query file whose studies prime the cache")
	detailCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(detailCmd)
}

func runDetail(cmd *cobra.Command, args []string) error {
	cfg := explorerConfig(viper.GetViper())
	svc, err := newService(cfg, nil)
	if err != nil {
		return err
	}

	if from, _ := cmd.Flags().GetString("from"); from != "" {
		qf, err := search.ReadQueryFile(from)
		if err != nil {
			return err
		}
		svc.Cache().PutAll(qf.Studies)
	}

	d, err := svc.Detail(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("detail: %w", err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return search.FormatJSON(d, os.Stdout)
	}
	search.FormatDetail(d, os.Stdout)
	return nil
}
